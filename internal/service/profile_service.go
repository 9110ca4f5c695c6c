package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ember-dating/match-service/internal/domain"
)

// ProfileStore is the slice of the user repository the profile endpoints
// need. Profile management proper lives outside this service; these calls
// exist so the module runs end to end.
type ProfileStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetPublic(ctx context.Context, id string) (*domain.PublicProfile, error)
	Discover(ctx context.Context, u *domain.User, limit int64) ([]domain.PublicProfile, error)
	TouchLastActive(ctx context.Context, id string) error
}

type ProfileService struct {
	users         ProfileStore
	discoverLimit int64
}

func NewProfileService(users ProfileStore) *ProfileService {
	return &ProfileService{users: users, discoverLimit: 20}
}

func (s *ProfileService) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.LastActive = now
	if u.Preferences.AgeMax == 0 {
		u.Preferences = domain.Preferences{
			AgeMin: 18, AgeMax: 100,
			ShowMen: true, ShowWomen: true, ShowNonBinary: true,
		}
	}
	u.IsProfileComplete = u.FirstName != "" && u.Age >= 18 && u.Gender != ""
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*domain.PublicProfile, error) {
	return s.users.GetPublic(ctx, id)
}

func (s *ProfileService) Discover(ctx context.Context, userID string) ([]domain.PublicProfile, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.users.TouchLastActive(ctx, userID)
	return s.users.Discover(ctx, u, s.discoverLimit)
}
