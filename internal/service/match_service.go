package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ember-dating/match-service/internal/domain"
)

// UserStore is the slice of the user repository the engine needs.
type UserStore interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	RecordLike(ctx context.Context, actor, target string) error
	RecordDislike(ctx context.Context, actor, target string) error
}

// MatchStore is the slice of the match repository the engine and chat need.
type MatchStore interface {
	FormMatch(ctx context.Context, actor, target string) (*domain.Match, bool, error)
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Match, error)
	AppendMessage(ctx context.Context, matchID, sender, content string, encrypted bool) (*domain.Message, *domain.Match, error)
	Deactivate(ctx context.Context, matchID string) error
}

// Notifier pushes an event to a single user's live connections. Delivery is
// best effort: implementations never return anything to the caller.
type Notifier interface {
	Notify(userID string, ev domain.Event)
}

type LikeResult struct {
	Matched bool          `json:"matched"`
	Match   *domain.Match `json:"match,omitempty"`
}

// MatchService decides whether a like completes a mutual pair and, when it
// does, forms the match and fans the event out to both participants.
type MatchService struct {
	users    UserStore
	matches  MatchStore
	notifier Notifier
	logger   *zap.SugaredLogger
}

func NewMatchService(users UserStore, matches MatchStore, notifier Notifier, logger *zap.SugaredLogger) *MatchService {
	return &MatchService{users: users, matches: matches, notifier: notifier, logger: logger}
}

func (s *MatchService) Like(ctx context.Context, actor, target string) (*LikeResult, error) {
	if actor == target {
		return nil, domain.ErrSelfAction
	}

	actorUser, err := s.users.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, target); err != nil {
		return nil, err
	}

	if err := s.users.RecordLike(ctx, actor, target); err != nil {
		return nil, err
	}

	// Re-read after recording: of two simultaneous mutual likes, the later
	// writer is guaranteed to observe the earlier one's like.
	targetUser, err := s.users.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if !targetUser.HasLiked(actor) {
		return &LikeResult{Matched: false}, nil
	}

	match, created, err := s.matches.FormMatch(ctx, actor, target)
	if err != nil {
		return nil, err
	}

	// Only the winner of a simultaneous mutual like announces the match;
	// both calls still report matched with the same record.
	if created {
		s.notify(actor, domain.NewMatchCreated(match.ID, targetUser.Public()))
		s.notify(target, domain.NewMatchCreated(match.ID, actorUser.Public()))
	}

	return &LikeResult{Matched: true, Match: match}, nil
}

func (s *MatchService) Dislike(ctx context.Context, actor, target string) error {
	if actor == target {
		return domain.ErrSelfAction
	}
	if _, err := s.users.Get(ctx, actor); err != nil {
		return err
	}
	if _, err := s.users.Get(ctx, target); err != nil {
		return err
	}
	return s.users.RecordDislike(ctx, actor, target)
}

func (s *MatchService) notify(userID string, ev domain.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, ev)
	if s.logger != nil {
		s.logger.Debugw("event emitted", "kind", ev.Kind, "user", userID)
	}
}
