package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-dating/match-service/internal/domain"
)

type fakeProfileStore struct {
	memStores
	discovered []domain.PublicProfile
	touched    []string
}

func (f *fakeProfileStore) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		f.users[u.ID] = u
	}
	return nil
}

func (f *fakeProfileStore) Discover(_ context.Context, _ *domain.User, limit int64) ([]domain.PublicProfile, error) {
	if int64(len(f.discovered)) > limit {
		return f.discovered[:limit], nil
	}
	return f.discovered, nil
}

func (f *fakeProfileStore) TouchLastActive(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func newProfileStore() *fakeProfileStore {
	return &fakeProfileStore{memStores: memStores{
		users:   make(map[string]*domain.User),
		matches: make(map[string]*domain.Match),
		byPair:  make(map[string]string),
	}}
}

func TestCreateProfileDefaults(t *testing.T) {
	store := newProfileStore()
	svc := NewProfileService(store)

	u, err := svc.Create(context.Background(), &domain.User{
		FirstName: "Ana",
		Age:       29,
		Gender:    "female",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID, "id is assigned when absent")
	assert.True(t, u.IsProfileComplete)
	assert.Equal(t, 18, u.Preferences.AgeMin)
	assert.Equal(t, 100, u.Preferences.AgeMax)
	assert.True(t, u.Preferences.ShowMen)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestCreateProfileIncomplete(t *testing.T) {
	store := newProfileStore()
	svc := NewProfileService(store)

	u, err := svc.Create(context.Background(), &domain.User{ID: "u1", FirstName: "Kid", Age: 12})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.False(t, u.IsProfileComplete, "underage or partial profiles stay out of discovery")
}

func TestDiscoverTouchesLastActive(t *testing.T) {
	store := newProfileStore()
	store.addUser("u1", "Ana")
	store.discovered = []domain.PublicProfile{{ID: "u2"}, {ID: "u3"}}
	svc := NewProfileService(store)

	out, err := svc.Discover(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, []string{"u1"}, store.touched)

	_, err = svc.Discover(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
