package store

import (
	"context"
	"slices"
	"sync"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/storage"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"go.uber.org/zap"
)

// DirectoryStore holds the full list of known users and mirrors it to the
// persistent bridge under storage.KeyAllUsers. The list is always replaced
// and persisted whole.
type DirectoryStore struct {
	bridge *storage.Bridge

	mu    sync.Mutex
	users []models.User
	init  sync.Once

	changes observable[[]models.User]
}

// NewDirectoryStore creates an empty directory store
func NewDirectoryStore(bridge *storage.Bridge) *DirectoryStore {
	return &DirectoryStore{
		bridge: bridge,
		users:  []models.User{},
	}
}

// Initialize rehydrates the list from persistent storage. Only the first call has any effect.
func (s *DirectoryStore) Initialize(ctx context.Context) {
	s.init.Do(func() {
		var users []models.User
		if !s.bridge.Available() || !s.bridge.LoadJSON(ctx, storage.KeyAllUsers, &users) {
			return
		}
		if users == nil {
			users = []models.User{}
		}

		s.mu.Lock()
		s.users = users
		s.mu.Unlock()

		logger.Debug("Directory restored from storage", zap.Int("count", len(users)))
		s.publish()
	})
}

// Set replaces the list and persists it
func (s *DirectoryStore) Set(ctx context.Context, users []models.User) error {
	return s.Update(ctx, func([]models.User) []models.User {
		return users
	})
}

// Update applies transform to the current list, persists the result and publishes it.
// transform receives a copy and must not retain it. When persisting fails the
// list is left unchanged.
func (s *DirectoryStore) Update(ctx context.Context, transform func([]models.User) []models.User) error {
	if err := s.apply(ctx, transform); err != nil {
		return err
	}

	s.publish()
	return nil
}

func (s *DirectoryStore) apply(ctx context.Context, transform func([]models.User) []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(transform(slices.Clone(s.users)))
	if next == nil {
		next = []models.User{}
	}
	if s.bridge.Available() {
		if err := s.bridge.SaveJSON(ctx, storage.KeyAllUsers, next); err != nil {
			return err
		}
	}
	s.users = next
	return nil
}

// Current returns a copy of the list
func (s *DirectoryStore) Current() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

// Lookup finds a user by id in the current list
func (s *DirectoryStore) Lookup(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.FindUser(s.users, id)
}

// Subscribe calls fn with the current list and then on every change
func (s *DirectoryStore) Subscribe(fn Listener[[]models.User]) func() {
	unsubscribe := s.changes.subscribe(fn)
	fn(s.Current())
	return unsubscribe
}

func (s *DirectoryStore) publish() {
	users := s.Current()
	metrics.StoreChanges.WithLabelValues("directory").Inc()
	metrics.DirectorySize.Set(float64(len(users)))
	s.changes.publish(users)
}
