package store

import (
	"context"
	"sync"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/storage"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"go.uber.org/zap"
)

// IdentityBinder receives the active user id so outgoing requests carry it
type IdentityBinder interface {
	SetUserID(id string)
}

// Identity is a snapshot of the identity store. User is nil when unauthenticated.
type Identity struct {
	User *models.User
}

// Authenticated returns true if a user is set
func (i Identity) Authenticated() bool {
	return i.User != nil
}

// IdentityStore holds the currently authenticated user and mirrors it to the
// persistent bridge under storage.KeyCurrentUser.
type IdentityStore struct {
	bridge *storage.Bridge
	binder IdentityBinder

	mu      sync.Mutex
	current *models.User
	init    sync.Once

	changes observable[Identity]
}

// NewIdentityStore creates an unauthenticated store. binder may be nil.
func NewIdentityStore(bridge *storage.Bridge, binder IdentityBinder) *IdentityStore {
	return &IdentityStore{
		bridge: bridge,
		binder: binder,
	}
}

// Initialize rehydrates the user from persistent storage. Only the first call has any effect.
// A stored null or a user without an id counts as no stored identity.
func (s *IdentityStore) Initialize(ctx context.Context) {
	s.init.Do(func() {
		var user *models.User
		if !s.bridge.Available() || !s.bridge.LoadJSON(ctx, storage.KeyCurrentUser, &user) {
			logger.Debug("No stored identity, starting unauthenticated")
			return
		}
		if user == nil || user.ID == "" {
			logger.Warn("Ignoring stored identity without a user id", zap.String("key", storage.KeyCurrentUser))
			return
		}

		s.mu.Lock()
		s.current = user
		s.bindLocked(user.ID)
		s.mu.Unlock()

		logger.Info("Identity restored from storage", zap.String("user_id", user.ID))
		s.publish()
	})
}

// Set authenticates user, persists it and rebinds the request identity.
// When persisting fails the store keeps its previous state.
func (s *IdentityStore) Set(ctx context.Context, user models.User) error {
	if err := s.apply(func() error {
		if s.bridge.Available() {
			if err := s.bridge.SaveJSON(ctx, storage.KeyCurrentUser, user); err != nil {
				return err
			}
		}
		s.current = &user
		s.bindLocked(user.ID)
		return nil
	}); err != nil {
		return err
	}

	s.publish()
	return nil
}

// Clear returns to the unauthenticated state and deletes the persisted user.
// When the delete fails the store stays authenticated.
func (s *IdentityStore) Clear(ctx context.Context) error {
	if err := s.apply(func() error {
		if s.bridge.Available() {
			if err := s.bridge.Remove(ctx, storage.KeyCurrentUser); err != nil {
				return err
			}
		}
		s.current = nil
		return nil
	}); err != nil {
		return err
	}

	s.publish()
	return nil
}

func (s *IdentityStore) apply(mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mutate()
}

// Current returns the authenticated user, if any
func (s *IdentityStore) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// Subscribe calls fn with the current identity and then on every change.
// The returned function removes the subscription.
func (s *IdentityStore) Subscribe(fn Listener[Identity]) func() {
	unsubscribe := s.changes.subscribe(fn)
	fn(s.snapshot())
	return unsubscribe
}

func (s *IdentityStore) bindLocked(id string) {
	if s.binder != nil {
		s.binder.SetUserID(id)
	}
}

func (s *IdentityStore) snapshot() Identity {
	if user, ok := s.Current(); ok {
		return Identity{User: &user}
	}
	return Identity{}
}

func (s *IdentityStore) publish() {
	metrics.StoreChanges.WithLabelValues("identity").Inc()
	s.changes.publish(s.snapshot())
}
