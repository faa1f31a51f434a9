package services

import (
	"context"
	"fmt"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/pkg/errors"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"go.uber.org/zap"
)

// SessionService handles who the user is acting as and the known user list
type SessionService struct {
	identity  IdentityStore
	directory DirectoryStore
	api       DirectoryAPI
}

// NewSessionService creates a new session service instance
func NewSessionService(identity IdentityStore, directory DirectoryStore, api DirectoryAPI) *SessionService {
	return &SessionService{
		identity:  identity,
		directory: directory,
		api:       api,
	}
}

// Bootstrap restores persisted identity and directory. It is safe to call more than once.
func (s *SessionService) Bootstrap(ctx context.Context) {
	s.identity.Initialize(ctx)
	s.directory.Initialize(ctx)

	if user, ok := s.identity.Current(); ok {
		logger.Debug("Session restored",
			zap.String("user_id", user.ID),
			zap.String("role", string(user.Role)),
		)
	}
}

// Login makes user the acting identity
func (s *SessionService) Login(ctx context.Context, user models.User) error {
	if err := models.Validate(user); err != nil {
		metrics.SessionEvents.WithLabelValues("login", "invalid").Inc()
		return fmt.Errorf("invalid user: %w", err)
	}
	if err := s.identity.Set(ctx, user); err != nil {
		metrics.SessionEvents.WithLabelValues("login", "error").Inc()
		logger.LogError(err, "Failed to persist identity", zap.String("user_id", user.ID))
		return err
	}

	metrics.SessionEvents.WithLabelValues("login", "success").Inc()
	logger.Info("Logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// SwitchUser logs in as the directory entry with id
func (s *SessionService) SwitchUser(ctx context.Context, id string) (models.User, error) {
	user, ok := s.directory.Lookup(id)
	if !ok {
		metrics.SessionEvents.WithLabelValues("switch", "not_found").Inc()
		return models.User{}, errors.NotFoundError(fmt.Sprintf("user %s", id))
	}
	if err := s.Login(ctx, user); err != nil {
		return models.User{}, err
	}
	metrics.SessionEvents.WithLabelValues("switch", "success").Inc()
	return user, nil
}

// Logout clears the acting identity
func (s *SessionService) Logout(ctx context.Context) error {
	previous, hadUser := s.identity.Current()
	if err := s.identity.Clear(ctx); err != nil {
		metrics.SessionEvents.WithLabelValues("logout", "error").Inc()
		logger.LogError(err, "Failed to clear identity")
		return err
	}

	metrics.SessionEvents.WithLabelValues("logout", "success").Inc()
	if hadUser {
		logger.Info("Logged out", zap.String("user_id", previous.ID))
	}
	return nil
}

// RefreshDirectory replaces the directory with the backend's user list
func (s *SessionService) RefreshDirectory(ctx context.Context) ([]models.User, error) {
	users, err := s.api.GetAllUsers(ctx)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("refresh", "error").Inc()
		logger.LogError(err, "Failed to fetch users")
		return nil, err
	}
	if err := s.directory.Set(ctx, users); err != nil {
		metrics.SessionEvents.WithLabelValues("refresh", "error").Inc()
		logger.LogError(err, "Failed to persist directory", zap.Int("count", len(users)))
		return nil, err
	}

	metrics.SessionEvents.WithLabelValues("refresh", "success").Inc()
	return s.directory.Current(), nil
}

// Current returns the acting user, if any
func (s *SessionService) Current() (models.User, bool) {
	return s.identity.Current()
}

// RequireUser returns the acting user or errors.ErrUnauthenticated
func (s *SessionService) RequireUser() (models.User, error) {
	user, ok := s.identity.Current()
	if !ok {
		return models.User{}, errors.ErrUnauthenticated
	}
	return user, nil
}

// Directory returns the stored user list without contacting the backend
func (s *SessionService) Directory() []models.User {
	return s.directory.Current()
}
