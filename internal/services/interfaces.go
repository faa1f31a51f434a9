package services

import (
	"context"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/cargoreligion/booking-client/internal/store"
)

// IdentityStore is the part of store.IdentityStore the session service drives
type IdentityStore interface {
	Initialize(ctx context.Context)
	Set(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
	Current() (models.User, bool)
}

// DirectoryStore is the part of store.DirectoryStore the session service drives
type DirectoryStore interface {
	Initialize(ctx context.Context)
	Set(ctx context.Context, users []models.User) error
	Current() []models.User
	Lookup(id string) (models.User, bool)
}

// DirectoryAPI lists users on the scheduling service
type DirectoryAPI interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

// SessionServiceInterface defines the interface for session lifecycle operations
type SessionServiceInterface interface {
	Bootstrap(ctx context.Context)
	Login(ctx context.Context, user models.User) error
	SwitchUser(ctx context.Context, id string) (models.User, error)
	Logout(ctx context.Context) error
	RefreshDirectory(ctx context.Context) ([]models.User, error)
	Current() (models.User, bool)
	RequireUser() (models.User, error)
	Directory() []models.User
}

var (
	_ IdentityStore           = (*store.IdentityStore)(nil)
	_ DirectoryStore          = (*store.DirectoryStore)(nil)
	_ SessionServiceInterface = (*SessionService)(nil)
)
