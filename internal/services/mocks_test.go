package services_test

import (
	"context"

	"github.com/cargoreligion/booking-client/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockIdentityStore is a mock implementation of IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Initialize(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockIdentityStore) Set(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockIdentityStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIdentityStore) Current() (models.User, bool) {
	args := m.Called()
	return args.Get(0).(models.User), args.Bool(1)
}

// MockDirectoryStore is a mock implementation of DirectoryStore
type MockDirectoryStore struct {
	mock.Mock
}

func (m *MockDirectoryStore) Initialize(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockDirectoryStore) Set(ctx context.Context, users []models.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockDirectoryStore) Current() []models.User {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.User)
}

func (m *MockDirectoryStore) Lookup(id string) (models.User, bool) {
	args := m.Called(id)
	return args.Get(0).(models.User), args.Bool(1)
}

// MockDirectoryAPI is a mock implementation of DirectoryAPI
type MockDirectoryAPI struct {
	mock.Mock
}

func (m *MockDirectoryAPI) GetAllUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
