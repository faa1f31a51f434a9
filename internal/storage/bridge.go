// Package storage is the persistent key-value bridge the stores sync to.
//
// A Bridge without a backend models an environment with no durable storage:
// reads report absent and writes do nothing.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/cargoreligion/booking-client/pkg/errors"
	"github.com/cargoreligion/booking-client/pkg/logger"
	"github.com/cargoreligion/booking-client/pkg/metrics"
	"go.uber.org/zap"
)

// Keys used by the stores
const (
	KeyCurrentUser = "currentUser"
	KeyAllUsers    = "allUsers"
)

// ErrKeyNotFound is returned by a Backend when the key holds no value
var ErrKeyNotFound = errors.New("key not found")

// Backend is a durable string key-value store
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Name() string
}

// Bridge guards a Backend and handles JSON encoding for callers
type Bridge struct {
	backend Backend
}

// NewBridge creates a bridge over backend. A nil backend yields an unavailable bridge.
func NewBridge(backend Backend) *Bridge {
	return &Bridge{backend: backend}
}

// Unavailable returns a bridge for environments without persistent storage
func Unavailable() *Bridge {
	return &Bridge{}
}

// Available returns true if a backend is present
func (b *Bridge) Available() bool {
	return b != nil && b.backend != nil
}

// Get returns the stored value for key. Backend failures are logged and reported as absent.
func (b *Bridge) Get(ctx context.Context, key string) (string, bool) {
	if !b.Available() {
		return "", false
	}

	value, err := b.backend.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		metrics.StorageOperationTotal.WithLabelValues("get", "miss").Inc()
		return "", false
	}
	if err != nil {
		metrics.StorageOperationTotal.WithLabelValues("get", "error").Inc()
		logger.Warn("Failed to read persisted value",
			zap.String("backend", b.backend.Name()),
			zap.String("key", key),
			zap.Error(err))
		return "", false
	}

	metrics.StorageOperationTotal.WithLabelValues("get", "hit").Inc()
	return value, true
}

// Set stores value under key
func (b *Bridge) Set(ctx context.Context, key, value string) error {
	if !b.Available() {
		return nil
	}

	if err := b.backend.Set(ctx, key, value); err != nil {
		metrics.StorageOperationTotal.WithLabelValues("set", "error").Inc()
		logger.Error("Failed to persist value",
			zap.String("backend", b.backend.Name()),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}

	metrics.StorageOperationTotal.WithLabelValues("set", "success").Inc()
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (b *Bridge) Remove(ctx context.Context, key string) error {
	if !b.Available() {
		return nil
	}

	if err := b.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		metrics.StorageOperationTotal.WithLabelValues("remove", "error").Inc()
		logger.Error("Failed to remove persisted value",
			zap.String("backend", b.backend.Name()),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	metrics.StorageOperationTotal.WithLabelValues("remove", "success").Inc()
	return nil
}

// LoadJSON decodes the value stored under key into dst.
// It returns false when the key is absent or holds malformed JSON; the latter is logged, never returned.
func (b *Bridge) LoadJSON(ctx context.Context, key string, dst any) bool {
	raw, ok := b.Get(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		decodeErr := &apperrors.DecodeError{Source: "stored " + key, Err: err}
		metrics.StorageOperationTotal.WithLabelValues("decode", "error").Inc()
		logger.Warn("Ignoring malformed persisted value",
			zap.String("key", key),
			zap.Error(decodeErr))
		return false
	}

	return true
}

// SaveJSON encodes v and stores it under key
func (b *Bridge) SaveJSON(ctx context.Context, key string, v any) error {
	if !b.Available() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return b.Set(ctx, key, string(data))
}
