package storage

import (
	"context"
	"fmt"

	"github.com/cargoreligion/booking-client/pkg/logger"
	"go.uber.org/zap"
)

// Backend kinds accepted by Open
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Options selects and configures the bridge backend
type Options struct {
	Backend        string
	Dir            string
	RedisURL       string
	RedisKeyPrefix string
}

// Open builds a bridge for opts. The returned close function is never nil.
func Open(ctx context.Context, opts Options) (*Bridge, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendFile, "":
		backend, err := NewFileBackend(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("Persistent storage opened", zap.String("backend", BackendFile), zap.String("dir", opts.Dir))
		return NewBridge(backend), noop, nil

	case BackendRedis:
		prefix := opts.RedisKeyPrefix
		if prefix == "" {
			prefix = DefaultRedisKeyPrefix
		}
		backend, err := DialRedis(ctx, opts.RedisURL, prefix)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("Persistent storage opened", zap.String("backend", BackendRedis), zap.String("prefix", prefix))
		return NewBridge(backend), backend.Close, nil

	case BackendMemory:
		return NewBridge(NewMemoryBackend()), noop, nil

	case BackendNone:
		logger.Info("Persistent storage disabled, state will not survive restarts")
		return Unavailable(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
