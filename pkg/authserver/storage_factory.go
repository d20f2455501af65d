// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/authserver/storage/sqlite"
	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/logger"
)

// Backend is a repository that owns connections or goroutines.
type Backend interface {
	storage.Repository
	Close() error
}

var (
	_ Backend = (*storage.MemoryStorage)(nil)
	_ Backend = (*storage.RedisStorage)(nil)
	_ Backend = (*sqlite.Storage)(nil)
)

// NewStorage creates a Backend based on config.
// If config is nil, defaults to in-memory storage.
func NewStorage(ctx context.Context, config *storage.Config, log *slog.Logger) (Backend, error) {
	if config == nil {
		config = storage.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrDiscard(log)

	switch config.Type {
	case storage.TypeMemory, "":
		opts := []storage.MemoryStorageOption{storage.WithMemoryLogger(log)}
		if config.CleanupInterval > 0 {
			opts = append(opts, storage.WithCleanupInterval(config.CleanupInterval))
		}
		log.DebugContext(ctx, "using in-memory token storage")
		return storage.NewMemoryStorage(opts...), nil

	case storage.TypeRedis:
		log.DebugContext(ctx, "using redis token storage", "addr", config.Redis.Addr)
		s, err := storage.NewRedisStorage(ctx, config.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil

	case storage.TypeSQLite:
		log.DebugContext(ctx, "using sqlite token storage", "path", config.SQLitePath)
		s, err := sqlite.Open(ctx, config.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("unknown storage type: %s", config.Type), nil)
	}
}
