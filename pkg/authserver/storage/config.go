// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"fmt"
	"time"

	"github.com/stacklok/sentinel/pkg/errors"
)

// Type defines the type of storage backend.
type Type string

const (
	// TypeMemory uses in-memory storage (default).
	TypeMemory Type = "memory"

	// TypeRedis uses Redis for shared storage across instances.
	TypeRedis Type = "redis"

	// TypeSQLite uses a local SQLite database file.
	TypeSQLite Type = "sqlite"
)

const (
	// DefaultCleanupInterval is how often expired records are swept.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultRedisKeyPrefix is the default key prefix for Redis storage.
	DefaultRedisKeyPrefix = "sentinel:"

	// DefaultSQLitePath is the default database file for SQLite storage.
	DefaultSQLitePath = "sentinel.db"
)

// Config configures the storage backend.
type Config struct {
	// Type specifies the storage backend type. Defaults to memory.
	Type Type `mapstructure:"type" yaml:"type"`

	// CleanupInterval for expired entries (memory storage only).
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval,omitempty"`

	// Redis holds the Redis connection settings when Type is redis.
	Redis RedisConfig `mapstructure:"redis" yaml:"redis,omitempty"`

	// SQLitePath is the database file when Type is sqlite.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Type:            TypeMemory,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate checks that the selected backend has the settings it needs.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeMemory, "":
		return nil
	case TypeRedis:
		if c.Redis.Addr == "" {
			return errors.NewInvalidArgumentError("redis address is required for redis storage", nil)
		}
		return nil
	case TypeSQLite:
		return nil
	default:
		return errors.NewInvalidArgumentError(fmt.Sprintf("unknown storage type: %s", c.Type), nil)
	}
}
