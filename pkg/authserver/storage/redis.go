// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	sentinelerrors "github.com/stacklok/sentinel/pkg/errors"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// minRecordTTL is the shortest TTL set on a record key. Records whose
// lifetime has already elapsed are still written so the engine observes
// them as expired rather than missing.
const minRecordTTL = time.Second

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the server address (host:port) for a standalone server.
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"`

	// Username and Password authenticate with Redis ACLs.
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// DB selects the logical database.
	DB int `mapstructure:"db" yaml:"db,omitempty"`

	// KeyPrefix namespaces every key written by the repository.
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout,omitempty"`
}

// RedisStorage implements Repository on Redis, allowing several engine
// instances to share codes and tokens.
//
// Records are stored as JSON under "<prefix><kind>:<key>" with a TTL matching
// the record lifetime. Client-bound records are also indexed in the set
// "<prefix>client:<clientID>" whose members are "<kind>:<key>".
type RedisStorage struct {
	client    redis.UniversalClient
	keyPrefix string
}

var (
	_ Repository    = (*RedisStorage)(nil)
	_ ClientRevoker = (*RedisStorage)(nil)
	_ Purger        = (*RedisStorage)(nil)
)

// NewRedisStorage connects to Redis and returns a repository.
func NewRedisStorage(ctx context.Context, cfg RedisConfig) (*RedisStorage, error) {
	if cfg.Addr == "" {
		return nil, sentinelerrors.NewInvalidArgumentError("redis address is required", nil)
	}

	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultRedisKeyPrefix
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		DB:           cfg.DB,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, sentinelerrors.NewRepositoryError("failed to connect to redis", err)
	}

	return &RedisStorage{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// NewRedisStorageWithClient creates a RedisStorage with a pre-configured client.
func NewRedisStorageWithClient(client redis.UniversalClient, keyPrefix string) *RedisStorage {
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Close closes the Redis client connection.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// Ping checks Redis connectivity.
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) recordKey(kind Kind, key string) string {
	return s.keyPrefix + string(kind) + ":" + key
}

func (s *RedisStorage) clientSetKey(clientID string) string {
	return s.keyPrefix + "client:" + clientID
}

func indexMember(kind Kind, key string) string {
	return string(kind) + ":" + key
}

func (s *RedisStorage) insert(ctx context.Context, kind Kind, record *Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	if record.CreatedAt.IsZero() {
		record = record.Clone()
		record.CreatedAt = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return false, sentinelerrors.NewInternalError("failed to marshal record", err)
	}

	ttl := max(time.Until(record.ValidTo), minRecordTTL)
	key := s.recordKey(kind, record.Key)

	stored, err := s.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, sentinelerrors.NewRepositoryError(fmt.Sprintf("failed to store %s record", kind), err)
	}
	if !stored {
		return false, nil
	}

	if record.ClientID != "" {
		if err := s.client.SAdd(ctx, s.clientSetKey(record.ClientID), indexMember(kind, record.Key)).Err(); err != nil {
			// Compensating delete so no record escapes client revocation.
			_ = s.client.Del(ctx, key).Err()
			return false, sentinelerrors.NewRepositoryError("failed to index record by client", err)
		}
	}

	return true, nil
}

func (s *RedisStorage) get(ctx context.Context, kind Kind, key string) (*Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(kind, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, sentinelerrors.NewRepositoryError(fmt.Sprintf("failed to get %s record", kind), err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, sentinelerrors.NewRepositoryError(fmt.Sprintf("failed to unmarshal %s record", kind), err)
	}
	return &record, nil
}

// remove deletes with GETDEL so exactly one concurrent caller observes the
// record and the client index can be cleaned up from its content.
func (s *RedisStorage) remove(ctx context.Context, kind Kind, key string) (bool, error) {
	data, err := s.client.GetDel(ctx, s.recordKey(kind, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, sentinelerrors.NewRepositoryError(fmt.Sprintf("failed to delete %s record", kind), err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err == nil && record.ClientID != "" {
		// Best effort; stale members are pruned by PurgeExpired.
		_ = s.client.SRem(ctx, s.clientSetKey(record.ClientID), indexMember(kind, key)).Err()
	}
	return true, nil
}

// InsertAuthorizationCode stores an authorization code record.
func (s *RedisStorage) InsertAuthorizationCode(ctx context.Context, record *Record) (bool, error) {
	return s.insert(ctx, KindAuthorizationCode, record)
}

// GetAuthorizationCode returns the authorization code record for key.
func (s *RedisStorage) GetAuthorizationCode(ctx context.Context, key string) (*Record, error) {
	return s.get(ctx, KindAuthorizationCode, key)
}

// DeleteAuthorizationCode removes the authorization code record for key.
func (s *RedisStorage) DeleteAuthorizationCode(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, KindAuthorizationCode, key)
}

// InsertAccessToken stores an access token record.
func (s *RedisStorage) InsertAccessToken(ctx context.Context, record *Record) (bool, error) {
	return s.insert(ctx, KindAccessToken, record)
}

// GetAccessToken returns the access token record for key.
func (s *RedisStorage) GetAccessToken(ctx context.Context, key string) (*Record, error) {
	return s.get(ctx, KindAccessToken, key)
}

// DeleteAccessToken removes the access token record for key.
func (s *RedisStorage) DeleteAccessToken(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, KindAccessToken, key)
}

// InsertRefreshToken stores a refresh token record.
func (s *RedisStorage) InsertRefreshToken(ctx context.Context, record *Record) (bool, error) {
	return s.insert(ctx, KindRefreshToken, record)
}

// GetRefreshToken returns the refresh token record for key.
func (s *RedisStorage) GetRefreshToken(ctx context.Context, key string) (*Record, error) {
	return s.get(ctx, KindRefreshToken, key)
}

// DeleteRefreshToken removes the refresh token record for key.
func (s *RedisStorage) DeleteRefreshToken(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, KindRefreshToken, key)
}

// DeleteTokensForClient removes every record indexed under clientID.
func (s *RedisStorage) DeleteTokensForClient(ctx context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, nil
	}

	setKey := s.clientSetKey(clientID)
	members, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("failed to list client records", err)
	}
	if len(members) == 0 {
		return 0, nil
	}

	cmds := make([]*redis.IntCmd, 0, len(members))
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range members {
			cmds = append(cmds, pipe.Del(ctx, s.keyPrefix+m))
		}
		pipe.Del(ctx, setKey)
		return nil
	})
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("failed to delete client records", err)
	}

	removed := 0
	for _, cmd := range cmds {
		removed += int(cmd.Val())
	}
	return removed, nil
}

// PurgeExpired prunes client index members whose record has expired.
// Record keys themselves expire through Redis TTLs, so the returned count is
// the number of stale index members removed.
func (s *RedisStorage) PurgeExpired(ctx context.Context, _ time.Time) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, s.clientSetKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		setKey := iter.Val()
		members, err := s.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return removed, sentinelerrors.NewRepositoryError("failed to list client records", err)
		}

		var stale []any
		for _, m := range members {
			n, err := s.client.Exists(ctx, s.keyPrefix+m).Result()
			if err != nil {
				return removed, sentinelerrors.NewRepositoryError("failed to check record", err)
			}
			if n == 0 {
				stale = append(stale, m)
			}
		}
		if len(stale) == 0 {
			continue
		}
		n, err := s.client.SRem(ctx, setKey, stale...).Result()
		if err != nil {
			return removed, sentinelerrors.NewRepositoryError("failed to prune client index", err)
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, sentinelerrors.NewRepositoryError("failed to scan client indexes", err)
	}
	return removed, nil
}

