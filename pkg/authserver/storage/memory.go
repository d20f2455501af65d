// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/sentinel/pkg/logger"
)

// timedEntry wraps a value with its creation and expiry time for TTL tracking.
type timedEntry[T any] struct {
	value     T
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStorage implements Repository with in-memory maps.
// It is safe for concurrent use and suitable for single-instance deployments
// and tests. Records do not survive a restart.
type MemoryStorage struct {
	mu sync.RWMutex

	// records maps kind -> key -> record. Keys are digests of issued values.
	records map[Kind]map[string]*timedEntry[*Record]

	log *slog.Logger

	// cleanupInterval is how often the background cleanup runs
	cleanupInterval time.Duration

	// stopCleanup is used to signal the cleanup goroutine to stop
	stopCleanup chan struct{}

	// cleanupDone is closed when the cleanup goroutine has fully stopped
	cleanupDone chan struct{}

	closeOnce sync.Once
}

var (
	_ Repository    = (*MemoryStorage)(nil)
	_ ClientRevoker = (*MemoryStorage)(nil)
	_ Purger        = (*MemoryStorage)(nil)
)

// MemoryStorageOption configures a MemoryStorage instance.
type MemoryStorageOption func(*MemoryStorage)

// WithCleanupInterval sets a custom cleanup interval.
func WithCleanupInterval(interval time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.cleanupInterval = interval
	}
}

// WithMemoryLogger sets the logger used by the cleanup loop.
func WithMemoryLogger(l *slog.Logger) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.log = l
	}
}

// NewMemoryStorage creates a new MemoryStorage and starts the background
// cleanup goroutine.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		records:         make(map[Kind]map[string]*timedEntry[*Record], len(Kinds)),
		cleanupInterval: DefaultCleanupInterval,
		stopCleanup:     make(chan struct{}),
		cleanupDone:     make(chan struct{}),
	}
	for _, k := range Kinds {
		s.records[k] = make(map[string]*timedEntry[*Record])
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDiscard(s.log)
	if s.cleanupInterval <= 0 {
		s.cleanupInterval = DefaultCleanupInterval
	}

	go s.cleanupLoop()

	return s
}

// Close stops the background cleanup goroutine and waits for it to finish.
func (s *MemoryStorage) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
		<-s.cleanupDone
	})
	return nil
}

// cleanupLoop runs periodic cleanup of expired entries.
func (s *MemoryStorage) cleanupLoop() {
	defer close(s.cleanupDone)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			if n, _ := s.PurgeExpired(context.Background(), time.Now()); n > 0 {
				s.log.Debug("purged expired records", "count", n)
			}
		}
	}
}

// PurgeExpired removes all records expired at now.
// Expired keys are collected under the read lock and deleted under the write
// lock to keep write lock hold time short.
func (s *MemoryStorage) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	expired := make(map[Kind][]string)

	s.mu.RLock()
	for kind, entries := range s.records {
		for k, v := range entries {
			if !now.Before(v.expiresAt) {
				expired[kind] = append(expired[kind], k)
			}
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for kind, keys := range expired {
		for _, k := range keys {
			// Re-check: the entry may have been replaced since the read phase.
			if v, ok := s.records[kind][k]; ok && !now.Before(v.expiresAt) {
				delete(s.records[kind], k)
				removed++
			}
		}
	}
	return removed, nil
}

// DeleteTokensForClient removes every record bound to clientID.
func (s *MemoryStorage) DeleteTokensForClient(_ context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, entries := range s.records {
		for k, v := range entries {
			if v.value.ClientID == clientID {
				delete(entries, k)
				removed++
			}
		}
	}
	return removed, nil
}

func (s *MemoryStorage) insert(kind Kind, record *Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[kind][record.Key]; exists {
		return false, nil
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	s.records[kind][record.Key] = &timedEntry[*Record]{
		value:     record.Clone(),
		createdAt: createdAt,
		expiresAt: record.ValidTo,
	}
	return true, nil
}

func (s *MemoryStorage) get(kind Kind, key string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.records[kind][key]
	if !ok {
		return nil
	}
	return entry.value.Clone()
}

func (s *MemoryStorage) remove(kind Kind, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[kind][key]; !ok {
		return false
	}
	delete(s.records[kind], key)
	return true
}

// InsertAuthorizationCode stores an authorization code record.
func (s *MemoryStorage) InsertAuthorizationCode(_ context.Context, record *Record) (bool, error) {
	return s.insert(KindAuthorizationCode, record)
}

// GetAuthorizationCode returns the authorization code record for key.
func (s *MemoryStorage) GetAuthorizationCode(_ context.Context, key string) (*Record, error) {
	return s.get(KindAuthorizationCode, key), nil
}

// DeleteAuthorizationCode removes the authorization code record for key.
func (s *MemoryStorage) DeleteAuthorizationCode(_ context.Context, key string) (bool, error) {
	return s.remove(KindAuthorizationCode, key), nil
}

// InsertAccessToken stores an access token record.
func (s *MemoryStorage) InsertAccessToken(_ context.Context, record *Record) (bool, error) {
	return s.insert(KindAccessToken, record)
}

// GetAccessToken returns the access token record for key.
func (s *MemoryStorage) GetAccessToken(_ context.Context, key string) (*Record, error) {
	return s.get(KindAccessToken, key), nil
}

// DeleteAccessToken removes the access token record for key.
func (s *MemoryStorage) DeleteAccessToken(_ context.Context, key string) (bool, error) {
	return s.remove(KindAccessToken, key), nil
}

// InsertRefreshToken stores a refresh token record.
func (s *MemoryStorage) InsertRefreshToken(_ context.Context, record *Record) (bool, error) {
	return s.insert(KindRefreshToken, record)
}

// GetRefreshToken returns the refresh token record for key.
func (s *MemoryStorage) GetRefreshToken(_ context.Context, key string) (*Record, error) {
	return s.get(KindRefreshToken, key), nil
}

// DeleteRefreshToken removes the refresh token record for key.
func (s *MemoryStorage) DeleteRefreshToken(_ context.Context, key string) (bool, error) {
	return s.remove(KindRefreshToken, key), nil
}

// Stats returns the number of stored records per kind.
func (s *MemoryStorage) Stats() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[Kind]int, len(s.records))
	for kind, entries := range s.records {
		stats[kind] = len(entries)
	}
	return stats
}
