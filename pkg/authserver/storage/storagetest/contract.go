// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storagetest provides a behavioural test suite that every
// storage.Repository implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/sentinel/pkg/authserver/storage"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) storage.Repository

type kindOps struct {
	kind   storage.Kind
	insert func(context.Context, storage.Repository, *storage.Record) (bool, error)
	get    func(context.Context, storage.Repository, string) (*storage.Record, error)
	del    func(context.Context, storage.Repository, string) (bool, error)
}

var allKinds = []kindOps{
	{
		kind:   storage.KindAuthorizationCode,
		insert: func(ctx context.Context, r storage.Repository, rec *storage.Record) (bool, error) { return r.InsertAuthorizationCode(ctx, rec) },
		get:    func(ctx context.Context, r storage.Repository, k string) (*storage.Record, error) { return r.GetAuthorizationCode(ctx, k) },
		del:    func(ctx context.Context, r storage.Repository, k string) (bool, error) { return r.DeleteAuthorizationCode(ctx, k) },
	},
	{
		kind:   storage.KindAccessToken,
		insert: func(ctx context.Context, r storage.Repository, rec *storage.Record) (bool, error) { return r.InsertAccessToken(ctx, rec) },
		get:    func(ctx context.Context, r storage.Repository, k string) (*storage.Record, error) { return r.GetAccessToken(ctx, k) },
		del:    func(ctx context.Context, r storage.Repository, k string) (bool, error) { return r.DeleteAccessToken(ctx, k) },
	},
	{
		kind:   storage.KindRefreshToken,
		insert: func(ctx context.Context, r storage.Repository, rec *storage.Record) (bool, error) { return r.InsertRefreshToken(ctx, rec) },
		get:    func(ctx context.Context, r storage.Repository, k string) (*storage.Record, error) { return r.GetRefreshToken(ctx, k) },
		del:    func(ctx context.Context, r storage.Repository, k string) (bool, error) { return r.DeleteRefreshToken(ctx, k) },
	},
}

// NewRecord returns a valid record for key expiring in ttl.
func NewRecord(key string, ttl time.Duration) *storage.Record {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &storage.Record{
		Key:         key,
		Principal:   []byte(`{"identities":[{"authentication_type":"OAuth","claims":[{"type":"name","value":"alice"}]}]}`),
		ValidTo:     now.Add(ttl),
		CreatedAt:   now,
		ClientID:    "client1",
		RedirectURI: "https://app.example.com/cb",
		TicketID:    "ticket-" + key,
	}
}

// RunRepositoryContract runs the repository behaviour suite against repos
// produced by newRepo.
func RunRepositoryContract(t *testing.T, newRepo Factory) {
	t.Helper()

	for _, ops := range allKinds {
		t.Run(string(ops.kind), func(t *testing.T) {
			t.Run("insert get delete", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)
				rec := NewRecord("key-1", time.Hour)

				ok, err := ops.insert(ctx, repo, rec)
				require.NoError(t, err)
				require.True(t, ok)

				got, err := ops.get(ctx, repo, rec.Key)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, rec.Key, got.Key)
				assert.Equal(t, rec.Principal, got.Principal)
				assert.True(t, rec.ValidTo.Equal(got.ValidTo), "valid_to %v != %v", rec.ValidTo, got.ValidTo)
				assert.Equal(t, rec.ClientID, got.ClientID)
				assert.Equal(t, rec.RedirectURI, got.RedirectURI)
				assert.Equal(t, rec.TicketID, got.TicketID)

				deleted, err := ops.del(ctx, repo, rec.Key)
				require.NoError(t, err)
				assert.True(t, deleted)

				got, err = ops.get(ctx, repo, rec.Key)
				require.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("missing key", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				got, err := ops.get(ctx, repo, "absent")
				require.NoError(t, err)
				assert.Nil(t, got)

				deleted, err := ops.del(ctx, repo, "absent")
				require.NoError(t, err)
				assert.False(t, deleted)
			})

			t.Run("duplicate insert", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				ok, err := ops.insert(ctx, repo, NewRecord("dup", time.Hour))
				require.NoError(t, err)
				require.True(t, ok)

				other := NewRecord("dup", 2*time.Hour)
				other.ClientID = "client2"
				ok, err = ops.insert(ctx, repo, other)
				require.NoError(t, err)
				assert.False(t, ok)

				got, err := ops.get(ctx, repo, "dup")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "client1", got.ClientID)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				_, err := ops.insert(ctx, repo, NewRecord("once", time.Hour))
				require.NoError(t, err)

				first, err := ops.del(ctx, repo, "once")
				require.NoError(t, err)
				second, err := ops.del(ctx, repo, "once")
				require.NoError(t, err)

				assert.True(t, first)
				assert.False(t, second)
			})

			t.Run("concurrent delete reports one winner", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				_, err := ops.insert(ctx, repo, NewRecord("race", time.Hour))
				require.NoError(t, err)

				const workers = 16
				var winners atomic.Int32
				var wg sync.WaitGroup
				for range workers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						ok, err := ops.del(ctx, repo, "race")
						assert.NoError(t, err)
						if ok {
							winners.Add(1)
						}
					}()
				}
				wg.Wait()

				assert.Equal(t, int32(1), winners.Load())
			})

			t.Run("expired record is still returned", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				rec := NewRecord("stale", -time.Minute)
				ok, err := ops.insert(ctx, repo, rec)
				require.NoError(t, err)
				require.True(t, ok)

				got, err := ops.get(ctx, repo, "stale")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.True(t, got.Expired(time.Now()))
			})

			t.Run("kinds are isolated", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				_, err := ops.insert(ctx, repo, NewRecord("shared-key", time.Hour))
				require.NoError(t, err)

				for _, other := range allKinds {
					if other.kind == ops.kind {
						continue
					}
					got, err := other.get(ctx, repo, "shared-key")
					require.NoError(t, err)
					assert.Nil(t, got, "record leaked into %s", other.kind)
				}
			})

			t.Run("invalid record", func(t *testing.T) {
				ctx := context.Background()
				repo := newRepo(t)

				_, err := ops.insert(ctx, repo, &storage.Record{ValidTo: time.Now()})
				assert.Error(t, err)
				_, err = ops.insert(ctx, repo, nil)
				assert.Error(t, err)
			})
		})
	}

	t.Run("client revocation", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		revoker, ok := repo.(storage.ClientRevoker)
		if !ok {
			t.Skip("repository does not support client revocation")
		}

		for i, ops := range allKinds {
			for j := range 2 {
				rec := NewRecord(fmt.Sprintf("c1-%d-%d", i, j), time.Hour)
				_, err := ops.insert(ctx, repo, rec)
				require.NoError(t, err)
			}
			other := NewRecord(fmt.Sprintf("c2-%d", i), time.Hour)
			other.ClientID = "client2"
			_, err := ops.insert(ctx, repo, other)
			require.NoError(t, err)
		}

		removed, err := revoker.DeleteTokensForClient(ctx, "client1")
		require.NoError(t, err)
		assert.Equal(t, 6, removed)

		for i, ops := range allKinds {
			got, err := ops.get(ctx, repo, fmt.Sprintf("c1-%d-0", i))
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = ops.get(ctx, repo, fmt.Sprintf("c2-%d", i))
			require.NoError(t, err)
			assert.NotNil(t, got)
		}

		removed, err = revoker.DeleteTokensForClient(ctx, "client1")
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}
