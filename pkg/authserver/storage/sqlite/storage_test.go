// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/authserver/storage/storagetest"
	"github.com/stacklok/sentinel/pkg/errors"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.Context(), filepath.Join(t.TempDir(), "sentinel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_Contract(t *testing.T) {
	t.Parallel()

	storagetest.RunRepositoryContract(t, func(t *testing.T) storage.Repository {
		t.Helper()
		return newTestStorage(t)
	})
}

func TestOpen_ReappliesMigrations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := t.Context()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = first.InsertAccessToken(ctx, storagetest.NewRecord("persisted", time.Hour))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.GetAccessToken(ctx, "persisted")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "client1", got.ClientID)
}

func TestStorage_PurgeExpired(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStorage(t)
	now := time.Now()

	_, err := s.InsertAuthorizationCode(ctx, storagetest.NewRecord("old", -time.Minute))
	require.NoError(t, err)
	_, err = s.InsertRefreshToken(ctx, storagetest.NewRecord("new", time.Hour))
	require.NoError(t, err)

	removed, err := s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	got, err := s.GetRefreshToken(ctx, "new")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestStorage_PrincipalDefaultsToEmpty(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStorage(t)

	ok, err := s.InsertAccessToken(ctx, &storage.Record{Key: "bare", ValidTo: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetAccessToken(ctx, "bare")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Principal)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStorage_ClosedDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.GetAccessToken(ctx, "k")
	assert.True(t, errors.IsRepository(err))

	_, err = s.DeleteAccessToken(ctx, "k")
	assert.True(t, errors.IsRepository(err))
}

func TestDSN(t *testing.T) {
	t.Parallel()

	const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	tests := []struct {
		path string
		want string
	}{
		{path: "sentinel.db", want: "file:sentinel.db" + pragmas},
		{path: "/var/lib/sentinel.db", want: "file:/var/lib/sentinel.db" + pragmas},
		{path: "/tmp/a?b#c%d.db", want: "file:/tmp/a%3Fb%23c%25d.db" + pragmas},
		{path: "/tmp/with space.db", want: "file:/tmp/with%20space.db" + pragmas},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dsn(tt.path))
		})
	}
}

func TestOpen_PathWithURISyntax(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "tokens?mode=ro#x.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	ok, err := s.InsertAccessToken(ctx, storagetest.NewRecord("k1", time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err, "database is created at the literal path")

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.GetAccessToken(ctx, "k1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
