// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, authserver.DefaultConfig(), cfg)
}

func TestWriteThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := authserver.DefaultConfig()
	want.AccessTokenLifetime = 30 * time.Minute
	want.HashAlgorithm = crypto.SHA384
	want.RotateRefreshTokens = true
	want.Storage = storage.Config{
		Type:            storage.TypeRedis,
		CleanupInterval: time.Minute,
		Redis:           storage.RedisConfig{Addr: "localhost:6379", KeyPrefix: "test:"},
	}
	want.Users = []authserver.UserConfig{{Username: "alice", PasswordHash: "$2a$04$hash", Roles: []string{"admin"}}}
	want.Clients = []authserver.ClientConfig{{
		ID:           "client1",
		RedirectURIs: []string{"https://app.example.com/cb"},
		Scopes:       []string{"read", "write"},
	}}
	require.NoError(t, Write(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	v := viper.New()
	v.Set(KeyConfigFile, path)
	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SENTINEL_ACCESS_TOKEN_LIFETIME", "2h")
	t.Setenv("SENTINEL_STORAGE_TYPE", "sqlite")
	t.Setenv("SENTINEL_STORAGE_SQLITE_PATH", "/tmp/sentinel-test.db")
	t.Setenv("SENTINEL_ROTATE_REFRESH_TOKENS", "true")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenLifetime)
	assert.Equal(t, storage.TypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/sentinel-test.db", cfg.Storage.SQLitePath)
	assert.True(t, cfg.RotateRefreshTokens)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	missing := viper.New()
	missing.Set(KeyConfigFile, filepath.Join(dir, "missing.yaml"))
	_, err := Load(missing)
	assert.Error(t, err)

	invalidPath := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalidPath, []byte("hash_algorithm: MD5\n"), 0600))
	invalid := viper.New()
	invalid.Set(KeyConfigFile, invalidPath)
	_, err = Load(invalid)
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "sentinel", filepath.Base(filepath.Dir(path)))
}
