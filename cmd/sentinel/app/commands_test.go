// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/config"
)

// The commands share the global viper instance, so these tests do not run in
// parallel.

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func writeSQLiteConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := authserver.DefaultConfig()
	cfg.Storage.Type = storage.TypeSQLite
	cfg.Storage.SQLitePath = filepath.Join(dir, "sentinel.db")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Write(path, cfg))
	return path
}

func TestHashCommands(t *testing.T) {
	path := writeSQLiteConfig(t)

	out, err := run(t, "--config", path, "hash", "hello", "--unsalted")
	require.NoError(t, err)
	unsalted := strings.TrimSpace(out)

	again, err := run(t, "--config", path, "hash", "hello", "--unsalted")
	require.NoError(t, err)
	assert.Equal(t, unsalted, strings.TrimSpace(again))

	out, err = run(t, "--config", path, "hash", "hello")
	require.NoError(t, err)
	salted := strings.TrimSpace(out)
	assert.NotEqual(t, unsalted, salted)

	_, err = run(t, "--config", path, "verify-hash", "hello", salted)
	require.NoError(t, err)
	_, err = run(t, "--config", path, "verify-hash", "goodbye", salted)
	assert.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	path := writeSQLiteConfig(t)

	out, err := run(t, "--config", path, "encrypt", "payload", "--key", "k1")
	require.NoError(t, err)
	ticket := strings.TrimSpace(out)

	out, err = run(t, "--config", path, "decrypt", ticket, "--key", "k1")
	require.NoError(t, err)
	assert.Equal(t, "payload", strings.TrimSpace(out))

	_, err = run(t, "--config", path, "decrypt", ticket, "--key", "k2")
	assert.Error(t, err)

	_, err = run(t, "--config", path, "encrypt", "payload")
	assert.Error(t, err, "key is required")
}

func TestSecret(t *testing.T) {
	path := writeSQLiteConfig(t)

	out, err := run(t, "--config", path, "secret")
	require.NoError(t, err)
	l := lines(out)
	require.Len(t, l, 2)

	_, err = run(t, "--config", path, "verify-hash", "--", l[0], l[1])
	assert.NoError(t, err)
}

func TestTokenIssueAndInspect(t *testing.T) {
	path := writeSQLiteConfig(t)

	out, err := run(t, "--config", path, "token", "issue",
		"--name", "alice", "--client", "client1", "--redirect-uri", "https://app.example.com/cb")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	// Generated values may start with a dash, so they follow "--".
	out, err = run(t, "--config", path, "token", "inspect", "--", token)
	require.NoError(t, err)
	assert.Contains(t, out, `"alice"`)

	out, err = run(t, "--config", path, "token", "issue", "--kind", "code",
		"--name", "alice", "--client", "client1", "--redirect-uri", "https://app.example.com/cb")
	require.NoError(t, err)
	code := strings.TrimSpace(out)

	_, err = run(t, "--config", path, "token", "inspect", "--kind", "code",
		"--redirect-uri", "https://app.example.com/cb", "--", code)
	require.NoError(t, err)
	_, err = run(t, "--config", path, "token", "inspect", "--kind", "code",
		"--redirect-uri", "https://app.example.com/cb", "--", code)
	assert.Error(t, err, "codes are single use")

	_, err = run(t, "--config", path, "token", "revoke", "--", token)
	require.NoError(t, err)
	_, err = run(t, "--config", path, "token", "inspect", "--", token)
	assert.Error(t, err)

	_, err = run(t, "--config", path, "token", "issue", "--kind", "bogus", "--name", "alice")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err, "existing file is not overwritten")
	_, err = run(t, "config", "init", path, "--force")
	require.NoError(t, err)

	out, err = run(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Storage: memory")
}

func TestTokenCommands_RequirePersistentStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Write(path, authserver.DefaultConfig()))

	for _, args := range [][]string{
		{"token", "issue", "--name", "alice", "--client", "client1"},
		{"token", "inspect", "--", "value"},
		{"token", "revoke", "--client", "client1"},
	} {
		_, err := run(t, append([]string{"--config", path}, args...)...)
		require.Error(t, err, "%v", args)
		assert.Contains(t, err.Error(), "persistent storage")
	}
}
