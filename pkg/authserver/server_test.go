// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/sentinel/pkg/authserver/directory/mocks"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/digest"
	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/identity"
)

func newTestServer(t *testing.T, cfg *Config, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithTracerProvider(tracenoop.NewTracerProvider())}, opts...)
	srv, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil)
	assert.Equal(t, *DefaultConfig(), srv.Config())
	assert.NotNil(t, srv.Tokens())
	assert.NotNil(t, srv.Directory())
	assert.NotNil(t, srv.Repository())
	assert.NotNil(t, srv.Provider())
	assert.Equal(t, time.Hour, srv.Tokens().Config().AccessTokenLifetime)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HashAlgorithm = "MD5"
	_, err := New(context.Background(), cfg)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestServer_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	srv := newTestServer(t, DefaultConfig(),
		WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))
	m := srv.Tokens()

	alice := identity.NewPrincipal(identity.NewIdentity(identity.AuthenticationTypeOAuth,
		identity.NewClaim(identity.ClaimTypeName, "alice")))

	token, err := m.CreateAccessToken(ctx, alice, time.Hour, "client1", "http://cb")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := m.AuthenticateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, "alice", p.Name())

	code, err := m.CreateAuthorizationCode(ctx, alice, srv.Config().AuthorizationCodeLifetime, "http://cb")
	require.NoError(t, err)
	p, err = m.AuthenticateAuthorizationCode(ctx, "http://cb", code)
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())
	p, err = m.AuthenticateAuthorizationCode(ctx, "http://cb", code)
	require.NoError(t, err)
	assert.False(t, p.IsAuthenticated())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics, "repository calls are instrumented")
}

func TestServer_DirectoryFromConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	provider, err := crypto.NewSHA2Provider(crypto.SHA512)
	require.NoError(t, err)
	secret, secretHash, err := provider.CreateHashWithText(256)
	require.NoError(t, err)
	passwordHash, err := crypto.NewPasswordHasher(4).Hash("wonderland")
	require.NoError(t, err)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	jwk, err := (&jose.JSONWebKey{Key: &ecKey.PublicKey}).MarshalJSON()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Users = []UserConfig{{Username: "alice", PasswordHash: passwordHash, Roles: []string{"admin"}}}
	cfg.Clients = []ClientConfig{{
		ID:           "client1",
		SecretHash:   secretHash,
		RedirectURIs: []string{"https://app.example.com/cb"},
		Scopes:       []string{"read"},
		PublicKey:    string(jwk),
	}}
	srv := newTestServer(t, cfg)
	m := srv.Tokens()

	p, err := m.AuthenticateUser(ctx, "alice", "wonderland")
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())
	assert.True(t, p.HasClaim(identity.ClaimTypeRole, "admin"))

	p, err = m.AuthenticateClientCredentials(ctx, digest.BasicDigest{ID: "client1", Password: secret})
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())

	p, err = m.AuthenticateClient(ctx, "client1", "https://app.example.com/cb")
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())

	data := []byte("client1")
	sum := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, ecKey, sum[:])
	require.NoError(t, err)
	p, err = m.AuthenticateClientWithSignature(ctx, digest.SignatureDigest{
		ID: "client1", Signature: sig, SignedData: data, Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())

	cfg.Clients[0].PublicKey = "{}"
	_, err = New(ctx, cfg)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestServer_CustomManagers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserManager(ctrl)
	users.EXPECT().AuthenticateUser(gomock.Any(), "bob", "pw").Return(identity.Anonymous(), nil)

	srv := newTestServer(t, DefaultConfig(), WithUserManager(users))
	p, err := srv.Tokens().AuthenticateUser(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.False(t, p.IsAuthenticated())
}

func TestServer_SQLiteBackendSurvivesRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Storage.Type = storage.TypeSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "sentinel.db")

	alice := identity.NewPrincipal(identity.NewIdentity(identity.AuthenticationTypeOAuth,
		identity.NewClaim(identity.ClaimTypeName, "alice")))

	first, err := New(ctx, cfg)
	require.NoError(t, err)
	token, err := first.Tokens().CreateRefreshToken(ctx, alice, time.Hour, "client1", "https://app.example.com/cb")
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "close is idempotent")

	second := newTestServer(t, cfg)
	p, err := second.Tokens().AuthenticateRefreshToken(ctx, "client1", token, "https://app.example.com/cb")
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())
}

func TestServer_RedisBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Storage.Type = storage.TypeRedis
	cfg.Storage.Redis.Addr = mr.Addr()
	cfg.Storage.CleanupInterval = 10 * time.Millisecond

	srv := newTestServer(t, cfg)
	alice := identity.NewPrincipal(identity.NewIdentity(identity.AuthenticationTypeOAuth,
		identity.NewClaim(identity.ClaimTypeName, "alice")))

	token, err := srv.Tokens().CreateAccessToken(ctx, alice, time.Hour, "client1", "http://cb")
	require.NoError(t, err)
	p, err := srv.Tokens().AuthenticateAccessToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, p.IsAuthenticated())

	n, err := srv.Tokens().RevokeClientTokens(ctx, "client1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
