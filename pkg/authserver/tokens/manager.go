// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tokens issues and redeems authorization codes, access tokens and
// refresh tokens on top of a storage.Repository.
//
// Minted values are random text from the crypto provider. Only the unsalted
// hash of a value is stored, so a leaked repository does not leak bearer
// values. Every Authenticate method reports a rejected credential by
// returning the anonymous principal with a nil error; errors mean the
// caller broke an input contract or a backend failed.
package tokens

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/sentinel/pkg/authserver/directory"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/digest"
	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/identity"
	"github.com/stacklok/sentinel/pkg/logger"
)

// maxMintAttempts bounds retries when a freshly minted key collides with an
// existing record.
const maxMintAttempts = 3

// Manager is the token engine. It is safe for concurrent use.
type Manager struct {
	repo     storage.Repository
	provider crypto.Provider
	users    directory.UserManager
	clients  directory.ClientManager
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the engine tunables. Zero fields take their defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithUserManager enables user authentication and principal re-validation
// on refresh.
func WithUserManager(um directory.UserManager) Option {
	return func(m *Manager) {
		m.users = um
	}
}

// WithClientManager enables the client authentication delegations.
func WithClientManager(cm directory.ClientManager) Option {
	return func(m *Manager) {
		m.clients = cm
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a Manager.
func New(repo storage.Repository, provider crypto.Provider, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, errors.NewInvalidArgumentError("repository is required", nil)
	}
	if provider == nil {
		return nil, errors.NewInvalidArgumentError("crypto provider is required", nil)
	}

	m := &Manager{
		repo:     repo,
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cfg.applyDefaults()
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	m.log = logger.OrDiscard(m.log)
	return m, nil
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

type kindOps struct {
	insert func(context.Context, *storage.Record) (bool, error)
	get    func(context.Context, string) (*storage.Record, error)
	remove func(context.Context, string) (bool, error)
}

func (m *Manager) ops(kind storage.Kind) kindOps {
	switch kind {
	case storage.KindAuthorizationCode:
		return kindOps{m.repo.InsertAuthorizationCode, m.repo.GetAuthorizationCode, m.repo.DeleteAuthorizationCode}
	case storage.KindAccessToken:
		return kindOps{m.repo.InsertAccessToken, m.repo.GetAccessToken, m.repo.DeleteAccessToken}
	default:
		return kindOps{m.repo.InsertRefreshToken, m.repo.GetRefreshToken, m.repo.DeleteRefreshToken}
	}
}

// repositoryError keeps typed repository errors and wraps anything else.
func repositoryError(msg string, err error) error {
	if errors.IsRepository(err) {
		return err
	}
	return errors.NewRepositoryError(msg, err)
}

// keyFor derives the repository key of a minted value.
func (m *Manager) keyFor(value string) (string, error) {
	return m.provider.CreateHash(value, false)
}

func (m *Manager) sealPrincipal(p *identity.Principal) ([]byte, error) {
	data, err := identity.Encode(p)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode principal", err)
	}
	if m.cfg.TicketEncryptionKey == "" {
		return data, nil
	}
	ticket, err := m.provider.Encrypt(string(data), m.cfg.TicketEncryptionKey)
	if err != nil {
		return nil, err
	}
	return []byte(ticket), nil
}

func (m *Manager) openPrincipal(data []byte) (*identity.Principal, error) {
	if m.cfg.TicketEncryptionKey != "" {
		plain, err := m.provider.Decrypt(string(data), m.cfg.TicketEncryptionKey)
		if err != nil {
			return nil, err
		}
		data = []byte(plain)
	}
	p, err := identity.Decode(data)
	if err != nil {
		return nil, errors.NewRepositoryError("stored principal is corrupt", err)
	}
	return p, nil
}

func (m *Manager) mint(
	ctx context.Context,
	kind storage.Kind,
	p *identity.Principal,
	lifetime time.Duration,
	clientID, redirectURI string,
) (string, error) {
	if !p.IsAuthenticated() {
		return "", errors.NewInvalidArgumentError("principal must be authenticated", nil)
	}
	payload, err := m.sealPrincipal(p)
	if err != nil {
		return "", err
	}

	ops := m.ops(kind)
	for range maxMintAttempts {
		value, err := m.provider.GenerateText(m.cfg.TokenBits)
		if err != nil {
			return "", err
		}
		key, err := m.keyFor(value)
		if err != nil {
			return "", err
		}

		now := m.now()
		record := &storage.Record{
			Key:         key,
			Principal:   payload,
			ValidTo:     now.Add(lifetime),
			CreatedAt:   now,
			ClientID:    clientID,
			RedirectURI: redirectURI,
			TicketID:    uuid.NewString(),
		}
		ok, err := ops.insert(ctx, record)
		if err != nil {
			return "", repositoryError("failed to store "+string(kind)+" record", err)
		}
		if ok {
			m.log.DebugContext(ctx, "issued token",
				"kind", kind,
				"ticket_id", record.TicketID,
				"client_id", clientID,
				"valid_to", record.ValidTo,
			)
			return value, nil
		}
		m.log.WarnContext(ctx, "minted key collided with an existing record", "kind", kind)
	}
	return "", errors.NewInternalError("failed to mint a unique "+string(kind)+" value", nil)
}

// CreateAuthorizationCode issues a single-use code bound to redirectURI.
func (m *Manager) CreateAuthorizationCode(
	ctx context.Context,
	p *identity.Principal,
	lifetime time.Duration,
	redirectURI string,
) (string, error) {
	if redirectURI == "" {
		return "", errors.NewInvalidArgumentError("redirect uri is required", nil)
	}
	clientID := ""
	if c, ok := p.Identity().FindFirst(identity.ClaimTypeClient); ok {
		clientID = c.Value
	}
	return m.mint(ctx, storage.KindAuthorizationCode, p, lifetime, clientID, redirectURI)
}

// AuthenticateAuthorizationCode redeems a code. The code is removed from the
// repository before any other check, so it cannot be redeemed twice even by
// concurrent callers, and a code that fails a check is still consumed.
func (m *Manager) AuthenticateAuthorizationCode(ctx context.Context, redirectURI, code string) (*identity.Principal, error) {
	if code == "" {
		return nil, errors.NewInvalidArgumentError("authorization code is required", nil)
	}
	key, err := m.keyFor(code)
	if err != nil {
		return nil, err
	}

	record, err := m.repo.GetAuthorizationCode(ctx, key)
	if err != nil {
		return nil, repositoryError("failed to read authorization code", err)
	}
	if record == nil {
		return m.reject(ctx, storage.KindAuthorizationCode, "not found")
	}

	// Nothing is consumed if the caller gave up before the delete.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	removed, err := m.repo.DeleteAuthorizationCode(ctx, key)
	if err != nil {
		return nil, repositoryError("failed to consume authorization code", err)
	}
	if !removed {
		return m.reject(ctx, storage.KindAuthorizationCode, "already consumed")
	}

	if record.Expired(m.now()) {
		return m.reject(ctx, storage.KindAuthorizationCode, "expired")
	}
	if record.RedirectURI != redirectURI {
		return m.reject(ctx, storage.KindAuthorizationCode, "redirect uri mismatch")
	}
	return m.principalFrom(ctx, storage.KindAuthorizationCode, record)
}

// CreateAccessToken issues an access token.
func (m *Manager) CreateAccessToken(
	ctx context.Context,
	p *identity.Principal,
	lifetime time.Duration,
	clientID, redirectURI string,
) (string, error) {
	if clientID == "" {
		return "", errors.NewInvalidArgumentError("client id is required", nil)
	}
	return m.mint(ctx, storage.KindAccessToken, p, lifetime, clientID, redirectURI)
}

// AuthenticateAccessToken returns the principal an access token was issued
// for. Access tokens can be presented repeatedly until they expire.
func (m *Manager) AuthenticateAccessToken(ctx context.Context, token string) (*identity.Principal, error) {
	if token == "" {
		return nil, errors.NewInvalidArgumentError("access token is required", nil)
	}
	record, key, err := m.lookup(ctx, storage.KindAccessToken, token)
	if err != nil || record == nil {
		return m.rejectOr(ctx, storage.KindAccessToken, err)
	}
	if record.Expired(m.now()) {
		m.discard(ctx, storage.KindAccessToken, key)
		return m.reject(ctx, storage.KindAccessToken, "expired")
	}
	return m.principalFrom(ctx, storage.KindAccessToken, record)
}

// CreateRefreshToken issues a refresh token bound to clientID and redirectURI.
func (m *Manager) CreateRefreshToken(
	ctx context.Context,
	p *identity.Principal,
	lifetime time.Duration,
	clientID, redirectURI string,
) (string, error) {
	if clientID == "" {
		return "", errors.NewInvalidArgumentError("client id is required", nil)
	}
	return m.mint(ctx, storage.KindRefreshToken, p, lifetime, clientID, redirectURI)
}

// AuthenticateRefreshToken redeems a refresh token. The client and redirect
// URI must match the values the token was issued with. With rotation enabled
// the token is consumed on success.
func (m *Manager) AuthenticateRefreshToken(ctx context.Context, clientID, token, redirectURI string) (*identity.Principal, error) {
	if clientID == "" {
		return nil, errors.NewInvalidArgumentError("client id is required", nil)
	}
	if token == "" {
		return nil, errors.NewInvalidArgumentError("refresh token is required", nil)
	}
	record, key, err := m.lookup(ctx, storage.KindRefreshToken, token)
	if err != nil || record == nil {
		return m.rejectOr(ctx, storage.KindRefreshToken, err)
	}
	if record.Expired(m.now()) {
		m.discard(ctx, storage.KindRefreshToken, key)
		return m.reject(ctx, storage.KindRefreshToken, "expired")
	}
	// One reason for both mismatches.
	if record.ClientID != clientID || record.RedirectURI != redirectURI {
		return m.reject(ctx, storage.KindRefreshToken, "binding mismatch")
	}

	p, err := m.principalFrom(ctx, storage.KindRefreshToken, record)
	if err != nil || !p.IsAuthenticated() {
		return p, err
	}
	if p, err = m.revalidate(ctx, p); err != nil || !p.IsAuthenticated() {
		return p, err
	}

	if m.cfg.RotateRefreshTokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		removed, err := m.repo.DeleteRefreshToken(ctx, key)
		if err != nil {
			return nil, repositoryError("failed to rotate refresh token", err)
		}
		if !removed {
			return m.reject(ctx, storage.KindRefreshToken, "already rotated")
		}
	}
	return p, nil
}

// revalidate asks the user manager whether the user behind p still exists.
// Principals without a subject (client principals) are returned unchanged.
func (m *Manager) revalidate(ctx context.Context, p *identity.Principal) (*identity.Principal, error) {
	if m.users == nil {
		return p, nil
	}
	sub, ok := p.Identity().FindFirst(identity.ClaimTypeSubject)
	if !ok {
		return p, nil
	}
	current, err := m.users.ValidateUser(ctx, sub.Value)
	if err != nil {
		return nil, err
	}
	if !current.IsAuthenticated() {
		return m.reject(ctx, storage.KindRefreshToken, "user no longer valid")
	}
	return p, nil
}

// RevokeAccessToken deletes an access token. It reports whether the token existed.
func (m *Manager) RevokeAccessToken(ctx context.Context, token string) (bool, error) {
	return m.revoke(ctx, storage.KindAccessToken, token)
}

// RevokeRefreshToken deletes a refresh token. It reports whether the token existed.
func (m *Manager) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	return m.revoke(ctx, storage.KindRefreshToken, token)
}

func (m *Manager) revoke(ctx context.Context, kind storage.Kind, token string) (bool, error) {
	if token == "" {
		return false, errors.NewInvalidArgumentError(string(kind)+" token is required", nil)
	}
	key, err := m.keyFor(token)
	if err != nil {
		return false, err
	}
	removed, err := m.ops(kind).remove(ctx, key)
	if err != nil {
		return false, repositoryError("failed to revoke "+string(kind)+" token", err)
	}
	return removed, nil
}

// RevokeClientTokens deletes every code and token issued to clientID. The
// repository must implement storage.ClientRevoker.
func (m *Manager) RevokeClientTokens(ctx context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, errors.NewInvalidArgumentError("client id is required", nil)
	}
	revoker, ok := m.repo.(storage.ClientRevoker)
	if !ok {
		return 0, storage.ErrUnsupported
	}
	n, err := revoker.DeleteTokensForClient(ctx, clientID)
	if err != nil {
		if errors.IsUnsupported(err) {
			return 0, err
		}
		return 0, repositoryError("failed to revoke client tokens", err)
	}
	m.log.InfoContext(ctx, "revoked client tokens", "client_id", clientID, "count", n)
	return n, nil
}

// PurgeExpired sweeps expired records when the repository supports it.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	purger, ok := m.repo.(storage.Purger)
	if !ok {
		return 0, storage.ErrUnsupported
	}
	n, err := purger.PurgeExpired(ctx, m.now())
	if err != nil {
		if errors.IsUnsupported(err) {
			return 0, err
		}
		return 0, repositoryError("failed to purge expired records", err)
	}
	return n, nil
}

// AuthenticateUser delegates to the configured user manager.
func (m *Manager) AuthenticateUser(ctx context.Context, username, password string) (*identity.Principal, error) {
	if m.users == nil {
		return nil, errors.NewUnsupportedError("no user manager configured", nil)
	}
	return m.users.AuthenticateUser(ctx, username, password)
}

// AuthenticateClient delegates the authorization_code client lookup.
func (m *Manager) AuthenticateClient(ctx context.Context, clientID, redirectURI string) (*identity.Principal, error) {
	if m.clients == nil {
		return nil, errors.NewUnsupportedError("no client manager configured", nil)
	}
	return m.clients.AuthenticateClient(ctx, clientID, redirectURI)
}

// AuthenticateClientScopes delegates the client_credentials scope check.
func (m *Manager) AuthenticateClientScopes(ctx context.Context, clientID string, scopes []string) (*identity.Principal, error) {
	if m.clients == nil {
		return nil, errors.NewUnsupportedError("no client manager configured", nil)
	}
	return m.clients.AuthenticateClientScopes(ctx, clientID, scopes)
}

// AuthenticateClientCredentials delegates shared-secret verification.
func (m *Manager) AuthenticateClientCredentials(ctx context.Context, d digest.BasicDigest) (*identity.Principal, error) {
	if m.clients == nil {
		return nil, errors.NewUnsupportedError("no client manager configured", nil)
	}
	return m.clients.AuthenticateClientCredentials(ctx, d)
}

// AuthenticateClientWithSignature rejects digests whose timestamp is outside
// MaximumClockSkew and delegates the signature check to the client manager.
func (m *Manager) AuthenticateClientWithSignature(ctx context.Context, d digest.SignatureDigest) (*identity.Principal, error) {
	if m.clients == nil {
		return nil, errors.NewUnsupportedError("no client manager configured", nil)
	}
	if !d.WithinSkew(m.now(), m.cfg.MaximumClockSkew) {
		m.log.DebugContext(ctx, "client signature rejected", "client_id", d.ID, "reason", "timestamp outside clock skew")
		return identity.Anonymous(), nil
	}
	return m.clients.AuthenticateClientWithSignature(ctx, d)
}

func (m *Manager) lookup(ctx context.Context, kind storage.Kind, value string) (*storage.Record, string, error) {
	key, err := m.keyFor(value)
	if err != nil {
		return nil, "", err
	}
	record, err := m.ops(kind).get(ctx, key)
	if err != nil {
		return nil, "", repositoryError("failed to read "+string(kind)+" record", err)
	}
	return record, key, nil
}

// discard removes an expired record. Failures only cost a later sweep.
func (m *Manager) discard(ctx context.Context, kind storage.Kind, key string) {
	if _, err := m.ops(kind).remove(ctx, key); err != nil {
		m.log.WarnContext(ctx, "failed to remove expired record", "kind", kind, "error", err)
	}
}

func (m *Manager) principalFrom(ctx context.Context, kind storage.Kind, record *storage.Record) (*identity.Principal, error) {
	p, err := m.openPrincipal(record.Principal)
	if err != nil {
		return nil, err
	}
	if !p.IsAuthenticated() {
		return m.reject(ctx, kind, "stored principal is anonymous")
	}
	return p, nil
}

func (m *Manager) reject(ctx context.Context, kind storage.Kind, reason string) (*identity.Principal, error) {
	m.log.DebugContext(ctx, "credential rejected", "kind", kind, "reason", reason)
	return identity.Anonymous(), nil
}

func (m *Manager) rejectOr(ctx context.Context, kind storage.Kind, err error) (*identity.Principal, error) {
	if err != nil {
		return nil, err
	}
	return m.reject(ctx, kind, "not found")
}
