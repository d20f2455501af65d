// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"context"
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/digest"
	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/identity"
	"github.com/stacklok/sentinel/pkg/logger"
)

// DefaultClientSecretBits is the length of secrets generated by CreateClient.
const DefaultClientSecretBits = 256

// User is a resource owner registered with a StaticDirectory.
type User struct {
	Username     string
	PasswordHash string
	Claims       []identity.Claim
}

// Client is an OAuth client registered with a StaticDirectory.
type Client struct {
	ID   string
	Name string

	// SecretHash is a salted hash produced by the directory's crypto.Provider.
	// Clients without a secret cannot use AuthenticateClientCredentials.
	SecretHash string

	RedirectURIs []string
	Scopes       []string

	// PublicKey verifies signature digests. Optional.
	PublicKey *jose.JSONWebKey
}

// StaticDirectory is an in-memory UserManager and ClientManager.
type StaticDirectory struct {
	provider crypto.Provider
	hasher   *crypto.PasswordHasher
	log      *slog.Logger

	mu      sync.RWMutex
	users   map[string]User
	clients map[string]Client
}

var (
	_ UserManager   = (*StaticDirectory)(nil)
	_ ClientManager = (*StaticDirectory)(nil)
)

// Option configures a StaticDirectory.
type Option func(*StaticDirectory)

// WithLogger sets the logger used for rejected authentications.
func WithLogger(l *slog.Logger) Option {
	return func(d *StaticDirectory) {
		d.log = l
	}
}

// WithPasswordHasher overrides the bcrypt hasher used for user passwords.
func WithPasswordHasher(h *crypto.PasswordHasher) Option {
	return func(d *StaticDirectory) {
		d.hasher = h
	}
}

// NewStaticDirectory creates an empty directory. provider validates client
// secrets and generates new ones.
func NewStaticDirectory(provider crypto.Provider, opts ...Option) (*StaticDirectory, error) {
	if provider == nil {
		return nil, errors.NewInvalidArgumentError("crypto provider is required", nil)
	}
	d := &StaticDirectory{
		provider: provider,
		users:    make(map[string]User),
		clients:  make(map[string]Client),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.hasher == nil {
		d.hasher = crypto.NewPasswordHasher(0)
	}
	d.log = logger.OrDiscard(d.log)
	return d, nil
}

// AddUser registers or replaces a user. The password is stored as a bcrypt hash.
func (d *StaticDirectory) AddUser(username, password string, claims ...identity.Claim) error {
	if username == "" {
		return errors.NewInvalidArgumentError("username is required", nil)
	}
	if password == "" {
		return errors.NewInvalidArgumentError("password is required", nil)
	}
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return err
	}
	return d.AddUserWithHash(username, hash, claims...)
}

// AddUserWithHash registers or replaces a user whose bcrypt hash was computed
// elsewhere, for example when loading users from a configuration file.
func (d *StaticDirectory) AddUserWithHash(username, passwordHash string, claims ...identity.Claim) error {
	if username == "" {
		return errors.NewInvalidArgumentError("username is required", nil)
	}
	if passwordHash == "" {
		return errors.NewInvalidArgumentError(fmt.Sprintf("password hash for user %q is required", username), nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[username] = User{
		Username:     username,
		PasswordHash: passwordHash,
		Claims:       slices.Clone(claims),
	}
	return nil
}

// RemoveUser deletes a user. It reports whether the user existed.
func (d *StaticDirectory) RemoveUser(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.users[username]
	delete(d.users, username)
	return ok
}

// AddClient registers or replaces a client after validating its redirect URIs.
func (d *StaticDirectory) AddClient(c Client) error {
	if c.ID == "" {
		return errors.NewInvalidArgumentError("client id is required", nil)
	}
	for _, uri := range c.RedirectURIs {
		if err := ValidateRedirectURI(uri); err != nil {
			return err
		}
	}
	if c.PublicKey != nil && !c.PublicKey.Valid() {
		return errors.NewInvalidArgumentError(fmt.Sprintf("client %q has an invalid public key", c.ID), nil)
	}

	c.RedirectURIs = slices.Clone(c.RedirectURIs)
	c.Scopes = slices.Clone(c.Scopes)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c.ID] = c
	return nil
}

// CreateClient registers c with a freshly generated secret and returns the
// plaintext secret. Only its salted hash is kept.
func (d *StaticDirectory) CreateClient(c Client) (string, error) {
	secret, hash, err := d.provider.CreateHashWithText(DefaultClientSecretBits)
	if err != nil {
		return "", err
	}
	c.SecretHash = hash
	if err := d.AddClient(c); err != nil {
		return "", err
	}
	return secret, nil
}

// RemoveClient deletes a client. It reports whether the client existed.
func (d *StaticDirectory) RemoveClient(clientID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.clients[clientID]
	delete(d.clients, clientID)
	return ok
}

// Client returns a copy of the registered client.
func (d *StaticDirectory) Client(clientID string) (Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.clients[clientID]
	return c, ok
}

func (d *StaticDirectory) user(username string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[username]
	return u, ok
}

func userPrincipal(u User, authType string) *identity.Principal {
	claims := make([]identity.Claim, 0, len(u.Claims)+2)
	claims = append(claims,
		identity.NewClaim(identity.ClaimTypeName, u.Username),
		identity.NewClaim(identity.ClaimTypeSubject, u.Username),
	)
	claims = append(claims, u.Claims...)
	return identity.NewPrincipal(identity.NewIdentity(authType, claims...))
}

func clientPrincipal(c Client, authType string, scopes []string) *identity.Principal {
	claims := make([]identity.Claim, 0, len(scopes)+2)
	claims = append(claims,
		identity.NewClaim(identity.ClaimTypeName, c.ID),
		identity.NewClaim(identity.ClaimTypeClient, c.ID),
	)
	for _, s := range scopes {
		claims = append(claims, identity.NewClaim(identity.ClaimTypeScope, s))
	}
	return identity.NewPrincipal(identity.NewIdentity(authType, claims...))
}

func (d *StaticDirectory) reject(ctx context.Context, msg string, args ...any) (*identity.Principal, error) {
	d.log.DebugContext(ctx, msg, args...)
	return identity.Anonymous(), nil
}

// AuthenticateUser verifies username and password against the bcrypt hash.
func (d *StaticDirectory) AuthenticateUser(ctx context.Context, username, password string) (*identity.Principal, error) {
	if username == "" {
		return nil, errors.NewInvalidArgumentError("username is required", nil)
	}
	u, ok := d.user(username)
	if !ok {
		return d.reject(ctx, "user authentication rejected", "username", username, "reason", "unknown user")
	}
	if !d.hasher.Verify(u.PasswordHash, password) {
		return d.reject(ctx, "user authentication rejected", "username", username, "reason", "password mismatch")
	}
	return userPrincipal(u, identity.AuthenticationTypeBasic), nil
}

// ValidateUser returns the principal of a registered user without checking a password.
func (d *StaticDirectory) ValidateUser(ctx context.Context, username string) (*identity.Principal, error) {
	if username == "" {
		return nil, errors.NewInvalidArgumentError("username is required", nil)
	}
	u, ok := d.user(username)
	if !ok {
		return d.reject(ctx, "user validation rejected", "username", username, "reason", "unknown user")
	}
	return userPrincipal(u, identity.AuthenticationTypeOAuth), nil
}

// AuthenticateClient checks that the client exists and redirectURI is registered.
func (d *StaticDirectory) AuthenticateClient(ctx context.Context, clientID, redirectURI string) (*identity.Principal, error) {
	if clientID == "" {
		return nil, errors.NewInvalidArgumentError("client id is required", nil)
	}
	c, ok := d.Client(clientID)
	if !ok {
		return d.reject(ctx, "client authentication rejected", "client_id", clientID, "reason", "unknown client")
	}
	if !slices.Contains(c.RedirectURIs, redirectURI) {
		return d.reject(ctx, "client authentication rejected", "client_id", clientID, "reason", "redirect uri mismatch")
	}
	return clientPrincipal(c, identity.AuthenticationTypeOAuth, c.Scopes), nil
}

// AuthenticateClientScopes checks that every requested scope is allowed for
// the client. An empty request grants all registered scopes.
func (d *StaticDirectory) AuthenticateClientScopes(ctx context.Context, clientID string, scopes []string) (*identity.Principal, error) {
	if clientID == "" {
		return nil, errors.NewInvalidArgumentError("client id is required", nil)
	}
	c, ok := d.Client(clientID)
	if !ok {
		return d.reject(ctx, "client scope authorization rejected", "client_id", clientID, "reason", "unknown client")
	}
	if len(scopes) == 0 {
		return clientPrincipal(c, identity.AuthenticationTypeOAuth, c.Scopes), nil
	}
	for _, s := range scopes {
		if !slices.Contains(c.Scopes, s) {
			return d.reject(ctx, "client scope authorization rejected", "client_id", clientID, "scope", s)
		}
	}
	return clientPrincipal(c, identity.AuthenticationTypeOAuth, scopes), nil
}

// AuthenticateClientCredentials validates a shared secret against the
// client's stored salted hash.
func (d *StaticDirectory) AuthenticateClientCredentials(ctx context.Context, bd digest.BasicDigest) (*identity.Principal, error) {
	if bd.ID == "" {
		return nil, errors.NewInvalidArgumentError("client id is required", nil)
	}
	c, ok := d.Client(bd.ID)
	if !ok {
		return d.reject(ctx, "client credentials rejected", "client_id", bd.ID, "reason", "unknown client")
	}
	if c.SecretHash == "" || !d.provider.ValidateHash(bd.Password, c.SecretHash) {
		return d.reject(ctx, "client credentials rejected", "client_id", bd.ID, "reason", "secret mismatch")
	}
	return clientPrincipal(c, identity.AuthenticationTypeBasic, c.Scopes), nil
}

// AuthenticateClientWithSignature verifies sd.Signature over sd.SignedData
// with the client's registered public key.
func (d *StaticDirectory) AuthenticateClientWithSignature(ctx context.Context, sd digest.SignatureDigest) (*identity.Principal, error) {
	if sd.ID == "" {
		return nil, errors.NewInvalidArgumentError("client id is required", nil)
	}
	c, ok := d.Client(sd.ID)
	if !ok {
		return d.reject(ctx, "client signature rejected", "client_id", sd.ID, "reason", "unknown client")
	}
	if c.PublicKey == nil {
		return d.reject(ctx, "client signature rejected", "client_id", sd.ID, "reason", "no public key registered")
	}
	if !verifySignature(c.PublicKey.Key, sd.SignedData, sd.Signature) {
		return d.reject(ctx, "client signature rejected", "client_id", sd.ID, "reason", "signature mismatch")
	}
	return clientPrincipal(c, identity.AuthenticationTypeSignature, c.Scopes), nil
}

// verifySignature checks sig over data. RSA and ECDSA sign the SHA-256
// digest of data; Ed25519 signs data directly.
func verifySignature(key any, data, sig []byte) bool {
	if len(sig) == 0 {
		return false
	}
	sum := sha256.Sum256(data)
	switch k := key.(type) {
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(k, stdcrypto.SHA256, sum[:], sig) == nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(k, sum[:], sig)
	case ed25519.PublicKey:
		return ed25519.Verify(k, data, sig)
	default:
		return false
	}
}

// ParsePublicKey parses a JWK. Private keys are reduced to their public half.
func ParsePublicKey(data []byte) (*jose.JSONWebKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, errors.NewInvalidArgumentError("failed to parse JWK", err)
	}
	if !jwk.IsPublic() {
		jwk = jwk.Public()
	}
	if !jwk.Valid() {
		return nil, errors.NewInvalidArgumentError("JWK does not contain a usable public key", nil)
	}
	switch jwk.Key.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
	default:
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("unsupported key type %T", jwk.Key), nil)
	}
	return &jwk, nil
}
