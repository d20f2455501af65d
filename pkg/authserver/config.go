// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"fmt"
	"time"

	"github.com/stacklok/sentinel/pkg/authserver/directory"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/authserver/tokens"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/errors"
)

// Config is the complete engine configuration. It is read once when the
// Server is built.
type Config struct {
	// AccessTokenLifetime is how long access tokens are valid.
	// If zero, defaults to 1 hour.
	AccessTokenLifetime time.Duration `mapstructure:"access_token_lifetime" yaml:"access_token_lifetime"`

	// AuthorizationCodeLifetime is how long authorization codes are valid.
	// If zero, defaults to 5 minutes.
	AuthorizationCodeLifetime time.Duration `mapstructure:"authorization_code_lifetime" yaml:"authorization_code_lifetime"`

	// RefreshTokenLifetime is how long refresh tokens are valid.
	// If zero, defaults to 90 days.
	RefreshTokenLifetime time.Duration `mapstructure:"refresh_token_lifetime" yaml:"refresh_token_lifetime"`

	// MaximumClockSkew bounds signature digest timestamps.
	// If zero, defaults to 300s; zero cannot express "no tolerance", use a
	// small positive value such as 1ns instead.
	MaximumClockSkew time.Duration `mapstructure:"maximum_clock_skew" yaml:"maximum_clock_skew"`

	// SaltByteSize is the salt length of salted hashes.
	SaltByteSize int `mapstructure:"salt_byte_size" yaml:"salt_byte_size"`

	// HashAlgorithm is one of SHA256, SHA384 or SHA512.
	HashAlgorithm crypto.HashAlgorithm `mapstructure:"hash_algorithm" yaml:"hash_algorithm"`

	// TokenBits is the amount of random text in minted codes and tokens.
	// If zero, defaults to 256.
	TokenBits int `mapstructure:"token_bits" yaml:"token_bits"`

	// RotateRefreshTokens makes refresh tokens single-use.
	RotateRefreshTokens bool `mapstructure:"rotate_refresh_tokens" yaml:"rotate_refresh_tokens"`

	// TicketEncryptionKey encrypts stored principals when set.
	TicketEncryptionKey string `mapstructure:"ticket_encryption_key" yaml:"ticket_encryption_key,omitempty"`

	// Storage selects the repository backend.
	Storage storage.Config `mapstructure:"storage" yaml:"storage"`

	// Users are registered with the static directory at startup.
	Users []UserConfig `mapstructure:"users" yaml:"users,omitempty"`

	// Clients are registered with the static directory at startup.
	Clients []ClientConfig `mapstructure:"clients" yaml:"clients,omitempty"`
}

// UserConfig describes a pre-registered user.
type UserConfig struct {
	Username string `mapstructure:"username" yaml:"username"`

	// PasswordHash is a bcrypt hash.
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash"`

	Roles []string `mapstructure:"roles" yaml:"roles,omitempty"`
}

// ClientConfig describes a pre-registered OAuth client.
type ClientConfig struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name,omitempty"`

	// SecretHash is a salted hash as printed by "sentinel secret".
	SecretHash string `mapstructure:"secret_hash" yaml:"secret_hash,omitempty"`

	RedirectURIs []string `mapstructure:"redirect_uris" yaml:"redirect_uris,omitempty"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes,omitempty"`

	// PublicKey is a JWK used for signature authentication.
	PublicKey string `mapstructure:"public_key" yaml:"public_key,omitempty"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		AccessTokenLifetime:       tokens.DefaultAccessTokenLifetime,
		AuthorizationCodeLifetime: tokens.DefaultAuthorizationCodeLifetime,
		RefreshTokenLifetime:      tokens.DefaultRefreshTokenLifetime,
		MaximumClockSkew:          tokens.DefaultMaximumClockSkew,
		SaltByteSize:              crypto.DefaultSaltByteSize,
		HashAlgorithm:             crypto.SHA512,
		TokenBits:                 tokens.DefaultTokenBits,
		Storage:                   *storage.DefaultConfig(),
	}
}

// TokensConfig returns the engine tunables.
func (c *Config) TokensConfig() tokens.Config {
	return tokens.Config{
		AccessTokenLifetime:       c.AccessTokenLifetime,
		AuthorizationCodeLifetime: c.AuthorizationCodeLifetime,
		RefreshTokenLifetime:      c.RefreshTokenLifetime,
		MaximumClockSkew:          c.MaximumClockSkew,
		TokenBits:                 c.TokenBits,
		RotateRefreshTokens:       c.RotateRefreshTokens,
		TicketEncryptionKey:       c.TicketEncryptionKey,
	}
}

// Validate checks the configuration. Zero durations and sizes are accepted
// and replaced by defaults when the Server is built.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewInvalidArgumentError("config cannot be nil", nil)
	}
	if c.HashAlgorithm != "" {
		if _, err := crypto.ParseHashAlgorithm(string(c.HashAlgorithm)); err != nil {
			return err
		}
	}
	if c.SaltByteSize < 0 {
		return errors.NewInvalidArgumentError(fmt.Sprintf("salt byte size cannot be negative, got %d", c.SaltByteSize), nil)
	}

	tc := c.TokensConfig().WithDefaults()
	if err := tc.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Clients))
	for _, cl := range c.Clients {
		if cl.ID == "" {
			return errors.NewInvalidArgumentError("client id is required", nil)
		}
		if _, dup := seen[cl.ID]; dup {
			return errors.NewInvalidArgumentError(fmt.Sprintf("duplicate client %q", cl.ID), nil)
		}
		seen[cl.ID] = struct{}{}
		for _, uri := range cl.RedirectURIs {
			if err := directory.ValidateRedirectURI(uri); err != nil {
				return err
			}
		}
	}
	for _, u := range c.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return errors.NewInvalidArgumentError("users need a username and a password hash", nil)
		}
	}
	return nil
}

// NewProvider builds the crypto provider described by the hash settings of
// cfg. An empty algorithm selects SHA512 and a zero salt size keeps the
// provider default. opts are applied after the salt size.
func NewProvider(cfg *Config, opts ...crypto.SHA2Option) (*crypto.SHA2Provider, error) {
	if cfg == nil {
		return nil, errors.NewInvalidArgumentError("config cannot be nil", nil)
	}
	alg := crypto.SHA512
	if cfg.HashAlgorithm != "" {
		parsed, err := crypto.ParseHashAlgorithm(string(cfg.HashAlgorithm))
		if err != nil {
			return nil, err
		}
		alg = parsed
	}
	var providerOpts []crypto.SHA2Option
	if cfg.SaltByteSize > 0 {
		providerOpts = append(providerOpts, crypto.WithSaltByteSize(cfg.SaltByteSize))
	}
	return crypto.NewSHA2Provider(alg, append(providerOpts, opts...)...)
}
