// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tokens

import (
	"fmt"
	"time"

	"github.com/stacklok/sentinel/pkg/errors"
)

const (
	// DefaultAccessTokenLifetime is used when Config.AccessTokenLifetime is zero.
	DefaultAccessTokenLifetime = time.Hour

	// DefaultAuthorizationCodeLifetime is used when Config.AuthorizationCodeLifetime is zero.
	DefaultAuthorizationCodeLifetime = 5 * time.Minute

	// DefaultRefreshTokenLifetime is used when Config.RefreshTokenLifetime is zero.
	DefaultRefreshTokenLifetime = 90 * 24 * time.Hour

	// DefaultMaximumClockSkew bounds signature digest timestamps.
	DefaultMaximumClockSkew = 300 * time.Second

	// DefaultTokenBits is the length of minted codes and tokens.
	DefaultTokenBits = 256
)

// Config holds the engine tunables. It is copied into the Manager at
// construction and never changes afterwards.
type Config struct {
	// AccessTokenLifetime is how long access tokens are valid.
	// If zero, defaults to 1 hour.
	AccessTokenLifetime time.Duration

	// AuthorizationCodeLifetime is how long authorization codes are valid.
	// If zero, defaults to 5 minutes.
	AuthorizationCodeLifetime time.Duration

	// RefreshTokenLifetime is how long refresh tokens are valid.
	// If zero, defaults to 90 days.
	RefreshTokenLifetime time.Duration

	// MaximumClockSkew is the largest accepted distance between a signature
	// digest's timestamp and the current time. If zero, defaults to 300s, so
	// the tightest configurable tolerance is 1ns.
	MaximumClockSkew time.Duration

	// TokenBits is the number of bits of random text in minted values.
	// If zero, defaults to 256.
	TokenBits int

	// RotateRefreshTokens makes refresh tokens single-use.
	RotateRefreshTokens bool

	// TicketEncryptionKey, when set, encrypts stored principals.
	TicketEncryptionKey string
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.AccessTokenLifetime == 0 {
		c.AccessTokenLifetime = DefaultAccessTokenLifetime
	}
	if c.AuthorizationCodeLifetime == 0 {
		c.AuthorizationCodeLifetime = DefaultAuthorizationCodeLifetime
	}
	if c.RefreshTokenLifetime == 0 {
		c.RefreshTokenLifetime = DefaultRefreshTokenLifetime
	}
	if c.MaximumClockSkew == 0 {
		c.MaximumClockSkew = DefaultMaximumClockSkew
	}
	if c.TokenBits == 0 {
		c.TokenBits = DefaultTokenBits
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.AccessTokenLifetime < 0 {
		return errors.NewInvalidArgumentError("access token lifetime cannot be negative", nil)
	}
	if c.AuthorizationCodeLifetime < 0 {
		return errors.NewInvalidArgumentError("authorization code lifetime cannot be negative", nil)
	}
	if c.RefreshTokenLifetime < 0 {
		return errors.NewInvalidArgumentError("refresh token lifetime cannot be negative", nil)
	}
	if c.MaximumClockSkew < 0 {
		return errors.NewInvalidArgumentError("maximum clock skew cannot be negative", nil)
	}
	// Fewer than 128 bits makes minted values guessable.
	if c.TokenBits < 128 {
		return errors.NewInvalidArgumentError(fmt.Sprintf("token bits must be at least 128, got %d", c.TokenBits), nil)
	}
	return nil
}
