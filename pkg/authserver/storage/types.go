// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage provides the token repository contract and its backends
// for the authorization engine.
package storage

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=types.go Repository,ClientRevoker,Purger

import (
	"context"
	"slices"
	"time"

	"github.com/stacklok/sentinel/pkg/errors"
)

// Kind distinguishes the three token record families sharing one shape.
type Kind string

const (
	// KindAuthorizationCode identifies single-use authorization codes.
	KindAuthorizationCode Kind = "authcode"

	// KindAccessToken identifies bearer access tokens.
	KindAccessToken Kind = "access"

	// KindRefreshToken identifies refresh tokens.
	KindRefreshToken Kind = "refresh"
)

// Kinds lists every record kind.
var Kinds = []Kind{KindAuthorizationCode, KindAccessToken, KindRefreshToken}

// ErrUnsupported is returned when a decorated repository lacks an optional
// capability.
var ErrUnsupported = errors.NewUnsupportedError("repository does not support this operation", nil)

// Record is a persisted authorization code or token.
type Record struct {
	// Key is the lookup key. The engine stores a digest of the issued value
	// here, never the bearer value itself.
	Key string `json:"key"`

	// Principal is the serialized principal, optionally encrypted.
	Principal []byte `json:"principal"`

	// ValidTo is the instant the record stops being usable.
	ValidTo time.Time `json:"valid_to"`

	// CreatedAt is when the record was issued.
	CreatedAt time.Time `json:"created_at"`

	// ClientID binds access and refresh tokens to a client.
	ClientID string `json:"client_id,omitempty"`

	// RedirectURI binds the record to the redirect URI it was issued for.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// TicketID is an optional correlation identifier.
	TicketID string `json:"ticket_id,omitempty"`
}

// Expired reports whether the record is no longer valid at now. A record is
// expired at exactly ValidTo.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ValidTo)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Principal = slices.Clone(r.Principal)
	return &c
}

// Validate checks the fields every backend relies on.
func (r *Record) Validate() error {
	if r == nil {
		return errors.NewInvalidArgumentError("record cannot be nil", nil)
	}
	if r.Key == "" {
		return errors.NewInvalidArgumentError("record key cannot be empty", nil)
	}
	if r.ValidTo.IsZero() {
		return errors.NewInvalidArgumentError("record expiry cannot be zero", nil)
	}
	return nil
}

// Repository persists authorization codes, access tokens and refresh tokens.
//
// Get methods return (nil, nil) when the key is absent. Delete methods are
// idempotent and report true only to the caller that actually removed the
// record, which is what makes authorization code redemption single-use.
// Insert reports false when the key already exists. Backend failures are
// returned as repository errors.
type Repository interface {
	InsertAuthorizationCode(ctx context.Context, record *Record) (bool, error)
	GetAuthorizationCode(ctx context.Context, key string) (*Record, error)
	DeleteAuthorizationCode(ctx context.Context, key string) (bool, error)

	InsertAccessToken(ctx context.Context, record *Record) (bool, error)
	GetAccessToken(ctx context.Context, key string) (*Record, error)
	DeleteAccessToken(ctx context.Context, key string) (bool, error)

	InsertRefreshToken(ctx context.Context, record *Record) (bool, error)
	GetRefreshToken(ctx context.Context, key string) (*Record, error)
	DeleteRefreshToken(ctx context.Context, key string) (bool, error)
}

// ClientRevoker is implemented by repositories that can delete every token
// issued to a client.
type ClientRevoker interface {
	// DeleteTokensForClient removes all access tokens, refresh tokens and
	// authorization codes bound to clientID and returns how many were removed.
	DeleteTokensForClient(ctx context.Context, clientID string) (int, error)
}

// Purger is implemented by repositories that can sweep expired records.
type Purger interface {
	// PurgeExpired removes every record expired at now and returns the count.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
