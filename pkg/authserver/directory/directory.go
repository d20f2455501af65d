// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package directory defines how the engine authenticates users and clients
// from raw credentials, and provides a static in-memory implementation.
package directory

//go:generate mockgen -destination=mocks/mock_directory.go -package=mocks -source=directory.go UserManager,ClientManager

import (
	"context"

	"github.com/stacklok/sentinel/pkg/digest"
	"github.com/stacklok/sentinel/pkg/identity"
)

// UserManager authenticates resource owners.
//
// Credential mismatches return the anonymous principal and a nil error;
// errors are reserved for backend failures.
type UserManager interface {
	// AuthenticateUser verifies a username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*identity.Principal, error)

	// ValidateUser checks that a previously authenticated user is still
	// valid, for example when a refresh token is redeemed.
	ValidateUser(ctx context.Context, username string) (*identity.Principal, error)
}

// ClientManager authenticates OAuth clients.
//
// Credential mismatches return the anonymous principal and a nil error;
// errors are reserved for backend failures.
type ClientManager interface {
	// AuthenticateClient looks up a client for the authorization_code grant.
	// No secret is checked; redirectURI must match a registered value.
	AuthenticateClient(ctx context.Context, clientID, redirectURI string) (*identity.Principal, error)

	// AuthenticateClientScopes authorizes scopes for the client_credentials grant.
	AuthenticateClientScopes(ctx context.Context, clientID string, scopes []string) (*identity.Principal, error)

	// AuthenticateClientCredentials verifies a shared client secret.
	AuthenticateClientCredentials(ctx context.Context, d digest.BasicDigest) (*identity.Principal, error)

	// AuthenticateClientWithSignature verifies an asymmetric signature over
	// the digest's signed data. The caller is responsible for the timestamp
	// skew check.
	AuthenticateClientWithSignature(ctx context.Context, d digest.SignatureDigest) (*identity.Principal, error)
}
