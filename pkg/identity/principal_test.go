// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipal_DelegatesToPrimary(t *testing.T) {
	t.Parallel()

	primary := NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice"))
	delegated := NewIdentity(AuthenticationTypeBasic, NewClaim(ClaimTypeName, "client1"), NewClaim(ClaimTypeClient, "client1"))

	p := NewPrincipal(primary, delegated)

	assert.Same(t, primary, p.Identity())
	assert.Equal(t, "alice", p.Name())
	assert.True(t, p.IsAuthenticated())
	assert.Len(t, p.Identities(), 2)
	assert.Len(t, p.Claims(), 3)
	assert.True(t, p.HasClaim(ClaimTypeClient, "client1"))
}

func TestPrincipal_UnauthenticatedPrimary(t *testing.T) {
	t.Parallel()

	p := NewPrincipal(NewIdentity(AuthenticationTypeOAuth), NewIdentity(AuthenticationTypeBasic, NewClaim(ClaimTypeName, "bob")))

	assert.False(t, p.IsAuthenticated())
	assert.Empty(t, p.Name())
}

func TestPrincipal_Anonymous(t *testing.T) {
	t.Parallel()

	var nilPrincipal *Principal

	for name, p := range map[string]*Principal{
		"shared":      Anonymous(),
		"nil":         nilPrincipal,
		"nil primary": NewPrincipal(nil),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, p.IsAuthenticated())
			assert.Empty(t, p.Name())
			assert.True(t, p.Identity().IsAnonymous())
		})
	}

	assert.Same(t, Anonymous(), Anonymous())
	assert.True(t, nilPrincipal.IsAnonymous())
}

func TestPrincipal_EncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := NewPrincipal(
		NewIdentity(AuthenticationTypeOAuth,
			NewClaim(ClaimTypeName, "alice"),
			NewClaim(ClaimTypeRole, "admin"),
			NewClaim(ClaimTypeRole, "reader"),
			NewClaim("custom", "ünïcødé ✓"),
		),
		NewIdentity(AuthenticationTypeBasic, NewClaim(ClaimTypeClient, "client1")),
	)

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Identities(), 2)
	for i, id := range original.Identities() {
		assert.Equal(t, id.AuthenticationType(), decoded.Identities()[i].AuthenticationType())
		assert.Equal(t, id.Claims(), decoded.Identities()[i].Claims())
	}
	assert.Equal(t, "alice", decoded.Name())
	assert.True(t, decoded.IsAuthenticated())
}

func TestPrincipal_EncodeAnonymous(t *testing.T) {
	t.Parallel()

	data, err := Encode(Anonymous())
	require.NoError(t, err)
	assert.JSONEq(t, `{"identities":[{"authentication_type":"","claims":[]}]}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.False(t, decoded.IsAuthenticated())
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	p, err := Decode([]byte(`{"identities":[]}`))
	require.NoError(t, err)
	assert.False(t, p.IsAuthenticated())
}
