// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_IsAuthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity *Identity
		want     bool
	}{
		{"name and type", NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice")), true},
		{"missing type", NewIdentity("", NewClaim(ClaimTypeName, "alice")), false},
		{"missing name", NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeRole, "admin")), false},
		{"empty name", NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "")), false},
		{"anonymous", AnonymousIdentity(), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.identity.IsAuthenticated())
		})
	}
}

func TestIdentity_NameUsesFirstClaim(t *testing.T) {
	t.Parallel()

	id := NewIdentity(AuthenticationTypeBasic,
		NewClaim(ClaimTypeRole, "reader"),
		NewClaim(ClaimTypeName, "alice"),
		NewClaim(ClaimTypeName, "bob"),
	)

	assert.Equal(t, "alice", id.Name())
	assert.Len(t, id.FindAll(ClaimTypeName), 2)
	assert.True(t, id.HasClaim(ClaimTypeName, "bob"))
	assert.False(t, id.HasClaim(ClaimTypeName, "carol"))
}

func TestIdentity_AuthenticationFollowsClaims(t *testing.T) {
	t.Parallel()

	id := NewIdentity(AuthenticationTypeOAuth)
	assert.False(t, id.IsAuthenticated())

	require.NoError(t, id.AddClaim(NewClaim(ClaimTypeName, "alice")))
	assert.True(t, id.IsAuthenticated())

	removed, err := id.RemoveClaim(func(c Claim) bool { return c.Type == ClaimTypeName })
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, id.IsAuthenticated())

	removed, err = id.RemoveClaim(func(c Claim) bool { return c.Type == ClaimTypeName })
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestIdentity_ClaimsReturnsCopy(t *testing.T) {
	t.Parallel()

	id := NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice"))
	claims := id.Claims()
	claims[0].Value = "mallory"

	assert.Equal(t, "alice", id.Name())
}

func TestIdentity_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice"))
	withRole := base.WithClaims(NewClaim(ClaimTypeRole, "admin"))
	withoutName := withRole.WithoutClaims(func(c Claim) bool { return c.Type == ClaimTypeName })

	assert.Len(t, base.Claims(), 1)
	assert.Len(t, withRole.Claims(), 2)
	assert.Equal(t, []Claim{NewClaim(ClaimTypeRole, "admin")}, withoutName.Claims())
	assert.True(t, withRole.IsAuthenticated())
	assert.False(t, withoutName.IsAuthenticated())
}

func TestIdentity_AnonymousIsImmutable(t *testing.T) {
	t.Parallel()

	anon := AnonymousIdentity()

	assert.ErrorIs(t, anon.AddClaim(NewClaim(ClaimTypeName, "mallory")), ErrImmutable)
	_, err := anon.RemoveClaim(func(Claim) bool { return true })
	assert.ErrorIs(t, err, ErrImmutable)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"authentication_type":"OAuth"}`), anon), ErrImmutable)

	assert.Empty(t, anon.Claims())
	assert.Empty(t, anon.AuthenticationType())
	assert.False(t, anon.IsAuthenticated())

	// Copy-on-write still works from the anonymous identity.
	named := anon.WithClaims(NewClaim(ClaimTypeName, "alice"))
	assert.False(t, named.IsAnonymous())
	assert.Empty(t, anon.Claims())
}

func TestIdentity_ConcurrentMutation(t *testing.T) {
	t.Parallel()

	id := NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice"))

	const workers = 50
	var wg sync.WaitGroup
	for n := range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, id.AddClaim(NewClaim(ClaimTypeRole, fmt.Sprintf("role-%d", n))))
		}()
		go func() {
			defer wg.Done()
			_ = id.IsAuthenticated()
			_ = id.Claims()
		}()
	}
	wg.Wait()

	assert.Len(t, id.FindAll(ClaimTypeRole), workers)
	assert.Equal(t, "alice", id.Name())
}

func TestIdentity_String(t *testing.T) {
	t.Parallel()

	id := NewIdentity(AuthenticationTypeOAuth, NewClaim(ClaimTypeName, "alice"), NewClaim(ClaimTypeRole, "admin"))

	assert.Equal(t,
		"AuthenticationType: OAuth, IsAuthenticated: true, Name: alice, Claims: [name=alice, role=admin]",
		id.String())
}

func TestFromExternal(t *testing.T) {
	t.Parallel()

	source := NewIdentity(AuthenticationTypeSignature, NewClaim(ClaimTypeName, "svc"))

	tests := []struct {
		name     string
		ext      External
		wantName string
		wantType string
		wantAuth bool
	}{
		{
			name:     "named",
			ext:      NamedIdentity{AuthenticationType: "Cookie", Name: "alice"},
			wantName: "alice",
			wantType: "Cookie",
			wantAuth: true,
		},
		{
			name:     "named without name",
			ext:      NamedIdentity{AuthenticationType: "Cookie"},
			wantType: "Cookie",
		},
		{
			name: "claims",
			ext: ClaimsIdentity{
				AuthenticationType: "Bearer",
				Claims:             []Claim{NewClaim(ClaimTypeRole, "x"), NewClaim(ClaimTypeName, "bob")},
			},
			wantName: "bob",
			wantType: "Bearer",
			wantAuth: true,
		},
		{
			name:     "identity",
			ext:      source,
			wantName: "svc",
			wantType: AuthenticationTypeSignature,
			wantAuth: true,
		},
		{
			name: "anonymous",
			ext:  AnonymousIdentity(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromExternal(tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name())
			assert.Equal(t, tt.wantType, got.AuthenticationType())
			assert.Equal(t, tt.wantAuth, got.IsAuthenticated())
		})
	}

	copied, err := FromExternal(source)
	require.NoError(t, err)
	assert.NotSame(t, source, copied)

	_, err = FromExternal(nil)
	assert.Error(t, err)
}
