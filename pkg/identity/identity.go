// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package identity models authenticated subjects as claim-bearing identities
// grouped into principals.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Well-known claim types.
const (
	ClaimTypeName        = "name"
	ClaimTypeSubject     = "sub"
	ClaimTypeRole        = "role"
	ClaimTypeClient      = "client_id"
	ClaimTypeScope       = "scope"
	ClaimTypeRedirectURI = "redirect_uri"
)

// Authentication types recorded on identities created by the engine.
const (
	AuthenticationTypeOAuth     = "OAuth"
	AuthenticationTypeBasic     = "Basic"
	AuthenticationTypeSignature = "Signature"
)

// ErrImmutable is returned when mutating the anonymous identity.
var ErrImmutable = errors.New("identity is immutable")

// Claim is a typed fact about an identity.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewClaim returns a claim.
func NewClaim(claimType, value string) Claim {
	return Claim{Type: claimType, Value: value}
}

// Identity is a set of claims asserted by one authentication scheme.
//
// Claims are stored in a slice that is replaced, never modified, so readers
// holding a snapshot are unaffected by later mutation.
type Identity struct {
	authenticationType string

	mu     sync.RWMutex
	claims []Claim
}

var anonymousIdentity = &Identity{}

// NewIdentity creates an identity with the given claims.
func NewIdentity(authenticationType string, claims ...Claim) *Identity {
	return &Identity{
		authenticationType: authenticationType,
		claims:             slices.Clone(claims),
	}
}

// AnonymousIdentity returns the shared unauthenticated identity.
func AnonymousIdentity() *Identity {
	return anonymousIdentity
}

func (i *Identity) snapshot() []Claim {
	if i == nil {
		return nil
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.claims
}

// AuthenticationType returns the scheme that produced the identity.
func (i *Identity) AuthenticationType() string {
	if i == nil {
		return ""
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.authenticationType
}

// Claims returns a copy of the identity's claims.
func (i *Identity) Claims() []Claim {
	return slices.Clone(i.snapshot())
}

// Name returns the value of the first name claim, or "".
func (i *Identity) Name() string {
	c, _ := i.FindFirst(ClaimTypeName)
	return c.Value
}

// IsAuthenticated reports whether the identity has both an authentication
// type and a name.
func (i *Identity) IsAuthenticated() bool {
	return i.AuthenticationType() != "" && i.Name() != ""
}

// IsAnonymous reports whether i is the shared anonymous identity.
func (i *Identity) IsAnonymous() bool {
	return i == nil || i == anonymousIdentity
}

// FindFirst returns the first claim of the given type.
func (i *Identity) FindFirst(claimType string) (Claim, bool) {
	for _, c := range i.snapshot() {
		if c.Type == claimType {
			return c, true
		}
	}
	return Claim{}, false
}

// FindAll returns every claim of the given type.
func (i *Identity) FindAll(claimType string) []Claim {
	var out []Claim
	for _, c := range i.snapshot() {
		if c.Type == claimType {
			out = append(out, c)
		}
	}
	return out
}

// HasClaim reports whether the identity carries the exact claim.
func (i *Identity) HasClaim(claimType, value string) bool {
	return slices.Contains(i.snapshot(), Claim{Type: claimType, Value: value})
}

// AddClaim appends claims in place.
func (i *Identity) AddClaim(claims ...Claim) error {
	if i.IsAnonymous() {
		return ErrImmutable
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.claims = append(slices.Clip(i.claims), claims...)
	return nil
}

// RemoveClaim removes every claim for which match returns true and reports
// whether anything was removed.
func (i *Identity) RemoveClaim(match func(Claim) bool) (bool, error) {
	if i.IsAnonymous() {
		return false, ErrImmutable
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	kept := slices.DeleteFunc(slices.Clone(i.claims), match)
	if len(kept) == len(i.claims) {
		return false, nil
	}
	i.claims = kept
	return true, nil
}

// WithClaims returns a copy of the identity with claims appended.
func (i *Identity) WithClaims(claims ...Claim) *Identity {
	return &Identity{
		authenticationType: i.AuthenticationType(),
		claims:             append(i.Claims(), claims...),
	}
}

// WithoutClaims returns a copy of the identity without the matching claims.
func (i *Identity) WithoutClaims(match func(Claim) bool) *Identity {
	return &Identity{
		authenticationType: i.AuthenticationType(),
		claims:             slices.DeleteFunc(i.Claims(), match),
	}
}

func (i *Identity) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AuthenticationType: %s, IsAuthenticated: %t, Name: %s, Claims: [",
		i.AuthenticationType(), i.IsAuthenticated(), i.Name())
	for n, c := range i.snapshot() {
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", c.Type, c.Value)
	}
	b.WriteString("]")
	return b.String()
}

type identityJSON struct {
	AuthenticationType string  `json:"authentication_type"`
	Claims             []Claim `json:"claims"`
}

// MarshalJSON implements json.Marshaler.
func (i *Identity) MarshalJSON() ([]byte, error) {
	claims := i.snapshot()
	if claims == nil {
		claims = []Claim{}
	}
	return json.Marshal(identityJSON{
		AuthenticationType: i.AuthenticationType(),
		Claims:             claims,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Identity) UnmarshalJSON(data []byte) error {
	if i.IsAnonymous() {
		return ErrImmutable
	}

	var raw identityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.authenticationType = raw.AuthenticationType
	i.claims = raw.Claims
	return nil
}
