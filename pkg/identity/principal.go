// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Principal is the subject of a request: a primary identity optionally
// followed by delegated identities.
//
// A nil *Principal behaves as the anonymous principal.
type Principal struct {
	identities []*Identity
}

var anonymousPrincipal = &Principal{identities: []*Identity{anonymousIdentity}}

// NewPrincipal creates a principal. A nil primary identity is replaced by the
// anonymous identity.
func NewPrincipal(primary *Identity, more ...*Identity) *Principal {
	if primary == nil {
		primary = anonymousIdentity
	}
	ids := make([]*Identity, 0, 1+len(more))
	ids = append(ids, primary)
	for _, id := range more {
		if id != nil {
			ids = append(ids, id)
		}
	}
	return &Principal{identities: ids}
}

// Anonymous returns the shared unauthenticated principal.
func Anonymous() *Principal {
	return anonymousPrincipal
}

// Identity returns the primary identity.
func (p *Principal) Identity() *Identity {
	if p == nil || len(p.identities) == 0 {
		return anonymousIdentity
	}
	return p.identities[0]
}

// Identities returns all identities, primary first.
func (p *Principal) Identities() []*Identity {
	if p == nil || len(p.identities) == 0 {
		return []*Identity{anonymousIdentity}
	}
	return slices.Clone(p.identities)
}

// Name returns the primary identity's name.
func (p *Principal) Name() string {
	return p.Identity().Name()
}

// IsAuthenticated reports whether the primary identity is authenticated.
func (p *Principal) IsAuthenticated() bool {
	return p.Identity().IsAuthenticated()
}

// IsAnonymous reports whether p is nil or the shared anonymous principal.
func (p *Principal) IsAnonymous() bool {
	return p == nil || p == anonymousPrincipal
}

// Claims returns the claims of every identity, primary first.
func (p *Principal) Claims() []Claim {
	var out []Claim
	for _, id := range p.Identities() {
		out = append(out, id.Claims()...)
	}
	return out
}

// HasClaim reports whether any identity carries the exact claim.
func (p *Principal) HasClaim(claimType, value string) bool {
	for _, id := range p.Identities() {
		if id.HasClaim(claimType, value) {
			return true
		}
	}
	return false
}

func (p *Principal) String() string {
	parts := make([]string, 0, len(p.Identities()))
	for _, id := range p.Identities() {
		parts = append(parts, "{"+id.String()+"}")
	}
	return fmt.Sprintf("Principal[%s]", strings.Join(parts, ", "))
}

type principalJSON struct {
	Identities []*Identity `json:"identities"`
}

// MarshalJSON implements json.Marshaler.
func (p *Principal) MarshalJSON() ([]byte, error) {
	return json.Marshal(principalJSON{Identities: p.Identities()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Principal) UnmarshalJSON(data []byte) error {
	if p == anonymousPrincipal {
		return ErrImmutable
	}

	var raw principalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw.Identities = slices.DeleteFunc(raw.Identities, func(id *Identity) bool { return id == nil })
	if len(raw.Identities) == 0 {
		raw.Identities = []*Identity{anonymousIdentity}
	}
	p.identities = raw.Identities
	return nil
}

// Encode serializes a principal for storage.
func Encode(p *Principal) ([]byte, error) {
	return json.Marshal(p)
}

// Decode restores a principal produced by Encode.
func Decode(data []byte) (*Principal, error) {
	p := &Principal{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode principal: %w", err)
	}
	return p, nil
}
