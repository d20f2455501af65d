// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import "fmt"

// External is an identity produced outside this package, for example by an
// HTTP middleware or an upstream identity provider. The set of variants is
// closed: NamedIdentity, ClaimsIdentity and *Identity.
type External interface {
	external()
}

// NamedIdentity carries only an authentication type and a name.
type NamedIdentity struct {
	AuthenticationType string
	Name               string
}

// ClaimsIdentity carries an authentication type and a full claim set.
type ClaimsIdentity struct {
	AuthenticationType string
	Claims             []Claim
}

func (NamedIdentity) external()  {}
func (ClaimsIdentity) external() {}
func (*Identity) external()      {}

// FromExternal converts an external identity into an Identity. An *Identity
// is copied so the caller's instance is never shared.
func FromExternal(ext External) (*Identity, error) {
	switch v := ext.(type) {
	case NamedIdentity:
		if v.Name == "" {
			return NewIdentity(v.AuthenticationType), nil
		}
		return NewIdentity(v.AuthenticationType, NewClaim(ClaimTypeName, v.Name)), nil
	case ClaimsIdentity:
		return NewIdentity(v.AuthenticationType, v.Claims...), nil
	case *Identity:
		if v.IsAnonymous() {
			return anonymousIdentity, nil
		}
		return v.WithClaims(), nil
	default:
		return nil, fmt.Errorf("unsupported external identity %T", ext)
	}
}
