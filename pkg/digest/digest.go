// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package digest defines the credential bundles clients present to prove
// their identity.
package digest

import (
	"encoding/base64"
	"strings"
	"time"
)

// Digest is a client credential. The variants are BasicDigest and
// SignatureDigest.
type Digest interface {
	UserID() string
	digest()
}

// BasicDigest is a shared-secret credential.
type BasicDigest struct {
	ID       string
	Password string
}

// UserID returns the client or user identifier.
func (d BasicDigest) UserID() string { return d.ID }

func (BasicDigest) digest() {}

// HeaderValue renders the digest as an HTTP Basic authorization value.
func (d BasicDigest) HeaderValue() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(d.ID+":"+d.Password))
}

// ParseBasicAuthorization parses an HTTP Basic authorization value.
func ParseBasicAuthorization(header string) (BasicDigest, bool) {
	scheme, encoded, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return BasicDigest{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return BasicDigest{}, false
	}
	id, password, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return BasicDigest{}, false
	}
	return BasicDigest{ID: id, Password: password}, true
}

// SignatureDigest is an asymmetric-signature credential over SignedData.
type SignatureDigest struct {
	ID         string
	Signature  []byte
	SignedData []byte
	Timestamp  time.Time
}

// UserID returns the client identifier.
func (d SignatureDigest) UserID() string { return d.ID }

func (SignatureDigest) digest() {}

// WithinSkew reports whether the digest timestamp is no further than maxSkew
// from now in either direction.
func (d SignatureDigest) WithinSkew(now time.Time, maxSkew time.Duration) bool {
	if d.Timestamp.IsZero() {
		return false
	}
	delta := now.Sub(d.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	return delta <= maxSkew
}
