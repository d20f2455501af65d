// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package crypto provides hashing, random text generation and a symmetric
// encryption envelope for the authorization engine.
package crypto

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go Provider

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"github.com/stacklok/sentinel/pkg/errors"
)

// HashAlgorithm selects the SHA-2 digest used by a provider.
type HashAlgorithm string

const (
	// SHA256 produces 32 byte digests.
	SHA256 HashAlgorithm = "SHA256"

	// SHA384 produces 48 byte digests.
	SHA384 HashAlgorithm = "SHA384"

	// SHA512 produces 64 byte digests.
	SHA512 HashAlgorithm = "SHA512"
)

// DefaultSaltByteSize is the salt length appended to salted hashes.
const DefaultSaltByteSize = 64

// ParseHashAlgorithm converts a configuration value into a HashAlgorithm.
// Matching ignores case and an optional dash ("sha-256").
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	normalized := HashAlgorithm(strings.ToUpper(strings.ReplaceAll(s, "-", "")))
	if err := normalized.Validate(); err != nil {
		return "", err
	}
	return normalized, nil
}

// Validate returns an invalid argument error for unsupported algorithms.
func (a HashAlgorithm) Validate() error {
	switch a {
	case SHA256, SHA384, SHA512:
		return nil
	default:
		return errors.NewInvalidArgumentError(fmt.Sprintf("unsupported hash algorithm %q", string(a)), nil)
	}
}

// Size returns the digest length in bytes.
func (a HashAlgorithm) Size() int {
	switch a {
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	default:
		return 0
	}
}

func (a HashAlgorithm) newHash() func() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New
	case SHA384:
		return sha512.New384
	case SHA512:
		return sha512.New
	default:
		return nil
	}
}

// Provider creates and validates hashes and encrypts opaque tickets.
type Provider interface {
	// CreateHash hashes text. When useSalt is true a fresh random salt is
	// generated and appended to the digest before encoding.
	CreateHash(text string, useSalt bool) (string, error)

	// CreateRandomHash returns the unsalted hash of random text of the given
	// length in bits.
	CreateRandomHash(bits int) (string, error)

	// CreateHashWithText generates random text of the given length in bits and
	// returns it together with its salted hash.
	CreateHashWithText(bits int) (text string, hash string, err error)

	// GenerateText returns bits/8 random printable characters.
	GenerateText(bits int) (string, error)

	// ValidateHash reports whether text hashes to correctHash. It never fails:
	// malformed hashes simply do not validate.
	ValidateHash(text, correctHash string) bool

	// Encrypt encrypts text with a key derived from key.
	Encrypt(text, key string) (string, error)

	// Decrypt reverses Encrypt. A wrong key or malformed ticket is a crypto error.
	Decrypt(ticket, key string) (string, error)
}
