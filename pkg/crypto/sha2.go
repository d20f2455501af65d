// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/logger"
	"github.com/stacklok/sentinel/pkg/random"
)

// allowedChars excludes look-alikes (0 O 1 l I) so generated secrets can be read back.
const allowedChars = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@$?_-"

// SHA2Provider implements Provider with salted SHA-2 digests.
//
// A salted hash is encoded as base64(digest(salt || text) || salt). The salt is
// located by its trailing offset, so every hash validated by a provider must
// have been created with the same salt size.
type SHA2Provider struct {
	algorithm    HashAlgorithm
	saltByteSize int
	rng          *random.Source
	log          *slog.Logger
}

// SHA2Option configures a SHA2Provider.
type SHA2Option func(*SHA2Provider)

// WithSaltByteSize sets the salt length in bytes.
func WithSaltByteSize(n int) SHA2Option {
	return func(p *SHA2Provider) {
		p.saltByteSize = n
	}
}

// WithRandomSource sets the random source used for salts and generated text.
func WithRandomSource(rng *random.Source) SHA2Option {
	return func(p *SHA2Provider) {
		p.rng = rng
	}
}

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) SHA2Option {
	return func(p *SHA2Provider) {
		p.log = l
	}
}

// NewSHA2Provider creates a provider for the given algorithm.
func NewSHA2Provider(algorithm HashAlgorithm, opts ...SHA2Option) (*SHA2Provider, error) {
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}

	p := &SHA2Provider{
		algorithm:    algorithm,
		saltByteSize: DefaultSaltByteSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.saltByteSize <= 0 {
		return nil, errors.NewInvalidArgumentError(
			fmt.Sprintf("salt byte size must be positive, got %d", p.saltByteSize), nil)
	}
	if p.rng == nil {
		p.rng = random.New()
	}
	p.log = logger.OrDiscard(p.log)

	return p, nil
}

// Algorithm returns the configured digest algorithm.
func (p *SHA2Provider) Algorithm() HashAlgorithm {
	return p.algorithm
}

// CreateHash hashes text, salting it when useSalt is set.
func (p *SHA2Provider) CreateHash(text string, useSalt bool) (string, error) {
	if !useSalt {
		return base64.StdEncoding.EncodeToString(p.compute([]byte(text), nil)), nil
	}

	salt, err := p.rng.Bytes(p.saltByteSize)
	if err != nil {
		return "", err
	}

	p.log.Debug("created salted hash", "algorithm", string(p.algorithm))
	return base64.StdEncoding.EncodeToString(p.compute([]byte(text), salt)), nil
}

// CreateRandomHash returns the unsalted hash of bits/8 random characters.
func (p *SHA2Provider) CreateRandomHash(bits int) (string, error) {
	text, err := p.GenerateText(bits)
	if err != nil {
		return "", err
	}
	return p.CreateHash(text, false)
}

// CreateHashWithText returns random text and its salted hash.
func (p *SHA2Provider) CreateHashWithText(bits int) (string, string, error) {
	text, err := p.GenerateText(bits)
	if err != nil {
		return "", "", err
	}
	h, err := p.CreateHash(text, true)
	if err != nil {
		return "", "", err
	}
	return text, h, nil
}

// GenerateText returns bits/8 characters drawn uniformly from allowedChars.
func (p *SHA2Provider) GenerateText(bits int) (string, error) {
	if bits < 8 {
		return "", errors.NewInvalidArgumentError(fmt.Sprintf("text length must be at least 8 bits, got %d", bits), nil)
	}

	text := make([]byte, bits/8)
	for i := range text {
		idx, err := p.rng.Index(0, len(allowedChars))
		if err != nil {
			return "", err
		}
		text[i] = allowedChars[idx]
	}
	return string(text), nil
}

// ValidateHash recomputes the salted digest of text using the salt stored at
// the end of correctHash.
func (p *SHA2Provider) ValidateHash(text, correctHash string) bool {
	stored, err := base64.StdEncoding.DecodeString(correctHash)
	if err != nil {
		p.log.Debug("stored hash is not valid base64")
		return false
	}
	if len(stored) != p.algorithm.Size()+p.saltByteSize {
		p.log.Debug("stored hash has unexpected length", "length", len(stored))
		return false
	}

	salt := stored[len(stored)-p.saltByteSize:]
	computed := p.compute([]byte(text), salt)

	valid := subtle.ConstantTimeCompare(stored, computed) == 1
	p.log.Debug("validated hash", "valid", valid)
	return valid
}

// compute returns digest(salt || text) || salt, or digest(text) when salt is nil.
func (p *SHA2Provider) compute(text, salt []byte) []byte {
	h := p.algorithm.newHash()()
	if salt == nil {
		h.Write(text)
		return h.Sum(nil)
	}

	h.Write(salt)
	h.Write(text)

	out := make([]byte, 0, h.Size()+len(salt))
	out = h.Sum(out)
	return append(out, salt...)
}
