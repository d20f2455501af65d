// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package random provides cryptographically secure random bytes and unbiased
// random indexes.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/stacklok/sentinel/pkg/errors"
)

// span is the number of distinct values of a 32-bit draw.
const span = uint64(1) << 32

// Source generates secure random data. A Source is safe for concurrent use:
// every call reads into a fresh buffer.
type Source struct {
	reader io.Reader
}

// Option configures a Source.
type Option func(*Source)

// WithReader replaces crypto/rand as the entropy source. Intended for tests.
func WithReader(r io.Reader) Option {
	return func(s *Source) {
		s.reader = r
	}
}

// New creates a Source reading from crypto/rand unless overridden.
func New(opts ...Option) *Source {
	s := &Source{reader: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bytes returns n random bytes.
func (s *Source) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("byte count must not be negative, got %d", n), nil)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, errors.NewCryptoError("failed to read random bytes", err)
	}
	return buf, nil
}

// Index returns a uniformly distributed integer in [minValue, maxValue).
//
// Draws are rejected when they fall in the top (2^32 mod range) values, which
// would otherwise be over-represented after the modulo reduction.
func (s *Source) Index(minValue, maxValue int) (int, error) {
	if minValue > maxValue {
		return 0, errors.NewInvalidArgumentError(
			fmt.Sprintf("minimum %d is greater than maximum %d", minValue, maxValue), nil)
	}
	if minValue == maxValue {
		return minValue, nil
	}

	diff := uint64(int64(maxValue) - int64(minValue))
	if diff > span {
		return 0, errors.NewInvalidArgumentError(
			fmt.Sprintf("range %d exceeds 32-bit draw size", diff), nil)
	}
	limit := span - span%diff

	var buf [4]byte
	for {
		if _, err := io.ReadFull(s.reader, buf[:]); err != nil {
			return 0, errors.NewCryptoError("failed to read random bytes", err)
		}
		v := uint64(binary.LittleEndian.Uint32(buf[:]))
		if v < limit {
			return minValue + int(v%diff), nil
		}
	}
}
