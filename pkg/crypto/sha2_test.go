// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/sentinel/pkg/errors"
)

var allAlgorithms = []HashAlgorithm{SHA256, SHA384, SHA512}

func newProvider(t *testing.T, alg HashAlgorithm, opts ...SHA2Option) *SHA2Provider {
	t.Helper()
	p, err := NewSHA2Provider(alg, opts...)
	require.NoError(t, err)
	return p
}

func TestParseHashAlgorithm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    HashAlgorithm
		wantErr bool
	}{
		{in: "SHA256", want: SHA256},
		{in: "sha384", want: SHA384},
		{in: "sha-512", want: SHA512},
		{in: "MD5", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseHashAlgorithm(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidArgument(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSHA2Provider_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewSHA2Provider("SHA1")
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = NewSHA2Provider(SHA256, WithSaltByteSize(0))
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestCreateHash_ValidateRoundTrip(t *testing.T) {
	t.Parallel()

	texts := []string{"", "password", "pässwörd ✓", strings.Repeat("x", 4096)}

	for _, alg := range allAlgorithms {
		t.Run(string(alg), func(t *testing.T) {
			t.Parallel()
			p := newProvider(t, alg)

			for _, text := range texts {
				h, err := p.CreateHash(text, true)
				require.NoError(t, err)

				assert.True(t, p.ValidateHash(text, h), "text %q should validate", text)
				assert.False(t, p.ValidateHash(text+"x", h), "different text must not validate")
			}
		})
	}
}

func TestCreateHash_SaltLayout(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA256, WithSaltByteSize(16))

	h, err := p.CreateHash("secret", true)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(h)
	require.NoError(t, err)
	require.Len(t, raw, SHA256.Size()+16)

	// The trailing bytes are the salt, so recomputing with them reproduces the value.
	salt := raw[len(raw)-16:]
	assert.Equal(t, raw, p.compute([]byte("secret"), salt))

	// Two salted hashes of the same text differ.
	other, err := p.CreateHash("secret", true)
	require.NoError(t, err)
	assert.NotEqual(t, h, other)
}

func TestCreateHash_Unsalted(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA512)

	a, err := p.CreateHash("token", false)
	require.NoError(t, err)
	b, err := p.CreateHash("token", false)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, SHA512.Size())
}

func TestValidateHash_Malformed(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA256)

	tests := map[string]string{
		"not base64":     "not-base64!!",
		"empty":          "",
		"shorter salt":   base64.StdEncoding.EncodeToString([]byte("short")),
		"unsalted value": mustUnsalted(t, p, "text"),
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.False(t, p.ValidateHash("text", stored))
			})
		})
	}
}

func TestValidateHash_SaltSizeMismatch(t *testing.T) {
	t.Parallel()

	h, err := newProvider(t, SHA256, WithSaltByteSize(32)).CreateHash("text", true)
	require.NoError(t, err)

	assert.False(t, newProvider(t, SHA256).ValidateHash("text", h))
}

func TestGenerateText(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA256)

	text, err := p.GenerateText(256)
	require.NoError(t, err)
	assert.Len(t, text, 32)
	for _, r := range text {
		assert.Contains(t, allowedChars, string(r))
	}
	assert.NotContains(t, allowedChars, "0")
	assert.NotContains(t, allowedChars, "O")
	assert.NotContains(t, allowedChars, "l")

	_, err = p.GenerateText(4)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestCreateRandomHash(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA384)

	a, err := p.CreateRandomHash(256)
	require.NoError(t, err)
	b, err := p.CreateRandomHash(256)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, SHA384.Size())
}

func TestCreateHashWithText(t *testing.T) {
	t.Parallel()

	p := newProvider(t, SHA512)

	text, h, err := p.CreateHashWithText(128)
	require.NoError(t, err)
	assert.Len(t, text, 16)
	assert.True(t, p.ValidateHash(text, h))
}

func mustUnsalted(t *testing.T, p *SHA2Provider, text string) string {
	t.Helper()
	h, err := p.CreateHash(text, false)
	require.NoError(t, err)
	return h
}
