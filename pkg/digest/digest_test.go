// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicDigest_HeaderRoundTrip(t *testing.T) {
	t.Parallel()

	d := BasicDigest{ID: "client1", Password: "s3cr:et"}

	header := d.HeaderValue()
	assert.Equal(t, "Basic Y2xpZW50MTpzM2NyOmV0", header)

	parsed, ok := ParseBasicAuthorization(header)
	assert.True(t, ok)
	assert.Equal(t, d, parsed)
	assert.Equal(t, "client1", parsed.UserID())
}

func TestParseBasicAuthorization_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":        "",
		"bearer":       "Bearer abc",
		"no separator": "Basic " + "Y2xpZW50MQ==",
		"bad base64":   "Basic %%%",
		"empty id":     "Basic OnBhc3M=",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, ok := ParseBasicAuthorization(header)
			assert.False(t, ok)
		})
	}

	d, ok := ParseBasicAuthorization("basic Y2xpZW50MTo=")
	assert.True(t, ok)
	assert.Equal(t, BasicDigest{ID: "client1"}, d)
}

func TestSignatureDigest_WithinSkew(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	skew := 5 * time.Minute

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"exact", now, true},
		{"past within", now.Add(-4 * time.Minute), true},
		{"future within", now.Add(4 * time.Minute), true},
		{"boundary", now.Add(-skew), true},
		{"past beyond", now.Add(-skew - time.Second), false},
		{"future beyond", now.Add(skew + time.Second), false},
		{"zero", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := SignatureDigest{ID: "client1", Timestamp: tt.ts}
			assert.Equal(t, tt.want, d.WithinSkew(now, skew))
		})
	}
}

func TestDigest_Variants(t *testing.T) {
	t.Parallel()

	digests := []Digest{
		BasicDigest{ID: "a"},
		SignatureDigest{ID: "b"},
	}
	assert.Equal(t, "a", digests[0].UserID())
	assert.Equal(t, "b", digests[1].UserID())
}
