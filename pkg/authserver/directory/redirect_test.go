// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/sentinel/pkg/errors"
)

func TestValidateRedirectURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "https", uri: "https://app.example.com/cb"},
		{name: "http localhost", uri: "http://localhost:8080/cb"},
		{name: "http ipv4 loopback", uri: "http://127.0.0.1/cb"},
		{name: "http ipv6 loopback", uri: "http://[::1]:9000/cb"},
		{name: "http remote host", uri: "http://app.example.com/cb", wantErr: true},
		{name: "relative", uri: "/cb", wantErr: true},
		{name: "fragment", uri: "https://app.example.com/cb#frag", wantErr: true},
		{name: "custom scheme", uri: "myapp://cb", wantErr: true},
		{name: "empty", uri: "", wantErr: true},
		{name: "unparseable", uri: "https://app example.com/%zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRedirectURI(tt.uri)
			if tt.wantErr {
				assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
