// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/stacklok/sentinel/pkg/errors"
)

// ValidateRedirectURI checks that raw is an absolute URI usable as an OAuth
// redirect target: https anywhere, http only on loopback hosts, and no
// fragment.
func ValidateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.NewInvalidArgumentError(fmt.Sprintf("invalid redirect URI %q", raw), err)
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.NewInvalidArgumentError(fmt.Sprintf("redirect URI %q must be absolute", raw), nil)
	}
	if u.Fragment != "" || strings.Contains(raw, "#") {
		return errors.NewInvalidArgumentError(fmt.Sprintf("redirect URI %q must not contain a fragment", raw), nil)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return errors.NewInvalidArgumentError(
			fmt.Sprintf("redirect URI %q uses http on a non-loopback host", raw), nil)
	default:
		return errors.NewInvalidArgumentError(
			fmt.Sprintf("redirect URI %q has unsupported scheme %q", raw, u.Scheme), nil)
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
