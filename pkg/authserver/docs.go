// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package authserver assembles the Sentinel authorization engine from its
// configuration.
//
// The engine issues and redeems opaque authorization codes, access tokens
// and refresh tokens. It has no HTTP surface: an endpoint layer calls the
// token manager with credentials it has already parsed.
//
// # Usage
//
//	cfg := authserver.DefaultConfig()
//	srv, err := authserver.New(ctx, cfg, authserver.WithLogger(logger.Get()))
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//
//	code, err := srv.Tokens().CreateAuthorizationCode(ctx, principal,
//	    cfg.AuthorizationCodeLifetime, redirectURI)
//
// # Storage
//
// Codes and tokens live in a storage.Repository selected by Config.Storage:
// memory (default, single instance), redis (shared across instances) or
// sqlite (single instance, persistent). The repository is wrapped with
// OpenTelemetry metrics and spans using the global providers unless
// WithMeterProvider or WithTracerProvider is given.
//
// # Directory
//
// Users and clients listed in the configuration are loaded into a
// directory.StaticDirectory. WithUserManager and WithClientManager plug in
// other directories.
package authserver
