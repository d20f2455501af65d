// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/sentinel/pkg/authserver"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/identity"
	"github.com/stacklok/sentinel/pkg/logger"
)

type tokenFlags struct {
	kind        string
	name        string
	clientID    string
	redirectURI string
	lifetime    time.Duration
	roles       []string
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect codes and tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	cmd.AddCommand(newTokenInspectCmd())
	cmd.AddCommand(newTokenRevokeCmd())
	return cmd
}

func addKindFlag(cmd *cobra.Command, f *tokenFlags) {
	cmd.Flags().StringVar(&f.kind, "kind", "access", "Kind of value: access, refresh or code")
}

func parseKind(s string) (storage.Kind, error) {
	switch s {
	case "access":
		return storage.KindAccessToken, nil
	case "refresh":
		return storage.KindRefreshToken, nil
	case "code", string(storage.KindAuthorizationCode):
		return storage.KindAuthorizationCode, nil
	default:
		return "", fmt.Errorf("unknown kind %q, expected access, refresh or code", s)
	}
}

func newTokenIssueCmd() *cobra.Command {
	f := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a code or token for a named principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServer(cmd.Context(), func(ctx context.Context, srv *authserver.Server) error {
				value, err := issue(ctx, srv, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			})
		},
	}
	addKindFlag(cmd, f)
	cmd.Flags().StringVar(&f.name, "name", "", "Name claim of the principal")
	cmd.Flags().StringVar(&f.clientID, "client", "", "Client the value is issued to")
	cmd.Flags().StringVar(&f.redirectURI, "redirect-uri", "", "Redirect URI the value is bound to")
	cmd.Flags().DurationVar(&f.lifetime, "lifetime", 0, "Lifetime of the value (configured default when zero)")
	cmd.Flags().StringSliceVar(&f.roles, "role", nil, "Role claims to add to the principal")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func issue(ctx context.Context, srv *authserver.Server, f *tokenFlags) (string, error) {
	claims := []identity.Claim{
		identity.NewClaim(identity.ClaimTypeName, f.name),
		identity.NewClaim(identity.ClaimTypeSubject, f.name),
	}
	if f.clientID != "" {
		claims = append(claims, identity.NewClaim(identity.ClaimTypeClient, f.clientID))
	}
	for _, r := range f.roles {
		claims = append(claims, identity.NewClaim(identity.ClaimTypeRole, r))
	}
	p := identity.NewPrincipal(identity.NewIdentity(identity.AuthenticationTypeOAuth, claims...))

	kind, err := parseKind(f.kind)
	if err != nil {
		return "", err
	}
	cfg := srv.Tokens().Config()
	m := srv.Tokens()
	switch kind {
	case storage.KindAccessToken:
		return m.CreateAccessToken(ctx, p, lifetimeOr(f.lifetime, cfg.AccessTokenLifetime), f.clientID, f.redirectURI)
	case storage.KindRefreshToken:
		return m.CreateRefreshToken(ctx, p, lifetimeOr(f.lifetime, cfg.RefreshTokenLifetime), f.clientID, f.redirectURI)
	case storage.KindAuthorizationCode:
		return m.CreateAuthorizationCode(ctx, p, lifetimeOr(f.lifetime, cfg.AuthorizationCodeLifetime), f.redirectURI)
	}
	return "", fmt.Errorf("unsupported kind %q", kind)
}

func lifetimeOr(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}

func newTokenInspectCmd() *cobra.Command {
	f := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Authenticate a code or token and print its principal",
		Long: `Authenticate a code or token against the configured repository and print the
principal it carries as JSON. Inspecting an authorization code redeems it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServer(cmd.Context(), func(ctx context.Context, srv *authserver.Server) error {
				p, err := inspect(ctx, srv, f, args[0])
				if err != nil {
					return err
				}
				if !p.IsAuthenticated() {
					return fmt.Errorf("%s was rejected", f.kind)
				}
				out, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode principal: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}
	addKindFlag(cmd, f)
	cmd.Flags().StringVar(&f.clientID, "client", "", "Client presenting a refresh token")
	cmd.Flags().StringVar(&f.redirectURI, "redirect-uri", "", "Redirect URI presented with a code or refresh token")
	return cmd
}

func inspect(ctx context.Context, srv *authserver.Server, f *tokenFlags, value string) (*identity.Principal, error) {
	kind, err := parseKind(f.kind)
	if err != nil {
		return nil, err
	}
	m := srv.Tokens()
	switch kind {
	case storage.KindAccessToken:
		return m.AuthenticateAccessToken(ctx, value)
	case storage.KindRefreshToken:
		return m.AuthenticateRefreshToken(ctx, f.clientID, value, f.redirectURI)
	case storage.KindAuthorizationCode:
		return m.AuthenticateAuthorizationCode(ctx, f.redirectURI, value)
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

func newTokenRevokeCmd() *cobra.Command {
	f := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "revoke [token]",
		Short: "Revoke a token, or every token of a client with --client",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServer(cmd.Context(), func(ctx context.Context, srv *authserver.Server) error {
				m := srv.Tokens()
				if len(args) == 0 {
					if f.clientID == "" {
						return fmt.Errorf("a token or --client is required")
					}
					n, err := m.RevokeClientTokens(ctx, f.clientID)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "revoked %d records\n", n)
					return err
				}

				kind, err := parseKind(f.kind)
				if err != nil {
					return err
				}
				var removed bool
				switch kind {
				case storage.KindAccessToken:
					removed, err = m.RevokeAccessToken(ctx, args[0])
				case storage.KindRefreshToken:
					removed, err = m.RevokeRefreshToken(ctx, args[0])
				default:
					return fmt.Errorf("only access and refresh tokens can be revoked, got %q", f.kind)
				}
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%s not found", f.kind)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "revoked")
				return err
			})
		},
	}
	addKindFlag(cmd, f)
	cmd.Flags().StringVar(&f.clientID, "client", "", "Revoke every record issued to this client")
	return cmd
}

// requirePersistentStorage refuses memory storage: records written by one
// command invocation would be gone before the next one runs.
func requirePersistentStorage(cfg *authserver.Config) error {
	switch cfg.Storage.Type {
	case storage.TypeMemory, "":
		return fmt.Errorf("token commands need persistent storage, configure storage.type as %s or %s",
			storage.TypeSQLite, storage.TypeRedis)
	default:
		return nil
	}
}

// withServer builds the engine from the loaded configuration, runs fn and
// closes the engine.
func withServer(ctx context.Context, fn func(context.Context, *authserver.Server) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requirePersistentStorage(cfg); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	srv, err := authserver.New(ctx, cfg, authserver.WithLogger(logger.Get()))
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Errorf("Failed to close engine: %v", err)
		}
	}()
	return fn(ctx, srv)
}
