// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package authserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/sentinel/pkg/authserver/directory"
	"github.com/stacklok/sentinel/pkg/authserver/storage"
	"github.com/stacklok/sentinel/pkg/authserver/tokens"
	"github.com/stacklok/sentinel/pkg/crypto"
	"github.com/stacklok/sentinel/pkg/errors"
	"github.com/stacklok/sentinel/pkg/identity"
	"github.com/stacklok/sentinel/pkg/logger"
	"github.com/stacklok/sentinel/pkg/random"
)

// Server owns the engine and everything it depends on.
type Server struct {
	cfg       Config
	provider  *crypto.SHA2Provider
	backend   Backend
	repo      storage.Repository
	directory *directory.StaticDirectory
	tokens    *tokens.Manager
	log       *slog.Logger

	stopPurge chan struct{}
	purgeDone chan struct{}
	closeOnce sync.Once
	closeErr  error
}

type serverOptions struct {
	log            *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	rng            *random.Source
	backend        Backend
	users          directory.UserManager
	clients        directory.ClientManager
}

// Option configures New.
type Option func(*serverOptions)

// WithLogger sets the logger passed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *serverOptions) {
		o.log = l
	}
}

// WithMeterProvider sets the meter provider for repository metrics.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *serverOptions) {
		o.meterProvider = mp
	}
}

// WithTracerProvider sets the tracer provider for repository spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *serverOptions) {
		o.tracerProvider = tp
	}
}

// WithRandomSource overrides the secure random source.
func WithRandomSource(rng *random.Source) Option {
	return func(o *serverOptions) {
		o.rng = rng
	}
}

// WithBackend uses b instead of building one from Config.Storage. The
// Server takes ownership and closes it.
func WithBackend(b Backend) Option {
	return func(o *serverOptions) {
		o.backend = b
	}
}

// WithUserManager replaces the static directory for user authentication.
func WithUserManager(um directory.UserManager) Option {
	return func(o *serverOptions) {
		o.users = um
	}
}

// WithClientManager replaces the static directory for client authentication.
func WithClientManager(cm directory.ClientManager) Option {
	return func(o *serverOptions) {
		o.clients = cm
	}
}

// New builds the random source, crypto provider, storage, directory and
// token manager described by cfg.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.OrDiscard(o.log)
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.rng == nil {
		o.rng = random.New()
	}

	provider, err := NewProvider(cfg, crypto.WithRandomSource(o.rng), crypto.WithLogger(log))
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend, err = NewStorage(ctx, &cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}
	s := &Server{
		cfg:      *cfg,
		provider: provider,
		backend:  backend,
		log:      log,
	}

	if err := s.build(o); err != nil {
		_ = backend.Close()
		return nil, err
	}

	// Memory storage sweeps itself.
	if _, isMemory := backend.(*storage.MemoryStorage); !isMemory {
		s.startPurge(cfg.Storage.CleanupInterval)
	}

	log.DebugContext(ctx, "authorization engine ready",
		"storage", cfg.Storage.Type,
		"hash_algorithm", provider.Algorithm(),
		"users", len(cfg.Users),
		"clients", len(cfg.Clients),
	)
	return s, nil
}

func (s *Server) build(o *serverOptions) error {
	repo, err := storage.NewInstrumented(s.backend, o.meterProvider, o.tracerProvider)
	if err != nil {
		return errors.NewInternalError("failed to instrument repository", err)
	}
	s.repo = repo

	s.directory, err = directory.NewStaticDirectory(s.provider, directory.WithLogger(s.log))
	if err != nil {
		return err
	}
	if err := s.registerDirectory(); err != nil {
		return err
	}

	users, clients := o.users, o.clients
	if users == nil {
		users = s.directory
	}
	if clients == nil {
		clients = s.directory
	}

	s.tokens, err = tokens.New(repo, s.provider,
		tokens.WithConfig(s.cfg.TokensConfig()),
		tokens.WithUserManager(users),
		tokens.WithClientManager(clients),
		tokens.WithLogger(s.log),
	)
	return err
}

func (s *Server) registerDirectory() error {
	for _, u := range s.cfg.Users {
		claims := make([]identity.Claim, 0, len(u.Roles))
		for _, r := range u.Roles {
			claims = append(claims, identity.NewClaim(identity.ClaimTypeRole, r))
		}
		if err := s.directory.AddUserWithHash(u.Username, u.PasswordHash, claims...); err != nil {
			return err
		}
	}
	for _, c := range s.cfg.Clients {
		client := directory.Client{
			ID:           c.ID,
			Name:         c.Name,
			SecretHash:   c.SecretHash,
			RedirectURIs: c.RedirectURIs,
			Scopes:       c.Scopes,
		}
		if c.PublicKey != "" {
			key, err := directory.ParsePublicKey([]byte(c.PublicKey))
			if err != nil {
				return err
			}
			client.PublicKey = key
		}
		if err := s.directory.AddClient(client); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) startPurge(interval time.Duration) {
	if interval <= 0 {
		interval = storage.DefaultCleanupInterval
	}
	s.stopPurge = make(chan struct{})
	s.purgeDone = make(chan struct{})

	go func() {
		defer close(s.purgeDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := s.tokens.PurgeExpired(context.Background())
				if err != nil {
					s.log.Warn("failed to purge expired records", "error", err)
					continue
				}
				if n > 0 {
					s.log.Debug("purged expired records", "count", n)
				}
			case <-s.stopPurge:
				return
			}
		}
	}()
}

// Tokens returns the token manager.
func (s *Server) Tokens() *tokens.Manager {
	return s.tokens
}

// Directory returns the static directory populated from the configuration.
func (s *Server) Directory() *directory.StaticDirectory {
	return s.directory
}

// Provider returns the crypto provider.
func (s *Server) Provider() crypto.Provider {
	return s.provider
}

// Repository returns the instrumented repository.
func (s *Server) Repository() storage.Repository {
	return s.repo
}

// Config returns a copy of the configuration the server was built with.
func (s *Server) Config() Config {
	return s.cfg
}

// Close stops background work and closes the storage backend.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.stopPurge != nil {
			close(s.stopPurge)
			<-s.purgeDone
		}
		s.closeErr = s.backend.Close()
	})
	return s.closeErr
}
