// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite implements the token repository on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/stacklok/sentinel/pkg/authserver/storage"
	sentinelerrors "github.com/stacklok/sentinel/pkg/errors"
)

// Storage implements storage.Repository using SQLite.
type Storage struct {
	db *sql.DB
}

var (
	_ storage.Repository    = (*Storage)(nil)
	_ storage.ClientRevoker = (*Storage)(nil)
	_ storage.Purger        = (*Storage)(nil)
)

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		path = storage.DefaultSQLitePath
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, sentinelerrors.NewRepositoryError("failed to open sqlite database", err)
	}
	// SQLite serializes writers; a single connection keeps DELETE results
	// consistent with the order of callers.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, sentinelerrors.NewRepositoryError("failed to migrate sqlite database", err)
	}

	return &Storage{db: db}, nil
}

// dsn builds the SQLite URI for path. The path is percent-encoded so that
// '?', '#' and '%' in file names are not read as URI syntax.
func dsn(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     path,
		OmitHost: true,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}
	return u.String()
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) insert(ctx context.Context, kind storage.Kind, record *storage.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	principal := record.Principal
	if principal == nil {
		principal = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, key, principal, valid_to, created_at, client_id, redirect_uri, ticket_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(kind),
		record.Key,
		principal,
		record.ValidTo.UnixNano(),
		createdAt.UnixNano(),
		record.ClientID,
		record.RedirectURI,
		record.TicketID,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return false, nil
		}
		return false, sentinelerrors.NewRepositoryError(fmt.Sprintf("inserting %s record", kind), err)
	}
	return true, nil
}

func (s *Storage) get(ctx context.Context, kind storage.Kind, key string) (*storage.Record, error) {
	var (
		rec       storage.Record
		validTo   int64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, principal, valid_to, created_at, client_id, redirect_uri, ticket_id
		FROM records WHERE kind = ? AND key = ?`,
		string(kind), key,
	).Scan(&rec.Key, &rec.Principal, &validTo, &createdAt, &rec.ClientID, &rec.RedirectURI, &rec.TicketID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sentinelerrors.NewRepositoryError(fmt.Sprintf("querying %s record", kind), err)
	}

	rec.ValidTo = time.Unix(0, validTo).UTC()
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}

func (s *Storage) remove(ctx context.Context, kind storage.Kind, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND key = ?`, string(kind), key)
	if err != nil {
		return false, sentinelerrors.NewRepositoryError(fmt.Sprintf("deleting %s record", kind), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sentinelerrors.NewRepositoryError("reading affected rows", err)
	}
	return n == 1, nil
}

// InsertAuthorizationCode stores an authorization code record.
func (s *Storage) InsertAuthorizationCode(ctx context.Context, record *storage.Record) (bool, error) {
	return s.insert(ctx, storage.KindAuthorizationCode, record)
}

// GetAuthorizationCode returns the authorization code record for key.
func (s *Storage) GetAuthorizationCode(ctx context.Context, key string) (*storage.Record, error) {
	return s.get(ctx, storage.KindAuthorizationCode, key)
}

// DeleteAuthorizationCode removes the authorization code record for key.
func (s *Storage) DeleteAuthorizationCode(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, storage.KindAuthorizationCode, key)
}

// InsertAccessToken stores an access token record.
func (s *Storage) InsertAccessToken(ctx context.Context, record *storage.Record) (bool, error) {
	return s.insert(ctx, storage.KindAccessToken, record)
}

// GetAccessToken returns the access token record for key.
func (s *Storage) GetAccessToken(ctx context.Context, key string) (*storage.Record, error) {
	return s.get(ctx, storage.KindAccessToken, key)
}

// DeleteAccessToken removes the access token record for key.
func (s *Storage) DeleteAccessToken(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, storage.KindAccessToken, key)
}

// InsertRefreshToken stores a refresh token record.
func (s *Storage) InsertRefreshToken(ctx context.Context, record *storage.Record) (bool, error) {
	return s.insert(ctx, storage.KindRefreshToken, record)
}

// GetRefreshToken returns the refresh token record for key.
func (s *Storage) GetRefreshToken(ctx context.Context, key string) (*storage.Record, error) {
	return s.get(ctx, storage.KindRefreshToken, key)
}

// DeleteRefreshToken removes the refresh token record for key.
func (s *Storage) DeleteRefreshToken(ctx context.Context, key string) (bool, error) {
	return s.remove(ctx, storage.KindRefreshToken, key)
}

// DeleteTokensForClient removes every record bound to clientID.
func (s *Storage) DeleteTokensForClient(ctx context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE client_id = ?`, clientID)
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("deleting client records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("reading affected rows", err)
	}
	return int(n), nil
}

// PurgeExpired removes every record expired at now.
func (s *Storage) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE valid_to <= ?`, now.UnixNano())
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("purging expired records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, sentinelerrors.NewRepositoryError("reading affected rows", err)
	}
	return int(n), nil
}

// isConstraintViolation checks for a SQLite PRIMARY KEY or UNIQUE violation.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
