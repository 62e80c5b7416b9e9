package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TokenRepository persists the bearer token of each browser session in a
// local SQLite database, so an authenticated session survives process
// restarts. Each session id maps to a single token cell.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(dbPath string) (*TokenRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &TokenRepository{db: db}, nil
}

func (r *TokenRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get returns the token persisted for the session, or "" when none exists.
func (r *TokenRepository) Get(ctx context.Context, sid string) (string, error) {
	var token string
	err := r.db.QueryRowContext(ctx,
		`SELECT token FROM session_tokens WHERE sid = ?`, sid).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session token: %w", err)
	}
	return token, nil
}

// Set stores the token for the session, replacing any previous value.
func (r *TokenRepository) Set(ctx context.Context, sid, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_tokens (sid, token, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (sid) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP`,
		sid, token)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	return nil
}

// Delete clears the session's token cell. Deleting an absent cell is not
// an error.
func (r *TokenRepository) Delete(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE sid = ?`, sid)
	if err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
