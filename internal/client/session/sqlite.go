package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore keeps the token in a key/value table in the client's local
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, TokenKey, token)
	if err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, TokenKey)
	if err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
