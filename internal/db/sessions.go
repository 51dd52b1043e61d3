package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CreateSession inserts a new session row.
func (db *DB) CreateSession(ctx context.Context, rec *SessionRecord) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, state, locale, snapshot)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		rec.ID, rec.State, rec.Locale, rec.Snapshot,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession loads a session row. Returns ErrNotFound if the session does not exist.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	var rec SessionRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, state, locale, snapshot, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.State, &rec.Locale, &rec.Snapshot, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &rec, nil
}

// UpdateSession replaces the state and snapshot of an existing session.
// Returns ErrNotFound if the session does not exist.
func (db *DB) UpdateSession(ctx context.Context, rec *SessionRecord) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE sessions SET state = $2, locale = $3, snapshot = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		rec.ID, rec.State, rec.Locale, rec.Snapshot,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteSessionsBefore removes sessions idle since before cutoff and returns how many were removed.
func (db *DB) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
