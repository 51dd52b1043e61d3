package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/coverletter-agent/internal/db"
)

// SessionRows is the slice of *db.DB that PostgresStore needs.
type SessionRows interface {
	CreateSession(ctx context.Context, rec *db.SessionRecord) error
	GetSession(ctx context.Context, id uuid.UUID) (*db.SessionRecord, error)
	UpdateSession(ctx context.Context, rec *db.SessionRecord) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// PostgresStore is a SessionStore backed by the sessions table.
type PostgresStore struct {
	rows SessionRows
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(rows SessionRows) *PostgresStore {
	return &PostgresStore{rows: rows}
}

// Create stores a new session.
func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	return p.rows.CreateSession(ctx, rec)
}

// Get loads a session.
func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	rec, err := p.rows.GetSession(ctx, uid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Save replaces a stored session.
func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	if err := p.rows.UpdateSession(ctx, rec); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// Delete removes a session.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return p.rows.DeleteSession(ctx, uid)
}

func toRecord(s *Session) (*db.SessionRecord, error) {
	uid, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", s.ID, err)
	}
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	return &db.SessionRecord{
		ID:        uid,
		State:     string(s.State()),
		Locale:    string(s.Locale),
		Snapshot:  snapshot,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func fromRecord(rec *db.SessionRecord) (*Session, error) {
	var snap Snapshot
	if err := json.Unmarshal(rec.Snapshot, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	if !snap.State.Valid() {
		return nil, fmt.Errorf("session %s has unknown state %q", rec.ID, snap.State)
	}
	return &Session{
		ID:        rec.ID.String(),
		Locale:    Locale(rec.Locale),
		Snapshot:  snap,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}
