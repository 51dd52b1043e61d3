package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/db"
)

type memoryRows struct {
	records map[uuid.UUID]db.SessionRecord
}

func newMemoryRows() *memoryRows {
	return &memoryRows{records: make(map[uuid.UUID]db.SessionRecord)}
}

func (m *memoryRows) CreateSession(_ context.Context, rec *db.SessionRecord) error {
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = *rec
	return nil
}

func (m *memoryRows) GetSession(_ context.Context, id uuid.UUID) (*db.SessionRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &rec, nil
}

func (m *memoryRows) UpdateSession(_ context.Context, rec *db.SessionRecord) error {
	if _, ok := m.records[rec.ID]; !ok {
		return db.ErrNotFound
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *memoryRows) DeleteSession(_ context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rows := newMemoryRows()
	store := NewPostgresStore(rows)

	s := NewSession(LocaleEnglish)
	require.NoError(t, store.Create(ctx, s))

	require.NoError(t, s.apply(AnalysisCompleted("https://jobs.example/1", "", testAnalysis())))
	require.NoError(t, s.apply(ResumeAttached(testResume())))
	require.NoError(t, store.Save(ctx, s))

	rec := rows.records[uuid.MustParse(s.ID)]
	assert.Equal(t, string(StateResumeAttached), rec.State)
	assert.Equal(t, "en", rec.Locale)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateResumeAttached, got.State())
	assert.Equal(t, LocaleEnglish, got.Locale)
	assert.Equal(t, s.Snapshot, got.Snapshot)
}

func TestPostgresStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewPostgresStore(newMemoryRows())

	_, err := store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, store.Save(ctx, NewSession(LocaleKorean)), ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, "not-a-uuid"))
}

func TestPostgresStore_RejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	rows := newMemoryRows()
	store := NewPostgresStore(rows)

	id := uuid.New()
	rows.records[id] = db.SessionRecord{ID: id, State: "mystery", Snapshot: []byte(`{"state":"mystery"}`)}

	_, err := store.Get(ctx, id.String())
	assert.ErrorContains(t, err, "unknown state")
}
