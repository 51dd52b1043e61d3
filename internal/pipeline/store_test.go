package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession("")
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, DefaultLocale, s.Locale)
	assert.Equal(t, StateAwaitingJobURL, s.State())
	assert.Equal(t, 1, s.Stage())
	assert.False(t, s.CreatedAt.IsZero())

	assert.NotEqual(t, s.ID, NewSession(LocaleEnglish).ID)
}

func TestSession_ApplyFailureLeavesSnapshot(t *testing.T) {
	s := NewSession(LocaleEnglish)
	updated := s.UpdatedAt

	err := s.apply(GoBack())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, NewSnapshot(), s.Snapshot)
	assert.Equal(t, updated, s.UpdatedAt)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := NewSession(LocaleEnglish)

	require.NoError(t, store.Create(ctx, s))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, got.apply(AnalysisCompleted("u", "", testAnalysis())))
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAnalyzed, again.State())

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, s.ID))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := NewSession(LocaleEnglish)
	require.NoError(t, store.Create(ctx, s))

	s.Snapshot.State = StateGenerated
	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingJobURL, got.State())

	require.NoError(t, got.apply(AnalysisCompleted("u", "", testAnalysis())))
	got.Snapshot.Analysis.Keywords[0] = "mutated"
	stored, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Snapshot.Analysis)
}

func TestMemoryStore_SaveUnknown(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), NewSession(LocaleEnglish))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
