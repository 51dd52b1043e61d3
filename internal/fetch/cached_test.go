package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type memoryPageStore struct {
	pages     map[string]string
	failures  map[string]int
	lookups   int
	lookupErr error
}

func newMemoryPageStore() *memoryPageStore {
	return &memoryPageStore{pages: map[string]string{}, failures: map[string]int{}}
}

func (s *memoryPageStore) FreshPageText(_ context.Context, url string, _ time.Duration) (string, bool, error) {
	s.lookups++
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	text, ok := s.pages[url]
	return text, ok, nil
}

func (s *memoryPageStore) SavePage(_ context.Context, url string, _ int, text string) error {
	s.pages[url] = text
	return nil
}

func (s *memoryPageStore) RecordFailedFetch(_ context.Context, url string, statusCode int, _ string) error {
	s.failures[url] = statusCode
	return nil
}

func TestCachedFetcher_HitSkipsNetwork(t *testing.T) {
	store := newMemoryPageStore()
	store.pages["https://jobs.example.com/1"] = "cached posting"

	fetcher := NewCachedFetcher(nil, store, 0)
	assert.Equal(t, "cached posting", fetcher.Content(context.Background(), "https://jobs.example.com/1"))
	assert.Equal(t, DefaultCacheTTL, fetcher.cacheTTL)
}

func TestCachedFetcher_MissFetchesAndStores(t *testing.T) {
	server := htmlServer(t, http.StatusOK, "<html><body><p>Fresh posting</p></body></html>")
	store := newMemoryPageStore()

	fetcher := NewCachedFetcher(NewFetcher(nil), store, time.Hour)
	assert.Equal(t, "Fresh posting", fetcher.Content(context.Background(), server.URL))
	assert.Equal(t, "Fresh posting", store.pages[server.URL])
}

func TestCachedFetcher_FailureRecorded(t *testing.T) {
	server := htmlServer(t, http.StatusInternalServerError, "")
	store := newMemoryPageStore()

	fetcher := NewCachedFetcher(NewFetcher(nil), store, time.Hour)
	assert.Equal(t, "", fetcher.Content(context.Background(), server.URL))
	assert.Equal(t, http.StatusInternalServerError, store.failures[server.URL])
	assert.NotContains(t, store.pages, server.URL)
}

func TestCachedFetcher_LookupErrorFallsThrough(t *testing.T) {
	server := htmlServer(t, http.StatusOK, "<html><body>Still works</body></html>")
	store := newMemoryPageStore()
	store.lookupErr = errors.New("connection refused")

	fetcher := NewCachedFetcher(NewFetcher(nil), store, time.Hour)
	assert.Equal(t, "Still works", fetcher.Content(context.Background(), server.URL))
}

func TestCachedFetcher_NilStore(t *testing.T) {
	server := htmlServer(t, http.StatusOK, "<html><body>No cache</body></html>")

	fetcher := NewCachedFetcher(NewFetcher(nil), nil, 0)
	assert.Equal(t, "No cache", fetcher.Content(context.Background(), server.URL))
}
