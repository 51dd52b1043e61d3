package fetch

import (
	"context"
	"log"
	"time"
)

// DefaultCacheTTL is how long a fetched page stays fresh in the page cache.
const DefaultCacheTTL = 24 * time.Hour

// PageStore persists sanitized page text keyed by URL.
type PageStore interface {
	// FreshPageText returns cached text fetched within ttl; found is false on a miss.
	FreshPageText(ctx context.Context, url string, ttl time.Duration) (text string, found bool, err error)
	// SavePage records a successful fetch.
	SavePage(ctx context.Context, url string, statusCode int, text string) error
	// RecordFailedFetch records an unsuccessful fetch attempt.
	RecordFailedFetch(ctx context.Context, url string, statusCode int, message string) error
}

// CachedFetcher wraps a Fetcher with a page cache. Cache errors are logged and never surface.
type CachedFetcher struct {
	fetcher  *Fetcher
	store    PageStore
	cacheTTL time.Duration
}

// NewCachedFetcher creates a cached fetcher. A zero ttl uses DefaultCacheTTL.
func NewCachedFetcher(fetcher *Fetcher, store PageStore, ttl time.Duration) *CachedFetcher {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{fetcher: fetcher, store: store, cacheTTL: ttl}
}

// Content returns the cached text when fresh, otherwise fetches, records the outcome, and returns
// the text ("" on failure).
func (f *CachedFetcher) Content(ctx context.Context, url string) string {
	if f.store != nil {
		text, found, err := f.store.FreshPageText(ctx, url, f.cacheTTL)
		switch {
		case err != nil:
			log.Printf("[FETCH] cache lookup for %s failed: %v", url, err)
		case found:
			return text
		}
	}

	result, err := f.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("[FETCH] %v", err)
		if f.store != nil {
			statusCode := 0
			if result != nil {
				statusCode = result.StatusCode
			}
			if recErr := f.store.RecordFailedFetch(ctx, url, statusCode, err.Error()); recErr != nil {
				log.Printf("[FETCH] failed to record fetch failure for %s: %v", url, recErr)
			}
		}
		return ""
	}

	if f.store != nil && result.Text != "" {
		if err := f.store.SavePage(ctx, url, result.StatusCode, result.Text); err != nil {
			log.Printf("[FETCH] failed to cache %s: %v", url, err)
		}
	}
	return result.Text
}
