package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetCrawledPageByURL retrieves a cached page by URL
func (db *DB) GetCrawledPageByURL(ctx context.Context, pageURL string) (*CrawledPage, error) {
	var p CrawledPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, parsed_text, content_hash, http_status, fetch_status, error_message,
		        fetched_at, last_accessed_at, created_at, updated_at
		 FROM crawled_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.ParsedText, &p.ContentHash, &p.HTTPStatus, &p.FetchStatus, &p.ErrorMessage,
		&p.FetchedAt, &p.LastAccessedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get crawled page: %w", err)
	}
	return &p, nil
}

// FreshPageText returns the cached text of a page fetched successfully within maxAge.
// found is false when the page is missing, stale, failed, or has no text.
func (db *DB) FreshPageText(ctx context.Context, pageURL string, maxAge time.Duration) (string, bool, error) {
	page, err := db.GetCrawledPageByURL(ctx, pageURL)
	if err != nil {
		return "", false, err
	}
	if page == nil || !page.IsFresh(maxAge) || page.ParsedText == nil || *page.ParsedText == "" {
		return "", false, nil
	}

	if err := db.TouchCrawledPage(ctx, page.ID); err != nil {
		log.Printf("[FETCH] %v", err)
	}
	return *page.ParsedText, true, nil
}

// SavePage inserts or updates a successfully fetched page and clears any recorded failure.
func (db *DB) SavePage(ctx context.Context, pageURL string, httpStatus int, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (url, parsed_text, content_hash, http_status, fetch_status, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     parsed_text = $2,
		     content_hash = $3,
		     http_status = $4,
		     fetch_status = $5,
		     error_message = NULL,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		pageURL, text, HashContent(text), httpStatus, FetchStatusSuccess,
	)
	if err != nil {
		return fmt.Errorf("failed to save crawled page: %w", err)
	}
	return nil
}

// RecordFailedFetch records the outcome of a failed fetch. Any cached text for the URL is dropped,
// so the next lookup misses and the page is fetched again.
func (db *DB) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	var status *int
	if httpStatus > 0 {
		status = &httpStatus
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO crawled_pages (url, http_status, fetch_status, error_message, fetched_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     parsed_text = NULL,
		     content_hash = NULL,
		     http_status = $2,
		     fetch_status = $3,
		     error_message = $4,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		pageURL, status, FetchStatusFromHTTP(httpStatus), errorMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// TouchCrawledPage updates the last_accessed_at timestamp
func (db *DB) TouchCrawledPage(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE crawled_pages SET last_accessed_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch crawled page: %w", err)
	}
	return nil
}

// DeletePagesBefore removes cached pages fetched before cutoff and returns how many were removed.
func (db *DB) DeletePagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM crawled_pages WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete crawled pages: %w", err)
	}
	return tag.RowsAffected(), nil
}
