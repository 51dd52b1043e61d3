package db

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchStatusFromHTTP(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, FetchStatusSuccess},
		{204, FetchStatusSuccess},
		{404, FetchStatusNotFound},
		{410, FetchStatusNotFound},
		{403, FetchStatusBlocked},
		{429, FetchStatusBlocked},
		{500, FetchStatusError},
		{0, FetchStatusError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FetchStatusFromHTTP(tt.status), "status %d", tt.status)
	}
}

func TestHashContent(t *testing.T) {
	hash := HashContent("hello")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashContent("hello"))
	assert.NotEqual(t, hash, HashContent("hello!"))
}

func TestCrawledPage_IsFresh(t *testing.T) {
	page := &CrawledPage{FetchStatus: FetchStatusSuccess, FetchedAt: time.Now().Add(-time.Hour)}
	assert.True(t, page.IsFresh(2*time.Hour))
	assert.False(t, page.IsFresh(30*time.Minute))

	page.FetchStatus = FetchStatusNotFound
	assert.False(t, page.IsFresh(2*time.Hour))
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := fs.ReadFile(migrationFiles, "migrations/00001_init.sql")
	require.NoError(t, err)
	sql := string(data)
	assert.True(t, strings.HasPrefix(sql, "-- +goose Up"))
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS sessions")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS crawled_pages")
	assert.NotContains(t, sql, "retry_after")
}
