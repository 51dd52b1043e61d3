package fetch

import (
	"context"
	"log"
)

// Source turns a URL into bounded plain text. An empty string means the page was unavailable.
type Source interface {
	Content(ctx context.Context, url string) string
}

// Fetcher is the fail-soft content fetcher used by the pipeline.
type Fetcher struct {
	options    *Options
	useBrowser bool
	render     Renderer
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHeadlessBrowser enables headless rendering for pages whose HTTP body has no readable text.
func WithHeadlessBrowser(enabled bool) FetcherOption {
	return func(f *Fetcher) { f.useBrowser = enabled }
}

// WithRenderer replaces the headless renderer.
func WithRenderer(r Renderer) FetcherOption {
	return func(f *Fetcher) { f.render = r }
}

// NewFetcher creates a Fetcher. A nil opts uses DefaultOptions.
func NewFetcher(opts *Options, options ...FetcherOption) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	f := &Fetcher{options: opts.withDefaults(), render: WithBrowser}
	for _, o := range options {
		o(f)
	}
	return f
}

// Content returns the sanitized text of url, or "" on any failure. The cause is logged.
func (f *Fetcher) Content(ctx context.Context, url string) string {
	result, err := f.Fetch(ctx, url)
	if err != nil {
		log.Printf("[FETCH] %v", err)
		return ""
	}
	return result.Text
}

// Fetch performs a single fetch and sanitizes the body.
// When the page succeeds but yields no text and browser rendering is enabled, the same page is
// rendered headless once and sanitized again.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	result, err := URL(ctx, url, f.options)
	if err != nil {
		return result, err
	}

	result.Text = Sanitize(result.HTML, f.options.MaxChars)
	if result.Text == "" && f.useBrowser && f.render != nil {
		html, renderErr := f.render(ctx, url, f.options.Timeout)
		if renderErr != nil {
			log.Printf("[FETCH] headless render of %s failed: %v", url, renderErr)
			return result, nil
		}
		result.HTML = html
		result.Text = Sanitize(html, f.options.MaxChars)
	}

	return result, nil
}

