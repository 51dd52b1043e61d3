package main

import (
	"context"
	"fmt"

	"github.com/jonathan/coverletter-agent/internal/composition"
	"github.com/jonathan/coverletter-agent/internal/config"
	"github.com/jonathan/coverletter-agent/internal/extraction"
	"github.com/jonathan/coverletter-agent/internal/fetch"
	"github.com/jonathan/coverletter-agent/internal/llm"
	"github.com/jonathan/coverletter-agent/internal/pipeline"
)

// newCompleter creates the completion client for the configured provider.
func newCompleter(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required: set --api-key, GEMINI_API_KEY or OPENAI_API_KEY")
	}
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	llmConfig, err := llm.ConfigFor(provider)
	if err != nil {
		return nil, err
	}
	if cfg.Model != "" {
		llmConfig = llmConfig.WithAllModels(cfg.Model)
	}
	return llm.NewClient(ctx, llmConfig, cfg.APIKey)
}

// newFetcher creates the fail-soft page fetcher.
func newFetcher(cfg *config.Config) *fetch.Fetcher {
	return fetch.NewFetcher(&fetch.Options{
		Timeout:   cfg.FetchTimeoutDuration(fetch.DefaultTimeout),
		UserAgent: cfg.UserAgent,
		MaxChars:  cfg.MaxChars,
	}, fetch.WithHeadlessBrowser(cfg.UseBrowser))
}

// newSource wraps the fetcher with the page cache when a store is available.
func newSource(cfg *config.Config, pages fetch.PageStore) fetch.Source {
	fetcher := newFetcher(cfg)
	if pages == nil {
		return fetcher
	}
	return fetch.NewCachedFetcher(fetcher, pages, cfg.PageCacheTTLDuration(fetch.DefaultCacheTTL))
}

// newOrchestrator wires the analysis and composition stages around completer.
func newOrchestrator(cfg *config.Config, source fetch.Source, completer llm.StructuredCompleter) (*pipeline.Orchestrator, error) {
	extractor, err := extraction.New(completer, extraction.WithLanguage(cfg.Language))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	composer, err := composition.New(completer, composition.WithLanguage(cfg.Language))
	if err != nil {
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}

	return pipeline.NewOrchestrator(source, extractor, composer, pipeline.Options{
		FetchTimeout:      cfg.FetchTimeoutDuration(pipeline.DefaultFetchTimeout),
		CompletionTimeout: cfg.CompletionTimeoutDuration(pipeline.DefaultCompletionTimeout),
	}), nil
}
