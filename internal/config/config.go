// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	JobURL     string `json:"job_url,omitempty"`     // URL of the job posting
	CompanyURL string `json:"company_url,omitempty"` // URL of the company page (optional)
	Resume     string `json:"resume,omitempty"`      // Path to the résumé file (.txt, .md, .pdf, .docx)
	Output     string `json:"output,omitempty"`      // Path to write the Markdown cover letter

	// Completion service
	Provider string `json:"provider,omitempty"` // gemini or openai
	Model    string `json:"model,omitempty"`    // Overrides the model for every tier
	APIKey   string `json:"api_key,omitempty"`  // Provider API key

	// Output language
	Language string `json:"language,omitempty"` // Language the analysis and letter are written in
	Locale   string `json:"locale,omitempty"`   // Locale of user-facing messages (ko, en)

	// Fetching
	UserAgent    string `json:"user_agent,omitempty"`     // User-Agent header for page fetches
	MaxChars     int    `json:"max_chars,omitempty"`      // Truncation limit for sanitized page text
	FetchTimeout string `json:"fetch_timeout,omitempty"`  // Per-fetch timeout, e.g. "30s"
	UseBrowser   bool   `json:"use_browser,omitempty"`    // Render empty pages with a headless browser
	PageCacheTTL string `json:"page_cache_ttl,omitempty"` // How long cached pages stay fresh, e.g. "24h"

	// Behavior
	CompletionTimeout string `json:"completion_timeout,omitempty"` // Per-completion timeout, e.g. "60s"
	DatabaseURL       string `json:"database_url,omitempty"`       // PostgreSQL connection URL
	Verbose           bool   `json:"verbose,omitempty"`            // Print detailed debug information
}

// Defaults returns the built-in configuration defaults.
func Defaults() Config {
	return Config{
		Provider:          "gemini",
		Language:          "Korean",
		Locale:            "ko",
		MaxChars:          10000,
		FetchTimeout:      "30s",
		CompletionTimeout: "60s",
		PageCacheTTL:      "24h",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"job_url": c.JobURL, "company_url": c.CompanyURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an http(s) URL: %s", name, raw)
		}
	}

	switch strings.ToLower(c.Provider) {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("config error: 'provider' must be gemini or openai, got %q", c.Provider)
	}

	switch strings.ToLower(c.Locale) {
	case "", "ko", "en":
	default:
		return fmt.Errorf("config error: 'locale' must be ko or en, got %q", c.Locale)
	}

	// Validate numeric ranges
	if c.MaxChars < 0 {
		return fmt.Errorf("config error: 'max_chars' must be non-negative")
	}

	for name, raw := range map[string]string{
		"fetch_timeout":      c.FetchTimeout,
		"completion_timeout": c.CompletionTimeout,
		"page_cache_ttl":     c.PageCacheTTL,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config error: '%s' is not a duration: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: '%s' must be positive", name)
		}
	}

	// Validate file paths exist (if specified)
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.JobURL, defaults.JobURL)
	fill(&result.CompanyURL, defaults.CompanyURL)
	fill(&result.Resume, defaults.Resume)
	fill(&result.Output, defaults.Output)
	fill(&result.Provider, defaults.Provider)
	fill(&result.Model, defaults.Model)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.Language, defaults.Language)
	fill(&result.Locale, defaults.Locale)
	fill(&result.UserAgent, defaults.UserAgent)
	fill(&result.FetchTimeout, defaults.FetchTimeout)
	fill(&result.PageCacheTTL, defaults.PageCacheTTL)
	fill(&result.CompletionTimeout, defaults.CompletionTimeout)
	fill(&result.DatabaseURL, defaults.DatabaseURL)

	// Int fields: use default if zero
	if result.MaxChars == 0 {
		result.MaxChars = defaults.MaxChars
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills the API key, provider and database URL from the environment when unset.
// The API key variable follows the provider: OPENAI_API_KEY for openai, GEMINI_API_KEY otherwise.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Provider == "" {
		c.Provider = getenv("LLM_PROVIDER")
	}
	if c.APIKey == "" {
		if strings.EqualFold(c.Provider, "openai") {
			c.APIKey = getenv("OPENAI_API_KEY")
		} else {
			c.APIKey = getenv("GEMINI_API_KEY")
		}
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = getenv("DATABASE_URL")
	}
}

// FetchTimeoutDuration returns fetch_timeout, or fallback when unset or invalid.
func (c *Config) FetchTimeoutDuration(fallback time.Duration) time.Duration {
	return parseDuration(c.FetchTimeout, fallback)
}

// CompletionTimeoutDuration returns completion_timeout, or fallback when unset or invalid.
func (c *Config) CompletionTimeoutDuration(fallback time.Duration) time.Duration {
	return parseDuration(c.CompletionTimeout, fallback)
}

// PageCacheTTLDuration returns page_cache_ttl, or fallback when unset or invalid.
func (c *Config) PageCacheTTLDuration(fallback time.Duration) time.Duration {
	return parseDuration(c.PageCacheTTL, fallback)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
