package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/config"
)

// commonFlags are the configuration flags shared by every command that talks to the completion
// service or fetches pages. Values given on the command line override the --config file.
type commonFlags struct {
	configPath   string
	jobURL       string
	companyURL   string
	resume       string
	output       string
	provider     string
	model        string
	apiKey       string
	language     string
	locale       string
	userAgent    string
	maxChars     int
	fetchTimeout string
	useBrowser   bool
	databaseURL  string
	verbose      bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	fs.StringVar(&f.jobURL, "job-url", "", "URL of the job posting")
	fs.StringVar(&f.companyURL, "company-url", "", "URL of the company page (optional)")
	fs.StringVarP(&f.resume, "resume", "r", "", "Path to the résumé (.txt, .md, .pdf, .docx)")
	fs.StringVarP(&f.output, "out", "o", "", "Write the result to this file instead of stdout")
	fs.StringVar(&f.provider, "provider", "", "Completion provider: gemini or openai (defaults to LLM_PROVIDER, then gemini)")
	fs.StringVar(&f.model, "model", "", "Model to use for every tier (overrides the provider defaults)")
	fs.StringVar(&f.apiKey, "api-key", "", "Provider API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	fs.StringVar(&f.language, "language", "", "Language of the analysis and cover letter (default Korean)")
	fs.StringVar(&f.locale, "locale", "", "Locale of user-facing messages: ko or en")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header for page fetches")
	fs.IntVar(&f.maxChars, "max-chars", 0, "Truncate sanitized page text to this many characters (default 10000)")
	fs.StringVar(&f.fetchTimeout, "fetch-timeout", "", "Per-fetch timeout, e.g. 30s")
	fs.BoolVar(&f.useBrowser, "use-browser", false, "Render pages without readable text in a headless browser (requires Chrome)")
	fs.StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve loads the --config file, applies explicitly set flags, then the environment, then the
// built-in defaults, and validates the result.
func (f *commonFlags) resolve(cmd *cobra.Command, getenv func(string) string) (*config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stderr, "Loaded config from: %s\n", f.configPath)
		}
	}

	// Only override if the flag was explicitly set
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, value string) {
		if changed(name) {
			*dst = value
		}
	}
	set("job-url", &cfg.JobURL, f.jobURL)
	set("company-url", &cfg.CompanyURL, f.companyURL)
	set("resume", &cfg.Resume, f.resume)
	set("out", &cfg.Output, f.output)
	set("provider", &cfg.Provider, f.provider)
	set("model", &cfg.Model, f.model)
	set("api-key", &cfg.APIKey, f.apiKey)
	set("language", &cfg.Language, f.language)
	set("locale", &cfg.Locale, f.locale)
	set("user-agent", &cfg.UserAgent, f.userAgent)
	set("fetch-timeout", &cfg.FetchTimeout, f.fetchTimeout)
	set("db-url", &cfg.DatabaseURL, f.databaseURL)
	if changed("max-chars") {
		cfg.MaxChars = f.maxChars
	}
	if changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg.ApplyEnv(getenv)
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
