package model

import "time"

// Config holds the full pipeline configuration assembled by the CLI
// from flags, environment and config file.
type Config struct {
	Vision      VisionConfig      `yaml:"vision"`
	Store       StoreConfig       `yaml:"store"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	Run         RunConfig         `yaml:"run"`
}

// VisionConfig configures the multimodal extraction endpoint.
type VisionConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"` // never persisted
	BaseURL  string `yaml:"base_url,omitempty"`

	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	// Backoff after a failed call; EmptyBackoff after an empty reply.
	Backoff      time.Duration `yaml:"backoff"`
	EmptyBackoff time.Duration `yaml:"empty_backoff"`
	// Requests per second against the model endpoint.
	RateLimit float64 `yaml:"rate_limit"`
}

// StoreConfig configures the shared record store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite"
	DSN    string `yaml:"-"`     // postgres connection string, from env
	Path   string `yaml:"path"`  // sqlite database file
	Table  string `yaml:"table"`
}

// CacheConfig configures the extraction response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig configures optional parallel board extraction.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // 1 = strictly sequential
}

// OutputConfig configures artifacts and verbosity.
type OutputConfig struct {
	Dir     string `yaml:"dir"` // per-run artifact directory root
	Verbose bool   `yaml:"verbose"`
}

// RunConfig configures run-level expectations.
type RunConfig struct {
	ExpectedBoards int    `yaml:"expected_boards"`
	Region         string `yaml:"region,omitempty"` // override; default derived from input dir
}

// DefaultConfig returns sensible defaults. Retry and backoff values
// match the capture tooling this pipeline replaces.
func DefaultConfig() *Config {
	return &Config{
		Vision: VisionConfig{
			Provider:     "gemini",
			Model:        "",
			Timeout:      2 * time.Minute,
			MaxAttempts:  3,
			Backoff:      3 * time.Second,
			EmptyBackoff: 2 * time.Second,
			RateLimit:    1,
		},
		Store: StoreConfig{
			Driver: "postgres",
			Path:   "rankpipe.db",
			Table:  "board_records",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".rankpipe-cache",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir: "results",
		},
		Run: RunConfig{
			ExpectedBoards: StandardBoardCount,
		},
	}
}
