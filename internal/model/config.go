package model

import "time"

// Config is the complete runtime configuration. Values come from (highest to
// lowest priority) CLI flags, NEXO_* environment variables, the config file at
// ~/.nexo/config.yaml, and the defaults below.
type Config struct {
	Matching    MatchingConfig    `yaml:"matching" mapstructure:"matching"`
	Correlation CorrelationConfig `yaml:"correlation" mapstructure:"correlation"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Review      ReviewConfig      `yaml:"review" mapstructure:"review"`
}

// MatchingConfig tunes the matching engine.
type MatchingConfig struct {
	// Threshold is the minimum similarity score for moderate/weak pass
	// candidates to become matches.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`

	// MaxAgeDiffYears is the maximum estimated-age difference tolerated on the
	// weak pass when both sides carry an age. Empirically chosen in the source
	// data; kept configurable rather than derived.
	MaxAgeDiffYears int `yaml:"max_age_diff_years" mapstructure:"max_age_diff_years"`
}

// CorrelationConfig tunes the temporal correlator's strength thresholds.
type CorrelationConfig struct {
	StrongDays   int `yaml:"strong_days" mapstructure:"strong_days"`     // <= this many days: strong
	ModerateDays int `yaml:"moderate_days" mapstructure:"moderate_days"` // <= this many days: moderate
}

// StoreConfig locates the result database polled by the status monitor.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig controls export and terminal rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ReviewConfig configures the optional advisory LLM review stage. The review
// is a second opinion layered on top of the deterministic engine; it never
// feeds back into match confidence.
type ReviewConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" = disabled
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"-" mapstructure:"-"` // from env only, never persisted
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Workers           int           `yaml:"workers" mapstructure:"workers"`
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Matching: MatchingConfig{
			Threshold:       0.85,
			MaxAgeDiffYears: 3,
		},
		Correlation: CorrelationConfig{
			StrongDays:   30,
			ModerateDays: 90,
		},
		Store: StoreConfig{
			Path: "nexo.db",
		},
		Output: OutputConfig{
			Dir: "./nexo-reports",
		},
		Review: ReviewConfig{
			Provider:          "",
			Timeout:           60 * time.Second,
			MaxTokens:         1000,
			RequestsPerSecond: 2,
			Workers:           4,
			CacheTTL:          7 * 24 * time.Hour,
		},
	}
}
