package types

import "time"

// HTTPConfig holds shared HTTP settings used by every upstream client.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent upstream (e.g. "ai-orchestrator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on 429/503/529 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig holds settings for the web-grounded search provider.
type SearchConfig struct {
	// BaseURL is the provider API root (default "https://api.perplexity.ai").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the provider model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the provider. Usually loaded from secrets.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// AnalyzerProvider names the text-completion backend used for analysis
// and synthesis.
type AnalyzerProvider string

const (
	AnalyzerAnthropic AnalyzerProvider = "anthropic"
	AnalyzerGrok      AnalyzerProvider = "grok"
)

// AnalyzerConfig holds settings for the analysis provider.
type AnalyzerConfig struct {
	// Provider selects the backend: anthropic or grok (default anthropic).
	Provider AnalyzerProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model overrides the provider's default model when non-empty.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider's default endpoint when non-empty.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against the provider. Usually loaded from secrets.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens is the completion token budget (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CacheConfig holds research cache settings.
type CacheConfig struct {
	// TTL is how long a built result stays servable (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// SweepInterval is how often the server clears expired entries
	// (default 10m). Zero disables the background sweep.
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address (default ":4000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ArchiveConfig holds settings for the research archive.
type ArchiveConfig struct {
	// Path is the SQLite database file. Empty disables the archive.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// OrchestratorConfig groups all component configurations.
type OrchestratorConfig struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer" mapstructure:"analyzer"`
	Archive  ArchiveConfig  `json:"archive" yaml:"archive" mapstructure:"archive"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
