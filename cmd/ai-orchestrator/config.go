// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/ai-orchestrator/internal/secrets"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

const (
	defaultAddr      = ":4000"
	defaultUserAgent = "ai-orchestrator/0.1"
)

// setDefaults registers every configuration default on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", defaultAddr)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.user_agent", defaultUserAgent)
	v.SetDefault("http.max_retries", 3)

	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.sweep_interval", 10*time.Minute)

	v.SetDefault("search.base_url", "https://api.perplexity.ai")
	v.SetDefault("search.model", "llama-3.1-sonar-small-128k-online")
	v.SetDefault("search.api_key", "")

	v.SetDefault("analyzer.provider", string(types.AnalyzerAnthropic))
	v.SetDefault("analyzer.model", "")
	v.SetDefault("analyzer.base_url", "")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.max_tokens", 4096)

	v.SetDefault("archive.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// decodeConfig unmarshals v into an OrchestratorConfig and fills API keys
// the configuration left empty from s.
func decodeConfig(v *viper.Viper, s secrets.Set) (types.OrchestratorConfig, error) {
	var cfg types.OrchestratorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.Search.APIKey = s.Or(cfg.Search.APIKey, secrets.PerplexityAPIKey)
	switch cfg.Analyzer.Provider {
	case types.AnalyzerGrok:
		cfg.Analyzer.APIKey = s.Or(cfg.Analyzer.APIKey, secrets.GrokAPIKey)
	default:
		cfg.Analyzer.APIKey = s.Or(cfg.Analyzer.APIKey, secrets.AnthropicAPIKey)
	}
	return cfg, nil
}

// loadConfig decodes the global viper instance with the loaded secrets.
func loadConfig() (types.OrchestratorConfig, error) {
	return decodeConfig(viper.GetViper(), loadedSecrets)
}
