// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Keys missing from the directory fall back to
// the provider's conventional environment variable.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key file names recognized in the secrets directory.
const (
	PerplexityAPIKey = "perplexity-api-key"
	AnthropicAPIKey  = "anthropic-api-key"
	GrokAPIKey       = "grok-api-key"
)

// envFallbacks maps a key file name to the environment variable consulted
// when the file is absent.
var envFallbacks = map[string]string{
	PerplexityAPIKey: "PERPLEXITY_API_KEY",
	AnthropicAPIKey:  "ANTHROPIC_API_KEY",
	GrokAPIKey:       "GROK_API_KEY",
}

// Set is a loaded collection of secrets keyed by file name.
type Set map[string]string

// Load reads all files in dir and returns a Set of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty Set.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Set)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[name] = value
		}
	}

	return s, nil
}

// Get returns the value for key, falling back to the key's environment
// variable. It returns "" when neither is set.
func (s Set) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	if env, ok := envFallbacks[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// Or returns explicit when it is non-empty, otherwise Get(key). Values set
// in the config file or on the command line win over secrets.
func (s Set) Or(explicit, key string) string {
	if explicit != "" {
		return explicit
	}
	return s.Get(key)
}
