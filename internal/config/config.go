// Package config provides configuration loading and structs for the Kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kotae/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool            `yaml:"debug"`
	Server  ServerConfig    `yaml:"server"`
	Catalog CatalogConfig   `yaml:"catalog"`
	Storage StorageConfig   `yaml:"storage"`
	Suggest SuggestConfig   `yaml:"suggest"`
	Ranking *ranking.Config `yaml:"ranking"`
	Gemini  GeminiConfig    `yaml:"gemini"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig holds intent catalog settings.
type CatalogConfig struct {
	// Path is the intent catalog JSON file (built by the import command).
	Path string `yaml:"path"`
	// Watch reloads the catalog when the file changes.
	Watch *bool `yaml:"watch"`
}

// WatchOrDefault returns whether to watch the catalog file; defaults to true.
func (c *CatalogConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// StorageConfig holds the suggestion log database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// RouteRule narrows the catalog before scoring: when the question contains
// one of QueryKeywords, only intents whose text contains one of
// IntentKeywords are scored. Rules are tried in order; the first rule that
// fires and matches at least one intent wins.
type RouteRule struct {
	Name           string   `yaml:"name"`
	QueryKeywords  []string `yaml:"query_keywords"`
	IntentKeywords []string `yaml:"intent_keywords"`
}

// SuggestConfig holds suggestion pipeline settings.
type SuggestConfig struct {
	// TopK is the number of suggestions returned to the caller.
	TopK int `yaml:"top_k"`
	// CandidateK is the baseline list size handed to the reranker.
	CandidateK int `yaml:"candidate_k"`
	// PrefilterLimit bounds the candidate set taken from the keyword index
	// when the catalog is larger; 0 disables the prefilter.
	PrefilterLimit int `yaml:"prefilter_limit"`
	// MinRerankCandidates is the smallest candidate set worth a remote call.
	MinRerankCandidates int `yaml:"min_rerank_candidates"`
	// Routes are tried in order against the incoming question.
	Routes []RouteRule `yaml:"routes"`
}

// GeminiConfig holds remote reranker settings. The API key itself is read
// from the environment variable named by APIKeyEnv; an empty value disables
// reranking entirely.
type GeminiConfig struct {
	Model              string  `yaml:"model"`
	APIKeyEnv          string  `yaml:"api_key_env"`
	BaseURL            string  `yaml:"base_url"`
	Temperature        float64 `yaml:"temperature"`
	MaxOutputTokens    int     `yaml:"max_output_tokens"`
	TimeoutSeconds     int     `yaml:"timeout_seconds"`
	CacheTTLMinutes    int     `yaml:"cache_ttl_minutes"`
	CircuitTTLMinutes  int     `yaml:"circuit_ttl_minutes"`
	AnswerPreviewRunes int     `yaml:"answer_preview_runes"`
	MaxExamples        int     `yaml:"max_examples"`
}

// APIKey resolves the credential from the configured environment variable.
func (g *GeminiConfig) APIKey() string {
	return strings.TrimSpace(os.Getenv(g.APIKeyEnv))
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
