package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9000
catalog:
  path: ./intents.json
storage:
  database_path: ./db/log.db
suggest:
  top_k: 3
  candidate_k: 5
gemini:
  model: gemini-2.0-flash
  cache_ttl_minutes: 20
ranking:
  temperature: 0.25
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Catalog.Path != filepath.Join(dir, "intents.json") {
		t.Errorf("catalog path not expanded: %s", cfg.Catalog.Path)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "db/log.db") {
		t.Errorf("database path not expanded: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("gemini model: %s", cfg.Gemini.Model)
	}
	if cfg.Gemini.CacheTTLMinutes != 20 {
		t.Errorf("cache ttl: %d", cfg.Gemini.CacheTTLMinutes)
	}
	if cfg.Ranking.Temperature != 0.25 {
		t.Errorf("ranking temperature: %v", cfg.Ranking.Temperature)
	}
	// unset ranking fields still get defaults
	if cfg.Ranking.KeywordBonus == 0 {
		t.Error("ranking defaults not applied")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8090 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Suggest.TopK != 3 || cfg.Suggest.CandidateK != 5 {
		t.Errorf("suggest defaults: %+v", cfg.Suggest)
	}
	if cfg.Suggest.MinRerankCandidates != 3 {
		t.Errorf("min rerank candidates: %d", cfg.Suggest.MinRerankCandidates)
	}
	if len(cfg.Suggest.Routes) == 0 {
		t.Error("default routes missing")
	}
	if cfg.Ranking == nil || cfg.Ranking.Temperature != 0.18 {
		t.Errorf("ranking defaults: %+v", cfg.Ranking)
	}
	if cfg.Gemini.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("api key env: %s", cfg.Gemini.APIKeyEnv)
	}
	if cfg.Gemini.CacheTTLMinutes != 10 || cfg.Gemini.CircuitTTLMinutes != 5 {
		t.Errorf("ttl defaults: %+v", cfg.Gemini)
	}
	if cfg.Gemini.AnswerPreviewRunes != 220 || cfg.Gemini.MaxExamples != 6 {
		t.Errorf("prompt limit defaults: %+v", cfg.Gemini)
	}
	if !cfg.Catalog.WatchOrDefault() {
		t.Error("catalog watch should default to true")
	}
}

func TestGeminiConfig_APIKey(t *testing.T) {
	g := &GeminiConfig{APIKeyEnv: "KOTAE_TEST_GEMINI_KEY"}
	t.Setenv("KOTAE_TEST_GEMINI_KEY", "  secret  ")
	if got := g.APIKey(); got != "secret" {
		t.Errorf("got %q", got)
	}
	t.Setenv("KOTAE_TEST_GEMINI_KEY", "")
	if got := g.APIKey(); got != "" {
		t.Errorf("got %q", got)
	}
}
