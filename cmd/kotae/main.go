// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/importer"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/suggest"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "suggest":
		runSuggest()
	case "import":
		runImport()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components holds everything the suggestion pipeline needs.
type components struct {
	Catalog *catalog.Catalog
	Storage storage.Storage
	Engine  *suggest.Engine
}

// Close releases all component resources.
func (c *components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

// initializeComponents wires catalog, storage, ranker, reranker and engine
// from config. withStorage controls whether the suggestion log is opened
// (one-shot commands skip it to avoid touching the database).
func initializeComponents(cfg *config.Config, logger *zap.Logger, withStorage bool) (*components, error) {
	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var store storage.Storage
	if withStorage {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			cat.Close()
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		store = s
	}

	reranker := rerank.NewClient(rerank.NewGeminiClient(&cfg.Gemini), &cfg.Gemini, logger)
	engine := suggest.NewEngine(
		cat,
		ranking.NewRanker(cfg.Ranking),
		reranker,
		store,
		&cfg.Suggest,
		&cfg.Gemini,
		logger,
	)

	return &components{Catalog: cat, Storage: store, Engine: engine}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)
	if cfg.Gemini.APIKey() == "" {
		logger.Warn("no remote credential configured, reranking disabled",
			zap.String("env", cfg.Gemini.APIKeyEnv))
	}

	comps, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.WatchOrDefault() {
		if err := comps.Catalog.Watch(watchCtx); err != nil {
			logger.Warn("catalog watch failed, hot reload disabled", zap.Error(err))
		}
	}

	srv := server.NewServer(comps.Engine, comps.Catalog, comps.Storage, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printSuggestUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae suggest [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae suggest 보증금은 왜 필요한가요?
  kotae suggest -output json "배송은 언제 되나요?"
  kotae suggest -server "" -config ./config.yaml 한도 증액 문의   # direct, no server
`)
}

// buildQuestion joins all positional args with spaces so multi-word
// questions work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSuggest() {
	args := argsReorder(os.Args[2:])

	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8090", "server URL (empty = load the catalog directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSuggestUsage(fs) }
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		printSuggestUsage(fs)
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		printSuggestUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.SuggestResponse
	if *serverURL != "" {
		response, err = suggestViaHTTP(*serverURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		comps, err := initializeComponents(cfg, logger, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer comps.Close()

		response, err = comps.Engine.Suggest(context.Background(), &models.SuggestRequest{Question: question})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteSuggestions(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func suggestViaHTTP(serverURL, question string) (*models.SuggestResponse, error) {
	body, err := json.Marshal(models.SuggestRequest{Question: question})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/suggest", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SuggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func printImportUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae import [flags] <file-or-dir>...\n\n")
	fmt.Fprintf(fs.Output(), "Builds the intent catalog from chat-log exports (CSV or XLSX,\ncolumns DATE,USER,MESSAGE). Directories are scanned for *.csv and *.xlsx.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae import -agent 까사트레이드 -out ./data/intents.json ./exports
  kotae import -agent 상담원 ./logs/2024-03.csv ./logs/2024-04.xlsx
`)
}

// collectImportInputs expands directories into their CSV/XLSX files.
func collectImportInputs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".csv", ".xlsx":
				add(filepath.Join(arg, entry.Name()))
			}
		}
	}
	return files, nil
}

func runImport() {
	args := argsReorder(os.Args[2:])

	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for the default output path)")
	outPath := fs.String("out", "", "output catalog file (default: the configured catalog path)")
	agentMarker := fs.String("agent", "", "substring identifying agent-side usernames in the logs (required)")
	maxExamples := fs.Int("max-examples", 0, "example questions kept per intent (default 12)")
	fs.Usage = func() { printImportUsage(fs) }
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		printImportUsage(fs)
		os.Exit(1)
	}
	if *agentMarker == "" {
		fmt.Fprintln(os.Stderr, "-agent is required")
		os.Exit(1)
	}

	target := *outPath
	if target == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		target = cfg.Catalog.Path
	}

	logger, err := utils.NewLogger(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	inputs, err := collectImportInputs(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to collect inputs: %v\n", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		// Never clobber an existing catalog just because the logs moved.
		fmt.Fprintln(os.Stderr, "No CSV/XLSX files found; keeping existing catalog")
		os.Exit(1)
	}

	im, err := importer.New(importer.Options{AgentMarker: *agentMarker, MaxExamples: *maxExamples}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	intents, err := im.ImportFiles(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	if len(intents) == 0 {
		fmt.Fprintln(os.Stderr, "No intents built; keeping existing catalog")
		os.Exit(1)
	}

	data, err := json.MarshalIndent(intents, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode catalog: %v\n", err)
		os.Exit(1)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d intents from %d files -> %s\n", len(intents), len(inputs), target)
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8090", "server URL (empty = read the database directly)")
	limit := fs.Int("limit", 20, "number of records")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var records []*models.SuggestionRecord
	if *serverURL != "" {
		records, err = historyViaHTTP(*serverURL, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		records, err = store.RecentSuggestions(context.Background(), *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteHistory(os.Stdout, records, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func historyViaHTTP(serverURL string, limit int) ([]*models.SuggestionRecord, error) {
	resp, err := http.Get(fmt.Sprintf("%s/api/v1/history?limit=%d", serverURL, limit))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var body struct {
		Records []*models.SuggestionRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body.Records, nil
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Intents           int    `json:"intents"`
	SuggestionsLogged *int64 `json:"suggestions_logged,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8090", "server URL (empty = load catalog and database directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cat, err := catalog.Load(cfg.Catalog.Path, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
		defer cat.Close()
		status.Intents = cat.Len()

		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err == nil {
			defer store.Close()
			if count, err := store.CountSuggestions(context.Background()); err == nil {
				status.SuggestionsLogged = &count
			}
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("intents:             %d   # intents in the catalog\n", status.Intents)
	if status.SuggestionsLogged != nil {
		fmt.Printf("suggestions_logged:  %d   # suggestion requests served\n", *status.SuggestionsLogged)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

func printUsage() {
	fmt.Println(`Kotae - CS reply suggestion engine

Usage:
  kotae <command> [flags]

Commands:
  server    Start the HTTP API server
  suggest   Get reply suggestions for a question
  import    Build the intent catalog from chat-log exports (CSV/XLSX)
  history   Show recently served suggestions
  status    Show catalog and log counters
  version   Print version
  help      Show this help

Run "kotae <command> -h" for command flags.`)
}
