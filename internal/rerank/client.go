// Package rerank asks a remote Gemini model to reorder the lexical
// baseline's candidate intents. Every failure mode degrades to the
// baseline: the caller never sees an error, only a tagged result.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// fallbackModels are tried in order after the configured model. They are
// appended to, not replaced by, whatever the config names.
var fallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro",
}

// discoveryLimit bounds how many discovered model names are retried after
// the whole hardcoded list came back not-found.
const discoveryLimit = 12

type cacheEntry struct {
	result  models.RerankResult
	expires time.Time
}

// Client reranks candidate intents through a Generator. It owns three
// pieces of process-wide state shared across requests: the response cache,
// the circuit-breaker deadline, and the discovered-model list. All three
// sit behind one mutex; network calls happen outside it.
type Client struct {
	gen        Generator
	cfg        *config.GeminiConfig
	logger     *zap.Logger
	cacheTTL   time.Duration
	circuitTTL time.Duration

	// now is replaceable in tests.
	now func() time.Time

	mu          sync.Mutex
	cache       map[string]cacheEntry
	openUntil   time.Time
	discovered  []string
	didDiscover bool
}

// NewClient creates a reranking client around the given generator.
func NewClient(gen Generator, cfg *config.GeminiConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		gen:        gen,
		cfg:        cfg,
		logger:     logger,
		cacheTTL:   time.Duration(cfg.CacheTTLMinutes) * time.Minute,
		circuitTTL: time.Duration(cfg.CircuitTTLMinutes) * time.Minute,
		now:        time.Now,
		cache:      make(map[string]cacheEntry),
	}
}

// Rerank asks the remote model to choose and order at most 3 of the given
// candidates. Guards run in order: credential, circuit breaker, cache;
// only then is the network touched. Both successes and failures are
// memoized for the cache TTL so a flapping remote is not hammered.
func (c *Client) Rerank(ctx context.Context, question string, candidates []*models.Intent) *models.RerankResult {
	if c.cfg.APIKey() == "" {
		return &models.RerankResult{Unavailable: true}
	}

	key := cacheKey(question, candidates)

	c.mu.Lock()
	if c.now().Before(c.openUntil) {
		c.mu.Unlock()
		return &models.RerankResult{Unavailable: true}
	}
	if entry, ok := c.cache[key]; ok && c.now().Before(entry.expires) {
		c.mu.Unlock()
		result := entry.result
		result.FromCache = true
		return &result
	}
	c.mu.Unlock()

	result := c.attempt(ctx, question, candidates)

	c.mu.Lock()
	c.cache[key] = cacheEntry{result: *result, expires: c.now().Add(c.cacheTTL)}
	c.mu.Unlock()

	return result
}

// attempt walks the model fallback chain. Each model call has one of three
// outcomes: success ends the walk, a not-found response advances to the
// next model, anything else aborts. When every model in the hardcoded
// chain is unknown, the provider's model list is discovered once and the
// walk repeats over the best discovered names.
func (c *Client) attempt(ctx context.Context, question string, candidates []*models.Intent) *models.RerankResult {
	prompt := buildPrompt(question, candidates, c.cfg.AnswerPreviewRunes, c.cfg.MaxExamples)

	result, exhausted := c.tryModels(ctx, c.modelChain(), prompt)
	if !exhausted {
		return result
	}

	discovered, err := c.discoverModels(ctx)
	if err != nil {
		return &models.RerankResult{Err: fmt.Sprintf("model discovery failed: %v", err)}
	}
	result, exhausted = c.tryModels(ctx, discovered, prompt)
	if exhausted {
		return &models.RerankResult{Err: "no usable model found"}
	}
	return result
}

// tryModels returns (result, false) as soon as an attempt succeeds or
// aborts, or (nil, true) when every model answered not-found.
func (c *Client) tryModels(ctx context.Context, chain []string, prompt string) (*models.RerankResult, bool) {
	for _, model := range chain {
		text, err := c.gen.Generate(ctx, model, prompt)
		if err == nil {
			ranked, perr := parseRanked(text)
			if perr != nil {
				c.logger.Warn("unusable reranking output", zap.String("model", model), zap.Error(perr))
				return &models.RerankResult{Err: perr.Error(), Model: model}, false
			}
			return &models.RerankResult{Ranked: ranked, Model: model}, false
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.StatusCode {
			case http.StatusNotFound:
				c.logger.Debug("model not found, trying next", zap.String("model", model))
				continue
			case http.StatusTooManyRequests:
				c.openCircuit()
				c.logger.Warn("quota exhausted, circuit opened",
					zap.String("model", model), zap.Duration("ttl", c.circuitTTL))
				return &models.RerankResult{Err: err.Error(), Status: statusErr.StatusCode, Model: model}, false
			default:
				return &models.RerankResult{Err: err.Error(), Status: statusErr.StatusCode, Model: model}, false
			}
		}
		return &models.RerankResult{Err: err.Error(), Model: model}, false
	}
	return nil, true
}

func (c *Client) openCircuit() {
	c.mu.Lock()
	c.openUntil = c.now().Add(c.circuitTTL)
	c.mu.Unlock()
}

// modelChain is the configured model followed by the hardcoded fallbacks,
// deduplicated.
func (c *Client) modelChain() []string {
	chain := make([]string, 0, len(fallbackModels)+1)
	seen := make(map[string]bool, len(fallbackModels)+1)
	if c.cfg.Model != "" {
		chain = append(chain, c.cfg.Model)
		seen[c.cfg.Model] = true
	}
	for _, model := range fallbackModels {
		if !seen[model] {
			chain = append(chain, model)
			seen[model] = true
		}
	}
	return chain
}

// discoverModels fetches the provider's model list at most once per
// process and caches the preference-ranked top of it.
func (c *Client) discoverModels(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.didDiscover {
		discovered := c.discovered
		c.mu.Unlock()
		return discovered, nil
	}
	c.mu.Unlock()

	names, err := c.gen.ListModels(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.didDiscover = true
	if err != nil {
		return nil, err
	}
	ranked := rankModelNames(names)
	if len(ranked) > discoveryLimit {
		ranked = ranked[:discoveryLimit]
	}
	c.discovered = ranked
	c.logger.Info("discovered models", zap.Int("count", len(names)), zap.Strings("selected", ranked))
	return ranked, nil
}

// rankModelNames orders discovered names by a rough usefulness heuristic:
// flash over pro over latest, with experimental and preview builds pushed
// to the back.
func rankModelNames(names []string) []string {
	ranked := append([]string(nil), names...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return modelScore(ranked[i]) > modelScore(ranked[j])
	})
	return ranked
}

func modelScore(name string) int {
	lower := strings.ToLower(name)
	score := 0
	if strings.Contains(lower, "flash") {
		score += 100
	}
	if strings.Contains(lower, "pro") {
		score += 50
	}
	if strings.Contains(lower, "latest") {
		score += 10
	}
	if strings.Contains(lower, "exp") {
		score -= 200
	}
	if strings.Contains(lower, "preview") {
		score -= 200
	}
	return score
}

// cacheKey identifies a reranking request by its normalized question and
// the exact candidate id sequence.
func cacheKey(question string, candidates []*models.Intent) string {
	ids := make([]string, 0, len(candidates))
	for _, intent := range candidates {
		ids = append(ids, intent.ID)
	}
	return strings.ToLower(utils.NormalizeSpace(question)) + "|" + strings.Join(ids, ",")
}
