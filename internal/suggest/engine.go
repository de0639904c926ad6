// Package suggest orchestrates the suggestion pipeline: keyword routing,
// lexical ranking, optional remote reranking, and the final merge.
package suggest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/storage"
)

// Sources reported in response metadata.
const (
	SourceBaseline = "baseline"
	SourceGemini   = "gemini"
)

// Reranker reorders candidate intents remotely. It never returns an
// error: every failure mode is folded into the result.
type Reranker interface {
	Rerank(ctx context.Context, question string, candidates []*models.Intent) *models.RerankResult
}

// Engine answers suggestion requests. Remote failures of any kind
// degrade to the lexical baseline; the only error a caller sees is an
// invalid question.
type Engine struct {
	catalog  *catalog.Catalog
	ranker   *ranking.Ranker
	reranker Reranker
	store    storage.Storage
	cfg      *config.SuggestConfig
	gemini   *config.GeminiConfig
	logger   *zap.Logger
}

// NewEngine wires the pipeline. reranker and store may be nil: a nil
// reranker disables remote reranking, a nil store disables the
// suggestion log.
func NewEngine(cat *catalog.Catalog, ranker *ranking.Ranker, reranker Reranker,
	store storage.Storage, cfg *config.SuggestConfig, gemini *config.GeminiConfig,
	logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:  cat,
		ranker:   ranker,
		reranker: reranker,
		store:    store,
		cfg:      cfg,
		gemini:   gemini,
		logger:   logger,
	}
}

// Suggest produces at most 3 reply suggestions for a customer question.
func (e *Engine) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := uuid.New().String()

	candidates, ruleName := Route(e.catalog.All(), req.Question, e.cfg.Routes)
	if ruleName == "" {
		candidates = e.catalog.Prefilter(req.Question, e.cfg.PrefilterLimit)
	}

	baseline := e.ranker.Rank(candidates, req.Question, e.cfg.CandidateK)

	resp := &models.SuggestResponse{
		Meta: models.SuggestMeta{
			RequestID:    requestID,
			Verdict:      models.VerdictLow,
			Source:       SourceBaseline,
			RemoteStatus: models.RemoteSkipped,
		},
	}
	if len(baseline) == 0 {
		resp.Suggestions = []models.Suggestion{}
		resp.Meta.QueryTime = time.Since(start).Milliseconds()
		e.record(ctx, req.Question, resp)
		return resp, nil
	}

	verdict := e.ranker.Verdict(&baseline[0])
	suggestions := Merge(baseline, nil, e.catalog.ByID)
	remoteStatus, remoteErr := e.remotePolicy(verdict, len(baseline))

	if remoteStatus == models.RemoteOK {
		// Policy allows a remote attempt; the client decides the rest.
		result := e.reranker.Rerank(ctx, req.Question, suggestionIntents(e.catalog, baseline))
		switch {
		case result.OK():
			suggestions = Merge(baseline, result.Ranked, e.catalog.ByID)
			verdict = e.ranker.Verdict(&suggestions[0])
			resp.Meta.Source = SourceGemini
			if result.FromCache {
				e.logger.Debug("rerank served from cache", zap.String("request_id", requestID))
			}
		case result.Unavailable:
			remoteStatus = models.RemoteUnavailable
		default:
			remoteStatus = models.RemoteFailed
			remoteErr = result.Err
			e.logger.Warn("remote rerank failed",
				zap.String("request_id", requestID), zap.String("error", result.Err))
		}
	}

	resp.Suggestions = suggestions
	resp.Meta.Verdict = verdict
	resp.Meta.RemoteStatus = remoteStatus
	resp.Meta.RemoteError = remoteErr
	resp.Meta.QueryTime = time.Since(start).Milliseconds()

	e.logger.Info("suggestion served",
		zap.String("request_id", requestID),
		zap.String("rule", ruleName),
		zap.String("verdict", string(verdict)),
		zap.String("source", resp.Meta.Source),
		zap.String("remote_status", string(remoteStatus)),
		zap.Int64("query_time_ms", resp.Meta.QueryTime),
	)
	e.record(ctx, req.Question, resp)
	return resp, nil
}

// remotePolicy decides whether a remote attempt is warranted. RemoteOK
// here means "go ahead"; the attempt itself may still downgrade it.
func (e *Engine) remotePolicy(verdict models.Verdict, candidateCount int) (models.RemoteStatus, string) {
	if e.reranker == nil || e.gemini == nil || e.gemini.APIKey() == "" {
		return models.RemoteDisabled, ""
	}
	if verdict == models.VerdictStrong {
		return models.RemoteSkipped, ""
	}
	if candidateCount < e.cfg.MinRerankCandidates {
		return models.RemoteSkipped, ""
	}
	return models.RemoteOK, ""
}

// suggestionIntents resolves baseline entries back to catalog intents,
// preserving baseline order.
func suggestionIntents(cat *catalog.Catalog, baseline []models.Suggestion) []*models.Intent {
	intents := make([]*models.Intent, 0, len(baseline))
	for _, s := range baseline {
		if intent, ok := cat.ByID(s.IntentID); ok {
			intents = append(intents, intent)
		}
	}
	return intents
}

// record appends to the suggestion log; failures are logged, never fatal.
func (e *Engine) record(ctx context.Context, question string, resp *models.SuggestResponse) {
	if e.store == nil {
		return
	}
	rec := &models.SuggestionRecord{
		ID:           resp.Meta.RequestID,
		Question:     question,
		Verdict:      resp.Meta.Verdict,
		Source:       resp.Meta.Source,
		RemoteStatus: resp.Meta.RemoteStatus,
		QueryTime:    resp.Meta.QueryTime,
	}
	if len(resp.Suggestions) > 0 {
		rec.TopIntentID = resp.Suggestions[0].IntentID
		rec.TopConfidencePct = resp.Suggestions[0].ConfidencePct
	}
	if err := e.store.LogSuggestion(ctx, rec); err != nil {
		e.logger.Warn("failed to log suggestion", zap.Error(err))
	}
}
