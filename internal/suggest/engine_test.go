package suggest

import (
	"context"
	"testing"

	"github.com/hyperjump/kotae/internal/catalog"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/ranking"
)

const testKeyEnv = "KOTAE_TEST_GEMINI_KEY"

// fakeReranker returns a scripted result and records invocations.
type fakeReranker struct {
	result *models.RerankResult
	calls  int
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, _ []*models.Intent) *models.RerankResult {
	f.calls++
	return f.result
}

type recordingStore struct {
	records []*models.SuggestionRecord
}

func (r *recordingStore) LogSuggestion(_ context.Context, rec *models.SuggestionRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingStore) RecentSuggestions(context.Context, int) ([]*models.SuggestionRecord, error) {
	return r.records, nil
}

func (r *recordingStore) CountSuggestions(context.Context) (int64, error) {
	return int64(len(r.records)), nil
}

func (r *recordingStore) Close() error { return nil }

func newTestEngine(t *testing.T, reranker Reranker, store *recordingStore) *Engine {
	t.Helper()
	cat, err := catalog.New(routingCatalog(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Gemini.APIKeyEnv = testKeyEnv

	engine := NewEngine(cat, ranking.NewRanker(cfg.Ranking), reranker, nil, &cfg.Suggest, &cfg.Gemini, nil)
	if store != nil {
		engine.store = store
	}
	return engine
}

func TestSuggest_InvalidQuestion(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: q}); err == nil {
			t.Errorf("question %q should be rejected", q)
		}
	}
}

func TestSuggest_BaselineOnly(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	engine := newTestEngine(t, nil, nil)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "보증금은 왜 필요한가요?"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) == 0 || len(resp.Suggestions) > 3 {
		t.Fatalf("got %d suggestions", len(resp.Suggestions))
	}
	if resp.Suggestions[0].IntentID != "deposit_info" {
		t.Errorf("top suggestion: %s", resp.Suggestions[0].IntentID)
	}
	if resp.Meta.Source != SourceBaseline {
		t.Errorf("source: %s", resp.Meta.Source)
	}
	if resp.Meta.RemoteStatus != models.RemoteDisabled {
		t.Errorf("remote status: %s", resp.Meta.RemoteStatus)
	}
	if resp.Meta.RequestID == "" {
		t.Error("request id missing")
	}
}

func TestSuggest_RemoteApplied(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{
		Ranked: []models.RankedItem{
			{IntentID: "size_guide", ConfidencePct: 88, Reason: "사이즈 문의"},
		},
		Model: "gemini-2.0-flash",
	}}
	engine := newTestEngine(t, reranker, nil)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "환불 관련 문의 드립니다"})
	if err != nil {
		t.Fatal(err)
	}
	if reranker.calls != 1 {
		t.Fatalf("reranker calls: %d", reranker.calls)
	}
	if resp.Meta.Source != SourceGemini || resp.Meta.RemoteStatus != models.RemoteOK {
		t.Errorf("meta: %+v", resp.Meta)
	}
	if resp.Suggestions[0].IntentID != "size_guide" {
		t.Errorf("top suggestion: %s", resp.Suggestions[0].IntentID)
	}
	if resp.Suggestions[0].ConfidencePct != 88 || resp.Suggestions[0].Reason != "사이즈 문의" {
		t.Errorf("remote fields: %+v", resp.Suggestions[0])
	}
}

func TestSuggest_RemoteFailureKeepsBaseline(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{Err: "ranking contains no usable items"}}
	engine := newTestEngine(t, reranker, nil)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "환불 관련 문의 드립니다"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Meta.Source != SourceBaseline {
		t.Errorf("source: %s", resp.Meta.Source)
	}
	if resp.Meta.RemoteStatus != models.RemoteFailed {
		t.Errorf("remote status: %s", resp.Meta.RemoteStatus)
	}
	if resp.Meta.RemoteError == "" {
		t.Error("remote error missing")
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("baseline suggestions missing")
	}
}

func TestSuggest_RemoteUnavailable(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{Unavailable: true}}
	engine := newTestEngine(t, reranker, nil)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "환불 관련 문의 드립니다"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Meta.RemoteStatus != models.RemoteUnavailable {
		t.Errorf("remote status: %s", resp.Meta.RemoteStatus)
	}
	if resp.Meta.Source != SourceBaseline {
		t.Errorf("source: %s", resp.Meta.Source)
	}
}

func TestSuggest_StrongVerdictSkipsRemote(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{
		Ranked: []models.RankedItem{{IntentID: "deposit_info", ConfidencePct: 99, Reason: "x"}},
	}}
	engine := newTestEngine(t, reranker, nil)
	// Thresholds low enough that any top candidate counts as strong.
	engine.ranker = ranking.NewRanker(&ranking.Config{
		StrongConfidencePct: 1,
		StrongScore:         0.0001,
	})

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "보증금은 왜 필요한가요?"})
	if err != nil {
		t.Fatal(err)
	}
	if reranker.calls != 0 {
		t.Errorf("reranker should not be called, calls=%d", reranker.calls)
	}
	if resp.Meta.RemoteStatus != models.RemoteSkipped {
		t.Errorf("remote status: %s", resp.Meta.RemoteStatus)
	}
	if resp.Meta.Verdict != models.VerdictStrong {
		t.Errorf("verdict: %s", resp.Meta.Verdict)
	}
}

func TestSuggest_TooFewCandidatesSkipsRemote(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{
		Ranked: []models.RankedItem{{IntentID: "deposit_info", ConfidencePct: 99, Reason: "x"}},
	}}
	engine := newTestEngine(t, reranker, nil)
	engine.cfg.MinRerankCandidates = 10

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "환불 관련 문의 드립니다"})
	if err != nil {
		t.Fatal(err)
	}
	if reranker.calls != 0 {
		t.Errorf("reranker should not be called, calls=%d", reranker.calls)
	}
	if resp.Meta.RemoteStatus != models.RemoteSkipped {
		t.Errorf("remote status: %s", resp.Meta.RemoteStatus)
	}
}

func TestSuggest_HallucinatedIDDropped(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")
	reranker := &fakeReranker{result: &models.RerankResult{
		Ranked: []models.RankedItem{
			{IntentID: "invented_intent", ConfidencePct: 99, Reason: "없는 id"},
			{IntentID: "shipping_schedule", ConfidencePct: 75, Reason: "배송 문의"},
		},
	}}
	engine := newTestEngine(t, reranker, nil)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "환불 관련 문의 드립니다"})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range resp.Suggestions {
		if s.IntentID == "invented_intent" {
			t.Error("hallucinated id in response")
		}
	}
	if resp.Suggestions[0].IntentID != "shipping_schedule" {
		t.Errorf("top suggestion: %s", resp.Suggestions[0].IntentID)
	}
}

func TestSuggest_LogsRecord(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	store := &recordingStore{}
	engine := newTestEngine(t, nil, store)

	resp, err := engine.Suggest(context.Background(), &models.SuggestRequest{Question: "보증금은 왜 필요한가요?"})
	if err != nil {
		t.Fatal(err)
	}
	if len(store.records) != 1 {
		t.Fatalf("got %d records", len(store.records))
	}
	rec := store.records[0]
	if rec.ID != resp.Meta.RequestID {
		t.Errorf("record id: %s", rec.ID)
	}
	if rec.Question != "보증금은 왜 필요한가요?" {
		t.Errorf("record question: %s", rec.Question)
	}
	if rec.TopIntentID != resp.Suggestions[0].IntentID {
		t.Errorf("record top intent: %s", rec.TopIntentID)
	}
}
