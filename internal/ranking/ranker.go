package ranking

import (
	"math"
	"sort"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	minTopK = 1
	maxTopK = 5
)

// Ranker turns raw lexical scores into an ordered, calibrated suggestion list.
type Ranker struct {
	config *Config
	scorer *LexicalScorer
}

// NewRanker creates a Ranker with the given configuration.
func NewRanker(config *Config) *Ranker {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Ranker{
		config: config,
		scorer: NewLexicalScorer(config),
	}
}

// Scorer returns the underlying lexical scorer.
func (r *Ranker) Scorer() *LexicalScorer {
	return r.scorer
}

// Config returns the ranking configuration.
func (r *Ranker) Config() *Config {
	return r.config
}

// scoredCandidate pairs an intent with its adjusted score and catalog position.
type scoredCandidate struct {
	intent *models.Intent
	score  float64
	order  int
}

// Rank scores every intent against the question, sorts descending (stable on
// catalog order for ties), truncates to topK (clamped to [1,5], default 3),
// and calibrates the surviving scores to integer percentages via softmax.
// An empty catalog or empty question yields an empty list, never an error.
func (r *Ranker) Rank(intents []*models.Intent, question string, topK int) []models.Suggestion {
	if topK <= 0 {
		topK = 3
	}
	if topK < minTopK {
		topK = minTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	if len(intents) == 0 {
		return []models.Suggestion{}
	}

	qv := TermFrequency(Ngrams(question, r.config.NgramSize))

	scored := make([]scoredCandidate, 0, len(intents))
	for i, intent := range intents {
		scored = append(scored, scoredCandidate{
			intent: intent,
			score:  r.scorer.ScoreVector(question, qv, intent),
			order:  i,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	scores := make([]float64, len(scored))
	for i, c := range scored {
		scores[i] = c.score
	}
	probs := Softmax(scores, r.config.Temperature, r.config.TemperatureFloor)

	suggestions := make([]models.Suggestion, len(scored))
	for i, c := range scored {
		suggestions[i] = models.Suggestion{
			IntentID:      c.intent.ID,
			Title:         c.intent.Title,
			Answer:        c.intent.Answer,
			Tags:          c.intent.Tags,
			Score:         math.Min(c.score, 1),
			ConfidencePct: int(math.Round(probs[i] * 100)),
		}
	}
	return suggestions
}

// Verdict labels the top suggestion with a three-level confidence tier based
// on its calibrated percentage and lexical score.
func (r *Ranker) Verdict(top *models.Suggestion) models.Verdict {
	if top == nil {
		return models.VerdictLow
	}
	if top.ConfidencePct >= r.config.StrongConfidencePct && top.Score >= r.config.StrongScore {
		return models.VerdictStrong
	}
	if top.ConfidencePct >= r.config.NormalConfidencePct && top.Score >= r.config.NormalScore {
		return models.VerdictNormal
	}
	return models.VerdictLow
}
