package ranking

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// LexicalScorer computes adjusted similarity scores between a question and
// individual intents. Pure and reentrant: safe for concurrent use across
// requests.
type LexicalScorer struct {
	config *Config
}

// NewLexicalScorer creates a scorer with the given config.
func NewLexicalScorer(config *Config) *LexicalScorer {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &LexicalScorer{config: config}
}

// Score computes the adjusted similarity between a question and one intent.
// Convenience wrapper around ScoreVector for single-intent callers.
func (s *LexicalScorer) Score(question string, intent *models.Intent) float64 {
	qv := TermFrequency(Ngrams(question, s.config.NgramSize))
	return s.ScoreVector(question, qv, intent)
}

// ScoreVector scores one intent against a pre-built question vector, so
// ranking a whole catalog tokenizes the question only once. The result is
// cosine similarity of the question against the intent's example corpus,
// multiplied by the answer-quality penalty and increased by keyword-group
// bonuses.
func (s *LexicalScorer) ScoreVector(question string, qv Vector, intent *models.Intent) float64 {
	if intent == nil || len(qv) == 0 {
		return 0
	}
	doc := intentDocument(intent)
	dv := TermFrequency(Ngrams(doc, s.config.NgramSize))

	score := Cosine(qv, dv)
	score *= s.answerPenalty(intent.Answer)
	score += s.keywordBonus(question, intent)
	return score
}

// intentDocument is the text an intent is matched against: all examples plus
// the title. The answer itself is excluded here (it is scored separately by
// the penalty step) so that verbose answers do not drown out the examples.
func intentDocument(intent *models.Intent) string {
	return strings.Join(intent.Examples, " / ") + " " + intent.Title
}

// combinedText is the full lowercase text of an intent, used for keyword
// group matching (mirrors what a keyword router sees).
func combinedText(intent *models.Intent) string {
	parts := make([]string, 0, len(intent.Examples)+len(intent.Tags)+2)
	parts = append(parts, intent.Title)
	parts = append(parts, intent.Tags...)
	parts = append(parts, intent.Examples...)
	parts = append(parts, intent.Answer)
	return utils.NormalizeSpace(strings.ToLower(strings.Join(parts, " ")))
}

// answerPenalty demotes intents whose canonical answer is non-substantive.
// Returns a multiplier in (0,1]: pure greetings/thanks get the harshest
// penalty, "will check and reply" deferrals a milder one, and very short
// answers a generic one.
func (s *LexicalScorer) answerPenalty(answer string) float64 {
	norm := utils.NormalizeSpace(strings.ToLower(answer))
	runes := len([]rune(norm))

	if runes <= 25 && containsAny(norm, s.config.GenericPatterns) {
		return s.config.GenericAnswerPenalty
	}
	if runes <= 60 && containsAny(norm, s.config.AckPatterns) {
		return s.config.AckAnswerPenalty
	}
	if runes < s.config.ShortAnswerRunes {
		return s.config.ShortAnswerPenalty
	}
	return 1
}

// keywordBonus adds a fixed bump for every keyword group that appears in
// both the question and the intent's combined text. Independent of the
// cosine score: a topically-correct intent with low lexical overlap can
// still outrank an off-topic one.
func (s *LexicalScorer) keywordBonus(question string, intent *models.Intent) float64 {
	q := utils.NormalizeSpace(strings.ToLower(question))
	if q == "" {
		return 0
	}
	text := combinedText(intent)

	var bonus float64
	for _, group := range s.config.KeywordGroups {
		if containsAny(q, group) && containsAny(text, group) {
			bonus += s.config.KeywordBonus
		}
	}
	return bonus
}

func containsAny(hay string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(hay, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
