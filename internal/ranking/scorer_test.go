package ranking

import (
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func substantiveIntent() *models.Intent {
	return &models.Intent{
		ID:    "deposit_info",
		Title: "보증금/입찰한도 안내",
		Answer: "보증금은 입찰한도 설정을 위해 필요합니다. 입금하신 금액의 10배까지 입찰이 가능하며, " +
			"낙찰되지 않은 보증금은 요청 시 환급해 드립니다.",
		Examples: []string{
			"보증금은 왜 필요한가요?",
			"입찰한도 증액은 어떻게 하나요?",
			"보증금 환급 가능한가요?",
		},
		Tags: []string{"보증금", "한도"},
	}
}

func TestLexicalScorer_Score(t *testing.T) {
	scorer := NewLexicalScorer(nil)
	intent := substantiveIntent()

	t.Run("matching question scores above zero", func(t *testing.T) {
		if got := scorer.Score("보증금은 왜 필요한가요?", intent); got <= 0 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty question scores zero", func(t *testing.T) {
		if got := scorer.Score("", intent); got != 0 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("nil intent scores zero", func(t *testing.T) {
		if got := scorer.Score("보증금", nil); got != 0 {
			t.Errorf("got %v", got)
		}
	})
}

func TestAnswerPenalty(t *testing.T) {
	config := DefaultConfig()
	scorer := NewLexicalScorer(config)

	tests := []struct {
		name   string
		answer string
		want   float64
	}{
		{
			name:   "pure greeting",
			answer: "안녕하세요. 감사합니다.",
			want:   config.GenericAnswerPenalty,
		},
		{
			name:   "will check and reply",
			answer: "네, 확인 후 답변 드리겠습니다. 잠시만 기다려 주세요.",
			want:   config.AckAnswerPenalty,
		},
		{
			name:   "very short answer",
			answer: "네 맞습니다.",
			want:   config.ShortAnswerPenalty,
		},
		{
			name:   "substantive answer unpenalized",
			answer: substantiveIntent().Answer,
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.answerPenalty(tt.answer); got != tt.want {
				t.Errorf("answerPenalty(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestKeywordBonus(t *testing.T) {
	config := DefaultConfig()
	scorer := NewLexicalScorer(config)
	intent := substantiveIntent()

	t.Run("shared group adds fixed bump", func(t *testing.T) {
		got := scorer.keywordBonus("보증금 얼마를 넣어야 하나요", intent)
		if got != config.KeywordBonus {
			t.Errorf("got %v, want %v", got, config.KeywordBonus)
		}
	})

	t.Run("bonuses accumulate across groups", func(t *testing.T) {
		// "보증금" and "입금" are in the deposit group; "수수료" is its own group.
		multi := &models.Intent{
			ID:       "fees",
			Title:    "수수료/보증금 정산 안내",
			Answer:   "수수료는 낙찰가 기준으로 정산되며 보증금에서 차감되지 않습니다.",
			Examples: []string{"수수료는 어떻게 계산되나요"},
		}
		got := scorer.keywordBonus("보증금이랑 수수료 문의드립니다", multi)
		want := 2 * config.KeywordBonus
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("no shared group no bonus", func(t *testing.T) {
		if got := scorer.keywordBonus("로그인이 안돼요", intent); got != 0 {
			t.Errorf("got %v", got)
		}
	})
}

// The bonus is additive on top of the cosine score, so a topically-correct
// intent gains a fixed amount regardless of its lexical overlap.
func TestKeywordBonus_IndependentOfCosine(t *testing.T) {
	config := DefaultConfig()
	scorer := NewLexicalScorer(config)

	onTopic := &models.Intent{
		ID:       "shipping",
		Title:    "배송/출고 안내",
		Answer:   "결제 확인 후 영업일 기준 2~3일 내 출고되며, 송장 번호는 출고 당일 등록됩니다.",
		Examples: []string{"출고는 언제 되나요"},
	}

	question := "주문한 물건 배송 언제 오나요"
	raw := Cosine(
		TermFrequency(Ngrams(question, config.NgramSize)),
		TermFrequency(Ngrams(intentDocument(onTopic), config.NgramSize)),
	)

	got := scorer.Score(question, onTopic)
	want := raw + config.KeywordBonus // substantive answer: penalty multiplier is 1
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Score = %v, want cosine %v + bonus %v", got, raw, config.KeywordBonus)
	}
}
