// Package ranking scores an intent catalog against a customer question and
// produces a calibrated top-K candidate list.
package ranking

// Config holds all tunables for lexical scoring and calibration. The
// numeric values were tuned in production against Korean CS chat logs and
// are deliberately configuration, not code.
type Config struct {
	// N-gram tokenization
	NgramSize int `yaml:"ngram_size"` // default: 3

	// Softmax calibration
	Temperature      float64 `yaml:"temperature"`       // default: 0.18
	TemperatureFloor float64 `yaml:"temperature_floor"` // default: 0.05

	// Answer quality penalties (multiplicative, applied to the cosine score)
	GenericAnswerPenalty float64 `yaml:"generic_answer_penalty"` // default: 0.35
	AckAnswerPenalty     float64 `yaml:"ack_answer_penalty"`     // default: 0.55
	ShortAnswerPenalty   float64 `yaml:"short_answer_penalty"`   // default: 0.6
	ShortAnswerRunes     int     `yaml:"short_answer_runes"`     // default: 12

	// Phrases marking non-substantive answers. Generic: pure greetings or
	// thanks. Ack: "will check and get back to you" style deferrals.
	GenericPatterns []string `yaml:"generic_patterns"`
	AckPatterns     []string `yaml:"ack_patterns"`

	// Topical keyword groups. When the question and an intent's combined
	// text both contain a member of the same group, KeywordBonus is added to
	// that intent's score; bonuses from multiple groups accumulate.
	KeywordBonus  float64    `yaml:"keyword_bonus"` // default: 0.12
	KeywordGroups [][]string `yaml:"keyword_groups"`

	// Verdict thresholds (checked against top-1 confidence and score)
	StrongConfidencePct int     `yaml:"strong_confidence_pct"` // default: 90
	StrongScore         float64 `yaml:"strong_score"`          // default: 0.22
	NormalConfidencePct int     `yaml:"normal_confidence_pct"` // default: 70
	NormalScore         float64 `yaml:"normal_score"`          // default: 0.18
}

// DefaultConfig returns the default ranking configuration, including the
// Korean CS vocabulary the system was tuned on.
func DefaultConfig() *Config {
	return &Config{
		NgramSize: 3,

		Temperature:      0.18,
		TemperatureFloor: 0.05,

		GenericAnswerPenalty: 0.35,
		AckAnswerPenalty:     0.55,
		ShortAnswerPenalty:   0.6,
		ShortAnswerRunes:     12,

		GenericPatterns: []string{
			"안녕하세요",
			"감사합니다",
			"네 고객님",
			"무엇을 도와드릴까요",
		},
		AckPatterns: []string{
			"확인 후 답변",
			"확인 후 연락",
			"확인해보겠습니다",
			"잠시만 기다려",
		},

		KeywordBonus: 0.12,
		KeywordGroups: [][]string{
			{"배송", "출고", "택배", "송장", "도착", "발송"},
			{"보증금", "한도", "입찰한도", "증액", "입금", "추가입금"},
			{"감정", "감정서", "cas", "정품"},
			{"수선", "수리", "리페어"},
			{"사이즈", "크기", "보증서", "사진", "캡쳐", "캡처", "제품명", "이미지"},
			{"수수료", "결제", "정산"},
			{"세금계산서", "현금영수증", "영수증"},
		},

		StrongConfidencePct: 90,
		StrongScore:         0.22,
		NormalConfidencePct: 70,
		NormalScore:         0.18,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.NgramSize == 0 {
		c.NgramSize = defaults.NgramSize
	}
	if c.Temperature == 0 {
		c.Temperature = defaults.Temperature
	}
	if c.TemperatureFloor == 0 {
		c.TemperatureFloor = defaults.TemperatureFloor
	}
	if c.GenericAnswerPenalty == 0 {
		c.GenericAnswerPenalty = defaults.GenericAnswerPenalty
	}
	if c.AckAnswerPenalty == 0 {
		c.AckAnswerPenalty = defaults.AckAnswerPenalty
	}
	if c.ShortAnswerPenalty == 0 {
		c.ShortAnswerPenalty = defaults.ShortAnswerPenalty
	}
	if c.ShortAnswerRunes == 0 {
		c.ShortAnswerRunes = defaults.ShortAnswerRunes
	}
	if c.GenericPatterns == nil {
		c.GenericPatterns = defaults.GenericPatterns
	}
	if c.AckPatterns == nil {
		c.AckPatterns = defaults.AckPatterns
	}
	if c.KeywordBonus == 0 {
		c.KeywordBonus = defaults.KeywordBonus
	}
	if c.KeywordGroups == nil {
		c.KeywordGroups = defaults.KeywordGroups
	}
	if c.StrongConfidencePct == 0 {
		c.StrongConfidencePct = defaults.StrongConfidencePct
	}
	if c.StrongScore == 0 {
		c.StrongScore = defaults.StrongScore
	}
	if c.NormalConfidencePct == 0 {
		c.NormalConfidencePct = defaults.NormalConfidencePct
	}
	if c.NormalScore == 0 {
		c.NormalScore = defaults.NormalScore
	}
}
