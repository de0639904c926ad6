package config

import "github.com/hyperjump/kotae/internal/ranking"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "/usr/local/var/kotae/data/intents.json"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/suggestions.db"
	}
	if cfg.Suggest.TopK == 0 {
		cfg.Suggest.TopK = 3
	}
	if cfg.Suggest.CandidateK == 0 {
		cfg.Suggest.CandidateK = 5
	}
	if cfg.Suggest.PrefilterLimit == 0 {
		cfg.Suggest.PrefilterLimit = 40
	}
	if cfg.Suggest.MinRerankCandidates == 0 {
		cfg.Suggest.MinRerankCandidates = 3
	}
	if cfg.Suggest.Routes == nil {
		cfg.Suggest.Routes = DefaultRoutes()
	}
	if cfg.Ranking == nil {
		cfg.Ranking = ranking.DefaultConfig()
	} else {
		cfg.Ranking.ApplyDefaults()
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.2
	}
	if cfg.Gemini.MaxOutputTokens == 0 {
		cfg.Gemini.MaxOutputTokens = 512
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 15
	}
	if cfg.Gemini.CacheTTLMinutes == 0 {
		cfg.Gemini.CacheTTLMinutes = 10
	}
	if cfg.Gemini.CircuitTTLMinutes == 0 {
		cfg.Gemini.CircuitTTLMinutes = 5
	}
	if cfg.Gemini.AnswerPreviewRunes == 0 {
		cfg.Gemini.AnswerPreviewRunes = 220
	}
	if cfg.Gemini.MaxExamples == 0 {
		cfg.Gemini.MaxExamples = 6
	}
}

// DefaultRoutes returns the keyword routing rules tuned for the Korean CS
// deployment: shipping first (most frequent), then deposit/limit, then
// product info questions.
func DefaultRoutes() []RouteRule {
	return []RouteRule{
		{
			Name:           "shipping",
			QueryKeywords:  []string{"배송", "출고", "언제와", "안와", "택배", "송장", "진행중", "도착"},
			IntentKeywords: []string{"배송", "출고", "송장", "택배"},
		},
		{
			Name:           "deposit-limit",
			QueryKeywords:  []string{"한도", "입찰한도", "증액", "추가입금", "추가 입금", "한도증액", "한도 증액", "보증금"},
			IntentKeywords: []string{"보증금", "한도", "입찰한도", "증액", "입금"},
		},
		{
			Name:           "product-info",
			QueryKeywords:  []string{"사이즈", "크기", "보증서", "사진", "캡쳐", "캡처", "제품명", "이미지"},
			IntentKeywords: []string{"사이즈", "크기", "보증서", "사진", "캡쳐", "캡처", "제품명", "이미지"},
		},
	}
}
