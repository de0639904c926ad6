package rerank

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	// maxRankedItems caps the ranking regardless of what the model returns.
	maxRankedItems = 3
	// maxReasonRunes bounds the per-item justification text.
	maxReasonRunes = 120
)

// extractJSON cuts the substring between the first '{' and the last '}' of
// the raw model output. Models wrap JSON in prose or code fences often
// enough that parsing the raw text directly is hopeless.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

type rawRanking struct {
	Ranked []rawRankedItem `json:"ranked"`
}

// rawRankedItem keeps fields loose so a single wrong-typed item can be
// dropped instead of failing the whole payload.
type rawRankedItem struct {
	IntentID      any `json:"intentId"`
	ConfidencePct any `json:"confidencePct"`
	Reason        any `json:"reason"`
}

// parseRanked validates the model's structured output: items with
// wrong-typed fields are discarded, confidence is clamped to [0,100] and
// rounded, the reason is truncated, and at most 3 items survive.
func parseRanked(raw string) ([]models.RankedItem, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed rawRanking
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ranking: %w", err)
	}

	items := make([]models.RankedItem, 0, maxRankedItems)
	for _, item := range parsed.Ranked {
		id, ok := item.IntentID.(string)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		confidence, ok := item.ConfidencePct.(float64)
		if !ok {
			continue
		}
		reason, ok := item.Reason.(string)
		if !ok {
			continue
		}

		pct := int(math.Round(confidence))
		if pct < 0 {
			pct = 0
		} else if pct > 100 {
			pct = 100
		}

		items = append(items, models.RankedItem{
			IntentID:      strings.TrimSpace(id),
			ConfidencePct: pct,
			Reason:        utils.TruncateRunes(strings.TrimSpace(reason), maxReasonRunes),
		})
		if len(items) == maxRankedItems {
			break
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("ranking contains no usable items")
	}
	return items, nil
}
