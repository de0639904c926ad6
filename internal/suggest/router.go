package suggest

import (
	"strings"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// Route narrows the catalog by keyword rules before scoring. Rules are
// tried in order: the first rule whose query keywords appear in the
// question, and which leaves at least one intent, wins. When no rule
// fires, or the winning rule would empty the catalog, the full input is
// returned with an empty rule name.
func Route(intents []*models.Intent, question string, rules []config.RouteRule) ([]*models.Intent, string) {
	q := strings.ToLower(question)
	for _, rule := range rules {
		if !containsAny(q, rule.QueryKeywords) {
			continue
		}
		matched := make([]*models.Intent, 0, len(intents))
		for _, intent := range intents {
			if containsAny(intentText(intent), rule.IntentKeywords) {
				matched = append(matched, intent)
			}
		}
		if len(matched) > 0 {
			return matched, rule.Name
		}
	}
	return intents, ""
}

// intentText is the searchable surface of an intent for routing purposes.
func intentText(intent *models.Intent) string {
	parts := make([]string, 0, 2+len(intent.Tags)+len(intent.Examples))
	parts = append(parts, intent.Title)
	parts = append(parts, intent.Tags...)
	parts = append(parts, intent.Examples...)
	parts = append(parts, intent.Answer)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(hay string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(hay, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
