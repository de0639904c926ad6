package suggest

import (
	"github.com/hyperjump/kotae/internal/models"
)

// maxSuggestions is the number of suggestions shown to the agent.
const maxSuggestions = 3

// Merge folds a remote ranking into the lexical baseline. Remote entries
// come first, in remote order; ids unknown to the catalog are dropped
// silently, guarding against hallucinated ids. The lexical score is
// carried over from the matching baseline entry when present. Remaining
// slots are backfilled from the baseline in its original order, skipping
// ids already placed. With no remote entries the result is simply the
// baseline's head.
func Merge(baseline []models.Suggestion, remote []models.RankedItem, lookup func(id string) (*models.Intent, bool)) []models.Suggestion {
	baselineScore := make(map[string]float64, len(baseline))
	for _, s := range baseline {
		baselineScore[s.IntentID] = s.Score
	}

	merged := make([]models.Suggestion, 0, maxSuggestions)
	placed := make(map[string]bool, maxSuggestions)

	for _, item := range remote {
		if len(merged) == maxSuggestions {
			break
		}
		if placed[item.IntentID] {
			continue
		}
		intent, ok := lookup(item.IntentID)
		if !ok {
			continue
		}
		merged = append(merged, models.Suggestion{
			IntentID:      intent.ID,
			Title:         intent.Title,
			Answer:        intent.Answer,
			Tags:          intent.Tags,
			Score:         baselineScore[intent.ID],
			ConfidencePct: item.ConfidencePct,
			Reason:        item.Reason,
		})
		placed[intent.ID] = true
	}

	for _, s := range baseline {
		if len(merged) == maxSuggestions {
			break
		}
		if placed[s.IntentID] {
			continue
		}
		merged = append(merged, s)
		placed[s.IntentID] = true
	}

	return merged
}
