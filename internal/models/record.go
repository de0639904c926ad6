package models

import "time"

// SuggestionRecord is one logged suggestion request, kept for history and
// quality review of the assistant's picks.
type SuggestionRecord struct {
	ID               string       `json:"id"`
	Question         string       `json:"question"`
	TopIntentID      string       `json:"top_intent_id"`
	TopConfidencePct int          `json:"top_confidence_pct"`
	Verdict          Verdict      `json:"verdict"`
	Source           string       `json:"source"`
	RemoteStatus     RemoteStatus `json:"remote_status"`
	QueryTime        int64        `json:"query_time_ms"`
	CreatedAt        time.Time    `json:"created_at"`
}
