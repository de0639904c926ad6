package models

import "fmt"

// Verdict is the coarse confidence label attached to a suggestion response.
type Verdict string

const (
	VerdictStrong Verdict = "strong"
	VerdictNormal Verdict = "normal"
	VerdictLow    Verdict = "low"
)

// Suggestion is one ranked reply candidate returned to the caller.
// Score is the raw lexical similarity (0..1, informational); ConfidencePct is
// the calibrated percentage. Reason is only set when the remote reranker
// produced the ordering.
type Suggestion struct {
	IntentID      string   `json:"intentId"`
	Title         string   `json:"title"`
	Answer        string   `json:"answer"`
	Tags          []string `json:"tags,omitempty"`
	Score         float64  `json:"score"`
	ConfidencePct int      `json:"confidencePct"`
	Reason        string   `json:"reason,omitempty"`
}

// SuggestRequest is the input for a suggestion call.
type SuggestRequest struct {
	Question string `json:"question"`
}

// Validate rejects empty or whitespace-only questions.
func (r *SuggestRequest) Validate() error {
	if !hasVisibleRune(r.Question) {
		return fmt.Errorf("question cannot be empty")
	}
	return nil
}

func hasVisibleRune(s string) bool {
	for _, c := range s {
		switch c {
		case ' ', '\t', '\n', '\r':
		default:
			return true
		}
	}
	return false
}

// SuggestMeta describes how a response was produced, for UI transparency.
type SuggestMeta struct {
	RequestID    string       `json:"request_id,omitempty"`
	Verdict      Verdict      `json:"verdict"`
	Source       string       `json:"source"`
	RemoteStatus RemoteStatus `json:"remote_status"`
	RemoteError  string       `json:"remote_error,omitempty"`
	QueryTime    int64        `json:"query_time_ms"`
}

// SuggestResponse is the response for a suggestion request.
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Meta        SuggestMeta  `json:"meta"`
}
