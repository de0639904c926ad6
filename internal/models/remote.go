package models

// RemoteStatus records the outcome of the remote reranking attempt for a
// single suggestion request.
type RemoteStatus string

const (
	// RemoteDisabled means no credential is configured; reranking is off.
	RemoteDisabled RemoteStatus = "disabled"
	// RemoteSkipped means the baseline was already confident enough.
	RemoteSkipped RemoteStatus = "skipped"
	// RemoteUnavailable means the circuit breaker is open.
	RemoteUnavailable RemoteStatus = "unavailable"
	// RemoteFailed means the call was attempted and did not produce a usable ranking.
	RemoteFailed RemoteStatus = "failed"
	// RemoteOK means the remote ranking was applied.
	RemoteOK RemoteStatus = "ok"
)

// RankedItem is one entry of a remote ranking: an intent chosen from the
// candidate set with a calibrated confidence and a one-line justification.
type RankedItem struct {
	IntentID      string `json:"intentId"`
	ConfidencePct int    `json:"confidencePct"`
	Reason        string `json:"reason"`
}

// RerankResult is the tagged outcome of a reranker call. Exactly one of the
// states holds: Ranked non-empty (success), Err non-empty (failure), or
// Unavailable true (no credential / circuit open, nothing was attempted).
type RerankResult struct {
	Ranked      []RankedItem
	Unavailable bool
	Status      int
	Err         string
	Model       string
	FromCache   bool
}

// OK reports whether the result carries a usable ranking.
func (r *RerankResult) OK() bool {
	return r != nil && !r.Unavailable && r.Err == "" && len(r.Ranked) > 0
}
