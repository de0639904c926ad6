// Package cli provides CLI output helpers for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates an -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteSuggestions writes a suggestion response to w in the given format.
func WriteSuggestions(w io.Writer, response *models.SuggestResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}
	writeSuggestionsText(w, response)
	return nil
}

func writeSuggestionsText(w io.Writer, response *models.SuggestResponse) {
	fmt.Fprintf(w, "\n%d suggestions in %dms (verdict: %s, source: %s, remote: %s)\n\n",
		len(response.Suggestions), response.Meta.QueryTime,
		response.Meta.Verdict, response.Meta.Source, response.Meta.RemoteStatus)
	for i, s := range response.Suggestions {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "#%d  %s | Confidence: %d%% | Score: %.4f\n", i+1, s.IntentID, s.ConfidencePct, s.Score)
		if s.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", s.Title)
		}
		if s.Reason != "" {
			fmt.Fprintf(w, "Reason: %s\n", s.Reason)
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.TruncateRunes(s.Answer, 200))
	}
	if response.Meta.RemoteError != "" {
		fmt.Fprintf(w, "(remote rerank degraded: %s)\n", response.Meta.RemoteError)
	}
}

// WriteHistory writes suggestion log records to w in the given format.
func WriteHistory(w io.Writer, records []*models.SuggestionRecord, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %-8s %-8s %-12s %3d%%  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Verdict, r.Source, r.RemoteStatus, r.TopConfidencePct,
			utils.TruncateRunes(r.Question, 60))
	}
	return nil
}
