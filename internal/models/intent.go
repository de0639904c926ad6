// Package models defines core data structures for intents, suggestions, and rerank results.
package models

import "fmt"

// Intent is one catalog entry: a canonical support answer plus the customer
// questions it has historically answered. Entries are immutable once loaded.
type Intent struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Answer   string   `json:"answer" yaml:"answer"`
	Examples []string `json:"examples" yaml:"examples"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Validate checks that the intent is usable as a suggestion candidate.
func (i *Intent) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("intent id cannot be empty")
	}
	if i.Answer == "" {
		return fmt.Errorf("intent %s: answer cannot be empty", i.ID)
	}
	if len(i.Examples) == 0 {
		return fmt.Errorf("intent %s: at least one example is required", i.ID)
	}
	return nil
}
