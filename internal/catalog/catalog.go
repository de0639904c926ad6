// Package catalog loads and serves the read-only intent catalog.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Catalog holds the intent set the engine suggests from. Intents are
// immutable once loaded; the set as a whole can be swapped by Reload, so all
// reads go through the RWMutex.
type Catalog struct {
	mu      sync.RWMutex
	path    string
	intents []*models.Intent
	byID    map[string]*models.Intent
	index   *Index
	logger  *zap.Logger
}

// Load reads the catalog JSON file at path, validates it, and builds the
// keyword prefilter index.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{path: path, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// New builds a catalog directly from intents, without a backing file.
// Used by tests and the one-shot CLI path.
func New(intents []*models.Intent, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{logger: logger}
	if err := c.swap(intents); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the backing file and atomically swaps the intent set.
// On any error the previous set stays in place.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	var intents []*models.Intent
	if err := json.Unmarshal(data, &intents); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.swap(intents); err != nil {
		return err
	}
	c.logger.Info("catalog loaded", zap.String("path", c.path), zap.Int("intents", len(intents)))
	return nil
}

func (c *Catalog) swap(intents []*models.Intent) error {
	byID := make(map[string]*models.Intent, len(intents))
	for _, intent := range intents {
		if err := intent.Validate(); err != nil {
			return fmt.Errorf("invalid catalog: %w", err)
		}
		if _, dup := byID[intent.ID]; dup {
			return fmt.Errorf("invalid catalog: duplicate intent id %s", intent.ID)
		}
		byID[intent.ID] = intent
	}

	index, err := NewIndex(intents)
	if err != nil {
		// The prefilter is an optimization; a broken index must not block
		// the catalog swap.
		c.logger.Warn("catalog index build failed", zap.Error(err))
		index = nil
	}

	c.mu.Lock()
	old := c.index
	c.intents = intents
	c.byID = byID
	c.index = index
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// All returns the current intent set in catalog order.
func (c *Catalog) All() []*models.Intent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*models.Intent(nil), c.intents...)
}

// ByID returns the intent with the given id, if present.
func (c *Catalog) ByID(id string) (*models.Intent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	intent, ok := c.byID[id]
	return intent, ok
}

// Len returns the number of intents.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.intents)
}

// Prefilter narrows the catalog to at most limit intents relevant to the
// question, using the keyword index, preserving catalog order. Falls back to
// the full catalog when the index is unavailable, the query matches nothing,
// or the catalog is already within the limit.
func (c *Catalog) Prefilter(question string, limit int) []*models.Intent {
	c.mu.RLock()
	intents := c.intents
	index := c.index
	c.mu.RUnlock()

	if limit <= 0 || len(intents) <= limit || index == nil {
		return append([]*models.Intent(nil), intents...)
	}

	ids, err := index.TopIDs(question, limit)
	if err != nil || len(ids) == 0 {
		return append([]*models.Intent(nil), intents...)
	}
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	picked := make([]*models.Intent, 0, limit)
	for _, intent := range intents {
		if keep[intent.ID] {
			picked = append(picked, intent)
		}
	}
	if len(picked) == 0 {
		return append([]*models.Intent(nil), intents...)
	}
	return picked
}

// Close releases the prefilter index.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != nil {
		err := c.index.Close()
		c.index = nil
		return err
	}
	return nil
}
