package catalog

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/hyperjump/kotae/internal/models"
)

// indexDoc is the flattened document shape stored in the keyword index.
type indexDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Index is an in-memory keyword index over the catalog, used to bound the
// candidate set before n-gram scoring on large catalogs.
type Index struct {
	index bleve.Index
}

// NewIndex builds a memory-only index over intent titles, examples, tags,
// and answers. The standard analyzer (lowercase + tokenize, no stemming) is
// used so Korean and mixed-script text matches literally.
func NewIndex(intents []*models.Intent) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog index: %w", err)
	}

	for _, intent := range intents {
		doc := indexDoc{
			Title: intent.Title,
			Content: strings.Join(intent.Examples, " ") + " " +
				strings.Join(intent.Tags, " ") + " " + intent.Answer,
		}
		if err := index.Index(intent.ID, doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index intent %s: %w", intent.ID, err)
		}
	}

	return &Index{index: index}, nil
}

// TopIDs returns the ids of up to limit intents matching the question,
// best first.
func (i *Index) TopIDs(question string, limit int) ([]string, error) {
	query := bleve.NewMatchQuery(question)
	req := bleve.NewSearchRequest(query)
	req.Size = limit
	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("catalog index search failed: %w", err)
	}
	ids := make([]string, len(results.Hits))
	for n, hit := range results.Hits {
		ids[n] = hit.ID
	}
	return ids, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}
