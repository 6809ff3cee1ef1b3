// Package keyword indexes saved documents for owner-scoped full-text search.
package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/yomitori/internal/models"
)

// Result is one search hit.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// indexEntry is the shape stored in the index: the document name plus the
// concatenated extracted texts, and the owner for scoping.
type indexEntry struct {
	Owner   string `json:"owner"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Index is a Bleve index over saved documents.
type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a full re-index after mapping changes.
func NewIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match
	// the exact words the model extracted.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	ownerFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("owner", ownerFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexDocument indexes one saved document.
func (i *Index) IndexDocument(ctx context.Context, doc *models.SavedDocument) error {
	entry := indexEntry{
		Owner:   doc.OwnerID,
		Name:    doc.Name,
		Content: strings.Join(doc.Texts, "\n"),
	}
	return i.index.Index(doc.ID, entry)
}

// DeleteDocument removes a saved document from the index.
func (i *Index) DeleteDocument(ctx context.Context, id string) error {
	return i.index.Delete(id)
}

// Search runs a match query over name and content, restricted to one owner,
// and returns up to limit hits ordered by score.
func (i *Index) Search(ctx context.Context, ownerID, query string, limit int) ([]*Result, error) {
	match := bleve.NewMatchQuery(query)
	ownerQuery := bleve.NewTermQuery(ownerID)
	ownerQuery.SetField("owner")
	q := bleve.NewConjunctionQuery(match, ownerQuery)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for n, hit := range results.Hits {
		out[n] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}
