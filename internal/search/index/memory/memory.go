// Package memory implements the search index in process memory. It backs
// tests and local development where Elasticsearch is not running.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index"
)

// Engine is an in-memory implementation of index.Index with simple substring
// matching. Safe for concurrent use.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]domain.IndexDocument
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{docs: make(map[string]domain.IndexDocument)}
}

// Index upserts one document.
func (e *Engine) Index(_ context.Context, doc *domain.IndexDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes a document; deleting an absent document succeeds.
func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, id)
	return nil
}

// BulkIndex upserts a batch of documents.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.IndexDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// Len reports the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// Search filters, sorts, and paginates the indexed documents, returning the
// ranked page of IDs.
func (e *Engine) Search(_ context.Context, q *domain.SearchQuery) (*index.Page, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	textLower := strings.ToLower(q.Text)

	var matched []domain.IndexDocument
	for _, d := range e.docs {
		if matches(d, q, textLower) {
			matched = append(matched, d)
		}
	}

	sortDocs(matched, q.SortBy)

	total := len(matched)
	offset := q.Offset()
	if offset > total {
		offset = total
	}
	end := offset + q.PerPage
	if end > total {
		end = total
	}

	ids := make([]string, 0, end-offset)
	for _, d := range matched[offset:end] {
		ids = append(ids, d.ID)
	}

	return &index.Page{IDs: ids, Total: total}, nil
}

func matches(d domain.IndexDocument, q *domain.SearchQuery, textLower string) bool {
	if textLower != "" {
		name := strings.ToLower(d.Name)
		desc := strings.ToLower(d.Description)
		if !strings.Contains(name, textLower) && !strings.Contains(desc, textLower) {
			return false
		}
	}

	if q.Category != nil && *q.Category != "" {
		if !strings.Contains(strings.ToLower(d.Category), strings.ToLower(*q.Category)) {
			return false
		}
	}

	if q.MinPrice != nil && d.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && d.Price > *q.MaxPrice {
		return false
	}

	if q.Featured != nil && d.Featured != *q.Featured {
		return false
	}

	if len(q.Brands) > 0 && !matchesBrand(d.Name, q.Brands) {
		return false
	}

	return true
}

// matchesBrand reports whether the name starts with any of the brands as a
// whole word: the brand token must be followed by whitespace or end the name.
func matchesBrand(name string, brands []string) bool {
	nameLower := strings.ToLower(name)
	for _, brand := range brands {
		brand = strings.ToLower(strings.TrimSpace(brand))
		if brand == "" || !strings.HasPrefix(nameLower, brand) {
			continue
		}
		rest := nameLower[len(brand):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return true
		}
	}
	return false
}

func sortDocs(docs []domain.IndexDocument, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Price < docs[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Price > docs[j].Price })
	case domain.SortPopular:
		sort.SliceStable(docs, func(i, j int) bool {
			if docs[i].ReviewCount != docs[j].ReviewCount {
				return docs[i].ReviewCount > docs[j].ReviewCount
			}
			return docs[i].Rating > docs[j].Rating
		})
	default:
		// Newest first. Relevance has no meaning without scoring, so it
		// degrades the same way.
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	}
}
