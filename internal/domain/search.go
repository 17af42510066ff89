package domain

import (
	"time"
)

// Sort options for search and listing results.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// IsValidSort reports whether sort is one of the supported options.
func IsValidSort(sort string) bool {
	switch sort {
	case SortRelevance, SortNewest, SortPriceAsc, SortPriceDesc, SortPopular:
		return true
	}
	return false
}

// SearchQuery holds all parameters for one catalog search or listing request.
type SearchQuery struct {
	Text     string   `json:"text"`
	Category *string  `json:"category,omitempty"`
	MinPrice *int64   `json:"min_price,omitempty"`
	MaxPrice *int64   `json:"max_price,omitempty"`
	Featured *bool    `json:"featured,omitempty"`
	Brands   []string `json:"brands,omitempty"`
	SortBy   string   `json:"sort"`
	Page     int      `json:"page"`
	PerPage  int      `json:"limit"`
}

// Normalize clamps pagination, defaults the sort, and degrades relevance to
// newest when there is no text term to score against.
func (q *SearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	if q.SortBy == "" {
		q.SortBy = SortRelevance
	}
	if q.SortBy == SortRelevance && q.Text == "" {
		q.SortBy = SortNewest
	}
}

// Offset returns the pagination offset for the normalized query.
func (q *SearchQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// SearchResult is the paginated outcome of a search, carrying canonical
// product records in the order the executing backend ranked them.
type SearchResult struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	Backend    string    `json:"backend"`
}

// Search backends reported in SearchResult.Backend.
const (
	BackendIndex    = "index"
	BackendDatabase = "database"
)

// IndexDocument is the denormalized projection of a product stored in the
// search index. The document store remains the source of truth; documents are
// rebuilt wholesale from products on every sync.
type IndexDocument struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	SKU           string    `json:"sku"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"original_price"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	Stock         int       `json:"stock"`
	InStock       bool      `json:"in_stock"`
	OnSale        bool      `json:"on_sale"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewIndexDocument projects a product into its search-index document.
func NewIndexDocument(p *Product) IndexDocument {
	return IndexDocument{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Stock:         p.Stock,
		InStock:       p.InStock(),
		OnSale:        p.OnSale(),
		Featured:      p.Featured,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
