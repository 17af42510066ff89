package domain

import (
	"time"
)

// Product is the canonical catalog record held in the document store. The
// search index only ever carries a denormalized projection of it; product
// responses are always assembled from these records.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	SKU           string    `json:"sku"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"original_price,omitempty"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// OnSale reports whether the product carries a marked-down price.
func (p *Product) OnSale() bool {
	return p.OriginalPrice > 0 && p.Price < p.OriginalPrice
}
