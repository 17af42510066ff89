package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is used when the request carries no limit.
	DefaultPerPage = 20
	// MaxPerPage caps the requested page size.
	MaxPerPage = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"limit"`
	Offset  int `json:"-"`
}

// Default returns first-page defaults.
func Default() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest extracts page and limit from the request query, clamping to
// sane bounds. Invalid values fall back to defaults.
func FromRequest(r *http.Request) Params {
	p := Default()

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxPerPage {
			p.PerPage = n
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// TotalPages returns ceil(total/perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := total / perPage
	if total%perPage > 0 {
		pages++
	}
	return pages
}
