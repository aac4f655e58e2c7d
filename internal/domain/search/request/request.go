package request

import (
	"fmt"
	"strings"

	"github.com/factlens/factlens/internal/domain"
)

// Pagination limits. Pagination applies to the fused (RRF) list only; the raw
// keyword and semantic lists are returned unpaginated.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Request is a validated search request.
type Request struct {
	query    string
	page     int
	pageSize int
}

// New validates and normalizes search parameters.
// Defaults: page=1, page_size=10. page_size is capped at 100.
func New(query string, page, pageSize int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidQuery, page)
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return Request{}, fmt.Errorf(
			"%w: page_size must be between 1 and %d, got %d",
			domain.ErrInvalidQuery, MaxPageSize, pageSize,
		)
	}

	return Request{query: query, page: page, pageSize: pageSize}, nil
}

// Query returns the raw search query text.
func (r *Request) Query() string { return r.query }

// Page returns the 1-based page number for the fused list.
func (r *Request) Page() int { return r.page }

// PageSize returns the page size for the fused list.
func (r *Request) PageSize() int { return r.pageSize }
