package keyword

import (
	"context"

	"github.com/factlens/factlens/internal/repository/lexical"
)

// Index runs raw term queries against the inverted index.
type Index interface {
	Search(ctx context.Context, terms, entities []string, topN int) ([]lexical.Hit, error)
}

// QueryProcessor normalizes a raw query into searchable terms.
type QueryProcessor interface {
	Process(query string) string
}

// EntityDetector extracts named entities from the raw query.
type EntityDetector interface {
	Detect(text string) ([]string, error)
}
