package search

import (
	"context"

	"github.com/factlens/factlens/internal/domain/search/result"
)

// QueryProcessor normalizes the raw query once, before the fan-out. Both
// retrieval stages receive the processed form.
type QueryProcessor interface {
	Process(query string) string
}

// KeywordSearcher runs the lexical retrieval stage. A nil searcher means the
// inverted index is unavailable and the pipeline degrades to semantic-only.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, topN int) ([]result.Keyword, error)
}

// SemanticSearcher runs the dense retrieval stage.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]result.Semantic, error)
}
