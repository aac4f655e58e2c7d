package factcheck

import (
	"context"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/result"
)

// CorpusSearcher ranks corpus articles by semantic similarity to a headline.
type CorpusSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]result.Semantic, error)
}

// TitleScraper resolves an article URL into its headline text.
type TitleScraper interface {
	Title(ctx context.Context, articleURL string) (string, error)
}

// Explainer generates a natural-language rationale for a verdict.
type Explainer interface {
	Explain(ctx context.Context, title string, corroborations []domain.Corroboration, suspect bool) (string, error)
}
