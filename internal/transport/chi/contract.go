package chi

import (
	"context"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/request"
	"github.com/factlens/factlens/internal/domain/search/result"
	healthuc "github.com/factlens/factlens/internal/usecase/health"
)

// SearchExecutor runs the full hybrid pipeline.
type SearchExecutor interface {
	ExecuteSearch(ctx context.Context, req request.Request) (result.Unified, error)
}

// KeywordSearcher serves the keyword-only endpoint. May be nil when the
// inverted index is unavailable.
type KeywordSearcher interface {
	Search(ctx context.Context, query string, topN int) ([]result.Keyword, error)
}

// SemanticSearcher serves the semantic-only endpoint.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]result.Semantic, error)
}

// FactChecker verifies a headline against the corpus.
type FactChecker interface {
	Check(ctx context.Context, articleURL string) (domain.Verdict, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
