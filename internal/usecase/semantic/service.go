// Package semantic implements the dense retrieval stage: query embedding,
// cosine top-k over the corpus matrix, and metadata enrichment.
package semantic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/result"
)

// Service handles semantic search.
type Service struct {
	embedder Embedder
	vectors  VectorIndex
	metadata MetadataStore
	minScore float64
	logger   *zap.Logger
}

// New creates a semantic search service. minScore drops neighbors whose
// cosine similarity falls below it; zero disables the floor.
func New(embedder Embedder, vectors VectorIndex, metadata MetadataStore, minScore float64, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		vectors:  vectors,
		metadata: metadata,
		minScore: minScore,
		logger:   logger,
	}
}

// Search embeds the query, ranks the corpus by cosine similarity, and
// enriches the top hits with article metadata. A batch metadata failure
// fails the search; an individual missing id degrades to a placeholder.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]result.Semantic, error) {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := s.vectors.TopK(domain.Normalize(emb.Embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: rank corpus: %v", domain.ErrRetrievalBackend, err)
	}

	if s.minScore > 0 {
		kept := neighbors[:0]
		for _, n := range neighbors {
			if n.Score >= s.minScore {
				kept = append(kept, n)
			}
		}
		neighbors = kept
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	ids := make([]string, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ID
	}
	articles, err := s.metadata.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %v", domain.ErrRetrievalBackend, err)
	}

	results := make([]result.Semantic, 0, len(neighbors))
	for _, n := range neighbors {
		a, ok := articles[n.ID]
		if !ok {
			s.logger.Warn("article metadata missing, using placeholder", zap.String("id", n.ID))
			a = domain.Placeholder(n.ID)
		}
		ctxLines := contextLines(a)
		results = append(results, result.Semantic{
			ID:              n.ID,
			Title:           a.Headline,
			Content:         a.ShortDescription,
			SemanticScore:   n.Score,
			SemanticContext: ctxLines,
			MatchedCount:    len(ctxLines),
		})
	}
	return results, nil
}

// contextLines renders the metadata attributes that situate a semantic hit.
// Empty attributes produce no line.
func contextLines(a domain.Article) []string {
	var lines []string
	if a.Category != "" {
		lines = append(lines, "Source: "+a.Category)
	}
	if a.KeywordsProperNouns != "" {
		lines = append(lines, "Keywords: "+a.KeywordsProperNouns)
	}
	if a.PublishedAt != "" {
		lines = append(lines, "Published: "+a.PublishedAt)
	}
	if a.URL != "" {
		lines = append(lines, "URL: "+a.URL)
	}
	return lines
}
