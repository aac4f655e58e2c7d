package semantic

import (
	"context"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/repository/embedding"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex ranks corpus documents by similarity to a query vector.
type VectorIndex interface {
	TopK(query []float32, k int) ([]embedding.Neighbor, error)
}

// MetadataStore fetches article metadata for enrichment.
type MetadataStore interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Article, error)
}
