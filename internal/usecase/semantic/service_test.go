package semantic

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/repository/embedding"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

type mockVectorIndex struct {
	neighbors []embedding.Neighbor
	err       error
	gotQuery  []float32
	gotK      int
}

func (m *mockVectorIndex) TopK(query []float32, k int) ([]embedding.Neighbor, error) {
	m.gotQuery = query
	m.gotK = k
	return m.neighbors, m.err
}

type mockMetadata struct {
	articles map[string]domain.Article
	err      error
}

func (m *mockMetadata) GetByIDs(_ context.Context, _ []string) (map[string]domain.Article, error) {
	return m.articles, m.err
}

func newTestService(t *testing.T, e *mockEmbedder, v *mockVectorIndex, md *mockMetadata, minScore float64) *Service {
	t.Helper()
	return New(e, v, md, minScore, zap.NewNop())
}

func TestSearch_EnrichesNeighbors(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{3, 4}}}
	vec := &mockVectorIndex{neighbors: []embedding.Neighbor{
		{ID: "a1", Score: 0.91},
		{ID: "a2", Score: 0.72},
	}}
	md := &mockMetadata{articles: map[string]domain.Article{
		"a1": {
			ID:                  "a1",
			Headline:            "Senate passes climate bill",
			ShortDescription:    "Lawmakers approved legislation",
			Category:            "POLITICS",
			KeywordsProperNouns: "Senate",
			PublishedAt:         "2024-03-01",
			URL:                 "https://example.com/a1",
		},
		"a2": {ID: "a2", Headline: "Markets rally"},
	}}
	svc := newTestService(t, emb, vec, md, 0)

	results, err := svc.Search(context.Background(), "climate vote", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	r := results[0]
	if r.ID != "a1" || r.Title != "Senate passes climate bill" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.SemanticScore != 0.91 {
		t.Errorf("score = %f, want 0.91", r.SemanticScore)
	}
	want := []string{
		"Source: POLITICS",
		"Keywords: Senate",
		"Published: 2024-03-01",
		"URL: https://example.com/a1",
	}
	if len(r.SemanticContext) != len(want) {
		t.Fatalf("context = %v, want %v", r.SemanticContext, want)
	}
	for i := range want {
		if r.SemanticContext[i] != want[i] {
			t.Errorf("context[%d] = %q, want %q", i, r.SemanticContext[i], want[i])
		}
	}
	if r.MatchedCount != 4 {
		t.Errorf("matched count = %d, want 4", r.MatchedCount)
	}

	// a2 carries only a headline, so no context lines.
	if results[1].MatchedCount != 0 {
		t.Errorf("a2 matched count = %d, want 0", results[1].MatchedCount)
	}
}

func TestSearch_NormalizesQueryVector(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{3, 4}}}
	vec := &mockVectorIndex{}
	svc := newTestService(t, emb, vec, &mockMetadata{}, 0)

	if _, err := svc.Search(context.Background(), "q", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec.gotK != 5 {
		t.Errorf("k = %d, want 5", vec.gotK)
	}
	// (3,4) normalizes to (0.6, 0.8)
	if len(vec.gotQuery) != 2 || vec.gotQuery[0] != 0.6 || vec.gotQuery[1] != 0.8 {
		t.Errorf("query vector = %v, want [0.6 0.8]", vec.gotQuery)
	}
}

func TestSearch_MissingMetadataUsesPlaceholder(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	vec := &mockVectorIndex{neighbors: []embedding.Neighbor{{ID: "ghost", Score: 0.5}}}
	md := &mockMetadata{articles: map[string]domain.Article{}}
	svc := newTestService(t, emb, vec, md, 0)

	results, err := svc.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != domain.UnknownTitle {
		t.Errorf("title = %q, want %q", results[0].Title, domain.UnknownTitle)
	}
}

func TestSearch_MinScoreFloor(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	vec := &mockVectorIndex{neighbors: []embedding.Neighbor{
		{ID: "a1", Score: 0.9},
		{ID: "a2", Score: 0.1},
	}}
	md := &mockMetadata{articles: map[string]domain.Article{"a1": {ID: "a1", Headline: "t"}}}
	svc := newTestService(t, emb, vec, md, 0.5)

	results, err := svc.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a1" {
		t.Fatalf("expected only a1 above floor, got %+v", results)
	}
}

func TestSearch_EmbedError(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("provider down")}
	svc := newTestService(t, emb, &mockVectorIndex{}, &mockMetadata{}, 0)

	_, err := svc.Search(context.Background(), "q", 10)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_MetadataBatchError(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	vec := &mockVectorIndex{neighbors: []embedding.Neighbor{{ID: "a1", Score: 0.9}}}
	md := &mockMetadata{err: errors.New("db locked")}
	svc := newTestService(t, emb, vec, md, 0)

	_, err := svc.Search(context.Background(), "q", 10)
	if !errors.Is(err, domain.ErrRetrievalBackend) {
		t.Fatalf("expected ErrRetrievalBackend, got %v", err)
	}
}

func TestSearch_NoNeighbors(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	svc := newTestService(t, emb, &mockVectorIndex{}, &mockMetadata{}, 0)

	results, err := svc.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}
