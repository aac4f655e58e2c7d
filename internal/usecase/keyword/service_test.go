package keyword

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/query"
	"github.com/factlens/factlens/internal/repository/lexical"
)

type mockIndex struct {
	hits        []lexical.Hit
	err         error
	gotTerms    []string
	gotEntities []string
	gotTopN     int
}

func (m *mockIndex) Search(_ context.Context, terms, entities []string, topN int) ([]lexical.Hit, error) {
	m.gotTerms = terms
	m.gotEntities = entities
	m.gotTopN = topN
	return m.hits, m.err
}

type mockDetector struct {
	entities []string
	err      error
}

func (m *mockDetector) Detect(_ string) ([]string, error) {
	return m.entities, m.err
}

func newTestService(t *testing.T, idx *mockIndex, det *mockDetector) *Service {
	t.Helper()
	return New(idx, query.NewProcessor(nil), det, zap.NewNop())
}

func TestSearch_MapsHits(t *testing.T) {
	idx := &mockIndex{hits: []lexical.Hit{
		{
			ID:               "a1",
			Score:            4.2,
			Headline:         "Senate passes climate bill",
			ShortDescription: "Lawmakers approved sweeping climate legislation",
		},
	}}
	svc := newTestService(t, idx, &mockDetector{})

	results, err := svc.Search(context.Background(), "climate bill vote", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.ID != "a1" || r.Title != "Senate passes climate bill" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.BM25Score != 4.2 {
		t.Errorf("score = %f, want 4.2", r.BM25Score)
	}
	// "climate" and "bill" appear in the article text, "vote" does not.
	if len(r.Keywords) != 2 {
		t.Fatalf("keywords = %v, want [climate bill]", r.Keywords)
	}
	if r.Keywords[0] != "climate" || r.Keywords[1] != "bill" {
		t.Errorf("keywords = %v, want [climate bill]", r.Keywords)
	}
	if r.MatchedCount != 2 {
		t.Errorf("matched count = %d, want 2", r.MatchedCount)
	}
}

func TestSearch_PassesCleanedTermsAndEntities(t *testing.T) {
	idx := &mockIndex{}
	svc := newTestService(t, idx, &mockDetector{entities: []string{"Senate"}})

	if _, err := svc.Search(context.Background(), "The Senate Vote!", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stop word "the" is removed, punctuation stripped, terms lowercased.
	if len(idx.gotTerms) != 2 || idx.gotTerms[0] != "senate" || idx.gotTerms[1] != "vote" {
		t.Errorf("terms = %v, want [senate vote]", idx.gotTerms)
	}
	if len(idx.gotEntities) != 1 || idx.gotEntities[0] != "Senate" {
		t.Errorf("entities = %v, want [Senate]", idx.gotEntities)
	}
	if idx.gotTopN != 5 {
		t.Errorf("topN = %d, want 5", idx.gotTopN)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(t, &mockIndex{}, &mockDetector{})

	_, err := svc.Search(context.Background(), "!!! ...", 10)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearch_DetectorFailureNonFatal(t *testing.T) {
	idx := &mockIndex{hits: []lexical.Hit{{ID: "a1", Headline: "Markets rally"}}}
	svc := newTestService(t, idx, &mockDetector{err: errors.New("tagger broken")})

	results, err := svc.Search(context.Background(), "markets rally", 10)
	if err != nil {
		t.Fatalf("detector failure must not fail search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if idx.gotEntities != nil {
		t.Errorf("expected nil entities after detector failure, got %v", idx.gotEntities)
	}
}

func TestSearch_IndexError(t *testing.T) {
	idx := &mockIndex{err: errors.New("index corrupted")}
	svc := newTestService(t, idx, &mockDetector{})

	_, err := svc.Search(context.Background(), "markets", 10)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_TermsMatchTextFieldsOnly(t *testing.T) {
	// "pentagon" appears only in the proper-noun keywords field. As a plain
	// term it must not count; as a detected entity it must.
	idx := &mockIndex{hits: []lexical.Hit{
		{
			ID:                  "a1",
			Headline:            "Defense budget clears committee",
			ShortDescription:    "Spending plan moves to the floor",
			KeywordsProperNouns: "Pentagon",
		},
	}}

	svc := newTestService(t, idx, &mockDetector{})
	results, err := svc.Search(context.Background(), "pentagon budget", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results[0].Keywords) != 1 || results[0].Keywords[0] != "budget" {
		t.Errorf("keywords = %v, want [budget]", results[0].Keywords)
	}
	if results[0].MatchedCount != 1 {
		t.Errorf("matched count = %d, want 1", results[0].MatchedCount)
	}

	svc = newTestService(t, idx, &mockDetector{entities: []string{"Pentagon"}})
	results, err = svc.Search(context.Background(), "pentagon budget", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].MatchedCount != 2 {
		t.Errorf("matched count = %d, want 2 (budget, Pentagon entity)", results[0].MatchedCount)
	}
}

func TestSearch_DedupesMatchedTerms(t *testing.T) {
	idx := &mockIndex{hits: []lexical.Hit{
		{
			ID:                  "a1",
			Headline:            "Senate vote on senate floor",
			KeywordsProperNouns: "Senate",
		},
	}}
	svc := newTestService(t, idx, &mockDetector{entities: []string{"Senate"}})

	results, err := svc.Search(context.Background(), "senate vote", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "senate" as a term and "Senate" as an entity collapse to one match.
	if results[0].MatchedCount != 2 {
		t.Errorf("matched count = %d, want 2 (senate, vote)", results[0].MatchedCount)
	}
}
