// Package keyword implements the lexical retrieval stage: query cleaning,
// entity detection, and BM25 search over the inverted index.
package keyword

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/result"
	"github.com/factlens/factlens/internal/repository/lexical"
)

// Service handles keyword search.
type Service struct {
	index     Index
	processor QueryProcessor
	entities  EntityDetector
	logger    *zap.Logger
}

// New creates a keyword search service.
func New(index Index, processor QueryProcessor, entities EntityDetector, logger *zap.Logger) *Service {
	return &Service{
		index:     index,
		processor: processor,
		entities:  entities,
		logger:    logger,
	}
}

// Search cleans the query, detects entities, and runs the index query.
// Entity detection failure is non-fatal: search proceeds on terms alone.
func (s *Service) Search(ctx context.Context, query string, topN int) ([]result.Keyword, error) {
	processed := s.processor.Process(query)
	if processed == "" {
		return nil, fmt.Errorf("%w: query has no searchable terms", domain.ErrInvalidQuery)
	}
	terms := strings.Fields(processed)

	entities, err := s.entities.Detect(query)
	if err != nil {
		s.logger.Warn("entity detection failed, searching on terms only", zap.Error(err))
		entities = nil
	}

	hits, err := s.index.Search(ctx, terms, entities, topN)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	results := make([]result.Keyword, 0, len(hits))
	for _, h := range hits {
		matched := matchedTerms(h, terms, entities)
		results = append(results, result.Keyword{
			ID:           h.ID,
			Title:        h.Headline,
			Content:      h.ShortDescription,
			BM25Score:    h.Score,
			Keywords:     matched,
			MatchedCount: len(matched),
		})
	}
	return results, nil
}

// matchedTerms returns the query terms and entities literally present in the
// hit, case-insensitive, first-seen order. Terms count only against the
// headline and description; entities also count against the proper-noun
// keywords field they were boosted on.
func matchedTerms(h lexical.Hit, terms, entities []string) []string {
	textFields := strings.ToLower(h.Headline + " " + h.ShortDescription)
	withKeywords := textFields + " " + strings.ToLower(h.KeywordsProperNouns)

	seen := make(map[string]struct{})
	var matched []string
	add := func(candidate, haystack string) {
		lc := strings.ToLower(candidate)
		if _, dup := seen[lc]; dup {
			return
		}
		if strings.Contains(haystack, lc) {
			seen[lc] = struct{}{}
			matched = append(matched, candidate)
		}
	}

	for _, t := range terms {
		add(t, textFields)
	}
	for _, e := range entities {
		add(e, withKeywords)
	}
	return matched
}
