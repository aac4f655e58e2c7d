package search

import (
	"sort"

	"github.com/factlens/factlens/internal/domain/search/result"
)

// DefaultRRFK is the Reciprocal Rank Fusion constant (standard value from
// Cormack et al. 2009).
const DefaultRRFK = 60

// Merger fuses the keyword and semantic rankings via Reciprocal Rank Fusion:
// score(d) = sum over rankings of 1/(k + rank(d)), rank counted from 0.
type Merger struct {
	k int
}

// NewMerger creates a merger. Non-positive k falls back to DefaultRRFK.
func NewMerger(k int) *Merger {
	if k <= 0 {
		k = DefaultRRFK
	}
	return &Merger{k: k}
}

// Merge fuses the two ranked lists into a single list ordered by descending
// RRF score. Ties keep insertion order, keyword hits before semantic-only
// hits, so equal-score orderings are deterministic. A document absent from
// one source keeps a zero score for that source. Ranking is 1-based and
// assigned after the sort.
func (m *Merger) Merge(keyword []result.Keyword, semantic []result.Semantic) []result.Combined {
	merged := make([]result.Combined, 0, len(keyword)+len(semantic))
	byID := make(map[string]int, len(keyword)+len(semantic))

	for rank, kw := range keyword {
		merged = append(merged, result.Combined{
			ID:           kw.ID,
			Title:        kw.Title,
			Content:      kw.Content,
			BM25Score:    kw.BM25Score,
			RRFScore:     m.contribution(rank),
			Keywords:     kw.Keywords,
			MatchedCount: kw.MatchedCount,
		})
		byID[kw.ID] = len(merged) - 1
	}

	for rank, sem := range semantic {
		if i, ok := byID[sem.ID]; ok {
			c := &merged[i]
			c.RRFScore += m.contribution(rank)
			c.SemanticScore = sem.SemanticScore
			c.SemanticContext = sem.SemanticContext
			if c.Content == "" {
				c.Content = sem.Content
			}
			if sem.MatchedCount > c.MatchedCount {
				c.MatchedCount = sem.MatchedCount
			}
			continue
		}
		merged = append(merged, result.Combined{
			ID:              sem.ID,
			Title:           sem.Title,
			Content:         sem.Content,
			SemanticScore:   sem.SemanticScore,
			RRFScore:        m.contribution(rank),
			SemanticContext: sem.SemanticContext,
			MatchedCount:    sem.MatchedCount,
		})
		byID[sem.ID] = len(merged) - 1
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RRFScore > merged[j].RRFScore
	})

	for i := range merged {
		merged[i].Ranking = i + 1
	}
	return merged
}

func (m *Merger) contribution(rank int) float64 {
	return 1.0 / float64(m.k+rank)
}
