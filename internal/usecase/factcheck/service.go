// Package factcheck flags article headlines that find no semantic support in
// the trusted corpus.
package factcheck

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
)

// corroborationDepth is how many corpus neighbors are examined per headline.
const corroborationDepth = 5

// Service checks headlines against the corpus.
type Service struct {
	scraper   TitleScraper
	searcher  CorpusSearcher
	explainer Explainer
	threshold float64
	logger    *zap.Logger
}

// New creates a fact-check service. scraper may be nil when no scraping
// service is configured; Check then reports ErrNotConfigured. explainer may
// be nil, in which case verdicts carry no explanation. Non-positive
// threshold falls back to 0.3.
func New(scraper TitleScraper, searcher CorpusSearcher, explainer Explainer, threshold float64, logger *zap.Logger) *Service {
	if threshold <= 0 {
		threshold = 0.3
	}
	return &Service{
		scraper:   scraper,
		searcher:  searcher,
		explainer: explainer,
		threshold: threshold,
		logger:    logger,
	}
}

// Check scrapes the headline at articleURL and looks for corpus articles
// similar enough to corroborate it. A headline with no neighbor at or above
// the similarity threshold is marked suspect. Explanation generation is best
// effort: a failure logs a warning and leaves the field empty.
func (s *Service) Check(ctx context.Context, articleURL string) (domain.Verdict, error) {
	if s.scraper == nil {
		return domain.Verdict{}, fmt.Errorf("%w: no scraper service configured", domain.ErrNotConfigured)
	}

	title, err := s.scraper.Title(ctx, articleURL)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("resolve headline: %w", err)
	}

	neighbors, err := s.searcher.Search(ctx, title, corroborationDepth)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("search corpus: %w", err)
	}

	var corroborations []domain.Corroboration
	for _, n := range neighbors {
		if n.SemanticScore >= s.threshold {
			corroborations = append(corroborations, domain.Corroboration{
				Title: n.Title,
				Score: n.SemanticScore,
			})
		}
	}
	suspect := len(corroborations) == 0

	verdict := domain.Verdict{
		URL:            articleURL,
		Title:          title,
		Suspect:        suspect,
		Corroborations: corroborations,
	}

	if s.explainer != nil {
		explanation, err := s.explainer.Explain(ctx, title, corroborations, suspect)
		if err != nil {
			s.logger.Warn("explanation generation failed",
				zap.String("url", articleURL), zap.Error(err))
		} else {
			verdict.Explanation = explanation
		}
	}

	s.logger.Info("fact check complete",
		zap.String("url", articleURL),
		zap.Bool("suspect", suspect),
		zap.Int("corroborations", len(corroborations)))
	return verdict, nil
}
