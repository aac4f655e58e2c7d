// Package search orchestrates the hybrid retrieval pipeline: lexical and
// semantic stages fan out in parallel and their rankings fuse via RRF.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/request"
	"github.com/factlens/factlens/internal/domain/search/result"
	"github.com/factlens/factlens/internal/metrics"
)

// Config holds pipeline tuning knobs.
type Config struct {
	TopN    int           // keyword candidates per query
	TopK    int           // semantic candidates per query
	Timeout time.Duration // per-request budget across both stages
}

func (c *Config) applyDefaults() {
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}

// Service executes hybrid search.
type Service struct {
	keyword   KeywordSearcher
	semantic  SemanticSearcher
	merger    *Merger
	processor QueryProcessor
	cfg       Config
	logger    *zap.Logger
}

// New creates the pipeline service. keyword may be nil when the inverted
// index failed to open; the pipeline then serves semantic results only.
func New(keyword KeywordSearcher, semantic SemanticSearcher, merger *Merger, processor QueryProcessor, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{
		keyword:   keyword,
		semantic:  semantic,
		merger:    merger,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// ExecuteSearch normalizes the query once, runs both retrieval stages
// concurrently on the processed form, fuses the rankings, and paginates the
// fused list. The keyword and semantic lists are returned whole. A semantic
// failure fails the request; a missing keyword stage degrades it.
func (s *Service) ExecuteSearch(ctx context.Context, req request.Request) (result.Unified, error) {
	start := time.Now()

	processed := s.processor.Process(req.Query())
	if processed == "" {
		return result.Unified{}, fmt.Errorf("%w: query has no searchable terms", domain.ErrInvalidQuery)
	}
	s.logger.Debug("query processed",
		zap.String("original", req.Query()),
		zap.String("processed", processed))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var (
		keywordResults  []result.Keyword
		semanticResults []result.Semantic
		keywordTime     time.Duration
		semanticTime    time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)

	if s.keyword != nil {
		g.Go(func() error {
			t := time.Now()
			var err error
			keywordResults, err = s.keyword.Search(gctx, processed, s.cfg.TopN)
			keywordTime = time.Since(t)
			return err
		})
	}

	g.Go(func() error {
		t := time.Now()
		var err error
		semanticResults, err = s.semantic.Search(gctx, processed, s.cfg.TopK)
		semanticTime = time.Since(t)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Unified{}, err
	}

	fuseStart := time.Now()
	fused := s.merger.Merge(keywordResults, semanticResults)
	fuseTime := time.Since(fuseStart)

	totalTime := time.Since(start)

	status := "success"
	if s.keyword == nil {
		status = "degraded"
		s.logger.Warn("keyword stage unavailable, serving semantic-only results",
			zap.String("query", req.Query()))
	}
	s.recordMetrics(status, keywordTime, semanticTime, fuseTime, totalTime,
		len(keywordResults), len(semanticResults), len(fused))

	return result.Unified{
		KeywordResults: keywordResults,
		TotalKeyword:   len(keywordResults),
		KeywordTimeMS:  toMS(keywordTime),

		SemanticResults: semanticResults,
		TotalSemantic:   len(semanticResults),
		SemanticTimeMS:  toMS(semanticTime),

		RRFResults: paginate(fused, req.Page(), req.PageSize()),
		TotalRRF:   len(fused),
		RRFTimeMS:  toMS(fuseTime),

		Page:     req.Page(),
		PageSize: req.PageSize(),

		TotalTimeMS: toMS(totalTime),
	}, nil
}

func (s *Service) recordMetrics(status string, kw, sem, fuse, total time.Duration, nKw, nSem, nFused int) {
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchStageDuration.WithLabelValues("keyword").Observe(kw.Seconds())
	metrics.SearchStageDuration.WithLabelValues("semantic").Observe(sem.Seconds())
	metrics.SearchStageDuration.WithLabelValues("rrf").Observe(fuse.Seconds())
	metrics.SearchStageDuration.WithLabelValues("total").Observe(total.Seconds())
	metrics.SearchResultsTotal.WithLabelValues("keyword").Add(float64(nKw))
	metrics.SearchResultsTotal.WithLabelValues("semantic").Add(float64(nSem))
	metrics.SearchResultsTotal.WithLabelValues("rrf").Add(float64(nFused))
}

// paginate slices the fused list. A page past the end yields an empty page,
// not an error.
func paginate(fused []result.Combined, page, pageSize int) []result.Combined {
	offset := (page - 1) * pageSize
	if offset >= len(fused) {
		return nil
	}
	end := offset + pageSize
	if end > len(fused) {
		end = len(fused)
	}
	return fused[offset:end]
}

func toMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
