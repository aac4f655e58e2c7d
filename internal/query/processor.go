// Package query normalizes raw search queries before retrieval.
package query

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	nonWordRE    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Processor cleans a raw query string: lowercase, strip punctuation, collapse
// whitespace, remove English stop words.
type Processor struct {
	stopWords map[string]struct{}
	logger    *zap.Logger
}

// NewProcessor creates a query processor. logger may be nil.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	sw := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		sw[w] = struct{}{}
	}
	return &Processor{stopWords: sw, logger: logger}
}

// Process normalizes a query. Malformed input never produces an error: an
// empty or whitespace-only query returns "", which callers must treat as
// "no usable query". If stop-word removal would empty the string, the
// normalized (but unfiltered) query is returned instead, so a query like
// "the" still yields a token.
func (p *Processor) Process(query string) string {
	if strings.TrimSpace(query) == "" {
		p.logger.Warn("empty query", zap.String("query", query))
		return ""
	}

	q := strings.ToLower(query)
	q = nonWordRE.ReplaceAllString(q, "")
	q = strings.TrimSpace(whitespaceRE.ReplaceAllString(q, " "))
	if q == "" {
		return ""
	}

	words := strings.Fields(q)
	filtered := words[:0:len(words)]
	for _, w := range words {
		if _, ok := p.stopWords[w]; !ok {
			filtered = append(filtered, w)
		}
	}

	if len(filtered) == 0 {
		p.logger.Info("query consists only of stopwords, keeping normalized form",
			zap.String("query", q))
		return q
	}

	return strings.Join(filtered, " ")
}
