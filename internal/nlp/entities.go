// Package nlp extracts named entities from free-text queries so the
// lexical searcher can phrase-match them against proper-noun metadata.
package nlp

import (
	"fmt"

	"github.com/jdkato/prose/v2"

	"go.uber.org/zap"
)

// Entity labels worth boosting during retrieval. Dates, quantities and
// the like add noise, names of people, organizations and places do not.
var relevantLabels = map[string]struct{}{
	"PERSON":  {},
	"ORG":     {},
	"GPE":     {},
	"PRODUCT": {},
}

// EntityDetector tags a query and returns the named entities it mentions.
type EntityDetector struct {
	logger *zap.Logger
}

// NewEntityDetector builds a detector. A nil logger is replaced with a nop.
func NewEntityDetector(logger *zap.Logger) *EntityDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityDetector{logger: logger}
}

// Detect returns the entities found in text, first-mention order, no
// duplicates. Tagging failures are logged and reported as an empty set so
// retrieval proceeds on raw terms alone.
func (d *EntityDetector) Detect(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		d.logger.Warn("entity detection failed", zap.Error(err))
		return nil, fmt.Errorf("tag query: %w", err)
	}

	seen := make(map[string]struct{})
	var entities []string
	for _, ent := range doc.Entities() {
		if _, ok := relevantLabels[ent.Label]; !ok {
			continue
		}
		if _, dup := seen[ent.Text]; dup {
			continue
		}
		seen[ent.Text] = struct{}{}
		entities = append(entities, ent.Text)
	}
	return entities, nil
}
