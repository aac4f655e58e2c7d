// Package lexical wraps the persistent inverted index used for keyword
// (BM25) retrieval.
package lexical

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	index "github.com/blevesearch/bleve_index_api"

	"github.com/factlens/factlens/internal/domain"
)

// Indexed/stored field names. One analyzed text field per searchable
// attribute, independently boosted at query time.
const (
	FieldHeadline         = "headline"
	FieldShortDescription = "short_description"
	FieldKeywords         = "keywords_proper_nouns"
	FieldCategory         = "category"
	FieldURL              = "url"
	FieldPublishedAt      = "published_at"
)

// Config holds the index location and per-field query boosts.
type Config struct {
	Path             string
	HeadlineBoost    float64
	KeywordsBoost    float64
	DescriptionBoost float64
}

func (c *Config) applyDefaults() {
	if c.HeadlineBoost <= 0 {
		c.HeadlineBoost = 3.0
	}
	if c.KeywordsBoost <= 0 {
		c.KeywordsBoost = 2.0
	}
	if c.DescriptionBoost <= 0 {
		c.DescriptionBoost = 1.0
	}
}

// Hit is a single raw index hit with its stored fields and the
// engine-reported relevance score (not renormalized).
type Hit struct {
	ID                  string
	Score               float64
	Headline            string
	ShortDescription    string
	Category            string
	KeywordsProperNouns string
}

// Index is a handle to the on-disk inverted index. Read-only at serve time
// and safe for concurrent searches.
type Index struct {
	idx bleve.Index
	cfg Config
}

// Open opens an existing index. A missing or unreadable index fails here,
// at construction time; callers treat that as the lexical path being
// unavailable rather than as a per-query error.
func Open(cfg Config) (*Index, error) {
	cfg.applyDefaults()
	idx, err := bleve.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open index at %s: %v", domain.ErrLexicalUnavailable, cfg.Path, err)
	}
	return &Index{idx: idx, cfg: cfg}, nil
}

// Create builds a new empty index at cfg.Path. Used by the index builder
// and tests.
func Create(cfg Config) (*Index, error) {
	cfg.applyDefaults()
	idx, err := bleve.New(cfg.Path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create index at %s: %w", cfg.Path, err)
	}
	return &Index{idx: idx, cfg: cfg}, nil
}

// Close releases the index handle.
func (ix *Index) Close() error {
	if err := ix.idx.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// Add indexes one article.
func (ix *Index) Add(a domain.Article) error {
	if err := ix.idx.Index(a.ID, indexDoc(a)); err != nil {
		return fmt.Errorf("index article %s: %w", a.ID, err)
	}
	return nil
}

// AddBatch indexes articles in a single batch commit.
func (ix *Index) AddBatch(articles []domain.Article) error {
	batch := ix.idx.NewBatch()
	for _, a := range articles {
		if err := batch.Index(a.ID, indexDoc(a)); err != nil {
			return fmt.Errorf("batch article %s: %w", a.ID, err)
		}
	}
	if err := ix.idx.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() (uint64, error) {
	n, err := ix.idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("doc count: %w", err)
	}
	return n, nil
}

// Search runs a multi-field OR query: a document matches when any field
// matches any term. Detected entities are additionally matched as phrases
// against the proper-noun field with the highest boost, so named entities
// pull their documents up the ranking. Results come back in engine score
// order, truncated to topN.
func (ix *Index) Search(ctx context.Context, terms, entities []string, topN int) ([]Hit, error) {
	if topN <= 0 {
		topN = 10
	}

	q := ix.buildQuery(terms, entities)
	req := bleve.NewSearchRequestOptions(q, topN, 0, false)
	req.Fields = []string{
		FieldHeadline, FieldShortDescription, FieldCategory, FieldKeywords,
	}

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: lexical search: %v", domain.ErrRetrievalBackend, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{
			ID:                  h.ID,
			Score:               h.Score,
			Headline:            storedString(h.Fields, FieldHeadline),
			ShortDescription:    storedString(h.Fields, FieldShortDescription),
			Category:            storedString(h.Fields, FieldCategory),
			KeywordsProperNouns: storedString(h.Fields, FieldKeywords),
		})
	}
	return hits, nil
}

func (ix *Index) buildQuery(terms, entities []string) query.Query {
	var clauses []query.Query

	for _, term := range terms {
		if term == "" {
			continue
		}
		clauses = append(clauses,
			fieldMatch(term, FieldHeadline, ix.cfg.HeadlineBoost),
			fieldMatch(term, FieldKeywords, ix.cfg.KeywordsBoost),
			fieldMatch(term, FieldShortDescription, ix.cfg.DescriptionBoost),
		)
	}

	for _, ent := range entities {
		if ent == "" {
			continue
		}
		mp := bleve.NewMatchPhraseQuery(ent)
		mp.SetField(FieldKeywords)
		mp.SetBoost(ix.cfg.KeywordsBoost * 2)
		clauses = append(clauses, mp)
	}

	if len(clauses) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

func fieldMatch(term, field string, boost float64) query.Query {
	mq := bleve.NewMatchQuery(term)
	mq.SetField(field)
	mq.SetBoost(boost)
	return mq
}

func buildMapping() *mapping.IndexMappingImpl {
	indexed := bleve.NewTextFieldMapping()
	indexed.Store = true

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Store = true
	storedOnly.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldHeadline, indexed)
	doc.AddFieldMappingsAt(FieldShortDescription, indexed)
	doc.AddFieldMappingsAt(FieldKeywords, indexed)
	doc.AddFieldMappingsAt(FieldCategory, storedOnly)
	doc.AddFieldMappingsAt(FieldURL, storedOnly)
	doc.AddFieldMappingsAt(FieldPublishedAt, storedOnly)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.ScoringModel = index.BM25Scoring
	return im
}

func indexDoc(a domain.Article) map[string]any {
	return map[string]any{
		FieldHeadline:         a.Headline,
		FieldShortDescription: a.ShortDescription,
		FieldKeywords:         a.KeywordsProperNouns,
		FieldCategory:         a.Category,
		FieldURL:              a.URL,
		FieldPublishedAt:      a.PublishedAt,
	}
}

func storedString(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
