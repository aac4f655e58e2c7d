// Package result holds the per-query search result records. All of them are
// ephemeral: constructed for one search call, returned, discarded.
package result

// Keyword is a single lexical (BM25) hit.
type Keyword struct {
	ID           string
	Title        string
	Content      string
	BM25Score    float64
	Keywords     []string
	MatchedCount int
}

// Semantic is a single dense-retrieval hit. Score is the cosine similarity of
// the query and document embeddings after normalization. MatchedCount is the
// number of non-empty context lines, not a token-overlap count.
type Semantic struct {
	ID              string
	Title           string
	Content         string
	SemanticScore   float64
	SemanticContext []string
	MatchedCount    int
}

// Combined is one row of the fused list. It carries both source scores
// (defaulted to 0 when the document was absent from a source), the fusion
// score, and a 1-based ranking assigned after the final sort.
type Combined struct {
	ID              string
	Title           string
	Content         string
	BM25Score       float64
	SemanticScore   float64
	RRFScore        float64
	Ranking         int
	Keywords        []string
	SemanticContext []string
	MatchedCount    int
}

// Unified aggregates the three result lists with per-stage timing.
// Pagination applies to RRF only; TotalRRF counts the full fused list.
type Unified struct {
	KeywordResults []Keyword
	TotalKeyword   int
	KeywordTimeMS  float64

	SemanticResults []Semantic
	TotalSemantic   int
	SemanticTimeMS  float64

	RRFResults []Combined
	TotalRRF   int
	RRFTimeMS  float64

	Page     int
	PageSize int

	TotalTimeMS float64
}
