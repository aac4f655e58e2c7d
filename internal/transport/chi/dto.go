package chi

// Error codes returned in error responses.
const (
	codeBadRequest         = "bad_request"
	codeInvalidQuery       = "invalid_query"
	codeNotFound           = "not_found"
	codeLexicalUnavailable = "lexical_unavailable"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeRetrievalBackend   = "retrieval_backend_error"
	codeScrapeFailed       = "scrape_failed"
	codeNotConfigured      = "not_configured"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type keywordResultDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content,omitempty"`
	BM25Score    float64  `json:"bm25_score"`
	Keywords     []string `json:"keywords"`
	MatchedCount int      `json:"matched_count"`
}

type semanticResultDTO struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content,omitempty"`
	SemanticScore   float64  `json:"semantic_score"`
	SemanticContext []string `json:"semantic_context"`
	MatchedCount    int      `json:"matched_count"`
}

type combinedResultDTO struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content,omitempty"`
	BM25Score       float64  `json:"bm25_score"`
	SemanticScore   float64  `json:"semantic_score"`
	RRFScore        float64  `json:"rrf_score"`
	Ranking         int      `json:"ranking"`
	Keywords        []string `json:"keywords,omitempty"`
	SemanticContext []string `json:"semantic_context,omitempty"`
	MatchedCount    int      `json:"matched_count"`
}

type unifiedResponse struct {
	KeywordResults []keywordResultDTO `json:"keyword_results"`
	TotalKeyword   int                `json:"total_keyword"`
	KeywordTimeMS  float64            `json:"keyword_time_ms"`

	SemanticResults []semanticResultDTO `json:"semantic_results"`
	TotalSemantic   int                 `json:"total_semantic"`
	SemanticTimeMS  float64             `json:"semantic_time_ms"`

	RRFResults []combinedResultDTO `json:"rrf_results"`
	TotalRRF   int                 `json:"total_rrf"`
	RRFTimeMS  float64             `json:"rrf_time_ms"`

	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	TotalTimeMS float64 `json:"total_time_ms"`
}

type listResponse[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
}

type rerankedResponse struct {
	Results  []combinedResultDTO `json:"results"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type fakeNewsCheckRequest struct {
	URL string `json:"url"`
}

type corroborationDTO struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type fakeNewsCheckResponse struct {
	URL            string             `json:"url"`
	Title          string             `json:"title"`
	Suspect        bool               `json:"suspect"`
	Corroborations []corroborationDTO `json:"corroborations"`
	Explanation    string             `json:"explanation,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
