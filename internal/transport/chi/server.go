// Package chi implements the HTTP API on the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
	"github.com/factlens/factlens/internal/domain/search/request"
	"github.com/factlens/factlens/internal/domain/search/result"
	healthuc "github.com/factlens/factlens/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires usecases to HTTP handlers.
type Server struct {
	search        SearchExecutor
	keyword       KeywordSearcher
	semantic      SemanticSearcher
	factcheck     FactChecker
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchExecutor,
	keyword KeywordSearcher,
	semantic SemanticSearcher,
	factcheck FactChecker,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		keyword:   keyword,
		semantic:  semantic,
		factcheck: factcheck,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrLexicalUnavailable, http.StatusServiceUnavailable, codeLexicalUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrRetrievalBackend, http.StatusBadGateway, codeRetrievalBackend),
		sentinelHandler(domain.ErrScrapeFailed, http.StatusBadGateway, codeScrapeFailed),
		sentinelHandler(domain.ErrNotConfigured, http.StatusNotImplemented, codeNotConfigured),
	}
	return s
}

// Routes mounts all API handlers on a router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/search/keyword", s.handleKeywordSearch)
		r.Get("/search/semantic", s.handleSemanticSearch)
		r.Get("/search/reranked", s.handleRerankedSearch)
		r.Post("/check/fake-news", s.handleFakeNewsCheck)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

// parseSearchParams reads query/page/page_size from the URL and builds a
// validated request.
func parseSearchParams(r *http.Request) (request.Request, error) {
	q := r.URL.Query()

	page, err := parseIntParam(q.Get("page"))
	if err != nil {
		return request.Request{}, err
	}
	pageSize, err := parseIntParam(q.Get("page_size"))
	if err != nil {
		return request.Request{}, err
	}

	return request.New(q.Get("query"), page, pageSize)
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidQuery
	}
	return n, nil
}

// handleSearch handles GET /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	unified, err := s.search.ExecuteSearch(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unifiedToDTO(unified))
}

// handleKeywordSearch handles GET /api/v1/search/keyword.
func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if s.keyword == nil {
		s.handleDomainError(w, domain.ErrLexicalUnavailable)
		return
	}

	results, err := s.keyword.Search(r.Context(), req.Query(), req.PageSize())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]keywordResultDTO, len(results))
	for i := range results {
		items[i] = keywordToDTO(results[i])
	}
	writeJSON(w, http.StatusOK, listResponse[keywordResultDTO]{
		Results: items,
		Total:   len(items),
	})
}

// handleSemanticSearch handles GET /api/v1/search/semantic.
func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.semantic.Search(r.Context(), req.Query(), req.PageSize())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]semanticResultDTO, len(results))
	for i := range results {
		items[i] = semanticToDTO(results[i])
	}
	writeJSON(w, http.StatusOK, listResponse[semanticResultDTO]{
		Results: items,
		Total:   len(items),
	})
}

// handleRerankedSearch handles GET /api/v1/search/reranked: the paginated
// fused list without the raw per-source lists.
func (s *Server) handleRerankedSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	unified, err := s.search.ExecuteSearch(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]combinedResultDTO, len(unified.RRFResults))
	for i := range unified.RRFResults {
		items[i] = combinedToDTO(unified.RRFResults[i])
	}
	writeJSON(w, http.StatusOK, rerankedResponse{
		Results:  items,
		Total:    unified.TotalRRF,
		Page:     unified.Page,
		PageSize: unified.PageSize,
	})
}

// handleFakeNewsCheck handles POST /api/v1/check/fake-news.
func (s *Server) handleFakeNewsCheck(w http.ResponseWriter, r *http.Request) {
	var req fakeNewsCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, "url is required")
		return
	}

	verdict, err := s.factcheck.Check(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verdictToDTO(verdict))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrDocumentNotFound,
		domain.ErrLexicalUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrRetrievalBackend,
		domain.ErrScrapeFailed,
		domain.ErrNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func unifiedToDTO(u result.Unified) unifiedResponse {
	kw := make([]keywordResultDTO, len(u.KeywordResults))
	for i := range u.KeywordResults {
		kw[i] = keywordToDTO(u.KeywordResults[i])
	}
	sem := make([]semanticResultDTO, len(u.SemanticResults))
	for i := range u.SemanticResults {
		sem[i] = semanticToDTO(u.SemanticResults[i])
	}
	rrf := make([]combinedResultDTO, len(u.RRFResults))
	for i := range u.RRFResults {
		rrf[i] = combinedToDTO(u.RRFResults[i])
	}

	return unifiedResponse{
		KeywordResults: kw,
		TotalKeyword:   u.TotalKeyword,
		KeywordTimeMS:  u.KeywordTimeMS,

		SemanticResults: sem,
		TotalSemantic:   u.TotalSemantic,
		SemanticTimeMS:  u.SemanticTimeMS,

		RRFResults: rrf,
		TotalRRF:   u.TotalRRF,
		RRFTimeMS:  u.RRFTimeMS,

		Page:     u.Page,
		PageSize: u.PageSize,

		TotalTimeMS: u.TotalTimeMS,
	}
}

func keywordToDTO(r result.Keyword) keywordResultDTO {
	return keywordResultDTO{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		BM25Score:    r.BM25Score,
		Keywords:     emptyIfNil(r.Keywords),
		MatchedCount: r.MatchedCount,
	}
}

func semanticToDTO(r result.Semantic) semanticResultDTO {
	return semanticResultDTO{
		ID:              r.ID,
		Title:           r.Title,
		Content:         r.Content,
		SemanticScore:   r.SemanticScore,
		SemanticContext: emptyIfNil(r.SemanticContext),
		MatchedCount:    r.MatchedCount,
	}
}

func combinedToDTO(r result.Combined) combinedResultDTO {
	return combinedResultDTO{
		ID:              r.ID,
		Title:           r.Title,
		Content:         r.Content,
		BM25Score:       r.BM25Score,
		SemanticScore:   r.SemanticScore,
		RRFScore:        r.RRFScore,
		Ranking:         r.Ranking,
		Keywords:        emptyIfNil(r.Keywords),
		SemanticContext: emptyIfNil(r.SemanticContext),
		MatchedCount:    r.MatchedCount,
	}
}

func verdictToDTO(v domain.Verdict) fakeNewsCheckResponse {
	corroborations := make([]corroborationDTO, len(v.Corroborations))
	for i, c := range v.Corroborations {
		corroborations[i] = corroborationDTO{Title: c.Title, Score: c.Score}
	}
	return fakeNewsCheckResponse{
		URL:            v.URL,
		Title:          v.Title,
		Suspect:        v.Suspect,
		Corroborations: corroborations,
		Explanation:    v.Explanation,
	}
}

// emptyIfNil keeps list fields as [] instead of null in JSON.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
