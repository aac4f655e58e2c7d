package domain

import "errors"

var (
	// ErrInvalidQuery signals a rejected search request (empty or unusable query,
	// out-of-range pagination).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrLexicalUnavailable signals that the lexical index could not be opened.
	ErrLexicalUnavailable = errors.New("lexical index unavailable")
	// ErrRetrievalBackend signals that a retrieval backend failed at query time.
	ErrRetrievalBackend = errors.New("retrieval backend error")
	// ErrDocumentNotFound signals a missing document in the metadata store.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals a query/corpus embedding dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding or chat provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrScrapeFailed signals that the scraper collaborator could not extract
	// the article.
	ErrScrapeFailed = errors.New("scrape failed")
	// ErrNotConfigured signals a feature disabled by configuration.
	ErrNotConfigured = errors.New("not configured")
)
