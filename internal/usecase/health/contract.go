package health

import "context"

// StorePinger checks metadata store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// LexicalProbe reports whether the inverted index is serving queries.
type LexicalProbe interface {
	DocCount() (uint64, error)
}
