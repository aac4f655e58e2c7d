// Package embedding holds the in-memory corpus embedding matrix and performs
// exact cosine nearest-neighbor search over it.
package embedding

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/factlens/factlens/internal/domain"
)

// Neighbor is one nearest-neighbor hit: a document id and its cosine
// similarity to the query vector.
type Neighbor struct {
	ID    string
	Score float64
}

// Store is the corpus embedding matrix plus its parallel id list. Loaded once
// at startup and treated as immutable afterwards, so concurrent reads need no
// locking.
type Store struct {
	ids  []string
	vecs [][]float32
	dim  int
}

// Load reads the full embedding matrix from the corpus database. Rows are
// re-normalized on load so that the inner product with a unit query vector is
// the cosine similarity even if the stored vectors drifted from unit norm.
func Load(ctx context.Context, db *sql.DB) (*Store, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, dim, vec FROM article_embeddings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	s := &Store{}
	for rows.Next() {
		var (
			id   string
			dim  int
			blob []byte
		)
		if err := rows.Scan(&id, &dim, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}

		vec, err := decodeVector(blob, dim)
		if err != nil {
			return nil, fmt.Errorf("embedding %s: %w", id, err)
		}
		if s.dim == 0 {
			s.dim = dim
		} else if dim != s.dim {
			return nil, fmt.Errorf(
				"embedding %s has dim %d, corpus dim is %d: %w",
				id, dim, s.dim, domain.ErrVectorDimMismatch,
			)
		}

		s.ids = append(s.ids, id)
		s.vecs = append(s.vecs, domain.Normalize(vec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	if len(s.ids) == 0 {
		return nil, fmt.Errorf("embedding store is empty")
	}
	return s, nil
}

// Len returns the number of corpus vectors.
func (s *Store) Len() int { return len(s.ids) }

// Dim returns the embedding dimensionality.
func (s *Store) Dim() int { return s.dim }

// TopK returns the k corpus rows most similar to the (unit-normalized) query
// vector, highest cosine first. Ties preserve id order, so results are
// deterministic for a fixed corpus.
func (s *Store) TopK(query []float32, k int) ([]Neighbor, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf(
			"query dim %d vs corpus dim %d: %w",
			len(query), s.dim, domain.ErrVectorDimMismatch,
		)
	}
	if k <= 0 {
		return nil, nil
	}

	scored := make([]Neighbor, len(s.ids))
	for i, vec := range s.vecs {
		scored[i] = Neighbor{ID: s.ids[i], Score: domain.Dot(query, vec)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Save writes one embedding row. Used by the index builder.
func Save(ctx context.Context, db *sql.DB, id string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("empty vector for %s", id)
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return fmt.Errorf("encode vector %s: %w", id, err)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO article_embeddings (id, dim, vec) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET dim = excluded.dim, vec = excluded.vec`,
		id, len(vec), buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("save embedding %s: %w", id, err)
	}
	return nil
}

func decodeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != dim*4 {
		return nil, fmt.Errorf("blob is %d bytes, want %d for dim %d", len(blob), dim*4, dim)
	}
	vec := make([]float32, dim)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return vec, nil
}
