// Package metadata resolves article records by id for result enrichment.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/factlens/factlens/internal/domain"
)

// Store reads article metadata from the corpus database.
type Store struct {
	db *sql.DB
}

// New creates a metadata store over an open corpus database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetByIDs fetches article records for the given ids. Missing ids are simply
// absent from the returned map; they never produce an error.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Article, error) {
	if len(ids) == 0 {
		return map[string]domain.Article{}, nil
	}

	q := `SELECT id, headline, short_description, category, keywords_proper_nouns, url, published_at
		FROM articles WHERE id IN (` + placeholders(len(ids)) + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Article, len(ids))
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID, &a.Headline, &a.ShortDescription, &a.Category,
			&a.KeywordsProperNouns, &a.URL, &a.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// Get fetches a single article.
func (s *Store) Get(ctx context.Context, id string) (domain.Article, error) {
	docs, err := s.GetByIDs(ctx, []string{id})
	if err != nil {
		return domain.Article{}, err
	}
	a, ok := docs[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %q: %w", id, domain.ErrDocumentNotFound)
	}
	return a, nil
}

// Upsert writes an article record. Used by the index builder, not the server.
func (s *Store) Upsert(ctx context.Context, a domain.Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (id, headline, short_description, category, keywords_proper_nouns, url, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			headline = excluded.headline,
			short_description = excluded.short_description,
			category = excluded.category,
			keywords_proper_nouns = excluded.keywords_proper_nouns,
			url = excluded.url,
			published_at = excluded.published_at`,
		a.ID, a.Headline, a.ShortDescription, a.Category, a.KeywordsProperNouns, a.URL, a.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ID, err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
