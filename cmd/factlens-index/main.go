// Command factlens-index builds the corpus artifacts the API server reads:
// the SQLite article/embedding store and the on-disk inverted index. Input is
// a JSON-lines dump with one article per line; embeddings are taken from the
// dump when present or computed via the configured provider with -embed.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/config"
	"github.com/factlens/factlens/internal/db/sqlite"
	"github.com/factlens/factlens/internal/domain"
	logpkg "github.com/factlens/factlens/internal/logger"
	embeddingrepo "github.com/factlens/factlens/internal/repository/embedding"
	"github.com/factlens/factlens/internal/repository/lexical"
	metadatarepo "github.com/factlens/factlens/internal/repository/metadata"
	openaiTransport "github.com/factlens/factlens/internal/transport/openai"
)

const indexBatchSize = 500

// corpusRecord is one line of the JSONL dump. Field names follow the news
// dataset the upstream pipeline was built on.
type corpusRecord struct {
	ID                  string    `json:"id"`
	Link                string    `json:"link"`
	Headline            string    `json:"headline"`
	Category            string    `json:"category"`
	ShortDescription    string    `json:"short_description"`
	KeywordsProperNouns string    `json:"keywords_proper_nouns"`
	Date                string    `json:"date"`
	Embedding           []float32 `json:"embedding,omitempty"`
}

func (r corpusRecord) article() domain.Article {
	return domain.Article{
		ID:                  r.ID,
		Headline:            r.Headline,
		ShortDescription:    r.ShortDescription,
		Category:            r.Category,
		KeywordsProperNouns: r.KeywordsProperNouns,
		URL:                 r.Link,
		PublishedAt:         r.Date,
	}
}

func main() {
	corpusPath := flag.String("corpus", "", "path to the JSONL corpus dump (required)")
	computeEmbeddings := flag.Bool("embed", false,
		"compute embeddings via the configured provider for records without one")
	flag.Parse()

	if *corpusPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *corpusPath, *computeEmbeddings, logger); err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}
}

func run(cfg config.Config, corpusPath string, computeEmbeddings bool, logger *zap.Logger) error {
	ctx := context.Background()

	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open corpus store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	metadataStore := metadatarepo.New(store.DB)

	index, err := lexical.Create(lexical.Config{
		Path:             cfg.Lexical.IndexPath,
		HeadlineBoost:    cfg.Lexical.HeadlineBoost,
		KeywordsBoost:    cfg.Lexical.KeywordsBoost,
		DescriptionBoost: cfg.Lexical.DescriptionBoost,
	})
	if err != nil {
		return fmt.Errorf("create inverted index: %w", err)
	}
	defer func() { _ = index.Close() }()

	var embedder domain.Embedder
	if computeEmbeddings {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
	}

	f, err := os.Open(corpusPath)
	if err != nil {
		return fmt.Errorf("open corpus dump: %w", err)
	}
	defer func() { _ = f.Close() }()

	logger.Info("Building corpus artifacts",
		zap.String("corpus", corpusPath),
		zap.String("store", cfg.Store.Path),
		zap.String("index", cfg.Lexical.IndexPath),
		zap.Bool("compute_embeddings", computeEmbeddings),
	)
	start := time.Now()

	var (
		batch    []domain.Article
		indexed  int
		embedded int
		skipped  int
		line     int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec corpusRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			logger.Warn("Skipping malformed record",
				zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		if rec.ID == "" || rec.Headline == "" {
			logger.Warn("Skipping record without id or headline", zap.Int("line", line))
			skipped++
			continue
		}

		a := rec.article()
		if err := metadataStore.Upsert(ctx, a); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.ID, err)
		}

		vec := rec.Embedding
		if len(vec) == 0 && embedder != nil {
			res, err := embedder.Embed(ctx, embeddingText(a))
			if err != nil {
				return fmt.Errorf("embed article %s: %w", a.ID, err)
			}
			vec = res.Embedding
		}
		if len(vec) > 0 {
			if err := embeddingrepo.Save(ctx, store.DB, a.ID, domain.Normalize(vec)); err != nil {
				return fmt.Errorf("save embedding %s: %w", a.ID, err)
			}
			embedded++
		}

		batch = append(batch, a)
		if len(batch) >= indexBatchSize {
			if err := index.AddBatch(batch); err != nil {
				return fmt.Errorf("index batch at line %d: %w", line, err)
			}
			indexed += len(batch)
			batch = batch[:0]
			logger.Info("Progress", zap.Int("indexed", indexed))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read corpus dump: %w", err)
	}

	if len(batch) > 0 {
		if err := index.AddBatch(batch); err != nil {
			return fmt.Errorf("index final batch: %w", err)
		}
		indexed += len(batch)
	}

	count, err := index.DocCount()
	if err != nil {
		return fmt.Errorf("verify index: %w", err)
	}

	logger.Info("Corpus artifacts built",
		zap.Int("indexed", indexed),
		zap.Int("embedded", embedded),
		zap.Int("skipped", skipped),
		zap.Uint64("index_doc_count", count),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// embeddingText mirrors what the server embeds at query time: the headline
// is the primary signal, with the description as context.
func embeddingText(a domain.Article) string {
	if a.ShortDescription == "" {
		return a.Headline
	}
	return a.Headline + ". " + a.ShortDescription
}
