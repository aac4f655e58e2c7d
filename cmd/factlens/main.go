package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/config"
	dbRedis "github.com/factlens/factlens/internal/db/redis"
	"github.com/factlens/factlens/internal/db/sqlite"
	"github.com/factlens/factlens/internal/domain"
	logpkg "github.com/factlens/factlens/internal/logger"
	"github.com/factlens/factlens/internal/metrics"
	"github.com/factlens/factlens/internal/nlp"
	"github.com/factlens/factlens/internal/query"
	"github.com/factlens/factlens/internal/repository/embcache"
	embeddingrepo "github.com/factlens/factlens/internal/repository/embedding"
	"github.com/factlens/factlens/internal/repository/lexical"
	metadatarepo "github.com/factlens/factlens/internal/repository/metadata"
	chiTransport "github.com/factlens/factlens/internal/transport/chi"
	openaiTransport "github.com/factlens/factlens/internal/transport/openai"
	"github.com/factlens/factlens/internal/transport/scraper"
	factcheckuc "github.com/factlens/factlens/internal/usecase/factcheck"
	healthuc "github.com/factlens/factlens/internal/usecase/health"
	keyworduc "github.com/factlens/factlens/internal/usecase/keyword"
	searchuc "github.com/factlens/factlens/internal/usecase/search"
	semanticuc "github.com/factlens/factlens/internal/usecase/semantic"
	"github.com/factlens/factlens/internal/version"
)

func main() {
	// Load .env if present, then configuration based on ENV
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

	logger.Info("Starting factlens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_path", cfg.Store.Path),
		zap.String("index_path", cfg.Lexical.IndexPath),
	)

	ctx := context.Background()

	// Corpus store: article metadata plus the precomputed embedding matrix
	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		logger.Fatal("Failed to open corpus store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Corpus store not ready", zap.Error(err))
	}

	metadataStore := metadatarepo.New(store.DB)

	vectors, err := embeddingrepo.Load(ctx, store.DB)
	if err != nil {
		logger.Fatal("Failed to load embedding matrix", zap.Error(err))
	}
	logger.Info("Embedding matrix loaded",
		zap.Int("documents", vectors.Len()),
		zap.Int("dimensions", vectors.Dim()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(cfg, logger)

	queryProcessor := query.NewProcessor(logger)

	// Lexical index failure degrades the pipeline instead of killing the
	// process; the semantic stage keeps serving.
	var keywordSvc *keyworduc.Service
	lexIndex, err := lexical.Open(lexical.Config{
		Path:             cfg.Lexical.IndexPath,
		HeadlineBoost:    cfg.Lexical.HeadlineBoost,
		KeywordsBoost:    cfg.Lexical.KeywordsBoost,
		DescriptionBoost: cfg.Lexical.DescriptionBoost,
	})
	if err != nil {
		logger.Warn("Lexical index unavailable, serving in degraded mode", zap.Error(err))
	} else {
		defer func() { _ = lexIndex.Close() }()
		keywordSvc = keyworduc.New(
			lexIndex,
			queryProcessor,
			nlp.NewEntityDetector(logger),
			logger,
		)
	}

	semanticSvc := semanticuc.New(
		embedder, vectors, metadataStore, cfg.Search.MinSemanticScore, logger,
	)

	// Pass nil interface (not typed nil pointer!) for the missing stage.
	// Go gotcha: (*keyworduc.Service)(nil) wrapped in KeywordSearcher != nil.
	var keywordStage searchuc.KeywordSearcher
	if keywordSvc != nil {
		keywordStage = keywordSvc
	}
	searchSvc := searchuc.New(
		keywordStage,
		semanticSvc,
		searchuc.NewMerger(cfg.Search.RRFK),
		queryProcessor,
		searchuc.Config{
			TopN:    cfg.Search.TopN,
			TopK:    cfg.Search.TopK,
			Timeout: time.Duration(cfg.Search.TimeoutSec) * time.Second,
		},
		logger,
	)

	// Fake-news check: disabled unless a scraper collaborator is configured.
	var titleScraper factcheckuc.TitleScraper
	var explainer factcheckuc.Explainer
	if cfg.FactCheck.ScraperURL != "" {
		titleScraper = scraper.New(cfg.FactCheck.ScraperURL, logger)
		if cfg.Embedding.APIKey != "" {
			explainer = openaiTransport.NewExplainer(&openaiTransport.Config{
				APIKey:  cfg.Embedding.APIKey,
				BaseURL: cfg.Embedding.BaseURL,
				Logger:  logger,
			}, cfg.FactCheck.ChatModel)
		}
	}
	factcheckSvc := factcheckuc.New(
		titleScraper, semanticSvc, explainer, cfg.FactCheck.SimilarityThreshold, logger,
	)

	var lexProbe healthuc.LexicalProbe
	if lexIndex != nil && keywordSvc != nil {
		lexProbe = lexIndex
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), lexProbe)

	var keywordEndpoint chiTransport.KeywordSearcher
	if keywordSvc != nil {
		keywordEndpoint = keywordSvc
	}
	server := chiTransport.NewServer(
		searchSvc, keywordEndpoint, semanticSvc, factcheckSvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the query embedder chain: OpenAI -> Cached.
// The Redis cache layer is optional and skipped when no addrs configured.
func buildEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if len(cfg.Cache.Addrs) == 0 {
		return base
	}

	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache unavailable, continuing without it", zap.Error(err))
		return base
	}
	if err := kv.WaitForReady(context.Background(), 10*time.Second); err != nil {
		logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
		kv.Close()
		return base
	}
	logger.Info("Embedding cache connected", zap.Strings("addrs", cfg.Cache.Addrs))

	return embcache.New(
		base,
		kv,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.EmbeddingCacheTotal,
		logger,
	)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
