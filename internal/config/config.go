package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the factlens API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Lexical   LexicalConfig   `yaml:"lexical"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	FactCheck FactCheckConfig `yaml:"factcheck"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds the SQLite corpus store settings. The store carries both
// article metadata and the precomputed embedding matrix.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LexicalConfig holds the on-disk inverted index settings and per-field
// boosts for the multi-field BM25 query.
type LexicalConfig struct {
	IndexPath        string  `yaml:"index_path"`
	HeadlineBoost    float64 `yaml:"headline_boost"`
	KeywordsBoost    float64 `yaml:"keywords_boost"`
	DescriptionBoost float64 `yaml:"description_boost"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Provider   string `yaml:"provider"`
}

// CacheConfig holds the optional Redis embedding-cache settings.
// An empty addrs list disables the cache.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// SearchConfig holds retrieval and fusion tuning knobs.
type SearchConfig struct {
	TopN int `yaml:"top_n"` // lexical candidates
	TopK int `yaml:"top_k"` // semantic candidates
	RRFK int `yaml:"rrf_k"` // fusion smoothing constant
	// MinSemanticScore is the caller-level cosine floor applied to semantic
	// hits before fusion. 0 disables it.
	MinSemanticScore float64 `yaml:"min_semantic_score"`
	TimeoutSec       int     `yaml:"timeout_sec"`
}

// FactCheckConfig holds fake-news check settings. ScraperURL empty disables
// the feature.
type FactCheckConfig struct {
	ScraperURL string `yaml:"scraper_url"`
	// SimilarityThreshold is the cosine score below which a corroborating
	// headline does not count as support. The upstream data pipeline used
	// 0.3 and 0.7 in different revisions, so this is configuration, not code.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ChatModel           string  `yaml:"chat_model"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR} / ${VAR:-default}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Lexical.HeadlineBoost <= 0 {
		c.Lexical.HeadlineBoost = 3.0
	}
	if c.Lexical.KeywordsBoost <= 0 {
		c.Lexical.KeywordsBoost = 2.0
	}
	if c.Lexical.DescriptionBoost <= 0 {
		c.Lexical.DescriptionBoost = 1.0
	}
	if c.Search.TopN <= 0 {
		c.Search.TopN = 10
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 10
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 15
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.FactCheck.SimilarityThreshold <= 0 {
		c.FactCheck.SimilarityThreshold = 0.3
	}
	if c.FactCheck.ChatModel == "" {
		c.FactCheck.ChatModel = "gpt-4o-mini"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Lexical.IndexPath == "" {
		return fmt.Errorf("lexical.index_path is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Search.MinSemanticScore < 0 || c.Search.MinSemanticScore > 1 {
		return fmt.Errorf(
			"search.min_semantic_score must be between 0 and 1, got %v",
			c.Search.MinSemanticScore,
		)
	}
	if c.FactCheck.SimilarityThreshold < 0 || c.FactCheck.SimilarityThreshold > 1 {
		return fmt.Errorf(
			"factcheck.similarity_threshold must be between 0 and 1, got %v",
			c.FactCheck.SimilarityThreshold,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
