// Package config loads the underwrite configuration from a TOML file
// with environment variable overrides. A .env file in the working
// directory is honoured when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/credostack/underwrite/internal/core/domain"
)

// Default configuration values.
const (
	DefaultEmbeddingBaseURL = "http://localhost:11434"
	DefaultEmbeddingModel   = "bge-m3"
	DefaultLLMBaseURL       = "http://localhost:11434"
	DefaultLLMModel         = "qwen3:8b"

	DefaultChunkSize    = 512
	DefaultChunkOverlap = 80
	DefaultBatchSize    = 32
	DefaultTopK         = 4

	DefaultSimilarityCutoff = 0.7

	DefaultEmbeddingTimeout  = 30 * time.Second
	DefaultGenerationTimeout = 120 * time.Second

	DefaultDocumentsDir = "./data/documents"
	DefaultIndexDir     = "./storage/index"
	DefaultCollection   = "credit_policies"
	DefaultScoringDB    = "./storage/scoring.db"
	DefaultListenAddr   = ":8080"
)

// EmbeddingConfig identifies the embedding model for one index
// lifetime. The same values must be used at build and query time.
type EmbeddingConfig struct {
	BaseURL    string        `toml:"base_url"`
	Model      string        `toml:"model"`
	Dimensions int           `toml:"dimensions"`
	BatchSize  int           `toml:"batch_size"`
	Timeout    time.Duration `toml:"timeout"`
}

// LLMConfig identifies the language model used for synthesis and chat.
type LLMConfig struct {
	BaseURL string        `toml:"base_url"`
	Model   string        `toml:"model"`
	Timeout time.Duration `toml:"timeout"`
}

// IndexConfig controls document loading, chunking, and vector storage.
type IndexConfig struct {
	Backend      domain.VectorBackend `toml:"backend"`
	DocumentsDir string               `toml:"documents_dir"`
	IndexDir     string               `toml:"index_dir"`
	Collection   string               `toml:"collection"`
	ChunkSize    int                  `toml:"chunk_size"`
	ChunkOverlap int                  `toml:"chunk_overlap"`
}

// QueryConfig controls retrieval and synthesis behaviour.
type QueryConfig struct {
	TopK             int                 `toml:"top_k"`
	ResponseMode     domain.ResponseMode `toml:"response_mode"`
	SimilarityCutoff float64             `toml:"similarity_cutoff"`
	ChatMode         domain.ChatMode     `toml:"chat_mode"`
}

// ScoringConfig controls the scoring HTTP service.
type ScoringConfig struct {
	ListenAddr string `toml:"listen_addr"`
	DBPath     string `toml:"db_path"`
}

// Config is the full application configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Index     IndexConfig     `toml:"index"`
	Query     QueryConfig     `toml:"query"`
	Scoring   ScoringConfig   `toml:"scoring"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			BaseURL:   DefaultEmbeddingBaseURL,
			Model:     DefaultEmbeddingModel,
			BatchSize: DefaultBatchSize,
			Timeout:   DefaultEmbeddingTimeout,
		},
		LLM: LLMConfig{
			BaseURL: DefaultLLMBaseURL,
			Model:   DefaultLLMModel,
			Timeout: DefaultGenerationTimeout,
		},
		Index: IndexConfig{
			Backend:      domain.VectorBackendFlat,
			DocumentsDir: DefaultDocumentsDir,
			IndexDir:     DefaultIndexDir,
			Collection:   DefaultCollection,
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Query: QueryConfig{
			TopK:             DefaultTopK,
			ResponseMode:     domain.ResponseModeCompact,
			SimilarityCutoff: DefaultSimilarityCutoff,
			ChatMode:         domain.ChatModeCondenseQuestion,
		},
		Scoring: ScoringConfig{
			ListenAddr: DefaultListenAddr,
			DBPath:     DefaultScoringDB,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file,
// and environment overrides, in that order of precedence (lowest
// first). A missing file is not an error.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env file is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env overrides.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
// The variable names follow the upstream service conventions
// (OLLAMA_BASE_URL, EMBED_MODEL) with UNDERWRITE_ prefixed overrides
// for everything else.
func (c *Config) applyEnv() {
	setString(&c.Embedding.BaseURL, "OLLAMA_BASE_URL")
	setString(&c.LLM.BaseURL, "OLLAMA_BASE_URL")
	setString(&c.Embedding.Model, "EMBED_MODEL")
	setString(&c.LLM.Model, "OLLAMA_MODEL")
	setString(&c.Index.DocumentsDir, "DATA_DIR")
	setString(&c.Index.IndexDir, "INDEX_DIR")
	setString(&c.Index.Collection, "UNDERWRITE_COLLECTION")
	setInt(&c.Index.ChunkSize, "UNDERWRITE_CHUNK_SIZE")
	setInt(&c.Index.ChunkOverlap, "UNDERWRITE_CHUNK_OVERLAP")
	setInt(&c.Query.TopK, "UNDERWRITE_TOP_K")
	setFloat(&c.Query.SimilarityCutoff, "UNDERWRITE_SIMILARITY_CUTOFF")
	setString(&c.Scoring.ListenAddr, "UNDERWRITE_LISTEN_ADDR")
	setString(&c.Scoring.DBPath, "UNDERWRITE_SCORING_DB")

	if v := os.Getenv("VECTOR_STORE_TYPE"); v != "" {
		c.Index.Backend = domain.VectorBackend(v)
	}
	if v := os.Getenv("RESPONSE_MODE"); v != "" {
		c.Query.ResponseMode = domain.ResponseMode(v)
	}
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if !c.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, c.Index.Backend)
	}
	if !c.Query.ResponseMode.IsValid() {
		return fmt.Errorf("%w: unknown response mode %q", domain.ErrInvalidInput, c.Query.ResponseMode)
	}
	if !c.Query.ChatMode.IsValid() {
		return fmt.Errorf("%w: unknown chat mode %q", domain.ErrInvalidInput, c.Query.ChatMode)
	}
	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidInput)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", domain.ErrInvalidInput)
	}
	if c.Query.SimilarityCutoff < 0 || c.Query.SimilarityCutoff > 1 {
		return fmt.Errorf("%w: similarity cutoff must be in [0, 1]", domain.ErrInvalidInput)
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
