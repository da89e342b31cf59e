// Package cli implements the underwrite command line interface.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/credostack/underwrite/internal/adapters/driven/llm/ollama"
	"github.com/credostack/underwrite/internal/adapters/driven/vectorstore/flat"
	"github.com/credostack/underwrite/internal/adapters/driven/vectorstore/sqlitevec"
	"github.com/credostack/underwrite/internal/chunker"
	"github.com/credostack/underwrite/internal/config"
	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/core/services"
	"github.com/credostack/underwrite/internal/loaders"
	"github.com/credostack/underwrite/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "underwrite",
	Short: "Credit underwriting assistant over your policy documents",
	Long: `underwrite indexes credit policy documents into a vector store and
answers underwriting questions with schema-validated JSON decisions.
It also ships a small rule-based scoring API.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "underwrite.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newVectorStore selects the backend from the config enum.
func newVectorStore(cfg *config.Config) (driven.VectorStore, error) {
	switch cfg.Index.Backend {
	case domain.VectorBackendFlat:
		return flat.New(flat.Config{
			Dir:   cfg.Index.IndexDir,
			Model: cfg.Embedding.Model,
		}), nil
	case domain.VectorBackendCollection:
		return sqlitevec.New(sqlitevec.Config{
			Path:       filepath.Join(cfg.Index.IndexDir, "vectors.db"),
			Collection: cfg.Index.Collection,
			Model:      cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, cfg.Index.Backend)
	}
}

// newEmbedder builds the configured embedding service.
func newEmbedder(cfg *config.Config) driven.EmbeddingService {
	return ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Timeout:    cfg.Embedding.Timeout,
		Dimensions: cfg.Embedding.Dimensions,
	})
}

// newLLM builds the configured language model service.
func newLLM(cfg *config.Config) driven.LLMService {
	return llmollama.NewLLMService(llmollama.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
}

// newIndexer wires the index build pipeline.
func newIndexer(cfg *config.Config, embedder driven.EmbeddingService, store driven.VectorStore) *services.IndexerService {
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Index.ChunkSize),
		chunker.WithOverlap(cfg.Index.ChunkOverlap),
	)
	return services.NewIndexerService(
		loaders.DefaultRegistry(),
		splitter,
		embedder,
		store,
		services.IndexerConfig{Backend: cfg.Index.Backend, BatchSize: cfg.Embedding.BatchSize},
	)
}

// generateOptions returns the generation settings used for answer
// synthesis. Temperature stays at zero so decisions are reproducible.
func generateOptions() driven.GenerateOptions {
	return driven.GenerateOptions{Temperature: 0}
}

// newRetriever wires query-time retrieval.
func newRetriever(cfg *config.Config, embedder driven.EmbeddingService, store driven.VectorStore) *services.RetrieverService {
	return services.NewRetrieverService(embedder, store, services.RetrieverConfig{
		SimilarityCutoff: cfg.Query.SimilarityCutoff,
		TopK:             cfg.Query.TopK,
	})
}

// openIndexed loads the persisted index, returning everything a
// query-side command needs.
func openIndexed(ctx context.Context, cfg *config.Config) (driven.EmbeddingService, driven.VectorStore, error) {
	embedder := newEmbedder(cfg)
	store, err := newVectorStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	idx := newIndexer(cfg, embedder, store)
	if err := idx.Load(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return embedder, store, nil
}
