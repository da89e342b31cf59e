package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driving"
)

var (
	indexDir       string
	indexRecursive bool
	indexNoPersist bool
	indexRebuild   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the policy document index",
	Long: `Loads every supported document from the documents directory, splits
it into chunks, embeds the chunks, and stores them in the configured
vector backend. Use --rebuild to discard existing artifacts first.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "Documents directory (defaults to the configured one)")
	indexCmd.Flags().BoolVarP(&indexRecursive, "recursive", "r", false, "Walk subdirectories")
	indexCmd.Flags().BoolVar(&indexNoPersist, "no-persist", false, "Skip writing index artifacts to disk")
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "Discard existing artifacts and build fresh")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := indexDir
	if dir == "" {
		dir = cfg.Index.DocumentsDir
	}

	embedder := newEmbedder(cfg)
	store, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	idx := newIndexer(cfg, embedder, store)
	opts := driving.BuildOptions{
		Recursive: indexRecursive,
		Persist:   !indexNoPersist,
	}

	build := idx.Build
	if indexRebuild {
		build = idx.Rebuild
	}
	if err := build(cmd.Context(), dir, opts); err != nil {
		if errors.Is(err, domain.ErrNoDocuments) {
			cmd.Printf("No supported documents found in %s\n", dir)
			cmd.Printf("Supported formats: .txt .md .csv .tsv .docx .xlsx .pdf\n")
		}
		return err
	}

	stats := idx.Stats(cmd.Context())
	cmd.Printf("Indexed %d chunks into %s backend at %s\n", stats.TotalChunks, stats.Backend, stats.Location)
	return nil
}
