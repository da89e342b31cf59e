package cli

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Open(cmd.Context()); err != nil {
		return err
	}

	idx := newIndexer(cfg, newEmbedder(cfg), store)
	stats := idx.Stats(cmd.Context())

	cmd.Printf("Backend:      %s\n", stats.Backend)
	cmd.Printf("Location:     %s\n", stats.Location)
	cmd.Printf("Total chunks: %d\n", stats.TotalChunks)
	cmd.Printf("Model:        %s\n", cfg.Embedding.Model)
	return nil
}
