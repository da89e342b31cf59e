package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/core/services"
)

var (
	queryTopK    int
	queryMode    string
	querySources bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask an underwriting question against the index",
	Long: `Retrieves the most relevant policy chunks, synthesizes a model
response in the configured mode, and prints the schema-validated
structured answer as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "Chunks to retrieve (0 uses the configured default)")
	queryCmd.Flags().StringVarP(&queryMode, "mode", "m", "", "Response mode: compact, refine, or tree_summarize")
	queryCmd.Flags().BoolVarP(&querySources, "sources", "s", false, "Include retrieval attribution in the output")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, store, err := openIndexed(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	extractor, err := services.NewExtractor()
	if err != nil {
		return err
	}
	query := services.NewQueryService(
		newRetriever(cfg, embedder, store),
		services.NewSynthesizerService(newLLM(cfg), generateOptions()),
		extractor,
		cfg.Query.ResponseMode,
	)

	question := strings.Join(args, " ")
	answer, err := query.Query(cmd.Context(), question, driving.QueryOptions{
		TopK:           queryTopK,
		Mode:           domain.ResponseMode(queryMode),
		IncludeSources: querySources,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
