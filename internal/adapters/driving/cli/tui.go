package cli

import (
	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/adapters/driving/tui"
	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/services"
)

var tuiMode string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive chat interface",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiMode, "mode", "m", "", "Chat mode: condense_question or simple")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.Query.ChatMode
	if tuiMode != "" {
		mode = domain.ChatMode(tuiMode)
	}

	var retriever *services.RetrieverService
	if mode.RequiresIndex() {
		embedder, store, err := openIndexed(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		retriever = newRetriever(cfg, embedder, store)
	}

	chat, err := services.NewChatService(newLLM(cfg), retriever, mode, generateOptions())
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), chat)
}
