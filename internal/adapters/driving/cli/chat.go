package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/services"
)

var chatMode string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold a conversation about the indexed policies",
	Long: `Starts an interactive chat session. In condense_question mode each
follow-up is rewritten into a standalone question and grounded in
retrieved policy context; simple mode talks to the model directly.

Type /reset to clear the conversation, /quit or Ctrl-D to exit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", "", "Chat mode: condense_question or simple")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.Query.ChatMode
	if chatMode != "" {
		mode = domain.ChatMode(chatMode)
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

	cmd.Printf("Chat mode: %s. Type /quit to exit.\n", chat.Mode())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			chat.Reset()
			cmd.Println("Conversation cleared.")
			continue
		}

		reply, err := chat.Send(cmd.Context(), line)
		if err != nil {
			var failure *domain.ServiceFailure
			if errors.As(err, &failure) {
				cmd.Printf("error: %s\n", failure.Error())
				continue
			}
			return err
		}
		cmd.Printf("\n%s\n\n", reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
