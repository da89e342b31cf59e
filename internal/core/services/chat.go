package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/logger"
)

// Ensure ChatSvc implements the interface.
var _ driving.ChatService = (*ChatSvc)(nil)

// ChatSvc holds one conversation. In condense_question mode every
// follow-up is rewritten into a standalone question, grounded with
// retrieved context, and answered; simple mode talks to the model
// directly with no retrieval.
type ChatSvc struct {
	llm       driven.LLMService
	retriever *RetrieverService
	mode      domain.ChatMode
	opts      driven.GenerateOptions

	mu      sync.Mutex
	history []driven.ChatMessage
}

// NewChatService creates a chat service. The retriever may be nil for
// simple mode.
func NewChatService(llm driven.LLMService, retriever *RetrieverService, mode domain.ChatMode, opts driven.GenerateOptions) (*ChatSvc, error) {
	if mode == "" {
		mode = domain.ChatModeCondenseQuestion
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown chat mode %q", domain.ErrInvalidInput, mode)
	}
	if mode.RequiresIndex() && retriever == nil {
		return nil, fmt.Errorf("%w: chat mode %s needs a retriever", domain.ErrInvalidInput, mode)
	}
	return &ChatSvc{
		llm:       llm,
		retriever: retriever,
		mode:      mode,
		opts:      opts,
	}, nil
}

// Send processes one user turn and returns the assistant reply.
func (s *ChatSvc) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var reply string
	var err error
	switch s.mode {
	case domain.ChatModeSimple:
		reply, err = s.simpleTurn(ctx, message)
	default:
		reply, err = s.condenseTurn(ctx, message)
	}
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		driven.ChatMessage{Role: "user", Content: message},
		driven.ChatMessage{Role: "assistant", Content: reply},
	)
	return reply, nil
}

// simpleTurn answers from the conversation alone.
func (s *ChatSvc) simpleTurn(ctx context.Context, message string) (string, error) {
	messages := make([]driven.ChatMessage, 0, len(s.history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, s.history...)
	messages = append(messages, driven.ChatMessage{Role: "user", Content: message})

	reply, err := s.llm.Chat(ctx, messages, s.opts)
	if err != nil {
		return "", fmt.Errorf("chat turn: %w", err)
	}
	return reply, nil
}

// condenseTurn rewrites follow-ups into standalone questions, then
// answers from retrieved context.
func (s *ChatSvc) condenseTurn(ctx context.Context, message string) (string, error) {
	question := message
	if len(s.history) > 0 {
		transcript := make([]string, len(s.history))
		for i, m := range s.history {
			transcript[i] = fmt.Sprintf("%s: %s", m.Role, m.Content)
		}

		condensed, err := s.llm.Generate(ctx, condensePrompt(transcript, message), s.opts)
		if err != nil {
			return "", fmt.Errorf("condense question: %w", err)
		}
		if condensed = strings.TrimSpace(condensed); condensed != "" {
			question = condensed
			logger.Debug("Condensed %q into %q", message, question)
		}
	}

	results, err := s.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return "", err
	}

	block := contextBlock(results)
	if block == "" {
		block = noContextPlaceholder
	}

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s", block, question)},
	}, s.opts)
	if err != nil {
		return "", fmt.Errorf("chat turn: %w", err)
	}
	return reply, nil
}

// Mode returns the active chat mode.
func (s *ChatSvc) Mode() domain.ChatMode {
	return s.mode
}

// Reset clears the conversation history.
func (s *ChatSvc) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
