package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/logger"
)

// treeGroupSize is how many context blocks each tree_summarize group
// folds into one summary.
const treeGroupSize = 3

// SynthesizerService turns retrieved chunks into a model response.
// It is the single LLM integration point for query answering; the
// response mode changes only the call pattern and context folding.
type SynthesizerService struct {
	llm  driven.LLMService
	opts driven.GenerateOptions
}

// NewSynthesizerService creates a synthesizer over the given model.
func NewSynthesizerService(llm driven.LLMService, opts driven.GenerateOptions) *SynthesizerService {
	return &SynthesizerService{llm: llm, opts: opts}
}

// Synthesize produces the raw model response for a question and its
// retrieved context using the requested mode.
func (s *SynthesizerService) Synthesize(ctx context.Context, question string, results []domain.RetrievalResult, mode domain.ResponseMode) (string, error) {
	if mode == "" {
		mode = domain.ResponseModeCompact
	}
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown response mode %q", domain.ErrInvalidInput, mode)
	}
	logger.Debug("Synthesizing with mode %s over %d chunks", mode, len(results))

	switch mode {
	case domain.ResponseModeRefine:
		return s.refine(ctx, question, results)
	case domain.ResponseModeTreeSummarize:
		return s.treeSummarize(ctx, question, results)
	default:
		return s.compact(ctx, question, results)
	}
}

// compact stuffs all context into a single prompt.
func (s *SynthesizerService) compact(ctx context.Context, question string, results []domain.RetrievalResult) (string, error) {
	answer, err := s.llm.Generate(ctx, answerPrompt(question, contextBlock(results)), s.opts)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// refine answers from the first chunk, then folds each remaining chunk
// into the draft one call at a time.
func (s *SynthesizerService) refine(ctx context.Context, question string, results []domain.RetrievalResult) (string, error) {
	if len(results) == 0 {
		return s.compact(ctx, question, nil)
	}

	draft, err := s.compact(ctx, question, results[:1])
	if err != nil {
		return "", err
	}

	for _, r := range results[1:] {
		draft, err = s.llm.Generate(ctx, refinePrompt(question, draft, contextBlock([]domain.RetrievalResult{r})), s.opts)
		if err != nil {
			return "", fmt.Errorf("refine answer: %w", err)
		}
	}
	return draft, nil
}

// treeSummarize summarizes groups of chunks, folding the summaries
// level by level until one context fits a final compact call.
func (s *SynthesizerService) treeSummarize(ctx context.Context, question string, results []domain.RetrievalResult) (string, error) {
	if len(results) <= treeGroupSize {
		return s.compact(ctx, question, results)
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = contextBlock([]domain.RetrievalResult{r})
	}

	for len(blocks) > treeGroupSize {
		var next []string
		for start := 0; start < len(blocks); start += treeGroupSize {
			end := start + treeGroupSize
			if end > len(blocks) {
				end = len(blocks)
			}
			summary, err := s.llm.Generate(ctx, summarizePrompt(strings.Join(blocks[start:end], "\n\n")), s.opts)
			if err != nil {
				return "", fmt.Errorf("summarize context: %w", err)
			}
			next = append(next, summary)
		}
		blocks = next
	}

	answer, err := s.llm.Generate(ctx, answerPrompt(question, strings.Join(blocks, "\n\n")), s.opts)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}
