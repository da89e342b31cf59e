package services

import (
	"context"
	"fmt"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/logger"
)

// Ensure QuerySvc implements the interface.
var _ driving.QueryService = (*QuerySvc)(nil)

// QuerySvc answers underwriting questions: retrieve context,
// synthesize a model response, extract the structured answer.
type QuerySvc struct {
	retriever   *RetrieverService
	synthesizer *SynthesizerService
	extractor   *Extractor
	defaultMode domain.ResponseMode
}

// NewQueryService creates a query service over the pipeline stages.
func NewQueryService(
	retriever *RetrieverService,
	synthesizer *SynthesizerService,
	extractor *Extractor,
	defaultMode domain.ResponseMode,
) *QuerySvc {
	if defaultMode == "" {
		defaultMode = domain.ResponseModeCompact
	}
	return &QuerySvc{
		retriever:   retriever,
		synthesizer: synthesizer,
		extractor:   extractor,
		defaultMode: defaultMode,
	}
}

// Query runs the full answer pipeline for one question. A question
// with no relevant context still gets an answer; the prompt contract
// steers the model toward need_more_info in that case.
func (s *QuerySvc) Query(ctx context.Context, question string, opts driving.QueryOptions) (*domain.StructuredAnswer, error) {
	logger.Section("Query")

	mode := opts.Mode
	if mode == "" {
		mode = s.defaultMode
	}

	results, err := s.retriever.Retrieve(ctx, question, opts.TopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		logger.Info("No context above cutoff for %q", question)
	}

	raw, err := s.synthesizer.Synthesize(ctx, question, results, mode)
	if err != nil {
		return nil, err
	}

	answer, err := s.extractor.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("extract answer: %w", err)
	}

	if opts.IncludeSources {
		answer.Sources = results
	}
	return answer, nil
}
