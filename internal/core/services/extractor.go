package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/credostack/underwrite/internal/core/domain"
)

// answerSchema is the JSON Schema the model output must satisfy.
// Validation is all-or-nothing: no semantic repair of almost-valid
// output.
const answerSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["summary", "decision", "reasons"],
	"properties": {
		"summary": {"type": "string", "minLength": 1},
		"decision": {"type": "string", "enum": ["approve", "decline", "need_more_info", "review"]},
		"reasons": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "text"],
				"properties": {
					"type": {"type": "string", "enum": ["rule", "model", "policy"]},
					"text": {"type": "string", "minLength": 1},
					"evidence": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["doc_title"],
							"properties": {
								"doc_title": {"type": "string", "minLength": 1},
								"version": {"type": ["string", "null"]},
								"section": {"type": ["string", "null"]},
								"page": {"type": ["number", "null"]}
							}
						}
					}
				}
			}
		},
		"missing_info": {"type": "array", "items": {"type": "string"}},
		"next_actions": {"type": "array", "items": {"type": "string"}},
		"customer_message_draft": {"type": ["string", "null"]},
		"risk_note": {"type": ["string", "null"]}
	}
}`

// Extractor pulls the structured answer out of raw model output.
// Models often wrap the JSON in prose, so extraction takes the largest
// brace-delimited block before validating.
type Extractor struct {
	schema *gojsonschema.Schema
}

// NewExtractor compiles the answer schema.
func NewExtractor() (*Extractor, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(answerSchema))
	if err != nil {
		return nil, fmt.Errorf("compile answer schema: %w", err)
	}
	return &Extractor{schema: schema}, nil
}

// Extract locates the JSON object in text, validates it against the
// schema, and decodes it. Every schema violation is reported, not just
// the first.
func (e *Extractor) Extract(text string) (*domain.StructuredAnswer, error) {
	raw, err := extractJSONBlock(text)
	if err != nil {
		return nil, err
	}

	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%w: not parseable", domain.ErrMalformedJSON)
	}

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, &domain.SchemaError{Violations: violations}
	}

	var answer domain.StructuredAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}

	if err := answer.Validate(); err != nil {
		return nil, err
	}
	return &answer, nil
}

// extractJSONBlock returns the largest brace-delimited block, matching
// greedily from the first opening brace to the last closing one.
func extractJSONBlock(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", domain.ErrNoJSONFound
	}
	return text[start : end+1], nil
}
