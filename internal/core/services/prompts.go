package services

import (
	"fmt"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
)

// answerPromptTemplate is the underwriting answer contract. The model
// must respond with a single JSON object and must not invent policy
// thresholds that are absent from the retrieved context.
const answerPromptTemplate = `You are a Credit Underwriting Assistant.
You MUST answer ONLY in valid JSON matching this schema:
{
  "summary": string,
  "decision": "approve"|"decline"|"need_more_info"|"review",
  "reasons": [{"type":"rule"|"model"|"policy","text":string,"evidence":[{"doc_title":string,"version":string|null,"section":string|null,"page":number|null}]}],
  "missing_info": [string],
  "next_actions": [string],
  "customer_message_draft": string|null,
  "risk_note": string|null
}

Rules:
- Do NOT invent policy thresholds. If not found in the context, say need_more_info or review and explain what is missing.
- Evidence must cite retrieved documents when referencing policies or rules. If no evidence, leave evidence=[] and avoid quoting numbers.
- Output the JSON object only, with no surrounding prose.

Context:
%s

User question:
%s
`

// refinePromptTemplate folds one more context block into an existing
// answer without discarding cited evidence.
const refinePromptTemplate = `You are a Credit Underwriting Assistant refining a draft answer.
The draft below was produced from earlier context. Improve it using the
additional context, keeping the same JSON schema and all rules. If the
additional context is irrelevant, return the draft unchanged.
Output the JSON object only.

Draft answer:
%s

Additional context:
%s

User question:
%s
`

// summarizePromptTemplate condenses a group of context blocks for the
// tree_summarize mode.
const summarizePromptTemplate = `Summarize the following credit policy excerpts, preserving every
concrete threshold, eligibility rule, and document reference exactly as
written. Answer with the summary text only.

Excerpts:
%s
`

// condensePromptTemplate rewrites a follow-up question into a
// standalone one using the conversation so far.
const condensePromptTemplate = `Given the following conversation and a follow-up question, rewrite the
follow-up as a single standalone question that captures all needed
context. Answer with the question only.

Conversation:
%s

Follow-up question:
%s
`

// chatSystemPrompt grounds conversational answers in retrieved policy
// text without the structured JSON contract.
const chatSystemPrompt = `You are a Credit Underwriting Assistant. Answer using only the policy
context provided in each message. When the context does not cover the
question, say so instead of guessing, and never invent policy
thresholds.`

// noContextPlaceholder is used when retrieval finds nothing relevant.
const noContextPlaceholder = "(no relevant policy context was retrieved)"

// answerPrompt renders the structured answer prompt.
func answerPrompt(question, context string) string {
	if context == "" {
		context = noContextPlaceholder
	}
	return fmt.Sprintf(answerPromptTemplate, context, question)
}

// refinePrompt renders the refinement prompt.
func refinePrompt(question, draft, context string) string {
	return fmt.Sprintf(refinePromptTemplate, draft, context, question)
}

// summarizePrompt renders the group summary prompt.
func summarizePrompt(context string) string {
	return fmt.Sprintf(summarizePromptTemplate, context)
}

// condensePrompt renders the question rewrite prompt.
func condensePrompt(history []string, question string) string {
	return fmt.Sprintf(condensePromptTemplate, strings.Join(history, "\n"), question)
}

// contextBlock renders retrieved chunks as an attributed context
// section, one block per chunk.
func contextBlock(results []domain.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title, _ := r.Chunk.Metadata["doc_title"].(string)
		if title == "" {
			title = r.Chunk.DocumentID
		}
		fmt.Fprintf(&b, "[source: %s]\n%s", title, r.Chunk.Content)
	}
	return b.String()
}
