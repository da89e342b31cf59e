package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// mockEmbedder produces deterministic keyword-based embeddings so
// tests can steer similarity rankings. Each configured keyword owns
// one vector axis; text containing the keyword scores on that axis.
type mockEmbedder struct {
	keywords []string
	err      error
	calls    int
}

func newMockEmbedder(keywords ...string) *mockEmbedder {
	return &mockEmbedder{keywords: keywords}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls++

	vec := make([]float32, len(m.keywords)+1)
	lower := strings.ToLower(text)
	matched := false
	for i, kw := range m.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			vec[i] = 1
			matched = true
		}
	}
	if !matched {
		vec[len(m.keywords)] = 1
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.keywords) + 1 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockLLM replays scripted responses and records every prompt.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	next      int
	prompts   []string
	chats     [][]driven.ChatMessage
	err       error
}

func (m *mockLLM) reply() string {
	if m.next < len(m.responses) {
		r := m.responses[m.next]
		m.next++
		return r
	}
	if len(m.responses) > 0 {
		return m.responses[len(m.responses)-1]
	}
	return ""
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)
	return m.reply(), nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	copied := make([]driven.ChatMessage, len(messages))
	copy(copied, messages)
	m.chats = append(m.chats, copied)
	return m.reply(), nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockScoreStore keeps results and audit entries in memory.
type mockScoreStore struct {
	results map[string]domain.ScoreRecord
	audits  []domain.AuditEntry
	saveErr error
}

func newMockScoreStore() *mockScoreStore {
	return &mockScoreStore{results: make(map[string]domain.ScoreRecord)}
}

func (m *mockScoreStore) SaveResult(_ context.Context, rec *domain.ScoreRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.results[rec.RequestID] = *rec
	return nil
}

func (m *mockScoreStore) GetResult(_ context.Context, requestID string) (*domain.ScoreRecord, error) {
	rec, ok := m.results[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: result %s", domain.ErrNotFound, requestID)
	}
	return &rec, nil
}

func (m *mockScoreStore) ListResults(_ context.Context, customerID string) ([]domain.ScoreRecord, error) {
	var out []domain.ScoreRecord
	for _, rec := range m.results {
		if rec.CustomerID == customerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockScoreStore) AppendAudit(_ context.Context, entry *domain.AuditEntry) error {
	m.audits = append(m.audits, *entry)
	return nil
}

func (m *mockScoreStore) Close() error { return nil }
