package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

func TestChat_CondenseQuestion_FirstTurnSkipsCondense(t *testing.T) {
	embedder := newMockEmbedder("thin file")
	store := seedStore(t, chunkEntry("a", "A thin file customer has no credit history.", 1, 0))
	retriever := NewRetrieverService(embedder, store, RetrieverConfig{})

	llm := &mockLLM{responses: []string{"A thin file means no credit history."}}
	chat, err := NewChatService(llm, retriever, domain.ChatModeCondenseQuestion, driven.GenerateOptions{})
	require.NoError(t, err)

	reply, err := chat.Send(context.Background(), "What is a thin file?")
	require.NoError(t, err)

	assert.Equal(t, "A thin file means no credit history.", reply)
	// No history yet, so no condense call happened.
	assert.Empty(t, llm.prompts)
	require.Len(t, llm.chats, 1)
	assert.Contains(t, llm.chats[0][1].Content, "no credit history")
}

func TestChat_CondenseQuestion_FollowUpIsRewritten(t *testing.T) {
	embedder := newMockEmbedder("thin file")
	store := seedStore(t, chunkEntry("a", "A thin file customer has no credit history.", 1, 0))
	retriever := NewRetrieverService(embedder, store, RetrieverConfig{})

	llm := &mockLLM{responses: []string{
		"First answer.",
		"How is a thin file customer scored?", // condensed question
		"Second answer.",
	}}
	chat, err := NewChatService(llm, retriever, domain.ChatModeCondenseQuestion, driven.GenerateOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = chat.Send(ctx, "What is a thin file?")
	require.NoError(t, err)

	reply, err := chat.Send(ctx, "How is one scored?")
	require.NoError(t, err)
	assert.Equal(t, "Second answer.", reply)

	// The condense prompt carries the transcript and the follow-up.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "What is a thin file?")
	assert.Contains(t, llm.prompts[0], "How is one scored?")

	// The answering turn used the rewritten question.
	require.Len(t, llm.chats, 2)
	assert.Contains(t, llm.chats[1][1].Content, "How is a thin file customer scored?")
}

func TestChat_Simple_NoRetrieval(t *testing.T) {
	llm := &mockLLM{responses: []string{"hello"}}
	chat, err := NewChatService(llm, nil, domain.ChatModeSimple, driven.GenerateOptions{})
	require.NoError(t, err)

	reply, err := chat.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	require.Len(t, llm.chats, 1)
	assert.Equal(t, "system", llm.chats[0][0].Role)
	assert.Equal(t, "hi", llm.chats[0][1].Content)
}

func TestChat_Simple_HistoryAccumulates(t *testing.T) {
	llm := &mockLLM{responses: []string{"first", "second"}}
	chat, err := NewChatService(llm, nil, domain.ChatModeSimple, driven.GenerateOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = chat.Send(ctx, "one")
	require.NoError(t, err)
	_, err = chat.Send(ctx, "two")
	require.NoError(t, err)

	// system + prior user/assistant pair + new user message.
	require.Len(t, llm.chats[1], 4)
	assert.Equal(t, "one", llm.chats[1][1].Content)
	assert.Equal(t, "first", llm.chats[1][2].Content)
}

func TestChat_Reset(t *testing.T) {
	llm := &mockLLM{responses: []string{"a", "b"}}
	chat, err := NewChatService(llm, nil, domain.ChatModeSimple, driven.GenerateOptions{})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = chat.Send(ctx, "one")
	require.NoError(t, err)

	chat.Reset()

	_, err = chat.Send(ctx, "two")
	require.NoError(t, err)
	require.Len(t, llm.chats[1], 2)
}

func TestChat_CondenseNeedsRetriever(t *testing.T) {
	_, err := NewChatService(&mockLLM{}, nil, domain.ChatModeCondenseQuestion, driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChat_EmptyMessage(t *testing.T) {
	chat, err := NewChatService(&mockLLM{}, nil, domain.ChatModeSimple, driven.GenerateOptions{})
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChat_Mode(t *testing.T) {
	chat, err := NewChatService(&mockLLM{}, nil, domain.ChatModeSimple, driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.ChatModeSimple, chat.Mode())
}
