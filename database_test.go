package shiyun

import (
	"context"
	"testing"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/chat"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase("", WithInMemory(), WithAIConfig(ai.NewConfig(ai.WithProvider(ai.ProviderMock))))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_UnknownProvider(t *testing.T) {
	_, err := NewDatabase("", WithInMemory(), WithAIConfig(ai.NewConfig(ai.WithProvider("llamacpp"))))
	assert.Error(t, err)
}

func TestDatabase_EndToEnd(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	// Import a small corpus
	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	written, err := pipeline.Ingest(ctx, []*core.Poem{
		{Title: "静夜思", Author: "李白", Era: "唐", Body: "床前明月光，疑是地上霜。举头望明月，低头思故乡。"},
		{Title: "春晓", Author: "孟浩然", Era: "唐", Body: "春眠不觉晓，处处闻啼鸟。夜来风雨声，花落知多少。"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	// Search it
	retriever, err := db.NewRetriever()
	require.NoError(t, err)

	hits, err := retriever.Search(ctx, "明月", retrieval.ModeKeyword, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "静夜思", hits[0].Poem.Title)

	// Seed a user, an agent, and a conversation
	hash, err := core.HashPassword("secret")
	require.NoError(t, err)
	user, err := db.UserRepository().AddUser(ctx, &core.User{
		Email: "user@example.com", Nickname: "诗友", PasswordHash: hash,
	})
	require.NoError(t, err)

	agents, err := db.AgentRepository().AddAgents(ctx, &core.Agent{
		Name: "诗词助手", SystemPrompt: "你是一位诗词助手。", Workflow: core.WorkflowRagChat,
	})
	require.NoError(t, err)

	conversation, err := db.ConversationRepository().AddConversation(ctx, &core.Conversation{
		UserId: user.Id, AgentId: agents[0].Id, Title: "测试",
	})
	require.NoError(t, err)

	// Run a turn against the mock provider
	orchestrator, err := db.NewOrchestrator()
	require.NoError(t, err)

	reply, err := orchestrator.RunTurn(ctx, chat.TurnParams{
		ConversationId: conversation.Id,
		UserId:         user.Id,
		Input:          "床前明月光的下一句？",
	})
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, reply.Role)
	assert.NotEmpty(t, reply.Content)

	messages, err := db.ConversationRepository().ListMessages(ctx, conversation.Id, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
