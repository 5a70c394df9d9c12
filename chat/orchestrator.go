package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/retrieval"
	"github.com/poiesic/shiyun/storage"
)

// Workflow defaults. rag_chat keeps a short history window and grounds the
// turn with retrieval; poetry_game runs on history alone and needs a deep
// window so the game state survives long sessions.
const (
	DefaultHistoryLimit      = 10
	DefaultPoetryGameHistory = 200
)

// Retriever is the retrieval dependency of the orchestrator.
// *retrieval.Retriever satisfies it.
type Retriever interface {
	Search(ctx context.Context, query string, mode retrieval.Mode, topK int) ([]*core.PoemHit, error)
}

// TurnParams carries the inputs of a single conversation turn.
type TurnParams struct {
	ConversationId core.ID
	UserId         core.ID
	Input          string

	// Mode selects the retrieval mode for rag_chat turns.
	// Empty means hybrid. Ignored by poetry_game agents.
	Mode retrieval.Mode

	// TopK limits retrieved poems. <= 0 uses retrieval.DefaultTopK.
	TopK int

	// HistoryLimit overrides the workflow's history window. <= 0 uses
	// the workflow default.
	HistoryLimit int
}

// Orchestrator runs conversation turns against a chat model, grounding them
// with retrieved poems when the agent's workflow asks for it.
type Orchestrator struct {
	conversations storage.ConversationRepository
	agents        storage.AgentRepository
	retriever     Retriever
	chatModel     ai.ChatModel
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(
	conversations storage.ConversationRepository,
	agents storage.AgentRepository,
	retriever Retriever,
	provider ai.AIProvider,
	opts ...Option,
) (*Orchestrator, error) {
	if conversations == nil {
		return nil, ErrConversationRepositoryRequired
	}
	if agents == nil {
		return nil, ErrAgentRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	o := &Orchestrator{
		conversations: conversations,
		agents:        agents,
		retriever:     retriever,
		chatModel:     provider.ChatModel(),
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// RunTurn executes one turn of a conversation and returns the assistant
// message. The user message is persisted pending before the model call; on
// model failure it stays pending and no assistant message is written.
func (o *Orchestrator) RunTurn(ctx context.Context, params TurnParams) (*core.Message, error) {
	input := strings.TrimSpace(params.Input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	// Resolve the conversation and check ownership
	conversation, err := o.conversations.GetConversation(ctx, params.ConversationId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrConversationNotFound, params.ConversationId)
		}
		return nil, err
	}
	if conversation.UserId != params.UserId {
		return nil, fmt.Errorf("%w: conversation %d", ErrConversationForbidden, params.ConversationId)
	}

	agent, err := o.agents.GetAgent(ctx, conversation.AgentId)
	if err != nil {
		return nil, err
	}

	historyLimit := params.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
		if agent.Workflow == core.WorkflowPoetryGame {
			historyLimit = DefaultPoetryGameHistory
		}
	}

	history, err := o.conversations.ListMessages(ctx, conversation.Id, historyLimit)
	if err != nil {
		return nil, err
	}

	// Retrieval grounds rag_chat turns only
	var grounding string
	if agent.Workflow == core.WorkflowRagChat {
		topK := params.TopK
		if topK <= 0 {
			topK = retrieval.DefaultTopK
		}
		hits, err := o.retriever.Search(ctx, input, params.Mode, topK)
		if err != nil {
			return nil, err
		}
		grounding = renderGrounding(hits)
		o.logger.Debug("retrieval completed", "conversationId", conversation.Id, "hits", len(hits))
	}

	prompt := assemblePrompt(agent.SystemPrompt, history, grounding, input)

	// Persist the user message before calling the model, so the input
	// survives a model failure
	userMessage, err := o.conversations.AddMessage(ctx, &core.Message{
		ConversationId: conversation.Id,
		Role:           core.RoleUser,
		Status:         core.StatusPending,
		Content:        input,
	})
	if err != nil {
		return nil, err
	}

	reply, err := o.chatModel.Chat(ctx, prompt)
	if err != nil {
		// The user message stays pending; no assistant message is written
		o.logger.Error("model call failed", "conversationId", conversation.Id,
			"userMessageId", userMessage.Id, "err", err)
		return nil, err
	}

	assistantMessage, err := o.conversations.AddMessage(ctx, &core.Message{
		ConversationId: conversation.Id,
		Role:           core.RoleAssistant,
		Status:         core.StatusDone,
		Content:        reply,
	})
	if err != nil {
		return nil, err
	}

	if err := o.conversations.UpdateMessageStatus(ctx, userMessage.Id, core.StatusDone); err != nil {
		return nil, err
	}

	o.logger.Info("turn completed", "conversationId", conversation.Id,
		"userMessageId", userMessage.Id, "assistantMessageId", assistantMessage.Id)

	return assistantMessage, nil
}
