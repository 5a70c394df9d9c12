package storage

import (
	"context"

	"github.com/poiesic/shiyun/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// PoemRepository provides operations for the poetry corpus. The corpus is
// read-only for the retrieval engine; writes happen only through ingestion.
type PoemRepository interface {
	Repository

	// AddPoems adds one or more poems to storage. IDs are derived from the
	// poem content key, so re-importing the same poem overwrites in place.
	// Sets InsertedAt timestamp if not already set.
	// Returns the poems with IDs and timestamps populated.
	AddPoems(ctx context.Context, poems ...*core.Poem) ([]*core.Poem, error)

	// UpdatePoems updates existing poems.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any poem doesn't exist.
	UpdatePoems(ctx context.Context, poems ...*core.Poem) ([]*core.Poem, error)

	// GetPoem retrieves a single poem by ID.
	// Returns ErrNotFound if the poem doesn't exist.
	GetPoem(ctx context.Context, id core.ID) (*core.Poem, error)

	// GetPoems retrieves multiple poems by their IDs in a single batch.
	// Returns only the poems that exist (no error for missing poems);
	// result order is unspecified.
	GetPoems(ctx context.Context, ids ...core.ID) ([]*core.Poem, error)

	// SearchKeyword finds poems whose title or body contains the keyword.
	// Returns up to limit poem IDs; order is unspecified.
	SearchKeyword(ctx context.Context, keyword string, limit int) ([]core.ID, error)

	// FindSimilar finds poems whose vectors are most similar to the query
	// vector (inner product). Returns up to limit matches ordered by
	// similarity score, highest first. Poems without vectors are skipped.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error)

	// CountPoems returns the number of stored poems.
	CountPoems(ctx context.Context) (int, error)
}

// ConversationRepository provides operations for conversations and their
// messages. Message inserts are atomic; messages are totally ordered by
// creation time within a conversation.
type ConversationRepository interface {
	Repository

	// AddConversation creates a conversation and returns it with a generated
	// ID and timestamps populated.
	AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error)

	// GetConversation retrieves a conversation by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error)

	// ListConversationsByUser returns up to limit conversations owned by the
	// user, most recently created first.
	ListConversationsByUser(ctx context.Context, userID core.ID, limit int) ([]*core.Conversation, error)

	// DeleteConversation removes a conversation and all of its messages.
	// Returns ErrNotFound if it doesn't exist.
	DeleteConversation(ctx context.Context, id core.ID) error

	// AddMessage appends a message to a conversation and returns it with a
	// generated ID and CreatedAt populated. The insert is atomic.
	AddMessage(ctx context.Context, message *core.Message) (*core.Message, error)

	// GetMessage retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, id core.ID) (*core.Message, error)

	// ListMessages returns the most recent limit messages of a conversation
	// in ascending creation order. limit <= 0 returns all messages.
	ListMessages(ctx context.Context, conversationID core.ID, limit int) ([]*core.Message, error)

	// UpdateMessageStatus sets the status of an existing message.
	// Returns ErrNotFound if the message doesn't exist.
	UpdateMessageStatus(ctx context.Context, id core.ID, status core.MessageStatus) error

	// UpdateMessageContent replaces the content of an existing message.
	// Returns ErrNotFound if the message doesn't exist.
	UpdateMessageContent(ctx context.Context, id core.ID, content string) error
}

// UserRepository provides operations for user accounts.
type UserRepository interface {
	Repository

	// AddUser creates a user and returns it with a generated ID and
	// timestamps populated. Returns ErrDuplicateEmail if the email is taken.
	AddUser(ctx context.Context, user *core.User) (*core.User, error)

	// GetUser retrieves a user by ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id core.ID) (*core.User, error)

	// GetUserByEmail retrieves a user by email.
	// Returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
}

// AgentRepository provides operations for agent configurations. Agents are
// read-only from the chat engine's perspective.
type AgentRepository interface {
	Repository

	// AddAgents adds one or more agents to storage and returns them with
	// generated IDs and timestamps populated.
	AddAgents(ctx context.Context, agents ...*core.Agent) ([]*core.Agent, error)

	// GetAgent retrieves an agent by ID.
	// Returns ErrNotFound if the agent doesn't exist.
	GetAgent(ctx context.Context, id core.ID) (*core.Agent, error)

	// ListAgents returns up to limit agents.
	ListAgents(ctx context.Context, limit int) ([]*core.Agent, error)
}
