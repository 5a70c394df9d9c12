package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageStatus tracks the delivery state of a message.
// A user message is created pending before the model call and flipped to done
// once the paired assistant message is durably written. The core never sets
// failed; that is reserved for external reconciliation tooling.
type MessageStatus string

const (
	StatusPending MessageStatus = "pending"
	StatusDone    MessageStatus = "done"
	StatusFailed  MessageStatus = "failed"
)

// Workflow selects how an agent processes a turn.
type Workflow string

const (
	// WorkflowPoetryGame is the verse-capping game: history only, no retrieval.
	WorkflowPoetryGame Workflow = "poetry_game"
	// WorkflowRagChat grounds each turn with retrieved poems before the model call.
	WorkflowRagChat Workflow = "rag_chat"
)

// Poem is a corpus record. The Vector field is populated by the ingestion
// pipeline and drives semantic search.
type Poem struct {
	Id         ID
	Title      string
	Author     string
	Era        string // dynasty, e.g. "唐"
	Body       string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ContentKey returns the string hashed into the poem's content-based ID.
// Title plus author is the dedup key used by the corpus importer.
func (p *Poem) ContentKey() string {
	return p.Title + "\x00" + p.Author
}

// PoemHit is a retrieval result. Scored is true only when the poem surfaced
// from vector search; keyword-originated matches carry no score.
type PoemHit struct {
	Poem   *Poem
	Score  float32
	Scored bool
}

// SimilarityMatch is a poem match from vector similarity search.
type SimilarityMatch struct {
	PoemId ID
	Score  float32
}

// User owns conversations. PasswordHash is a bcrypt hash, never the raw password.
type User struct {
	Id           ID
	Email        string
	Nickname     string
	PasswordHash string
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Agent is an immutable per-run configuration: a system prompt template and
// a workflow selector. The chat core only reads agents.
type Agent struct {
	Id           ID
	Name         string
	SystemPrompt string
	Workflow     Workflow
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Conversation belongs to exactly one user and one agent and owns an ordered,
// append-only sequence of messages keyed by creation time.
type Conversation struct {
	Id         ID
	UserId     ID
	AgentId    ID
	Title      string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Message is a single conversation turn entry.
type Message struct {
	Id             ID
	ConversationId ID
	Role           Role
	Status         MessageStatus
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
