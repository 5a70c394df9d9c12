package ai

// Message roles understood by chat models.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxEmbedTextLen is the maximum number of runes accepted by embedding
// backends. Longer inputs are truncated silently before embedding.
const MaxEmbedTextLen = 1000

// Message is a single entry in a chat prompt sequence.
type Message struct {
	Role    string
	Content string
}
