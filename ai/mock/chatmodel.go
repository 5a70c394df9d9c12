package mock

import (
	"context"

	"github.com/poiesic/shiyun/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via a function field.
type MockChatModel struct {
	// ChatFunc is called by Chat if set.
	// If nil, uses default echo behavior.
	ChatFunc func(ctx context.Context, messages []ai.Message) (string, error)

	callCount int
}

// NewMockChatModel creates a mock chat model with default echo behavior.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Chat echoes the last user message back, prefixed so callers can tell the
// reply came from the mock.
func (m *MockChatModel) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	m.callCount++

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}

	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			lastUser = messages[i].Content
			break
		}
	}
	return "[mock reply] 你刚才说的是：" + lastUser, nil
}

// CallCount returns the number of times Chat was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.ChatFunc = nil
}
