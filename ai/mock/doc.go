// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockModel := mock.NewMockChatModel()
//	mockModel.ChatFunc = func(ctx context.Context, messages []ai.Message) (string, error) {
//	    return "canned reply", nil
//	}
//
//	// Check call counts
//	count := mockModel.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Echoes the last user message back
//   - MockProvider: Aggregates mock embedder and chat model
package mock
