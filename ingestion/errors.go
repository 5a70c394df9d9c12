package ingestion

import "errors"

var (
	// ErrPoemRepositoryRequired is returned when a poem repository is not provided.
	ErrPoemRepositoryRequired = errors.New("poem repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
