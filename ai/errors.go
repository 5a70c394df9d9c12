package ai

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding backend could not be reached
	// or returned a failure.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrModelUnavailable indicates the chat model backend could not be reached
	// or returned a failure.
	ErrModelUnavailable = errors.New("language model unavailable")
)
