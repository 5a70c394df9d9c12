package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// embeddingProcessor generates embeddings for stored poems.
type embeddingProcessor struct {
	poemRepository storage.PoemRepository
	embedder       ai.Embedder
	logger         *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(poemRepository storage.PoemRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if poemRepository == nil {
		return nil, fmt.Errorf("poem repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		poemRepository: poemRepository,
		embedder:       embedder,
		logger:         logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified poems.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing poems for embeddings", "poems", len(ids))

	poems, err := ep.poemRepository.GetPoems(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving poems", "err", err)
		return err
	}

	texts := make([]string, len(poems))
	for i, poem := range poems {
		texts[i] = embedText(poem)
	}

	ep.logger.Debug("generating embeddings for poems", "poems", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(poems) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(poems), len(embeddings))
	}

	for i := range embeddings {
		poems[i].Vector = embeddings[i]
	}

	_, err = ep.poemRepository.UpdatePoems(ctx, poems...)
	return err
}

// embedText builds the embedding input for a poem: title and body joined,
// truncated to the embedding service limit.
func embedText(poem *core.Poem) string {
	text := strings.Join([]string{poem.Title, poem.Body}, "\n")
	runes := []rune(text)
	if len(runes) > ai.MaxEmbedTextLen {
		return string(runes[:ai.MaxEmbedTextLen])
	}
	return text
}
