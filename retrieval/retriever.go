package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// Mode selects which retrieval channels contribute candidates.
type Mode string

const (
	// ModeKeyword matches poems by substring against title and body.
	ModeKeyword Mode = "keyword"
	// ModeVector ranks poems by embedding similarity to the query.
	ModeVector Mode = "vector"
	// ModeHybrid merges keyword and vector candidates, keyword first.
	ModeHybrid Mode = "hybrid"
)

// DefaultTopK is the result limit callers should use when they have no
// preference. Search itself rejects non-positive topK.
const DefaultTopK = 5

// Retriever provides hybrid keyword and semantic search over the poetry corpus.
type Retriever struct {
	poemRepository storage.PoemRepository
	embedder       ai.Embedder
	logger         *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	poemRepository storage.PoemRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if poemRepository == nil {
		return nil, ErrPoemRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		poemRepository: poemRepository,
		embedder:       provider.Embedder(),
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search retrieves poems relevant to the query.
// Returns up to topK hits; an empty result is a valid outcome.
func (r *Retriever) Search(ctx context.Context, query string, mode Mode, topK int) ([]*core.PoemHit, error) {
	return r.SearchWithMonitor(ctx, query, mode, topK, nil)
}

// SearchWithMonitor retrieves poems relevant to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// In hybrid mode the keyword and vector candidate lists are concatenated
// keyword-first, deduplicated keeping first occurrence, and truncated to
// topK before hydration. If the vector channel fails in hybrid mode the
// search degrades to keyword-only results; in vector mode the same failure
// is returned as ErrRetrievalUnavailable.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, mode Mode, topK int, monitor SearchMonitor) ([]*core.PoemHit, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", ErrInvalidQuery)
	}

	switch mode {
	case ModeKeyword, ModeVector, ModeHybrid:
	case "":
		mode = ModeHybrid
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	monitor.Start(query, mode)

	// 1. Keyword channel
	var keywordIds []core.ID
	if mode == ModeKeyword || mode == ModeHybrid {
		var err error
		keywordIds, err = r.poemRepository.SearchKeyword(ctx, query, topK)
		if err != nil {
			r.logger.Error("error running keyword search", "query", query, "err", err)
			return nil, err
		}
		monitor.AfterKeywordSearch(keywordIds)
	}

	// 2. Vector channel
	var matches []core.SimilarityMatch
	if mode == ModeVector || mode == ModeHybrid {
		var err error
		matches, err = r.vectorSearch(ctx, query, topK)
		if err != nil {
			if mode == ModeVector {
				r.logger.Error("vector search failed", "query", query, "err", err)
				return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
			}
			// Hybrid degrades to keyword-only results
			r.logger.Warn("vector search failed, degrading to keyword results", "query", query, "err", err)
			monitor.VectorSearchDegraded(err)
			matches = nil
		} else {
			monitor.AfterVectorSearch(matches)
		}
	}

	// 3. Merge candidates: keyword first, then vector, keeping first occurrence
	vectorScores := make(map[core.ID]float32, len(matches))
	for _, match := range matches {
		vectorScores[match.PoemId] = match.Score
	}

	seen := make(map[core.ID]bool)
	candidates := make([]core.ID, 0, len(keywordIds)+len(matches))
	for _, id := range keywordIds {
		if !seen[id] {
			seen[id] = true
			candidates = append(candidates, id)
		}
	}
	for _, match := range matches {
		if !seen[match.PoemId] {
			seen[match.PoemId] = true
			candidates = append(candidates, match.PoemId)
		}
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	if len(candidates) == 0 {
		monitor.Finish(nil)
		return []*core.PoemHit{}, nil
	}

	// 4. Hydrate in one batch and restore candidate order
	poems, err := r.poemRepository.GetPoems(ctx, candidates...)
	if err != nil {
		r.logger.Error("error retrieving poems", "poemCount", len(candidates), "err", err)
		return nil, err
	}
	monitor.AfterPoemRetrieval(poems)

	byID := make(map[core.ID]*core.Poem, len(poems))
	for _, poem := range poems {
		if poem != nil {
			byID[poem.Id] = poem
		}
	}

	hits := make([]*core.PoemHit, 0, len(candidates))
	for _, id := range candidates {
		poem, ok := byID[id]
		if !ok {
			continue
		}
		score, scored := vectorScores[id]
		hits = append(hits, &core.PoemHit{
			Poem:   poem,
			Score:  score,
			Scored: scored,
		})
	}
	monitor.Finish(hits)

	return hits, nil
}

// vectorSearch embeds the query and runs similarity search over the corpus.
// Queries longer than the embedding service limit are truncated silently.
func (r *Retriever) vectorSearch(ctx context.Context, query string, topK int) ([]core.SimilarityMatch, error) {
	embedding, err := r.embedder.EmbedText(ctx, truncateRunes(query, ai.MaxEmbedTextLen))
	if err != nil {
		return nil, err
	}
	return r.poemRepository.FindSimilar(ctx, embedding, topK)
}
