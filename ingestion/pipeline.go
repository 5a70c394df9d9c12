package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/shiyun/ai"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

const defaultBatchSize = 64

// Pipeline orchestrates the import of poems into the corpus.
// Poems are written in batches and embedded concurrently on a worker pool.
type Pipeline struct {
	poemRepository storage.PoemRepository
	embeddingPool  *ants.Pool
	embeddingProc  *embeddingProcessor
	batchSize      int
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithBatchSize sets the number of poems written and embedded per batch.
// Default is 64.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	poemRepository storage.PoemRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if poemRepository == nil {
		return nil, ErrPoemRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		poemRepository: poemRepository,
		embeddingPool:  embeddingPool,
		batchSize:      defaultBatchSize,
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embeddingProc, err := newEmbeddingProcessor(poemRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest stores poems and embeds them on the worker pool.
// Duplicate poems within the batch (same title and author) are collapsed to
// the first occurrence; re-importing an existing poem overwrites it in place.
// Embedding failures are logged and leave the affected poems unembedded;
// they do not fail the ingestion. Returns the number of poems written.
func (p *Pipeline) Ingest(ctx context.Context, poems []*core.Poem) (int, error) {
	deduped := dedupe(poems)

	var wg sync.WaitGroup
	written := 0

	for start := 0; start < len(deduped); start += p.batchSize {
		end := min(start+p.batchSize, len(deduped))
		batch := deduped[start:end]

		added, err := p.poemRepository.AddPoems(ctx, batch...)
		if err != nil {
			wg.Wait()
			return written, err
		}
		written += len(added)

		ids := make([]core.ID, len(added))
		for i, poem := range added {
			ids[i] = poem.Id
		}

		wg.Add(1)
		if err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			if err := p.embeddingProc.process(ctx, ids...); err != nil {
				p.logger.Error("error processing embeddings", "poems", len(ids), "err", err)
			}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return written, err
		}
	}

	wg.Wait()
	p.logger.Info("ingestion completed", "poems", written)
	return written, nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

// dedupe collapses poems sharing a content key, keeping the first occurrence.
func dedupe(poems []*core.Poem) []*core.Poem {
	seen := make(map[string]bool, len(poems))
	result := make([]*core.Poem, 0, len(poems))
	for _, poem := range poems {
		key := poem.ContentKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, poem)
	}
	return result
}
