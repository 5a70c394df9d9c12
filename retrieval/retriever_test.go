package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/shiyun/ai/mock"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetriever(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		retriever, err := NewRetriever(repos.Poems, provider)
		require.NoError(t, err)
		assert.NotNil(t, retriever)
	})

	t.Run("with custom logger", func(t *testing.T) {
		retriever, err := NewRetriever(repos.Poems, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, retriever)
	})

	t.Run("nil poem repository", func(t *testing.T) {
		_, err := NewRetriever(nil, provider)
		assert.Equal(t, ErrPoemRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewRetriever(repos.Poems, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestSearch_InvalidInput(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	retriever, err := NewRetriever(repos.Poems, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		_, err := retriever.Search(ctx, "", ModeHybrid, 5)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("whitespace query", func(t *testing.T) {
		_, err := retriever.Search(ctx, "   \t\n", ModeHybrid, 5)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		_, err := retriever.Search(ctx, "明月", ModeHybrid, 0)
		assert.ErrorIs(t, err, ErrInvalidQuery)

		_, err = retriever.Search(ctx, "明月", ModeHybrid, -1)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := retriever.Search(ctx, "明月", Mode("fuzzy"), 5)
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
}

func TestSearch_EmptyCorpus(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	retriever, err := NewRetriever(repos.Poems, mock.NewMockProvider())
	require.NoError(t, err)

	hits, err := retriever.Search(context.Background(), "明月", ModeHybrid, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_KeywordMode(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	poems := []*core.Poem{
		{Title: "静夜思", Author: "李白", Body: "床前明月光，疑是地上霜。"},
		{Title: "春晓", Author: "孟浩然", Body: "春眠不觉晓，处处闻啼鸟。"},
	}
	_, err = repos.Poems.AddPoems(ctx, poems...)
	require.NoError(t, err)

	retriever, err := NewRetriever(repos.Poems, mock.NewMockProvider())
	require.NoError(t, err)

	hits, err := retriever.Search(ctx, "明月", ModeKeyword, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "静夜思", hits[0].Poem.Title)
	assert.False(t, hits[0].Scored, "keyword hits carry no similarity score")
}

func TestSearch_HybridDeduplication(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	// Both poems carry vectors, so vector search returns both. The first
	// also matches the keyword, so it appears in both channels.
	poems := []*core.Poem{
		{Title: "静夜思", Author: "李白", Body: "床前明月光", Vector: []float32{1, 0}},
		{Title: "春晓", Author: "孟浩然", Body: "春眠不觉晓", Vector: []float32{0, 1}},
	}
	_, err = repos.Poems.AddPoems(ctx, poems...)
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	retriever, err := NewRetriever(repos.Poems, provider)
	require.NoError(t, err)

	hits, err := retriever.Search(ctx, "明月", ModeHybrid, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2, "duplicate candidate must appear once")

	// Keyword channel positions its match first
	assert.Equal(t, "静夜思", hits[0].Poem.Title)
	assert.Equal(t, "春晓", hits[1].Poem.Title)

	// The duplicate keeps its vector score even though keyword saw it first
	assert.True(t, hits[0].Scored)
	assert.InDelta(t, 1.0, hits[0].Score, 0.0001)
	assert.True(t, hits[1].Scored)
}

func TestSearch_TopKTruncation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	poems := []*core.Poem{
		{Title: "月下独酌", Author: "李白", Body: "花间一壶酒", Vector: []float32{1, 0}},
		{Title: "望月怀远", Author: "张九龄", Body: "海上生明月", Vector: []float32{0.9, 0.1}},
		{Title: "月夜", Author: "杜甫", Body: "今夜鄜州月", Vector: []float32{0.8, 0.2}},
	}
	_, err = repos.Poems.AddPoems(ctx, poems...)
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	retriever, err := NewRetriever(repos.Poems, provider)
	require.NoError(t, err)

	hits, err := retriever.Search(ctx, "月", ModeHybrid, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// Search is read-only: repeating it yields the same result
	again, err := retriever.Search(ctx, "月", ModeHybrid, 1)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, hits[0].Poem.Id, again[0].Poem.Id)
}

func TestSearch_HybridDegradesOnEmbeddingFailure(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	_, err = repos.Poems.AddPoems(ctx, &core.Poem{
		Title: "静夜思", Author: "李白", Body: "床前明月光", Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	embedErr := errors.New("embedding service down")
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	}

	retriever, err := NewRetriever(repos.Poems, provider)
	require.NoError(t, err)

	t.Run("hybrid falls back to keyword results", func(t *testing.T) {
		hits, err := retriever.Search(ctx, "明月", ModeHybrid, 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "静夜思", hits[0].Poem.Title)
		assert.False(t, hits[0].Scored)
	})

	t.Run("vector mode surfaces the failure", func(t *testing.T) {
		_, err := retriever.Search(ctx, "明月", ModeVector, 5)
		assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	})
}

func TestSearch_VectorMode(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	poems := []*core.Poem{
		{Title: "甲", Author: "某", Body: "a", Vector: []float32{1, 0}},
		{Title: "乙", Author: "某", Body: "b", Vector: []float32{0, 1}},
	}
	_, err = repos.Poems.AddPoems(ctx, poems...)
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 1}, nil
	}

	retriever, err := NewRetriever(repos.Poems, provider)
	require.NoError(t, err)

	hits, err := retriever.Search(ctx, "查询", ModeVector, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "乙", hits[0].Poem.Title)
	assert.True(t, hits[0].Scored)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearch_LongQueryTruncatedForEmbedding(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	var embedded string
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = text
		return []float32{1, 0}, nil
	}

	retriever, err := NewRetriever(repos.Poems, provider)
	require.NoError(t, err)

	long := make([]rune, 1500)
	for i := range long {
		long[i] = '诗'
	}

	_, err = retriever.Search(ctx, string(long), ModeVector, 5)
	require.NoError(t, err)
	assert.Equal(t, 1000, len([]rune(embedded)))
}

func TestSearchWithMonitor(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	_, err = repos.Poems.AddPoems(ctx, &core.Poem{
		Title: "静夜思", Author: "李白", Body: "床前明月光", Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	retriever, err := NewRetriever(repos.Poems, mock.NewMockProvider())
	require.NoError(t, err)

	monitor := &testMonitor{}

	hits, err := retriever.SearchWithMonitor(ctx, "明月", ModeHybrid, 5, monitor)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.True(t, monitor.startCalled, "monitor.Start should be called")
	assert.True(t, monitor.finishCalled, "monitor.Finish should be called")
	assert.Len(t, monitor.finishHits, 1)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	startCalled  bool
	finishCalled bool
	finishHits   []*core.PoemHit
}

func (m *testMonitor) Start(query string, mode Mode) {
	m.startCalled = true
}

func (m *testMonitor) AfterKeywordSearch(ids []core.ID) {}

func (m *testMonitor) AfterVectorSearch(matches []core.SimilarityMatch) {}

func (m *testMonitor) VectorSearchDegraded(err error) {}

func (m *testMonitor) AfterPoemRetrieval(poems []*core.Poem) {}

func (m *testMonitor) Finish(hits []*core.PoemHit) {
	m.finishCalled = true
	m.finishHits = hits
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "床前", truncateRunes("床前明月光", 2))
}
