package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// PoemRepository implements storage.PoemRepository for BadgerDB.
type PoemRepository struct {
	backend *Backend
}

var _ storage.PoemRepository = (*PoemRepository)(nil)

// NewPoemRepository creates a new PoemRepository.
// Poems carry content-derived IDs, so no sequence is needed.
func NewPoemRepository(backend *Backend) *PoemRepository {
	return &PoemRepository{backend: backend}
}

// Close is a no-op; the backend is closed by its owner.
func (r *PoemRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *PoemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPoems adds one or more poems to storage. IDs are derived from the poem
// content key, so re-importing the same poem overwrites in place.
func (r *PoemRepository) AddPoems(ctx context.Context, poems ...*core.Poem) ([]*core.Poem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, poem := range poems {
			if poem.Id == 0 {
				poem.Id = core.IDFromContent(poem.ContentKey())
			}

			now := time.Now().UTC()
			if poem.InsertedAt.IsZero() {
				poem.InsertedAt = now
			}
			poem.UpdatedAt = now

			key := makePoemKey(poem.Id)
			value := storage.MarshalPoem(poem)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return poems, err
}

// UpdatePoems updates existing poems.
func (r *PoemRepository) UpdatePoems(ctx context.Context, poems ...*core.Poem) ([]*core.Poem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, poem := range poems {
			key := makePoemKey(poem.Id)

			old, err := r.readPoem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			poem.InsertedAt = old.InsertedAt
			poem.UpdatedAt = time.Now().UTC()

			value := storage.MarshalPoem(poem)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return poems, err
}

// GetPoem retrieves a single poem by ID.
func (r *PoemRepository) GetPoem(ctx context.Context, id core.ID) (*core.Poem, error) {
	var result *core.Poem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePoemKey(id)
		var err error
		result, err = r.readPoem(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPoems retrieves multiple poems by their IDs.
func (r *PoemRepository) GetPoems(ctx context.Context, ids ...core.ID) ([]*core.Poem, error) {
	var result []*core.Poem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePoemKey(id)
			poem, err := r.readPoem(tx, key)
			if err != nil {
				return err
			}
			if poem != nil {
				result = append(result, poem)
			}
		}
		return nil
	}, false)
	return result, err
}

// SearchKeyword finds poems whose title or body contains the keyword.
// This is a full scan over the corpus; acceptable for corpora of a few
// hundred thousand poems on local storage.
func (r *PoemRepository) SearchKeyword(ctx context.Context, keyword string, limit int) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(poemRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(ids) >= limit {
				break
			}

			var poem *core.Poem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				poem, err = storage.UnmarshalPoem(val)
				return err
			})
			if err != nil {
				return err
			}
			if poem == nil {
				continue
			}

			if strings.Contains(poem.Title, keyword) || strings.Contains(poem.Body, keyword) {
				ids = append(ids, poem.Id)
			}
		}
		return nil
	}, false)

	return ids, err
}

// FindSimilar finds poems whose vectors are most similar to the query vector.
// Similarity is the inner product, which equals cosine similarity for
// normalized embedding vectors.
func (r *PoemRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error) {
	var matches []core.SimilarityMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(poemRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var poem *core.Poem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				poem, err = storage.UnmarshalPoem(val)
				return err
			})
			if err != nil {
				return err
			}
			if poem == nil {
				continue
			}

			// Skip poems without embeddings
			if len(poem.Vector) == 0 {
				continue
			}

			matches = append(matches, core.SimilarityMatch{
				PoemId: poem.Id,
				Score:  dotProduct(vector, poem.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// CountPoems returns the number of stored poems.
func (r *PoemRepository) CountPoems(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(poemRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readPoem reads a poem from the transaction.
func (r *PoemRepository) readPoem(tx *badger.Txn, key []byte) (*core.Poem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var poem *core.Poem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		poem, unmarshalErr = storage.UnmarshalPoem(val)
		return unmarshalErr
	})
	return poem, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
