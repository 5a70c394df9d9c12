package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// AgentRepository implements storage.AgentRepository for BadgerDB.
type AgentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.AgentRepository = (*AgentRepository)(nil)

// NewAgentRepository creates a new AgentRepository.
func NewAgentRepository(backend *Backend) (*AgentRepository, error) {
	idSeq, err := backend.GetSequence(agentIDSeq)
	if err != nil {
		return nil, err
	}

	return &AgentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *AgentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *AgentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAgents adds one or more agents to storage.
func (r *AgentRepository) AddAgents(ctx context.Context, agents ...*core.Agent) ([]*core.Agent, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, agent := range agents {
			nextID, err := nextSequenceID(r.idSeq)
			if err != nil {
				return err
			}
			agent.Id = core.ID(nextID)

			agent.InsertedAt = time.Now().UTC()
			agent.UpdatedAt = agent.InsertedAt

			key := makeAgentKey(agent.Id)
			value := storage.MarshalAgent(agent)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return agents, err
}

// GetAgent retrieves an agent by ID.
func (r *AgentRepository) GetAgent(ctx context.Context, id core.ID) (*core.Agent, error) {
	var result *core.Agent
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAgentKey(id)
		var err error
		result, err = r.readAgent(tx, key)
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

// ListAgents returns up to limit agents.
func (r *AgentRepository) ListAgents(ctx context.Context, limit int) ([]*core.Agent, error) {
	var results []*core.Agent
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(agentRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			// Skip the sequence key, which shares the record prefix
			if bytes.Equal(iter.Item().Key(), []byte(agentIDSeq)) {
				continue
			}

			var agent *core.Agent
			err := iter.Item().Value(func(val []byte) error {
				var err error
				agent, err = storage.UnmarshalAgent(val)
				return err
			})
			if err != nil {
				return err
			}
			if agent != nil {
				results = append(results, agent)
			}
		}
		return nil
	}, false)

	return results, err
}

// readAgent reads an agent from the transaction.
func (r *AgentRepository) readAgent(tx *badger.Txn, key []byte) (*core.Agent, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var agent *core.Agent
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		agent, unmarshalErr = storage.UnmarshalAgent(val)
		return unmarshalErr
	})
	return agent, err
}
