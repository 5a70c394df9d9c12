package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	convSeq *badger.Sequence
	msgSeq  *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	convSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	msgSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		convSeq.Release()
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		convSeq: convSeq,
		msgSeq:  msgSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ConversationRepository) Close() error {
	err := r.convSeq.Release()
	if msgErr := r.msgSeq.Release(); err == nil {
		err = msgErr
	}
	return err
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConversation creates a conversation with a generated ID.
func (r *ConversationRepository) AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.convSeq)
		if err != nil {
			return err
		}
		conversation.Id = core.ID(nextID)

		conversation.InsertedAt = time.Now().UTC()
		conversation.UpdatedAt = conversation.InsertedAt

		key := makeConversationKey(conversation.Id)
		value := storage.MarshalConversation(conversation)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update user index
		userKey := makeConversationUserKey(conversation.UserId, conversation.Id)
		if err := tx.Set(userKey, storage.MarshalID(conversation.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return conversation, err
}

// GetConversation retrieves a conversation by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(id)
		var err error
		result, err = r.readConversation(tx, key)
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

// ListConversationsByUser returns conversations owned by the user,
// most recently created first.
func (r *ConversationRepository) ListConversationsByUser(ctx context.Context, userID core.ID, limit int) ([]*core.Conversation, error) {
	var results []*core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialConversationUserKey(userID)

		// Conversation IDs grow monotonically, so reverse iteration over the
		// user index yields newest conversations first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key with this prefix
		startKey := makeConversationUserKey(userID, core.ID(^uint64(0)))

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			if limit > 0 && len(results) >= limit {
				break
			}

			var convID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				convID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			conversation, err := r.readConversation(tx, makeConversationKey(convID))
			if err != nil {
				return err
			}
			if conversation != nil {
				results = append(results, conversation)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteConversation removes a conversation and all of its messages.
func (r *ConversationRepository) DeleteConversation(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(id)
		conversation, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if conversation == nil {
			return storage.ErrNotFound
		}

		// Delete messages and their index entries
		prefix := makePartialMessageConvKey(id)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)

		var indexKeys [][]byte
		var messageIDs []core.ID
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			indexKey := iter.Item().Key()
			if len(indexKey) < len(prefix) || slices.Compare(indexKey[:len(prefix)], prefix) != 0 {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			indexKeys = append(indexKeys, slices.Clone(indexKey))
			messageIDs = append(messageIDs, messageID)
		}
		iter.Close()

		for i := range indexKeys {
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
			if err := tx.Delete(makeMessageKey(messageIDs[i])); err != nil {
				return err
			}
		}

		// Delete from user index
		userKey := makeConversationUserKey(conversation.UserId, conversation.Id)
		if err := tx.Delete(userKey); err != nil {
			return err
		}

		// Delete primary record
		if err := tx.Delete(key); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// AddMessage appends a message to a conversation. The primary record and the
// conversation index entry are written in the same transaction.
func (r *ConversationRepository) AddMessage(ctx context.Context, message *core.Message) (*core.Message, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.msgSeq)
		if err != nil {
			return err
		}
		message.Id = core.ID(nextID)

		message.CreatedAt = time.Now().UTC()
		message.UpdatedAt = message.CreatedAt

		key := makeMessageKey(message.Id)
		value := storage.MarshalMessage(message)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update conversation index
		convKey := makeMessageConvKey(message.ConversationId, message.CreatedAt, message.Id)
		if err := tx.Set(convKey, storage.MarshalID(message.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return message, err
}

// GetMessage retrieves a single message by ID.
func (r *ConversationRepository) GetMessage(ctx context.Context, id core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMessageKey(id)
		var err error
		result, err = r.readMessage(tx, key)
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

// ListMessages returns the most recent limit messages of a conversation in
// ascending creation order. limit <= 0 returns all messages.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID core.ID, limit int) ([]*core.Message, error) {
	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialMessageConvKey(conversationID)

		// Walk the conversation index backwards to find the newest messages,
		// then reverse to restore chronological order.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeMessageConvKey(conversationID, time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), core.ID(^uint64(0)))

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			if limit > 0 && len(results) >= limit {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := r.readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.Reverse(results)
	return results, nil
}

// UpdateMessageStatus sets the status of an existing message.
func (r *ConversationRepository) UpdateMessageStatus(ctx context.Context, id core.ID, status core.MessageStatus) error {
	return r.updateMessage(id, func(message *core.Message) {
		message.Status = status
	})
}

// UpdateMessageContent replaces the content of an existing message.
func (r *ConversationRepository) UpdateMessageContent(ctx context.Context, id core.ID, content string) error {
	return r.updateMessage(id, func(message *core.Message) {
		message.Content = content
	})
}

// updateMessage applies a mutation to a stored message. The conversation
// index key depends only on CreatedAt, which never changes, so no index
// maintenance is needed.
func (r *ConversationRepository) updateMessage(id core.ID, mutate func(*core.Message)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMessageKey(id)
		message, err := r.readMessage(tx, key)
		if err != nil {
			return err
		}
		if message == nil {
			return storage.ErrNotFound
		}

		mutate(message)
		message.UpdatedAt = time.Now().UTC()

		value := storage.MarshalMessage(message)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readConversation reads a conversation from the transaction.
func (r *ConversationRepository) readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conversation *core.Conversation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		conversation, unmarshalErr = storage.UnmarshalConversation(val)
		return unmarshalErr
	})
	return conversation, err
}

// readMessage reads a message from the transaction.
func (r *ConversationRepository) readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var message *core.Message
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		message, unmarshalErr = storage.UnmarshalMessage(val)
		return unmarshalErr
	})
	return message, err
}
