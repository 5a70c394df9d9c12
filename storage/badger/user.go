package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shiyun/core"
	"github.com/poiesic/shiyun/storage"
)

// UserRepository implements storage.UserRepository for BadgerDB.
type UserRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) (*UserRepository, error) {
	idSeq, err := backend.GetSequence(userIDSeq)
	if err != nil {
		return nil, err
	}

	return &UserRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *UserRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *UserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddUser creates a user with a generated ID. The email index entry is
// written in the same transaction, so uniqueness holds under concurrency.
func (r *UserRepository) AddUser(ctx context.Context, user *core.User) (*core.User, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		emailKey := makeUserEmailKey(user.Email)
		_, err := tx.Get(emailKey)
		if err == nil {
			return storage.ErrDuplicateEmail
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		nextID, err := nextSequenceID(r.idSeq)
		if err != nil {
			return err
		}
		user.Id = core.ID(nextID)

		user.InsertedAt = time.Now().UTC()
		user.UpdatedAt = user.InsertedAt

		key := makeUserKey(user.Id)
		value := storage.MarshalUser(user)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		if err := tx.Set(emailKey, storage.MarshalID(user.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return user, err
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id core.ID) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUserKey(id)
		var err error
		result, err = r.readUser(tx, key)
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

// GetUserByEmail retrieves a user via the email index.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUserEmailKey(email))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var userID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			userID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readUser(tx, makeUserKey(userID))
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

// readUser reads a user from the transaction.
func (r *UserRepository) readUser(tx *badger.Txn, key []byte) (*core.User, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var user *core.User
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		user, unmarshalErr = storage.UnmarshalUser(val)
		return unmarshalErr
	})
	return user, err
}
