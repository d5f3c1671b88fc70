package badgerblob

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/core"
)

// Store implements blob.Store on top of a BadgerDB backend. Objects are
// stored under container-scoped keys and serialized with the MUS codec.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ blob.Store = (*Store)(nil)

// NewStore creates a blob store over an open backend. Closing the store
// closes the backend.
func NewStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "blobstore"),
	}
}

// Open opens a blob store at the given path, creating it if necessary.
func Open(filePath string) (*Store, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Create creates a new container.
func (s *Store) Create(ctx context.Context, container string) error {
	if err := validateContainer(container); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContainerKey(container)
		_, err := tx.Get(key)
		if err == nil {
			return blob.ErrContainerExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(key, []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Exists reports whether an object exists in the container.
func (s *Store) Exists(ctx context.Context, container, name string) (bool, error) {
	if err := validateContainer(container); err != nil {
		return false, err
	}
	if name == "" {
		return false, blob.ErrInvalidName
	}
	var found bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeObjectKey(container, name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// ListNames returns the names of all objects in the container.
func (s *Store) ListNames(ctx context.Context, container string) ([]string, error) {
	if err := validateContainer(container); err != nil {
		return nil, err
	}
	var names []string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.requireContainer(tx, container); err != nil {
			return err
		}

		prefix := makeObjectScanPrefix(container)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			names = append(names, string(key[len(prefix):]))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Download retrieves an object by name.
func (s *Store) Download(ctx context.Context, container, name string) (*core.BlobObject, error) {
	if err := validateContainer(container); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, blob.ErrInvalidName
	}
	var object *core.BlobObject
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObjectKey(container, name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return blob.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			object, err = blob.UnmarshalObject(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return object, nil
}

// Upload stores an object, overwriting any object with the same name.
func (s *Store) Upload(ctx context.Context, container string, object *core.BlobObject) error {
	if err := validateContainer(container); err != nil {
		return err
	}
	if object == nil || object.Name == "" {
		return blob.ErrInvalidName
	}
	if object.StoredAt.IsZero() {
		object.StoredAt = time.Now().UTC()
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := s.requireContainer(tx, container); err != nil {
			return err
		}
		key := makeObjectKey(container, object.Name)
		if err := tx.Set(key, blob.MarshalObject(object)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes an object by name.
func (s *Store) Delete(ctx context.Context, container, name string) error {
	if err := validateContainer(container); err != nil {
		return err
	}
	if name == "" {
		return blob.ErrInvalidName
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeObjectKey(container, name)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return blob.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// requireContainer returns ErrContainerNotFound when the container marker
// is absent.
func (s *Store) requireContainer(tx *badger.Txn, container string) error {
	_, err := tx.Get(makeContainerKey(container))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return blob.ErrContainerNotFound
	}
	return err
}

// validateContainer rejects names that would break key scoping. Container
// names participate in composite keys, so the separator is reserved.
func validateContainer(container string) error {
	if container == "" || strings.Contains(container, ":") {
		return blob.ErrInvalidName
	}
	return nil
}
