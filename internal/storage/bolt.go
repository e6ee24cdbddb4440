// Package storage persists extraction results so documents can be
// re-fetched and compared after the fact.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/rezonia/invoice-extractor/internal/model"
)

const extractionBucket = "extractions"

// ErrNotFound reports a lookup for an unknown record ID.
var ErrNotFound = errors.New("extraction not found")

// Record wraps one stored extraction result.
type Record struct {
	ID        string                  `json:"id"`
	Result    *model.ExtractionResult `json:"result"`
	CreatedAt time.Time               `json:"createdAt"`
}

// Store defines the persistence operations the server depends on.
type Store interface {
	// Save persists a result under a fresh ID and returns the record.
	Save(result *model.ExtractionResult) (*Record, error)

	// Get retrieves a record by ID.
	Get(id string) (*Record, error)

	// List returns all stored records.
	List() ([]*Record, error)

	// Delete removes a record.
	Delete(id string) error

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements Store on BoltDB.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(extractionBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save persists a result under a fresh UUID.
func (b *BoltStore) Save(result *model.ExtractionResult) (*Record, error) {
	record := &Record{
		ID:        uuid.NewString(),
		Result:    result,
		CreatedAt: time.Now(),
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(extractionBucket))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put([]byte(record.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Get retrieves a record by ID.
func (b *BoltStore) Get(id string) (*Record, error) {
	var record *Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(extractionBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns all stored records.
func (b *BoltStore) List() ([]*Record, error) {
	records := make([]*Record, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(extractionBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a record.
func (b *BoltStore) Delete(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(extractionBucket))
		return bucket.Delete([]byte(id))
	})
}

// Close closes the underlying database.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
