// Package bbolt implements ports.BuildCache using bbolt (embedded B+ tree).
// A single "builds" bucket maps a native output path to its JSON-serialized
// BuildRecord. Writes are transactional, so a crash mid-write cannot corrupt
// previously committed records.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/grammarbind/internal/ports"
)

var bucketBuilds = []byte("builds")

// Store implements ports.BuildCache backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.BuildCache = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
// Another process holding the file lock makes this fail after one second.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists rec keyed by its output path, replacing any prior record.
func (s *Store) Record(rec *ports.BuildRecord) error {
	if rec == nil || rec.Output == "" {
		return fmt.Errorf("build record: missing output")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal build record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketBuilds)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Output), data)
	})
}

// Lookup returns the record for output.
// Returns nil, nil if nothing was recorded (never built by us).
func (s *Store) Lookup(output string) (*ports.BuildRecord, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBuilds)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(output)); v != nil {
			// bbolt values are only valid for the life of the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rec ports.BuildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal build record: %w", err)
	}
	return &rec, nil
}

// Forget deletes the record for output. Deleting a missing record is not an error.
func (s *Store) Forget(output string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBuilds)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(output))
	})
}
