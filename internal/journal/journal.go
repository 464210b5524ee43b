// Package journal keeps an append-only log of dispatched change batches in a
// bbolt database.
package journal

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"go.etcd.io/bbolt"

	"pollwatch/pkg/watcher"
)

const (
	BatchesBucket = "batches"
)

// Journal представляет журнал изменений
type Journal struct {
	db         *bbolt.DB
	mu         sync.RWMutex
	serializer Serializer
}

// Config содержит конфигурацию для Journal
type Config struct {
	Path       string
	FileMode   os.FileMode
	Options    *bbolt.Options
	Serializer Serializer
}

// Open opens or creates the journal database.
func Open(cfg Config) (*Journal, error) {
	if cfg.Serializer == nil {
		cfg.Serializer = &GobSerializer{}
	}

	if cfg.FileMode == 0 {
		cfg.FileMode = 0666
	}

	db, err := bbolt.Open(cfg.Path, cfg.FileMode, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BatchesBucket))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return &Journal{
		db:         db,
		serializer: cfg.Serializer,
	}, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return ErrNilDB
	}
	return j.db.Close()
}

// Append stores the batch under the next sequence key and returns the key.
func (j *Journal) Append(batch watcher.Batch) (uint64, error) {
	if batch.Empty() {
		return 0, ErrEmptyBatch
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var key uint64
	err := j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		rec := NewRecord(batch)
		rec.Key = seq

		data, err := j.serializer.Serialize(&rec)
		if err != nil {
			return err
		}
		key = seq
		return bucket.Put(itob(seq), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append batch %s: %w", batch.ID, err)
	}
	return key, nil
}

// Get loads the record stored under key.
func (j *Journal) Get(key uint64) (*Record, error) {
	var rec Record

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		data := bucket.Get(itob(key))
		if data == nil {
			return ErrRecordNotFound
		}

		return j.serializer.Deserialize(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (j *Journal) List(limit int) ([]*Record, error) {
	var records []*Record

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BatchesBucket))
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			if err := j.serializer.Deserialize(v, &rec); err != nil {
				return fmt.Errorf("failed to decode record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (j *Journal) Count() (int, error) {
	var n int

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BatchesBucket))
		if bucket == nil {
			return nil
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

// itob encodes keys big-endian so that cursor order is insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
