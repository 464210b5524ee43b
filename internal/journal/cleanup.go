package journal

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// Prune deletes the oldest records so that at most keep remain and returns
// how many were removed. keep <= 0 leaves the journal untouched.
func (j *Journal) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var removed int
	err := j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(BatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		excess := bucket.Stats().KeyN - keep
		if excess <= 0 {
			return nil
		}

		// Keys are big-endian sequences, so the cursor starts at the oldest.
		stale := make([][]byte, 0, excess)
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil && len(stale) < excess; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete record %x: %w", k, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return removed, nil
}
