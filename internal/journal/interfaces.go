package journal

import "pollwatch/pkg/watcher"

// Store persists dispatched batches.
type Store interface {
	Append(batch watcher.Batch) (uint64, error)
	Get(key uint64) (*Record, error)
	List(limit int) ([]*Record, error)
	Count() (int, error)
	Prune(keep int) (int, error)
	Close() error
}
