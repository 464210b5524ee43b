package journal

import "errors"

var (
	ErrRecordNotFound = errors.New("journal record not found")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrNilDB          = errors.New("database connection is nil")
	ErrEmptyBatch     = errors.New("batch has no events")
)
