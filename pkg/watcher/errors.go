package watcher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRoot          = errors.New("invalid root directory")
	ErrInvalidConfiguration = errors.New("invalid watcher configuration")
	ErrScanAccess           = errors.New("cannot access path during scan")
)

// ScanError describes a subtree or entry skipped during a scan.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrScanAccess, e.Path, e.Err)
}

func (e *ScanError) Unwrap() []error {
	return []error{ErrScanAccess, e.Err}
}
