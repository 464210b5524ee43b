package watcher

import "time"

const (
	DefaultRefreshInterval = 250 * time.Millisecond
	DefaultErrorBufferSize = 100

	// Unbounded disables the recursion limit.
	Unbounded = -1

	// DefaultNotifyFilters reports content writes and renames but no other
	// attribute changes.
	DefaultNotifyFilters = LastWrite | FileName
)

var (
	// FilterSeparators split a filter string into individual patterns.
	FilterSeparators = ";,"

	// matchAllPatterns are accepted as an explicit "everything" filter.
	matchAllPatterns = []string{"*", "*.*"}
)
