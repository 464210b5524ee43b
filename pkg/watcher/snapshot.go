package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Snapshot is an immutable, path-ordered view of the watched tree.
type Snapshot struct {
	takenAt time.Time
	paths   []string
	entries map[string]FileEntry
}

func newSnapshot(takenAt time.Time, entries map[string]FileEntry) *Snapshot {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return &Snapshot{takenAt: takenAt, paths: paths, entries: entries}
}

// NewSnapshot builds a snapshot from a list of entries. Later duplicates of a
// path replace earlier ones.
func NewSnapshot(takenAt time.Time, entries ...FileEntry) *Snapshot {
	m := make(map[string]FileEntry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return newSnapshot(takenAt, m)
}

func (s *Snapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.takenAt
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

func (s *Snapshot) Get(path string) (FileEntry, bool) {
	if s == nil {
		return FileEntry{}, false
	}
	e, ok := s.entries[path]
	return e, ok
}

// Paths returns the sorted paths. The slice must not be modified.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return s.paths
}

// Entries returns the entries in path order.
func (s *Snapshot) Entries() []FileEntry {
	if s == nil {
		return nil
	}
	out := make([]FileEntry, len(s.paths))
	for i, p := range s.paths {
		out[i] = s.entries[p]
	}
	return out
}

// Scanner captures snapshots of one directory tree.
type Scanner struct {
	Root          string
	Filter        PatternFilter
	MaxDepth      int
	NotifyFilters NotifyFilters
}

// NewScanner returns a Scanner for an already validated root.
func NewScanner(root string, filter PatternFilter, maxDepth int, mask NotifyFilters) *Scanner {
	return &Scanner{
		Root:          root,
		Filter:        filter,
		MaxDepth:      maxDepth,
		NotifyFilters: mask,
	}
}

// Scan walks the tree depth-first. Subtrees that cannot be read and entries
// that vanish while being listed are left out; the returned errors describe
// them and are never fatal.
func (s *Scanner) Scan() (*Snapshot, []error) {
	entries := make(map[string]FileEntry)
	var errs []error
	s.scanDir(s.Root, 0, entries, &errs)
	return newSnapshot(time.Now(), entries), errs
}

func (s *Scanner) scanDir(dir string, depth int, entries map[string]FileEntry, errs *[]error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		*errs = append(*errs, &ScanError{Path: dir, Err: err})
		// ReadDir may still return the entries read before the failure.
		if len(dirEntries) == 0 {
			return
		}
	}

	includeDirs := s.NotifyFilters.Has(DirectoryName)

	for _, de := range dirEntries {
		name := de.Name()
		if s.Filter.Ignored(name) {
			continue
		}
		path := filepath.Join(dir, name)

		if de.IsDir() {
			if includeDirs && s.Filter.Included(name) {
				if e, ok := s.stat(path, de, errs); ok {
					entries[path] = e
				}
			}
			if s.MaxDepth == Unbounded || depth < s.MaxDepth {
				s.scanDir(path, depth+1, entries, errs)
			}
			continue
		}

		if !s.Filter.Included(name) {
			continue
		}
		if e, ok := s.stat(path, de, errs); ok {
			entries[path] = e
		}
	}
}

func (s *Scanner) stat(path string, de os.DirEntry, errs *[]error) (FileEntry, bool) {
	info, err := de.Info()
	if err != nil {
		*errs = append(*errs, &ScanError{Path: path, Err: err})
		return FileEntry{}, false
	}
	return NewFileEntry(path, info), true
}

// NewFileEntry converts lstat data for path into a FileEntry.
func NewFileEntry(path string, info os.FileInfo) FileEntry {
	e := FileEntry{
		Path:     path,
		Name:     info.Name(),
		Kind:     KindFile,
		Size:     info.Size(),
		Modified: info.ModTime(),
		Mode:     info.Mode(),
	}
	if info.IsDir() {
		e.Kind = KindDirectory
		e.Size = 0
	}
	fillPlatform(&e, info)
	return e
}
