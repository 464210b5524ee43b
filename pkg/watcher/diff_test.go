package watcher

import (
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fileEntry(p string, size int64, created, modified time.Time) FileEntry {
	return FileEntry{
		Path:     p,
		Name:     path.Base(p),
		Kind:     KindFile,
		Size:     size,
		Created:  created,
		Modified: modified,
		Accessed: modified,
		Mode:     0644,
	}
}

func dirEntry(path string, modified time.Time) FileEntry {
	e := fileEntry(path, 0, baseTime, modified)
	e.Kind = KindDirectory
	return e
}

func snap(entries ...FileEntry) *Snapshot {
	return NewSnapshot(baseTime, entries...)
}

func eventFor(t *testing.T, events []ChangeEvent, op Op) ChangeEvent {
	t.Helper()
	for _, ev := range events {
		if ev.Op == op {
			return ev
		}
	}
	t.Fatalf("no %s event in %v", op, events)
	return ChangeEvent{}
}

func ops(events []ChangeEvent) []Op {
	out := make([]Op, len(events))
	for i, ev := range events {
		out[i] = ev.Op
	}
	return out
}

func TestDiff_NoChanges(t *testing.T) {
	a := fileEntry("/r/a.txt", 10, baseTime, baseTime)
	b := fileEntry("/r/sub/b.txt", 20, baseTime, baseTime)

	events := Diff(snap(a, b), snap(a, b), AllNotifyFilters)
	assert.Empty(t, events)

	assert.Empty(t, Diff(snap(), snap(), AllNotifyFilters))
	assert.Empty(t, Diff(nil, nil, AllNotifyFilters))
}

func TestDiff_CreatedDeletedModified(t *testing.T) {
	later := baseTime.Add(time.Second)

	kept := fileEntry("/r/kept.txt", 1, baseTime, baseTime)
	changedOld := fileEntry("/r/changed.txt", 5, baseTime, baseTime)
	changedNew := fileEntry("/r/changed.txt", 5, baseTime, later)
	gone := fileEntry("/r/gone.txt", 7, baseTime, baseTime)
	fresh := fileEntry("/r/fresh.txt", 9, later, later)

	events := Diff(snap(kept, changedOld, gone), snap(kept, changedNew, fresh), LastWrite)

	require.Equal(t, []Op{Created, Modified, Deleted}, ops(events))
	assert.Equal(t, []string{"/r/fresh.txt"}, eventFor(t, events, Created).Paths())
	assert.Equal(t, []string{"/r/gone.txt"}, eventFor(t, events, Deleted).Paths())

	mod := eventFor(t, events, Modified)
	assert.Equal(t, []string{"/r/changed.txt"}, mod.Paths())
	require.Len(t, mod.Previous, 1)
	assert.Equal(t, baseTime, mod.Previous[0].Modified)
	assert.Equal(t, later, mod.Files[0].Modified)
}

func TestDiff_FromNilBaseline(t *testing.T) {
	a := fileEntry("/r/a.txt", 1, baseTime, baseTime)

	events := Diff(nil, snap(a), DefaultNotifyFilters)
	require.Len(t, events, 1)
	assert.Equal(t, Created, events[0].Op)
}

func TestDiff_NotifyFilterMasking(t *testing.T) {
	later := baseTime.Add(time.Minute)
	old := fileEntry("/r/a.txt", 10, baseTime, baseTime)

	tests := []struct {
		name       string
		mask       NotifyFilters
		mutate     func(e *FileEntry)
		expectMods bool
	}{
		{
			name:       "size change ignored with LastWrite only",
			mask:       LastWrite,
			mutate:     func(e *FileEntry) { e.Size = 99 },
			expectMods: false,
		},
		{
			name:       "mtime change reported with LastWrite",
			mask:       LastWrite,
			mutate:     func(e *FileEntry) { e.Modified = later },
			expectMods: true,
		},
		{
			name:       "size change reported with Size",
			mask:       Size,
			mutate:     func(e *FileEntry) { e.Size = 99 },
			expectMods: true,
		},
		{
			name:       "mtime change ignored with Size only",
			mask:       Size,
			mutate:     func(e *FileEntry) { e.Modified = later },
			expectMods: false,
		},
		{
			name:       "creation time",
			mask:       CreationTime,
			mutate:     func(e *FileEntry) { e.Created = later },
			expectMods: true,
		},
		{
			name:       "access time",
			mask:       LastAccess,
			mutate:     func(e *FileEntry) { e.Accessed = later },
			expectMods: true,
		},
		{
			name:       "access time ignored by default",
			mask:       DefaultNotifyFilters,
			mutate:     func(e *FileEntry) { e.Accessed = later },
			expectMods: false,
		},
		{
			name:       "attributes",
			mask:       Attributes,
			mutate:     func(e *FileEntry) { e.Attributes = 1 },
			expectMods: true,
		},
		{
			name:       "permissions under Security",
			mask:       Security,
			mutate:     func(e *FileEntry) { e.Mode = 0600 },
			expectMods: true,
		},
		{
			name:       "owner under Security",
			mask:       Security,
			mutate:     func(e *FileEntry) { e.UID = 1000 },
			expectMods: true,
		},
		{
			name:       "name flags never cause Modified",
			mask:       FileName | DirectoryName,
			mutate:     func(e *FileEntry) { e.Modified = later; e.Size = 1 },
			expectMods: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := old
			tt.mutate(&cur)

			events := Diff(snap(old), snap(cur), tt.mask)
			if tt.expectMods {
				require.Len(t, events, 1)
				assert.Equal(t, Modified, events[0].Op)
			} else {
				assert.Empty(t, events)
			}
		})
	}
}

func TestDiff_RenameHeuristic(t *testing.T) {
	created := baseTime.Add(-time.Hour)

	t.Run("equal size and creation time", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 42, created, baseTime)
		b := fileEntry("/r/b.txt", 42, created, baseTime)

		events := Diff(snap(a), snap(b), DefaultNotifyFilters)
		require.Len(t, events, 1)

		ev := events[0]
		assert.Equal(t, Renamed, ev.Op)
		assert.Equal(t, []string{"/r/b.txt"}, ev.Paths())
		require.Len(t, ev.Previous, 1)
		assert.Equal(t, "/r/a.txt", ev.Previous[0].Path)
	})

	t.Run("different size", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 42, created, baseTime)
		b := fileEntry("/r/b.txt", 43, created, baseTime)

		events := Diff(snap(a), snap(b), DefaultNotifyFilters)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))
	})

	t.Run("different creation time", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 42, created, baseTime)
		b := fileEntry("/r/b.txt", 42, baseTime, baseTime)

		events := Diff(snap(a), snap(b), DefaultNotifyFilters)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))
	})

	t.Run("disabled without FileName", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 42, created, baseTime)
		b := fileEntry("/r/b.txt", 42, created, baseTime)

		events := Diff(snap(a), snap(b), LastWrite)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))
	})

	t.Run("file id pairs over a stand-in creation time", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 42, created, baseTime)
		a.ID = FileID{Dev: 1, Ino: 100}
		b := fileEntry("/r/b.txt", 42, baseTime, baseTime)
		b.ID = FileID{Dev: 1, Ino: 100}
		c := fileEntry("/r/c.txt", 42, created, baseTime)
		c.ID = FileID{Dev: 1, Ino: 200}

		events := Diff(snap(a), snap(b, c), DefaultNotifyFilters)
		require.Equal(t, []Op{Created, Renamed}, ops(events))
		assert.Equal(t, []string{"/r/c.txt"}, eventFor(t, events, Created).Paths())
		assert.Equal(t, []string{"/r/b.txt"}, eventFor(t, events, Renamed).Paths())
	})

	t.Run("reused inode with different size", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 5, created, baseTime)
		a.ID = FileID{Dev: 1, Ino: 100}
		b := fileEntry("/r/b.txt", 13, created, baseTime)
		b.ID = FileID{Dev: 1, Ino: 100}

		events := Diff(snap(a), snap(b), DefaultNotifyFilters)
		require.Equal(t, []Op{Created, Deleted}, ops(events))
		assert.Equal(t, []string{"/r/b.txt"}, eventFor(t, events, Created).Paths())
		assert.Equal(t, []string{"/r/a.txt"}, eventFor(t, events, Deleted).Paths())
	})

	t.Run("reused inode with different birth time", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 5, created, baseTime)
		a.ID = FileID{Dev: 1, Ino: 100}
		a.Born = true
		b := fileEntry("/r/b.txt", 5, baseTime, baseTime)
		b.ID = FileID{Dev: 1, Ino: 100}
		b.Born = true

		events := Diff(snap(a), snap(b), DefaultNotifyFilters)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))
	})

	t.Run("each created entry pairs once", func(t *testing.T) {
		a := fileEntry("/r/a.txt", 1, created, baseTime)
		b := fileEntry("/r/b.txt", 1, created, baseTime)
		c := fileEntry("/r/c.txt", 1, created, baseTime)

		events := Diff(snap(a, b), snap(c), DefaultNotifyFilters)
		require.Equal(t, []Op{Deleted, Renamed}, ops(events))

		ren := eventFor(t, events, Renamed)
		assert.Equal(t, "/r/a.txt", ren.Previous[0].Path)
		assert.Equal(t, []string{"/r/b.txt"}, eventFor(t, events, Deleted).Paths())
	})

	t.Run("directories need DirectoryName", func(t *testing.T) {
		d1 := dirEntry("/r/d1", baseTime)
		d2 := dirEntry("/r/d2", baseTime)

		events := Diff(snap(d1), snap(d2), FileName)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))

		events = Diff(snap(d1), snap(d2), DirectoryName)
		require.Len(t, events, 1)
		assert.Equal(t, Renamed, events[0].Op)
	})

	t.Run("file and directory never pair", func(t *testing.T) {
		f := fileEntry("/r/x", 0, baseTime, baseTime)
		d := dirEntry("/r/y", baseTime)

		events := Diff(snap(f), snap(d), AllNotifyFilters)
		assert.Equal(t, []Op{Created, Deleted}, ops(events))
	})
}

func TestDiff_KindChangeAtSamePath(t *testing.T) {
	f := fileEntry("/r/x", 0, baseTime, baseTime)
	d := dirEntry("/r/x", baseTime)

	events := Diff(snap(f), snap(d), AllNotifyFilters)
	require.Equal(t, []Op{Created, Deleted}, ops(events))
	assert.Equal(t, KindDirectory, eventFor(t, events, Created).Files[0].Kind)
	assert.Equal(t, KindFile, eventFor(t, events, Deleted).Files[0].Kind)
}

func TestDiff_EventsSortedByPath(t *testing.T) {
	later := baseTime.Add(time.Second)
	prev := snap(
		fileEntry("/r/z.txt", 1, baseTime, baseTime),
		fileEntry("/r/m.txt", 2, baseTime, baseTime),
	)
	curr := snap(
		fileEntry("/r/c.txt", 3, later, later),
		fileEntry("/r/b.txt", 4, later, later),
	)

	events := Diff(prev, curr, LastWrite)
	assert.Equal(t, []string{"/r/b.txt", "/r/c.txt"}, eventFor(t, events, Created).Paths())
	assert.Equal(t, []string{"/r/m.txt", "/r/z.txt"}, eventFor(t, events, Deleted).Paths())
}
