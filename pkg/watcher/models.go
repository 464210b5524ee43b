package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes files from directories.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "dir"
	}
	return "file"
}

// FileID identifies a file independently of its path (device + inode).
// The zero value means the platform did not expose one.
type FileID struct {
	Dev uint64
	Ino uint64
}

func (id FileID) Valid() bool {
	return id != FileID{}
}

// FileEntry is the metadata recorded for one path in a Snapshot.
type FileEntry struct {
	Path       string
	Name       string
	Kind       Kind
	Size       int64
	Created    time.Time
	Modified   time.Time
	Accessed   time.Time
	Mode       os.FileMode
	Attributes uint32
	UID        uint32
	GID        uint32
	ID         FileID
	// Born is set when Created is the file's birth time rather than a
	// stand-in such as the change time.
	Born bool
}

func (e FileEntry) IsDir() bool {
	return e.Kind == KindDirectory
}

func (e FileEntry) String() string {
	return e.Path
}

// Op is the operation a ChangeEvent reports.
type Op uint8

const (
	Created Op = iota + 1
	Modified
	Deleted
	Renamed
)

func (op Op) String() string {
	switch op {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// ChangeEvent groups all entries with the same operation detected in one tick.
//
// Files holds the current entries. For Modified, Previous[i] is the entry
// Files[i] had in the previous snapshot; for Renamed it is the entry at the
// old path. Previous is nil for Created and Deleted.
type ChangeEvent struct {
	Op       Op
	Files    []FileEntry
	Previous []FileEntry
}

// Paths returns the paths of Files in order.
func (ev ChangeEvent) Paths() []string {
	paths := make([]string, len(ev.Files))
	for i, f := range ev.Files {
		paths[i] = f.Path
	}
	return paths
}

// Batch is everything one poll tick detected.
type Batch struct {
	ID     uuid.UUID
	Seq    uint64
	At     time.Time
	Root   string
	Events []ChangeEvent
}

func (b Batch) Empty() bool {
	return len(b.Events) == 0
}

// Event returns the event for op, if the batch has one.
func (b Batch) Event(op Op) (ChangeEvent, bool) {
	for _, ev := range b.Events {
		if ev.Op == op {
			return ev, true
		}
	}
	return ChangeEvent{}, false
}

// ChangeFunc receives the batch of one tick.
type ChangeFunc func(batch Batch)

// EventFunc receives a single operation's event.
type EventFunc func(ev ChangeEvent)

// State is the lifecycle state of a Watcher.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
