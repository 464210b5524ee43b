package watcher

import "github.com/fsnotify/fsnotify"

var fsnotifyOps = map[Op]fsnotify.Op{
	Created:  fsnotify.Create,
	Modified: fsnotify.Write,
	Deleted:  fsnotify.Remove,
}

// FsnotifyEvents renders the batch as fsnotify events, so code written
// against fsnotify can consume the poller. A rename becomes a Rename event
// for the old path followed by a Create event for the new one, which is how
// fsnotify reports a rename inside a watched directory.
func (b Batch) FsnotifyEvents() []fsnotify.Event {
	var out []fsnotify.Event
	for _, ev := range b.Events {
		if ev.Op == Renamed {
			for i, f := range ev.Files {
				out = append(out,
					fsnotify.Event{Name: ev.Previous[i].Path, Op: fsnotify.Rename},
					fsnotify.Event{Name: f.Path, Op: fsnotify.Create},
				)
			}
			continue
		}
		op, ok := fsnotifyOps[ev.Op]
		if !ok {
			continue
		}
		for _, f := range ev.Files {
			out = append(out, fsnotify.Event{Name: f.Path, Op: op})
		}
	}
	return out
}
