//go:build darwin

package watcher

import (
	"os"
	"syscall"
	"time"
)

func fillPlatform(e *FileEntry, info os.FileInfo) {
	e.Attributes = uint32(info.Mode())

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		e.Created = e.Modified
		e.Accessed = e.Modified
		return
	}
	e.ID = FileID{Dev: uint64(st.Dev), Ino: st.Ino}
	e.UID = st.Uid
	e.GID = st.Gid
	e.Accessed = time.Unix(st.Atimespec.Unix())
	e.Created = time.Unix(st.Birthtimespec.Unix())
	e.Born = true
}
