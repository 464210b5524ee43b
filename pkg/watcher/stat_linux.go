//go:build linux

package watcher

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fillPlatform adds birth time, access time, owner and file id. statx is
// preferred because it reports the birth time; older kernels fall back to
// the lstat data already in info, using the change time as creation time.
func fillPlatform(e *FileEntry, info os.FileInfo) {
	e.Attributes = uint32(info.Mode())

	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, e.Path, unix.AT_SYMLINK_NOFOLLOW,
		unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	if err == nil {
		e.ID = FileID{Dev: unix.Mkdev(stx.Dev_major, stx.Dev_minor), Ino: stx.Ino}
		e.UID = stx.Uid
		e.GID = stx.Gid
		e.Accessed = statxTime(stx.Atime)
		if stx.Mask&unix.STATX_BTIME != 0 {
			e.Created = statxTime(stx.Btime)
			e.Born = true
		} else {
			e.Created = statxTime(stx.Ctime)
		}
		return
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		e.Created = e.Modified
		e.Accessed = e.Modified
		return
	}
	e.ID = FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}
	e.UID = st.Uid
	e.GID = st.Gid
	e.Accessed = time.Unix(st.Atim.Unix())
	e.Created = time.Unix(st.Ctim.Unix())
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
