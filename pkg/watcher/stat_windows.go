//go:build windows

package watcher

import (
	"os"
	"syscall"
	"time"
)

// Windows does not expose a file index through os.FileInfo, so renames are
// matched on size and creation time only.
func fillPlatform(e *FileEntry, info os.FileInfo) {
	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		e.Attributes = uint32(info.Mode())
		e.Created = e.Modified
		e.Accessed = e.Modified
		return
	}
	e.Attributes = d.FileAttributes
	e.Created = time.Unix(0, d.CreationTime.Nanoseconds())
	e.Born = true
	e.Accessed = time.Unix(0, d.LastAccessTime.Nanoseconds())
}
