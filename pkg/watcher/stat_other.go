//go:build !linux && !darwin && !windows

package watcher

import "os"

func fillPlatform(e *FileEntry, info os.FileInfo) {
	e.Attributes = uint32(info.Mode())
	e.Created = e.Modified
	e.Accessed = e.Modified
}
