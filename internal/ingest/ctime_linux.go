//go:build linux

package ingest

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime reports the inode change time, which is what the archive
// selection treats as creation time.
func changeTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	}
	return info.ModTime()
}
