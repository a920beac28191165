//go:build linux

package scan

import (
	"os"
	"syscall"
	"time"
)

// lastAccessed reads the atime out of the underlying stat when the
// platform exposes one, falling back to the modification time.
func lastAccessed(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}
