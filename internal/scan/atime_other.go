//go:build !linux

package scan

import (
	"os"
	"time"
)

func lastAccessed(info os.FileInfo) time.Time {
	return info.ModTime()
}
