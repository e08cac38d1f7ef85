//go:build unix

package deps

import (
	"os"

	"golang.org/x/sys/unix"
)

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
