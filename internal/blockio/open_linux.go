//go:build linux

package blockio

import (
	"os"

	"golang.org/x/sys/unix"
)

// openFile opens path read-only, with O_DIRECT when direct is set.
// Callers of the direct path must keep offsets, lengths and buffer
// addresses Alignment-multiples; AlignedBlock takes care of the last.
func openFile(path string, direct bool) (*os.File, error) {
	flags := os.O_RDONLY
	if direct {
		flags |= unix.O_DIRECT
	}
	return os.OpenFile(path, flags, 0)
}
