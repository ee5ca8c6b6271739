//go:build !linux

package blockio

import "os"

// openFile opens path read-only. Page-cache bypass is not available on
// this platform, so the direct request degrades to a buffered open.
func openFile(path string, _ bool) (*os.File, error) {
	return os.Open(path)
}
