// Package blockio opens files and block devices for read-only positional
// access and performs the bounded block reads the checksum engine is
// built on. All platform branching (direct vs. buffered I/O) and the
// zero-fill policy for short device reads live here, never in the
// scheduler.
package blockio

import (
	"io"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// Alignment is the unit direct I/O requires buffer addresses, read
// offsets and read lengths to be multiples of.
const Alignment = 512

// Handle is a read-only, seekless view of a file: every read names an
// absolute offset, so one Handle is safe for concurrent positional
// reads from multiple workers.
type Handle interface {
	io.ReaderAt
	io.Closer

	// Size reports the file length in bytes.
	Size() (int64, error)
}

// OpenOptions selects the read path for Open.
type OpenOptions struct {
	// PreferDirect requests a page-cache-bypassing open on platforms
	// that support it. Elsewhere it is silently ignored.
	PreferDirect bool

	// Mmap reads through a read-only memory map instead of read(2).
	// Incompatible with PreferDirect.
	Mmap bool
}

// Open opens path read-only for block reads.
func Open(path string, opts OpenOptions) (Handle, error) {
	if opts.Mmap {
		r, err := mmap.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "mmap %s", path)
		}
		return &mmapHandle{r: r}, nil
	}
	f, err := openFile(path, opts.PreferDirect)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &fileHandle{f: f}, nil
}

type fileHandle struct {
	f *os.File
}

func (h *fileHandle) ReadAt(p []byte, off int64) (int, error) { return h.f.ReadAt(p, off) }

func (h *fileHandle) Close() error { return h.f.Close() }

func (h *fileHandle) Size() (int64, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

type mmapHandle struct {
	r *mmap.ReaderAt
}

// ReadAt clamps reads at end-of-file to the mapped length: the engine
// probes offsets past the end every round and expects (0, io.EOF)
// there, while mmap.ReaderAt treats such offsets as invalid.
func (h *mmapHandle) ReadAt(p []byte, off int64) (int, error) {
	size := int64(h.r.Len())
	if off >= size {
		return 0, io.EOF
	}
	return h.r.ReadAt(p, off)
}

func (h *mmapHandle) Close() error { return h.r.Close() }

func (h *mmapHandle) Size() (int64, error) { return int64(h.r.Len()), nil }

// AlignedBlock allocates a size-byte buffer whose base address is a
// multiple of Alignment, as direct I/O requires. Workers allocate one
// at startup and keep it for their whole lifetime.
func AlignedBlock(size int) []byte {
	buf := make([]byte, size+Alignment)
	off := int(uintptr(unsafe.Pointer(&buf[0])) & (Alignment - 1))
	if off != 0 {
		off = Alignment - off
	}
	return buf[off : off+size : off+size]
}

// ReadBlock reads up to len(buf) bytes at absolute offset off. A short
// or empty read at end-of-file is reported through the count, not as an
// error. When fillZero is set and off lies inside the file (size is the
// length queried at open), a read shorter than min(size-off, len(buf))
// is padded with zero bytes up to that bound and reported as fully
// read, masking genuinely short device reads without changing the
// checksum's effective length.
func ReadBlock(h Handle, buf []byte, off, size int64, fillZero bool) (int, error) {
	n, err := h.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if fillZero && off < size {
		expect := size - off
		if int64(len(buf)) < expect {
			expect = int64(len(buf))
		}
		if int64(n) < expect {
			clear(buf[n:expect])
			n = int(expect)
		}
	}
	return n, nil
}
