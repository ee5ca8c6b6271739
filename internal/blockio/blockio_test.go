package blockio_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/keshon/pcrc/internal/blockio"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAlignedBlock(t *testing.T) {
	for _, size := range []int{512, 4096, 16 << 20} {
		buf := blockio.AlignedBlock(size)
		if len(buf) != size {
			t.Fatalf("len = %d, want %d", len(buf), size)
		}
		addr := uintptr(unsafe.Pointer(&buf[0]))
		if addr%blockio.Alignment != 0 {
			t.Fatalf("base address %#x not %d-byte aligned", addr, blockio.Alignment)
		}
	}
}

func TestOpenBuffered(t *testing.T) {
	data := []byte("0123456789abcdef")
	h, err := blockio.Open(writeTemp(t, data), blockio.OpenOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	size, err := h.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len(data)) {
		t.Fatalf("Size = %d, want %d", size, len(data))
	}

	buf := make([]byte, 4)
	n, err := h.ReadAt(buf, 8)
	if err != nil || n != 4 {
		t.Fatalf("ReadAt(8) = %d, %v", n, err)
	}
	if !bytes.Equal(buf, []byte("89ab")) {
		t.Fatalf("ReadAt(8) read %q", buf)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := blockio.Open(filepath.Join(t.TempDir(), "nope"), blockio.OpenOptions{}); err == nil {
		t.Fatal("expected error opening missing file")
	}
}

func TestMmapHandle(t *testing.T) {
	data := []byte("hello mmap world")
	h, err := blockio.Open(writeTemp(t, data), blockio.OpenOptions{Mmap: true})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	size, err := h.Size()
	if err != nil || size != int64(len(data)) {
		t.Fatalf("Size = %d, %v, want %d", size, err, len(data))
	}

	// Past-the-end reads must look like EOF, not invalid offsets.
	buf := make([]byte, 8)
	n, err := h.ReadAt(buf, size+100)
	if n != 0 || err != io.EOF {
		t.Fatalf("ReadAt past end = %d, %v, want 0, EOF", n, err)
	}

	// Short read at the tail.
	n, err = h.ReadAt(buf, size-3)
	if n != 3 {
		t.Fatalf("tail ReadAt = %d, %v, want 3", n, err)
	}
	if !bytes.Equal(buf[:n], []byte("rld")) {
		t.Fatalf("tail ReadAt read %q", buf[:n])
	}
}

func TestMmapEmptyFile(t *testing.T) {
	h, err := blockio.Open(writeTemp(t, nil), blockio.OpenOptions{Mmap: true})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	n, err := h.ReadAt(make([]byte, 8), 0)
	if n != 0 || err != io.EOF {
		t.Fatalf("ReadAt on empty = %d, %v, want 0, EOF", n, err)
	}
}

// shortHandle returns at most chunk bytes per ReadAt, simulating a
// device that answers reads short of the requested length.
type shortHandle struct {
	data  []byte
	chunk int
}

func (h *shortHandle) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(h.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.data[off:])
	if n > h.chunk {
		n = h.chunk
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *shortHandle) Close() error         { return nil }
func (h *shortHandle) Size() (int64, error) { return int64(len(h.data)), nil }

func TestReadBlockZeroFill(t *testing.T) {
	data := []byte("abcdefghijklmnop") // 16 bytes
	h := &shortHandle{data: data, chunk: 5}

	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 0xff
	}

	// Without zero-fill the short read passes through.
	n, err := blockio.ReadBlock(h, buf, 0, 16, false)
	if err != nil || n != 5 {
		t.Fatalf("ReadBlock = %d, %v, want 5", n, err)
	}

	// With zero-fill the block is padded to the full 8 bytes the file
	// still covers, and the padding is zero.
	n, err = blockio.ReadBlock(h, buf, 0, 16, true)
	if err != nil || n != 8 {
		t.Fatalf("ReadBlock fillZero = %d, %v, want 8", n, err)
	}
	if !bytes.Equal(buf, []byte("abcde\x00\x00\x00")) {
		t.Fatalf("ReadBlock fillZero buf = %q", buf)
	}
}

func TestReadBlockZeroFillTail(t *testing.T) {
	data := []byte("abcdefghij") // 10 bytes
	h := &shortHandle{data: data, chunk: 3}

	// Only 2 bytes of file remain at offset 8; the fill bound is the
	// remaining length, not the buffer length.
	buf := make([]byte, 8)
	n, err := blockio.ReadBlock(h, buf, 8, 10, true)
	if err != nil || n != 2 {
		t.Fatalf("ReadBlock tail = %d, %v, want 2", n, err)
	}

	// Past end-of-file nothing is filled.
	n, err = blockio.ReadBlock(h, buf, 100, 10, true)
	if err != nil || n != 0 {
		t.Fatalf("ReadBlock past end = %d, %v, want 0", n, err)
	}
}
