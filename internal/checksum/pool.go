// Package checksum drives the parallel CRC32C computation: a fixed pool
// of long-lived workers reads fixed-size blocks at absolute offsets and
// a round-based scheduler folds the per-block checksums, strictly in
// offset order, into one value identical to a sequential pass.
package checksum

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/keshon/pcrc/internal/blockio"
	"github.com/keshon/pcrc/internal/config"
	"github.com/keshon/pcrc/internal/crc32c"
)

// Options configures a Summer.
type Options struct {
	// Threads is the number of worker goroutines. 0 or less means one.
	Threads int

	// BlockSize is the read granularity in bytes. 0 means
	// config.DefaultBlockSize. Must be a multiple of blockio.Alignment
	// when the handle was opened for direct I/O.
	BlockSize int

	// FillZero masks short reads inside the file by zero-padding them
	// to the expected length. Requires the file size to be queryable.
	FillZero bool
}

type task struct {
	h    blockio.Handle
	path string

	offset int64
	size   int64 // file length, valid only when fillZero

	res *result
	wg  *sync.WaitGroup
}

// result is one worker's outcome for one block. terminal marks a read
// shorter than the block size, i.e. the block containing end-of-file.
type result struct {
	n        int64
	crc      uint32
	terminal bool
	err      error
}

// Summer owns the worker pool. It is created once per invocation and
// reused across files; each worker allocates one aligned scratch buffer
// at startup and keeps it for its whole lifetime, so no buffer is ever
// shared, resized or reallocated mid-run.
//
// A Summer checksums one file at a time; files are processed serially.
type Summer struct {
	threads   int
	blockSize int
	fillZero  bool

	tasks chan task
}

// New starts the worker pool.
func New(opts Options) *Summer {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = config.DefaultBlockSize
	}
	s := &Summer{
		threads:   opts.Threads,
		blockSize: opts.BlockSize,
		fillZero:  opts.FillZero,
		tasks:     make(chan task),
	}
	for i := 0; i < s.threads; i++ {
		go s.worker()
	}
	return s
}

// Close stops the workers. The Summer must not be used afterwards.
func (s *Summer) Close() {
	close(s.tasks)
}

func (s *Summer) worker() {
	buf := blockio.AlignedBlock(s.blockSize)
	for t := range s.tasks {
		t.res.n, t.res.crc, t.res.terminal, t.res.err = s.readBlock(t, buf)
		t.wg.Done()
	}
}

func (s *Summer) readBlock(t task, buf []byte) (int64, uint32, bool, error) {
	n, err := blockio.ReadBlock(t.h, buf, t.offset, t.size, s.fillZero)
	if err != nil {
		return 0, 0, false, errors.Wrapf(err, "read %s at offset %d", t.path, t.offset)
	}
	return int64(n), crc32c.Sum(buf[:n]), n != len(buf), nil
}
