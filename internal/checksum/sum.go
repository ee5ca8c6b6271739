package checksum

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/keshon/pcrc/internal/blockio"
	"github.com/keshon/pcrc/internal/crc32c"
)

// Sum computes the CRC32C of h by synchronous rounds: every round fans
// one block read per worker out at offsets start+i*blockSize, waits for
// all of them, folds the results in ascending offset order and advances
// the cursor by the bytes consumed. The fold is cut at the first
// terminal block; later results in the round lie at or past end-of-file
// and are discarded regardless of content. Returns the checksum and the
// total byte length folded into it.
//
// report, when non-nil, receives the consumed byte count after each
// round. On the first worker error the file is abandoned immediately
// with the error; nothing is retried.
func (s *Summer) Sum(h blockio.Handle, path string, report func(int64)) (uint32, int64, error) {
	var size int64
	if s.fillZero {
		// Queried once; a file changing size mid-run is outside the
		// contract (stale-size limitation).
		sz, err := h.Size()
		if err != nil {
			return 0, 0, errors.Wrapf(err, "stat %s", path)
		}
		size = sz
	}

	var (
		crc    uint32
		length int64
		start  int64
		wg     sync.WaitGroup
	)
	results := make([]result, s.threads)

	for {
		wg.Add(s.threads)
		for i := range results {
			results[i] = result{}
			s.tasks <- task{
				h:      h,
				path:   path,
				offset: start + int64(i)*int64(s.blockSize),
				size:   size,
				res:    &results[i],
				wg:     &wg,
			}
		}
		wg.Wait()

		var (
			roundCRC uint32
			roundLen int64
			terminal bool
		)
		for i := range results {
			r := &results[i]
			if r.err != nil {
				return 0, 0, r.err
			}
			roundCRC = crc32c.Combine(roundCRC, r.crc, r.n)
			roundLen += r.n
			if r.terminal {
				terminal = true
				break
			}
		}

		// A zero-length round (file size an exact multiple of
		// threads*blockSize) is an identity fold here.
		crc = crc32c.Combine(crc, roundCRC, roundLen)
		length += roundLen
		start += roundLen
		if report != nil {
			report(roundLen)
		}
		if terminal {
			return crc, length, nil
		}
	}
}
