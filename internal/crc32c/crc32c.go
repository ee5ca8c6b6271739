// Package crc32c computes and algebraically combines CRC32C (Castagnoli)
// checksums. Sum and Update delegate to hash/crc32, which is hardware
// accelerated on amd64 and arm64; Combine is a pure GF(2) computation
// with no I/O, so partial checksums of adjacent byte ranges can be
// merged without touching the data again.
package crc32c

import "hash/crc32"

var table = crc32.MakeTable(crc32.Castagnoli)

// Sum returns the CRC32C checksum of p.
func Sum(p []byte) uint32 {
	return crc32.Checksum(p, table)
}

// Update returns the checksum of the data seen so far extended by p.
func Update(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, table, p)
}
