package crc32c

// The combination algebra below is the zlib crc32_combine algorithm
// instantiated for the Castagnoli polynomial. Appending len2 zero bytes
// to a message multiplies its CRC (viewed as a GF(2) polynomial) by
// x^(8*len2) modulo the CRC polynomial. That linear operator is built by
// repeated squaring of the single-bit-shift matrix, so Combine runs in
// O(log len2) regardless of segment size.

// castagnoli is the reversed Castagnoli polynomial, matching the table
// representation used by hash/crc32.
const castagnoli = 0x82f63b78

// gf2MatrixTimes multiplies the 32x32 GF(2) matrix mat by the vector vec.
func gf2MatrixTimes(mat *[32]uint32, vec uint32) uint32 {
	var sum uint32
	for i := 0; vec != 0; vec >>= 1 {
		if vec&1 != 0 {
			sum ^= mat[i]
		}
		i++
	}
	return sum
}

// gf2MatrixSquare sets square to mat*mat.
func gf2MatrixSquare(square, mat *[32]uint32) {
	for n := range square {
		square[n] = gf2MatrixTimes(mat, mat[n])
	}
}

// Combine returns the CRC32C of the concatenation A||B given crc1 =
// Sum(A), crc2 = Sum(B) and len2 = len(B). A's length is not needed.
// len2 <= 0 returns crc1 unchanged, so a zero-length segment is an
// identity fold.
func Combine(crc1, crc2 uint32, len2 int64) uint32 {
	if len2 <= 0 {
		return crc1
	}

	var even, odd [32]uint32

	// odd = the operator for a single zero bit.
	odd[0] = castagnoli
	row := uint32(1)
	for n := 1; n < 32; n++ {
		odd[n] = row
		row <<= 1
	}

	// even = two zero bits, odd = four.
	gf2MatrixSquare(&even, &odd)
	gf2MatrixSquare(&odd, &even)

	// Apply the zero-byte operator for each set bit of len2, squaring
	// as we go. The first iteration's even matrix is x^8, one byte.
	for {
		gf2MatrixSquare(&even, &odd)
		if len2&1 != 0 {
			crc1 = gf2MatrixTimes(&even, crc1)
		}
		len2 >>= 1
		if len2 == 0 {
			break
		}
		gf2MatrixSquare(&odd, &even)
		if len2&1 != 0 {
			crc1 = gf2MatrixTimes(&odd, crc1)
		}
		len2 >>= 1
		if len2 == 0 {
			break
		}
	}

	return crc1 ^ crc2
}
