package utils

import "unsafe"

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Decimal Formatting — For Report Lines & Diagnostics
///////////////////////////////////////////////////////////////////////////////

// AppendUint appends the decimal form of v to dst without going through fmt.
//
//go:nosplit
//go:inline
func AppendUint(dst []byte, v uint64) []byte {
	var buf [20]byte // max digits of a uint64
	i := len(buf)
	for v >= 10 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	i--
	buf[i] = byte('0' + v)
	return append(dst, buf[i:]...)
}

// Utoa returns the decimal form of v.
//
//go:nosplit
//go:inline
func Utoa(v uint64) string {
	var buf [20]byte
	return string(AppendUint(buf[:0], v))
}

// Itoa returns the decimal form of a signed int.
//
//go:nosplit
//go:inline
func Itoa(n int) string {
	if n < 0 {
		// -(n+1)+1 avoids overflow on the most negative value
		return "-" + Utoa(uint64(-(n+1))+1)
	}
	return Utoa(uint64(n))
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers — For Seed Derivation
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to spread a small seed across a full cipher key.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// PutLE64 writes v little-endian into b[0:8].
//
//go:nosplit
//go:inline
func PutLE64(b []byte, v uint64) {
	_ = b[7] // bounds check hint
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

// LoadLE32 reads a little-endian 32-bit word from b[0:4].
//
//go:nosplit
//go:inline
func LoadLE32(b []byte) uint32 {
	_ = b[3] // bounds check hint
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
