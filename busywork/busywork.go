// ════════════════════════════════════════════════════════════════════════════════════════════════
// Randomized Busy-Work Generator
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: Timing Jitter Between Lock Attempts
//
// Description:
//   Burns a random, unbounded-but-short amount of CPU between two lock attempts so that
//   acquisition moments land unpredictably relative to the other workers' critical sections.
//   Draws come from a per-worker ChaCha20 keystream; the spin ends on the first draw whose
//   masked bits are all zero, giving a geometric number of draws with mean mask+1.
//
// Constraints:
//   - Touches only worker-local memory: never the shared flag or counter
//   - One Source per worker, never shared
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package busywork

import (
	"crypto/rand"
	"fmt"

	"reorder/utils"

	"golang.org/x/crypto/chacha20"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION CONSTANTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// bufSize is the keystream refill granularity: four ChaCha20 blocks.
const bufSize = 4 * 64

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SOURCE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Source is a worker-owned stream of pseudo-random 32-bit draws.
type Source struct {
	cipher *chacha20.Cipher
	pos    int
	sink   uint32 // last draw, stored on every step so the spin cannot be folded away
	buf    [bufSize]byte
}

// NewSource returns a Source keyed from crypto/rand.
func NewSource() (*Source, error) {
	var seed [chacha20.KeySize + chacha20.NonceSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("busywork: seed: %w", err)
	}
	return newSource(seed[:chacha20.KeySize], seed[chacha20.KeySize:])
}

// NewSeeded returns a reproducible Source. Distinct stream values under the
// same seed yield independent sequences, one per worker.
func NewSeeded(seed, stream uint64) *Source {
	var key [chacha20.KeySize]byte
	for i := 0; i < chacha20.KeySize/8; i++ {
		utils.PutLE64(key[i*8:], utils.Mix64(seed+uint64(i)+1))
	}
	var nonce [chacha20.NonceSize]byte
	utils.PutLE64(nonce[:], stream)

	s, err := newSource(key[:], nonce[:])
	if err != nil {
		// Key and nonce sizes are fixed above.
		panic(err)
	}
	return s
}

func newSource(key, nonce []byte) (*Source, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("busywork: cipher: %w", err)
	}
	return &Source{cipher: c, pos: bufSize}, nil
}

// refill replaces the buffer with the next bufSize bytes of keystream.
func (s *Source) refill() {
	s.buf = [bufSize]byte{}
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	s.pos = 0
}

// Uint32 returns the next draw.
//
//go:nosplit
//go:inline
func (s *Source) Uint32() uint32 {
	if s.pos == bufSize {
		s.refill()
	}
	v := utils.LoadLE32(s.buf[s.pos:])
	s.pos += 4
	return v
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SPIN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Spin draws until a value with v&mask == 0 appears and returns the number
// of draws taken (at least 1). A mask of 7 gives a mean of 8 draws.
//
//go:noinline
func (s *Source) Spin(mask uint32) int {
	draws := 0
	for {
		v := s.Uint32()
		s.sink = v
		cpuRelax()
		draws++
		if v&mask == 0 {
			return draws
		}
	}
}

// Last returns the most recent draw.
func (s *Source) Last() uint32 {
	return s.sink
}
