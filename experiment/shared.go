package experiment

import (
	"sync/atomic"

	"reorder/spinmutex"
)

// Shared is the per-run block every worker references: the flag, the
// counter it guards and, in audit mode, a ticket dispenser. A fresh Shared
// is allocated for each run; nothing in it outlives the run.
//
// counter is deliberately a plain uint32 updated with a plain
// read-modify-write. Its only protection is the ordering attached to
// Flag. Replacing it with an atomic type would make every run exact and
// erase the effect being measured.
type Shared struct {
	Flag    spinmutex.SpinMutex
	counter uint32
	_       [52]byte // keep the ticket dispenser off the flag's cache line

	ticket atomic.Uint64
}

// newShared returns Flag = Unlocked, counter = 0 under policy o.
func newShared(o spinmutex.Ordering) *Shared {
	s := new(Shared)
	s.Flag.Reset(o)
	return s
}

// Value reads the counter. Only meaningful once every worker has been
// joined; before that it is a data race.
func (s *Shared) Value() uint32 {
	return s.counter
}
