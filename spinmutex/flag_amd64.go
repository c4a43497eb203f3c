//go:build !noasm

// flag_amd64.go
//
// Function stubs whose bodies live in flag_amd64.s. x86-64 is TSO: a
// LOCK-prefixed CMPXCHG is already a full barrier and a plain MOV store
// already has release semantics, so both policies emit the same code.
// Runs on this architecture are the strong-order control group.

package spinmutex

const weakOrdering = false

//go:noescape
func lockAcquire(p *uint32) bool

//go:noescape
func lockRelaxed(p *uint32) bool

//go:noescape
func unlockRelease(p *uint32)

//go:noescape
func unlockRelaxed(p *uint32)
