//go:build !noasm

// flag_arm64.go
//
// Function stubs whose bodies live in flag_arm64.s. ARM64 is weakly
// ordered, so the relaxed variants genuinely allow the protected data to
// be observed out of order relative to the flag.

package spinmutex

const weakOrdering = true

// lockAcquire is a strong CAS 0→1 with acquire ordering on success (LDAXR/STXR).
//
//go:noescape
func lockAcquire(p *uint32) bool

// lockRelaxed is a strong CAS 0→1 with no ordering (LDXR/STXR).
//
//go:noescape
func lockRelaxed(p *uint32) bool

// unlockRelease stores 0 with release ordering (STLR).
//
//go:noescape
func unlockRelease(p *uint32)

// unlockRelaxed stores 0 with a plain STR.
//
//go:noescape
func unlockRelaxed(p *uint32)
