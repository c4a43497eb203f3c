//go:build (!amd64 && !arm64) || noasm

// flag_portable.go
//
// Portable implementations using sync/atomic. Seq-cst is a conservative
// superset of every requested order, so Broken collapses onto Correct
// here and no anomaly can be observed.

package spinmutex

import "sync/atomic"

const weakOrdering = false

func lockAcquire(p *uint32) bool {
	return atomic.CompareAndSwapUint32(p, unlocked, locked)
}

func lockRelaxed(p *uint32) bool {
	return atomic.CompareAndSwapUint32(p, unlocked, locked)
}

func unlockRelease(p *uint32) {
	atomic.StoreUint32(p, unlocked)
}

func unlockRelaxed(p *uint32) {
	atomic.StoreUint32(p, unlocked)
}
