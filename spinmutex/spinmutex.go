// ════════════════════════════════════════════════════════════════════════════════════════════════
// Test-and-Set Spin Mutex
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: Ordering-Selectable Synchronization Gate
//
// Description:
//   A single flag word acquired by compare-and-set and released by a plain atomic store.
//   The ordering attached to both operations is chosen once, at construction, from an
//   Ordering value. Correct attaches acquire/release; Broken attaches nothing.
//
// Contract:
//   - TryAcquire never blocks: it either takes the flag or returns false
//   - The Unlocked→Locked transition is one atomic read-modify-write under every policy
//   - No fairness, no queueing, no owner tracking, no recursion
//
// Platform Behavior:
//   - arm64: Correct = LDAXR/STXR + STLR, Broken = LDXR/STXR + STR
//   - amd64: LOCK CMPXCHG + MOV for both (TSO makes the policies indistinguishable)
//   - other / noasm: sync/atomic for both (sequentially consistent)
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package spinmutex

import "sync/atomic"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FLAG STATES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const (
	unlocked uint32 = 0
	locked   uint32 = 1
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// POLICY DISPATCH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// flagOps is the pair of primitives a policy applies to the flag word.
type flagOps struct {
	acquire func(p *uint32) bool
	release func(p *uint32)
}

// orderings maps each policy to its primitives. Both policies run the
// identical SpinMutex code; only the entry selected here differs.
var orderings = [numOrderings]flagOps{
	Correct: {acquire: lockAcquire, release: unlockRelease},
	Broken:  {acquire: lockRelaxed, release: unlockRelaxed},
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SPIN MUTEX
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// SpinMutex is a non-blocking test-and-set gate. The zero value is an
// unlocked mutex using the Correct policy.
//
// The mutex protects nothing by itself. Whatever a holder writes before
// Release is visible to the next successful TryAcquire only under Correct.
type SpinMutex struct {
	state  uint32   // unlocked / locked, touched only through flagOps or sync/atomic
	policy Ordering // immutable after New
}

// New returns an unlocked mutex using policy o. It panics on an invalid
// policy because every later operation would index out of the table.
func New(o Ordering) *SpinMutex {
	if !o.Valid() {
		panic("spinmutex: invalid ordering " + o.String())
	}
	return &SpinMutex{policy: o}
}

// Reset puts an embedded mutex into the Unlocked state under policy o.
// It must not race with any other operation on m.
func (m *SpinMutex) Reset(o Ordering) {
	if !o.Valid() {
		panic("spinmutex: invalid ordering " + o.String())
	}
	m.policy = o
	atomic.StoreUint32(&m.state, unlocked)
}

// TryAcquire attempts the Unlocked→Locked transition with a single CAS.
// It reports whether the caller now holds the mutex. A false return has
// no side effects and carries no ordering.
func (m *SpinMutex) TryAcquire() bool {
	return orderings[m.policy].acquire(&m.state)
}

// Release stores Unlocked. Only the current holder may call it; the
// mutex does not check.
func (m *SpinMutex) Release() {
	orderings[m.policy].release(&m.state)
}

// Policy returns the ordering fixed at construction.
func (m *SpinMutex) Policy() Ordering {
	return m.policy
}

// Locked is a sequentially consistent snapshot of the flag, meant for
// diagnostics and tests, never for making locking decisions.
func (m *SpinMutex) Locked() bool {
	return atomic.LoadUint32(&m.state) == locked
}

// Weak reports whether Broken is observably weaker than Correct in this
// build. It is false on TSO hardware and on the portable fallback, where
// both policies compile to the same fences.
func Weak() bool {
	return weakOrdering
}
