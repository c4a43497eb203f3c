// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Experiment Defaults & Hard Limits
//
// Purpose:
//   - Defines the default experiment shape (worker count, per-worker target).
//   - Bounds the knobs that the config layer accepts.
//
// Notes:
//   - Defaults reproduce the classic demonstration: 2 workers × 10,000,000
//   - The counter is 32-bit; Workers × Increments must fit in it
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Experiment Shape ─────────────────────────────

const (
	// DefaultWorkers is the number of concurrently spinning workers.
	// Two maximises the chance that both land on distinct cores and contend
	// on exactly one cache line.
	DefaultWorkers = 2

	// MinWorkers is the smallest meaningful contention: one peer to race.
	MinWorkers = 2

	// MaxWorkers bounds the pinning mask and the audit buffers.
	MaxWorkers = 256

	// DefaultIncrements is the per-worker number of successful critical sections.
	DefaultIncrements = 10_000_000

	// MaxAuditIncrements caps per-worker increments when audit instrumentation
	// is on; each critical section records two 8-byte tickets.
	MaxAuditIncrements = 1 << 20
)

// ─────────────────────────── Busy-Work Tuning ───────────────────────────────

const (
	// DefaultSpinMask ends a busy-work spin on the first draw with the low
	// three bits clear: geometric with mean 8 draws.
	DefaultSpinMask = 7
)

// ──────────────────────────── Outer Loop & I/O ──────────────────────────────

const (
	// DefaultRuns of 0 repeats runs until the process is signalled.
	DefaultRuns = 0

	// DefaultFirstCore is the core the first pinned worker is bound to.
	DefaultFirstCore = 0

	// LedgerTable is the sqlite table holding one row per completed run.
	LedgerTable = "runs"
)
