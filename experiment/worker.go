// ════════════════════════════════════════════════════════════════════════════════════════════════
// Contending Worker
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: Critical-Section Loop
//
// Description:
//   Each worker alternates random busy-work with a single non-blocking attempt on the shared
//   flag. A successful attempt performs acquire → counter++ → release, in that program order,
//   and counts toward the worker's private target. A failed attempt loops straight back to
//   busy-work: no backoff, no sleep, no yield.
//
// Invariants:
//   - The three critical-section steps appear in program order exactly once per success
//   - The counter is read and written non-atomically; any lost update is an ordering effect
//   - Worker-local state (done, attempts, source, audit log) is never shared
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package experiment

import (
	"reorder/busywork"
)

// worker is the private state of one contending goroutine.
type worker struct {
	id       int
	core     int
	target   uint32
	mask     uint32
	src      *busywork.Source
	audit    *auditLog // nil unless audit mode is on
	done     uint32    // successful increments so far
	attempts uint64    // TryAcquire calls, successful or not
	err      error     // set only when the worker could not start
	_        [8]byte
}

// run is the load-bearing loop. It is excluded from race instrumentation:
// the unsynchronised counter update is the subject of the experiment, and
// instrumenting it would also insert the detector's own synchronisation.
//
//go:norace
//go:nocheckptr
func (w *worker) run(s *Shared) {
	done, attempts := w.done, w.attempts
	target, mask := w.target, w.mask
	src, log := w.src, w.audit

	for done < target {
		src.Spin(mask)
		attempts++

		if !s.Flag.TryAcquire() {
			continue
		}
		if log != nil {
			log.enter(&s.ticket)
		}

		// Plain load, add, store. Not atomic on purpose.
		s.counter = s.counter + 1

		if log != nil {
			log.leave(&s.ticket)
		}
		s.Flag.Release()
		done++
	}

	w.done, w.attempts = done, attempts
}
