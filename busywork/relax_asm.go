// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - Assembly Hint
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Spin-Wait Hint Between Draws
//
// Description:
//   Body lives in relax_amd64.s (PAUSE) and relax_arm64.s (YIELD). Declared in Go
//   assembly rather than cgo so that a call costs a few cycles and never passes through
//   the runtime's cgo transition, whose own atomics would act as barriers.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build (amd64 || arm64) && !noasm

package busywork

// cpuRelax emits the architecture's spin-wait hint.
func cpuRelax()
