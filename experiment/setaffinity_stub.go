// ============================================================================
// CROSS-PLATFORM COMPATIBILITY STUB
// ============================================================================
//
// setaffinity_stub.go - CPU affinity no-op for systems without
// sched_setaffinity(2): macOS, Windows, BSDs, TinyGo, wasm.
//
// Workers are still locked to their own OS threads; placement on distinct
// cores is left to the kernel scheduler.

//go:build !linux || tinygo

package experiment

const pinSupported = false

func setAffinity(cpu int) error {
	return nil
}
