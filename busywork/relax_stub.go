// relax_stub.go — Fallback no-op for cpuRelax
//
// Covers RISC-V, ppc64, s390x, wasm and builds with the noasm tag.
// Draw timing is then governed by the keystream work alone.
//
//go:build (!amd64 && !arm64) || noasm

package busywork

//go:nosplit
//go:inline
func cpuRelax() {}
