// setaffinity_linux.go - Linux CPU affinity via sched_setaffinity(2)

//go:build linux && !tinygo

package experiment

import "golang.org/x/sys/unix"

const pinSupported = true

// setAffinity binds the calling OS thread to cpu. The caller must already
// hold runtime.LockOSThread, otherwise the mask lands on whichever thread
// the goroutine happens to occupy.
func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set) // 0 = calling thread
}
