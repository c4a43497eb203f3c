// control.go — process-wide stop signalling for the endless run loop
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// The CLI repeats experiment runs until told to stop. Runs themselves are
// never cancelled: a worker always completes its target. Stop requests are
// therefore observed only between runs, through Stopped().
//
// Threading model:
//   • Signal handler goroutine calls Shutdown() on SIGINT/SIGTERM
//   • The driver loop polls Stopped() after each run's report
//   • Worker goroutines never touch these flags

package control

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	stop    atomic.Uint32 // 1 = finish the current run, then exit
	signals atomic.Uint32 // count of stop signals received
)

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown requests a stop after the current run.
func Shutdown() {
	stop.Store(1)
}

// Stopped reports whether a stop has been requested.
func Stopped() bool {
	return stop.Load() == 1
}

// Reset clears the stop flag. Used by tests.
func Reset() {
	stop.Store(0)
	signals.Store(0)
}

// ============================================================================
// SIGNAL INTEGRATION
// ============================================================================

// Notify installs a SIGINT/SIGTERM handler. The first signal requests a
// graceful stop; the second exits immediately with status 130, because a
// 10M-increment run under heavy contention can take a while to finish.
// The returned func uninstalls the handler.
func Notify() (cancel func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
				if signals.Add(1) > 1 {
					os.Exit(130)
				}
				Shutdown()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// Signals returns how many stop signals have been received.
func Signals() uint32 {
	return signals.Load()
}
