// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED WORKER LAUNCH
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: Worker Placement
//
// Description:
//   Starts one goroutine per worker. With pinning on, each goroutine is locked to its own OS
//   thread and that thread is bound to a dedicated core, so every worker owns an independent
//   execution unit for the whole run. All workers then wait on a shared start gate so the
//   first one spawned does not complete a head start alone.
//
// Thread lifecycle:
//   A pinned goroutine never unlocks its thread. When it exits while locked the runtime
//   retires the thread, taking the affinity mask with it instead of handing a core-restricted
//   thread back to the scheduler.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package experiment

import (
	"fmt"
	"runtime"
	"sync"
)

// spawnWorker launches w against s. done is released when the worker has
// finished or failed to start; a failure is left in w.err.
func spawnWorker(w *worker, s *Shared, pin bool, gate <-chan struct{}, done *sync.WaitGroup) {
	go func() {
		defer done.Done()

		if pin {
			runtime.LockOSThread()
			if err := setAffinity(w.core); err != nil {
				w.err = fmt.Errorf("experiment: pin worker %d to core %d: %w", w.id, w.core, err)
				<-gate
				return
			}
		}

		<-gate
		w.run(s)
	}()
}
