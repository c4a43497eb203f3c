// ════════════════════════════════════════════════════════════════════════════════════════════════
// Experiment Driver
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: Run Orchestration & State Machine
//
// Description:
//   One Experiment is one run: allocate a fresh Shared block, spawn N workers against it, join
//   them all, read the counter and hand the Result to the reporters.
//
// State machine:
//   Idle → Running (N workers active) → Joined → Reported
//   Report is refused until every worker has been joined; the join is the single point after
//   which the driver may read the counter.
//
// Failure:
//   A worker that cannot be placed on its core aborts the run: Wait returns the error, the
//   Result is not reportable and nothing is retried.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package experiment

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"reorder/busywork"
	"reorder/config"
	"reorder/debug"
	"reorder/spinmutex"
	"reorder/utils"
)

var (
	ErrAlreadyStarted = errors.New("experiment: already started")
	ErrNotStarted     = errors.New("experiment: not started")
	ErrNotJoined      = errors.New("experiment: workers not joined")
	ErrAlreadyDone    = errors.New("experiment: already reported")
	ErrRunFailed      = errors.New("experiment: run aborted")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN PHASES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Phase is the position of a run in its lifecycle.
type Phase uint32

const (
	Idle Phase = iota
	Running
	Joined
	Reported
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Joined:
		return "joined"
	case Reported:
		return "reported"
	}
	return "unknown"
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RESULT & REPORTING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Result is the outcome of one joined run.
type Result struct {
	Policy     spinmutex.Ordering
	Workers    int
	Increments uint32
	Value      uint32 // final counter, read after join
	Expected   uint64 // Workers × Increments
	Attempts   uint64 // TryAcquire calls across all workers
	Started    time.Time
	Elapsed    time.Duration
	Arch       string
	Weak       bool // Broken is weaker than Correct on this build
	Pinned     bool
	Audited    bool
	Overlaps   uint64 // audit mode: critical sections that began inside another
}

// Deficit is the number of lost increments. It is never negative while
// mutual exclusion holds.
func (r Result) Deficit() int64 {
	return int64(r.Expected) - int64(r.Value)
}

// Exact reports whether no update was lost.
func (r Result) Exact() bool {
	return uint64(r.Value) == r.Expected
}

// Reporter consumes the Result of each joined run.
type Reporter interface {
	Report(Result) error
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// EXPERIMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Experiment drives a single run. It is not reusable: build a new one for
// the next run so no state carries over.
type Experiment struct {
	cfg     config.Config
	shared  *Shared
	workers []worker

	phase   atomic.Uint32
	wg      sync.WaitGroup
	gate    chan struct{}
	started time.Time

	result Result
	err    error
}

// New validates cfg and prepares an Idle run: Flag unlocked, counter zero,
// one busy-work source per worker.
func New(cfg config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:     cfg,
		shared:  newShared(cfg.Policy),
		workers: make([]worker, cfg.Workers),
		gate:    make(chan struct{}),
	}

	for i := range e.workers {
		w := &e.workers[i]
		w.id = i
		w.core = cfg.FirstCore + i
		w.target = cfg.Increments
		w.mask = cfg.SpinMask

		if cfg.Seed != 0 {
			w.src = busywork.NewSeeded(cfg.Seed, uint64(i))
		} else {
			src, err := busywork.NewSource()
			if err != nil {
				return nil, fmt.Errorf("experiment: worker %d: %w", i, err)
			}
			w.src = src
		}

		if cfg.Audit {
			w.audit = newAuditLog(cfg.Increments)
		}
	}
	return e, nil
}

// Phase returns the current lifecycle phase.
func (e *Experiment) Phase() Phase {
	return Phase(e.phase.Load())
}

// Start moves Idle → Running: spawns every worker and opens the start gate.
func (e *Experiment) Start() error {
	if !e.phase.CompareAndSwap(uint32(Idle), uint32(Running)) {
		return ErrAlreadyStarted
	}

	if e.cfg.Pin && !pinSupported {
		debug.DropMessage("PIN", "core affinity unsupported on "+runtime.GOOS+", workers float")
	}
	if e.cfg.Pin && e.cfg.FirstCore+e.cfg.Workers > runtime.NumCPU() {
		debug.DropMessage("PIN", utils.Itoa(e.cfg.Workers)+" workers from core "+
			utils.Itoa(e.cfg.FirstCore)+" exceed "+utils.Itoa(runtime.NumCPU())+" CPUs")
	}

	e.wg.Add(len(e.workers))
	for i := range e.workers {
		spawnWorker(&e.workers[i], e.shared, e.cfg.Pin, e.gate, &e.wg)
	}
	e.started = time.Now()
	close(e.gate)
	return nil
}

// Wait blocks until every worker has finished (Running → Joined) and
// returns the run's Result. Calling it again returns the same outcome.
func (e *Experiment) Wait() (Result, error) {
	switch e.Phase() {
	case Idle:
		return Result{}, ErrNotStarted
	case Joined, Reported:
		return e.result, e.err
	}

	e.wg.Wait()
	elapsed := time.Since(e.started)

	var errs []error
	var attempts uint64
	for i := range e.workers {
		w := &e.workers[i]
		if w.err != nil {
			errs = append(errs, w.err)
		}
		attempts += w.attempts
	}

	e.result = Result{
		Policy:     e.cfg.Policy,
		Workers:    e.cfg.Workers,
		Increments: e.cfg.Increments,
		Value:      e.shared.Value(),
		Expected:   e.cfg.Expected(),
		Attempts:   attempts,
		Started:    e.started,
		Elapsed:    elapsed,
		Arch:       runtime.GOARCH,
		Weak:       spinmutex.Weak(),
		Pinned:     e.cfg.Pin && pinSupported,
		Audited:    e.cfg.Audit,
	}

	if len(errs) == 0 && e.cfg.Audit {
		logs := make([]*auditLog, len(e.workers))
		for i := range e.workers {
			logs[i] = e.workers[i].audit
		}
		n, err := countOverlaps(logs, e.shared.ticket.Load())
		if err != nil {
			errs = append(errs, err)
		}
		e.result.Overlaps = n
	}

	if len(errs) > 0 {
		e.err = fmt.Errorf("%w: %w", ErrRunFailed, errors.Join(errs...))
	}
	e.phase.Store(uint32(Joined))
	return e.result, e.err
}

// Report hands the joined Result to every reporter in order (Joined →
// Reported). All reporters are tried; their errors are joined.
func (e *Experiment) Report(reporters ...Reporter) error {
	switch e.Phase() {
	case Idle, Running:
		return ErrNotJoined
	case Reported:
		return ErrAlreadyDone
	}
	if e.err != nil {
		return e.err
	}

	var errs []error
	for _, r := range reporters {
		if err := r.Report(e.result); err != nil {
			errs = append(errs, err)
		}
	}
	e.phase.Store(uint32(Reported))
	return errors.Join(errs...)
}

// Run is New, Start, Wait and Report in one call.
func Run(cfg config.Config, reporters ...Reporter) (Result, error) {
	e, err := New(cfg)
	if err != nil {
		return Result{}, err
	}
	if err := e.Start(); err != nil {
		return Result{}, err
	}
	res, err := e.Wait()
	if err != nil {
		return res, err
	}
	return res, e.Report(reporters...)
}
