// ════════════════════════════════════════════════════════════════════════════════════════════════
// Memory Reordering Lab - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: CLI & Endless Run Loop
//
// Description:
//   Repeats independent experiment runs and prints "shared value = <N>" after each join.
//   Under the correct policy every line reads N×K. Under the broken policy, on a weakly ordered
//   multi-core machine, some lines fall short; on x86-64 they never do.
//
// Phases:
//   - Phase 0: Configuration (defaults ← -config file ← flags ← positional worker count)
//   - Phase 1: Reporter setup (stdout text or JSON lines, optional sqlite ledger)
//   - Phase 2: Run loop until -runs is reached or a signal arrives
//   - Phase 3: Ledger summary on exit
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"

	"reorder/config"
	"reorder/control"
	"reorder/debug"
	"reorder/experiment"
	"reorder/ledger"
	"reorder/report"
	"reorder/spinmutex"
	"reorder/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		debug.DropError("CONFIG", err)
		os.Exit(2)
	}

	cancel := control.Notify()
	code := run(cfg, os.Stdout)
	cancel()
	os.Exit(code)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// parseArgs layers defaults, an optional JSON file, explicitly set flags and
// finally the positional worker count, then validates the result.
func parseArgs(args []string, errOut io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("reorder", flag.ContinueOnError)
	fs.SetOutput(errOut)

	def := config.Default()
	var (
		path       = fs.String("config", "", "JSON config file")
		workers    = fs.Int("workers", def.Workers, "concurrent workers (N)")
		increments = fs.Uint("increments", uint(def.Increments), "successful increments per worker (K)")
		policy     = fs.String("policy", def.Policy.String(), "flag ordering: correct|broken")
		pin        = fs.Bool("pin", def.Pin, "lock each worker to its own core")
		firstCore  = fs.Int("first-core", def.FirstCore, "core of worker 0 when pinning")
		spinMask   = fs.Uint("spin-mask", uint(def.SpinMask), "busy-work ends on a draw with draw&mask == 0")
		seed       = fs.Uint64("seed", def.Seed, "busy-work seed, 0 = random")
		audit      = fs.Bool("audit", def.Audit, "check critical sections for overlap (adds fences)")
		runs       = fs.Int("runs", def.Runs, "number of runs, 0 = until interrupted")
		ledgerPath = fs.String("ledger", def.Ledger, "sqlite file recording every run")
		asJSON     = fs.Bool("json", def.JSON, "print JSON lines instead of text")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := def
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "increments":
			if uint64(*increments) > math.MaxUint32 {
				err = fmt.Errorf("config: increments %d exceed 32 bits", *increments)
			}
			cfg.Increments = uint32(*increments)
		case "policy":
			p, perr := spinmutex.ParseOrdering(*policy)
			if perr != nil {
				err = perr
			}
			cfg.Policy = p
		case "pin":
			cfg.Pin = *pin
		case "first-core":
			cfg.FirstCore = *firstCore
		case "spin-mask":
			cfg.SpinMask = uint32(*spinMask)
		case "seed":
			cfg.Seed = *seed
		case "audit":
			cfg.Audit = *audit
		case "runs":
			cfg.Runs = *runs
		case "ledger":
			cfg.Ledger = *ledgerPath
		case "json":
			cfg.JSON = *asJSON
		}
	})
	if err != nil {
		return config.Config{}, err
	}

	if fs.NArg() > 0 {
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return config.Config{}, fmt.Errorf("config: worker count %q: %w", fs.Arg(0), err)
		}
		cfg.Workers = n
	}

	return cfg, cfg.Validate()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN LOOP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// run executes runs until the configured count or a stop request and
// returns the process exit status.
func run(cfg config.Config, out io.Writer) int {
	debug.DropMessage("INIT", cfg.Policy.String()+" policy, "+utils.Itoa(cfg.Workers)+" workers × "+
		utils.Utoa(uint64(cfg.Increments))+" increments on "+runtime.GOARCH+weakNote())

	reporters := []experiment.Reporter{report.NewText(out)}
	if cfg.JSON {
		reporters[0] = report.NewJSON(out)
	}

	var book *ledger.Ledger
	if cfg.Ledger != "" {
		var err error
		if book, err = ledger.Open(cfg.Ledger); err != nil {
			debug.DropError("LEDGER", err)
			return 1
		}
		defer book.Close()
		reporters = append(reporters, book)
	}

	code := 0
	for i := 0; cfg.Runs == 0 || i < cfg.Runs; i++ {
		if control.Stopped() {
			break
		}

		runCfg := cfg
		if cfg.Seed != 0 {
			// Distinct per run so consecutive runs stay independent samples.
			runCfg.Seed = utils.Mix64(cfg.Seed+uint64(i)) | 1
		}

		if _, err := experiment.Run(runCfg, reporters...); err != nil {
			debug.DropError("RUN "+utils.Itoa(i), err)
			code = 1
			break
		}
	}

	if book != nil {
		summarize(book)
	}
	return code
}

func weakNote() string {
	if spinmutex.Weak() {
		return " (weakly ordered)"
	}
	return " (strongly ordered: broken behaves like correct)"
}

// summarize logs one line per experiment shape recorded in the ledger.
func summarize(book *ledger.Ledger) {
	sums, err := book.Summaries(context.Background())
	if err != nil {
		debug.DropError("LEDGER", err)
		return
	}
	for _, s := range sums {
		debug.DropMessage("SUMMARY", s.Policy.String()+" "+utils.Itoa(s.Workers)+"×"+utils.Utoa(uint64(s.Increments))+
			": "+utils.Itoa(s.Runs)+" runs, "+utils.Itoa(s.Anomalous)+" short, values "+
			utils.Utoa(uint64(s.MinValue))+".."+utils.Utoa(uint64(s.MaxValue))+
			", median deficit "+strconv.FormatInt(s.MedianDeficit, 10))
	}
}
