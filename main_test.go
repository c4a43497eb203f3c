package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reorder/config"
	"reorder/control"
	"reorder/debug"
	"reorder/spinmutex"
)

func quiet(t *testing.T) {
	t.Helper()
	prev := debug.SetOutput(io.Discard)
	t.Cleanup(func() { debug.SetOutput(prev) })
}

// ============================================================================
// ARGUMENT PARSING
// ============================================================================

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != config.Default() {
		t.Fatalf("no-arg config %+v differs from Default", cfg)
	}
}

func TestParseArgsFlagsAndPositional(t *testing.T) {
	cfg, err := parseArgs([]string{"-policy", "broken", "-increments", "500", "-runs", "3", "-json", "4"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != spinmutex.Broken || cfg.Increments != 500 || cfg.Runs != 3 || !cfg.JSON || cfg.Workers != 4 {
		t.Fatalf("parsed %+v", cfg)
	}
}

func TestParseArgsFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.json")
	if err := os.WriteFile(path, []byte(`{"policy":"broken","workers":3,"increments":100}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := parseArgs([]string{"-config", path, "-workers", "5"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Policy != spinmutex.Broken || cfg.Increments != 100 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Workers != 5 {
		t.Fatalf("flag did not override file: workers=%d", cfg.Workers)
	}
}

func TestParseArgsErrors(t *testing.T) {
	cases := map[string][]string{
		"bad policy":      {"-policy", "sometimes"},
		"bad positional":  {"two"},
		"one worker":      {"1"},
		"huge increments": {"-increments", "5000000000"},
		"unknown flag":    {"-fence"},
		"missing config":  {"-config", "/nonexistent/lab.json"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseArgs(args, io.Discard); err == nil {
				t.Fatalf("parseArgs(%q) succeeded", args)
			}
		})
	}
	if _, err := parseArgs([]string{"-policy", "nope"}, io.Discard); !errors.Is(err, spinmutex.ErrUnknownOrdering) {
		t.Fatalf("bad policy err = %v", err)
	}
}

// ============================================================================
// RUN LOOP
// ============================================================================

func smallConfig() config.Config {
	c := config.Default()
	c.Increments = 2000
	c.Runs = 3
	c.Seed = 11
	return c
}

func TestRunPrintsOneLinePerRun(t *testing.T) {
	quiet(t)
	control.Reset()

	var out bytes.Buffer
	if code := run(smallConfig(), &out); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	want := strings.Repeat("shared value = 4000\n", 3)
	if out.String() != want {
		t.Fatalf("output %q, want %q", out.String(), want)
	}
}

func TestRunJSONWithLedger(t *testing.T) {
	quiet(t)
	control.Reset()

	cfg := smallConfig()
	cfg.JSON = true
	cfg.Ledger = filepath.Join(t.TempDir(), "runs.db")

	var out bytes.Buffer
	if code := run(cfg, &out); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d JSON lines", len(lines))
	}
	for _, l := range lines {
		if !strings.Contains(l, `"value":4000`) {
			t.Fatalf("line %s lacks value", l)
		}
	}
	if _, err := os.Stat(cfg.Ledger); err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
}

func TestRunStopsWhenRequested(t *testing.T) {
	quiet(t)
	control.Reset()
	control.Shutdown()
	defer control.Reset()

	cfg := smallConfig()
	cfg.Runs = 0 // forever, unless stopped
	var out bytes.Buffer
	if code := run(cfg, &out); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if out.Len() != 0 {
		t.Fatalf("no run expected after stop, got %q", out.String())
	}
}

func TestRunBadLedgerPath(t *testing.T) {
	quiet(t)
	control.Reset()

	cfg := smallConfig()
	cfg.Ledger = filepath.Join(t.TempDir(), "missing", "runs.db")
	if code := run(cfg, io.Discard); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
}
