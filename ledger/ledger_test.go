package ledger

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"reorder/config"
	"reorder/experiment"
	"reorder/spinmutex"
)

// ============================================================================
// HELPERS
// ============================================================================

func openTemp(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func smallConfig() config.Config {
	c := config.Default()
	c.Increments = 5000
	c.Seed = 1
	return c
}

func result(policy spinmutex.Ordering, value uint32) experiment.Result {
	return experiment.Result{
		Policy:     policy,
		Workers:    2,
		Increments: 10_000_000,
		Value:      value,
		Expected:   20_000_000,
		Attempts:   40_000_000,
		Started:    time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Elapsed:    2 * time.Second,
		Arch:       "arm64",
		Weak:       true,
	}
}

// ============================================================================
// RECORDING
// ============================================================================

func TestRecordPersistsRow(t *testing.T) {
	l, path := openTemp(t)
	if err := l.Report(result(spinmutex.Broken, 19_985_500)); err != nil {
		t.Fatalf("Report: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var policy, arch string
	var value, deficit int64
	var weak bool
	err = db.QueryRow(`SELECT policy, value, deficit, arch, weak FROM runs`).Scan(&policy, &value, &deficit, &arch, &weak)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if policy != "broken" || value != 19_985_500 || deficit != 14_500 || arch != "arm64" || !weak {
		t.Fatalf("row = %s %d %d %s %v", policy, value, deficit, arch, weak)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		if err := l.Report(result(spinmutex.Correct, 20_000_000)); err != nil {
			t.Fatal(err)
		}
		l.Close()
	}

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	sums, err := l.Summaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Runs != 2 {
		t.Fatalf("summaries = %+v", sums)
	}
}

func TestOpenFailsOnMissingDirectory(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "runs.db")); err == nil {
		t.Fatal("Open in a missing directory should fail")
	}
}

// ============================================================================
// SUMMARIES
// ============================================================================

func TestSummaries(t *testing.T) {
	l, _ := openTemp(t)
	ctx := context.Background()

	for _, v := range []uint32{20_000_000, 20_000_000, 20_000_000} {
		if err := l.Record(ctx, result(spinmutex.Correct, v)); err != nil {
			t.Fatal(err)
		}
	}
	for _, v := range []uint32{19_985_000, 19_987_000, 20_000_000, 19_986_000} {
		if err := l.Record(ctx, result(spinmutex.Broken, v)); err != nil {
			t.Fatal(err)
		}
	}

	sums, err := l.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d groups, want 2", len(sums))
	}

	broken, correct := sums[0], sums[1] // ordered by policy name
	if broken.Policy != spinmutex.Broken || correct.Policy != spinmutex.Correct {
		t.Fatalf("group order: %v, %v", broken.Policy, correct.Policy)
	}

	if correct.Runs != 3 || correct.Anomalous != 0 || correct.MedianDeficit != 0 {
		t.Fatalf("correct summary %+v", correct)
	}
	if correct.MinValue != 20_000_000 || correct.MaxValue != 20_000_000 {
		t.Fatalf("correct range %d..%d", correct.MinValue, correct.MaxValue)
	}

	if broken.Runs != 4 || broken.Anomalous != 3 {
		t.Fatalf("broken summary %+v", broken)
	}
	if broken.MinValue != 19_985_000 || broken.MaxValue != 20_000_000 {
		t.Fatalf("broken range %d..%d", broken.MinValue, broken.MaxValue)
	}
	// deficits sorted: 0, 13000, 14000, 15000 → (13000+14000)/2
	if broken.MedianDeficit != 13_500 {
		t.Fatalf("broken median deficit = %d", broken.MedianDeficit)
	}
	if broken.MeanValue != 19_989_500 {
		t.Fatalf("broken mean = %f", broken.MeanValue)
	}
	if broken.Expected != 20_000_000 || broken.Workers != 2 || broken.Increments != 10_000_000 {
		t.Fatalf("broken shape %+v", broken)
	}
}

func TestSummariesEmpty(t *testing.T) {
	l, _ := openTemp(t)
	sums, err := l.Summaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Fatalf("empty ledger summarised to %+v", sums)
	}
}

func TestLedgerAsReporter(t *testing.T) {
	l, _ := openTemp(t)
	cfgRes, err := experiment.Run(smallConfig(), l)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sums, err := l.Summaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Runs != 1 || sums[0].MaxValue != cfgRes.Value {
		t.Fatalf("summaries %+v after run %+v", sums, cfgRes)
	}
}
