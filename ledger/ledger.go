// ════════════════════════════════════════════════════════════════════════════════════════════════
// Trial Ledger
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Memory Reordering Lab
// Component: sqlite-Backed Run History
//
// Description:
//   Every reported run becomes one row. The anomaly under Broken is statistical, so its shape
//   only appears across many trials: the ledger keeps them and summarises each
//   (policy, workers, increments) group with run count, anomalous runs, value range, mean
//   and median deficit.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reorder/constants"
	"reorder/experiment"
	"reorder/spinmutex"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slices"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ═══════════════════════════════════════════════════════════════════════════════════════════════

const schema = `
CREATE TABLE IF NOT EXISTS ` + constants.LedgerTable + ` (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT    NOT NULL,
	policy     TEXT    NOT NULL,
	workers    INTEGER NOT NULL,
	increments INTEGER NOT NULL,
	value      INTEGER NOT NULL,
	expected   INTEGER NOT NULL,
	deficit    INTEGER NOT NULL,
	attempts   INTEGER NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	arch       TEXT    NOT NULL,
	weak       INTEGER NOT NULL,
	pinned     INTEGER NOT NULL,
	audited    INTEGER NOT NULL,
	overlaps   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS ` + constants.LedgerTable + `_shape
	ON ` + constants.LedgerTable + ` (policy, workers, increments);`

const insertRun = `INSERT INTO ` + constants.LedgerTable + ` (
	started_at, policy, workers, increments, value, expected, deficit,
	attempts, elapsed_ns, arch, weak, pinned, audited, overlaps
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const groupRuns = `SELECT policy, workers, increments, expected,
	COUNT(*), SUM(deficit > 0), MIN(value), MAX(value), AVG(value)
FROM ` + constants.LedgerTable + `
GROUP BY policy, workers, increments, expected
ORDER BY policy, workers, increments`

const groupDeficits = `SELECT deficit FROM ` + constants.LedgerTable + `
WHERE policy = ? AND workers = ? AND increments = ?`

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LEDGER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Ledger appends run results to a sqlite database.
type Ledger struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: schema: %w", err)
	}
	insert, err := db.Prepare(insertRun)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: prepare: %w", err)
	}
	return &Ledger{db: db, insert: insert}, nil
}

// Close releases the statement and the database handle.
func (l *Ledger) Close() error {
	l.insert.Close()
	return l.db.Close()
}

// Report implements experiment.Reporter.
func (l *Ledger) Report(r experiment.Result) error {
	return l.Record(context.Background(), r)
}

// Record appends one run.
func (l *Ledger) Record(ctx context.Context, r experiment.Result) error {
	_, err := l.insert.ExecContext(ctx,
		r.Started.UTC().Format(time.RFC3339Nano),
		r.Policy.String(),
		r.Workers,
		int64(r.Increments),
		int64(r.Value),
		int64(r.Expected),
		r.Deficit(),
		int64(r.Attempts),
		r.Elapsed.Nanoseconds(),
		r.Arch,
		r.Weak,
		r.Pinned,
		r.Audited,
		int64(r.Overlaps),
	)
	if err != nil {
		return fmt.Errorf("ledger: record: %w", err)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SUMMARIES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Summary aggregates every recorded run of one experiment shape.
type Summary struct {
	Policy        spinmutex.Ordering
	Workers       int
	Increments    uint32
	Expected      uint64
	Runs          int
	Anomalous     int // runs with a positive deficit
	MinValue      uint32
	MaxValue      uint32
	MeanValue     float64
	MedianDeficit int64
}

// Summaries returns one Summary per (policy, workers, increments) group.
func (l *Ledger) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx, groupRuns)
	if err != nil {
		return nil, fmt.Errorf("ledger: summarise: %w", err)
	}

	var out []Summary
	for rows.Next() {
		var s Summary
		var policy string
		if err := rows.Scan(&policy, &s.Workers, &s.Increments, &s.Expected,
			&s.Runs, &s.Anomalous, &s.MinValue, &s.MaxValue, &s.MeanValue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ledger: scan summary: %w", err)
		}
		if s.Policy, err = spinmutex.ParseOrdering(policy); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ledger: stored policy: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("ledger: summarise: %w", err)
	}
	rows.Close()

	// Single connection: the group cursor must be closed before these queries.
	for i := range out {
		if out[i].MedianDeficit, err = l.medianDeficit(ctx, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Ledger) medianDeficit(ctx context.Context, s Summary) (int64, error) {
	rows, err := l.db.QueryContext(ctx, groupDeficits, s.Policy.String(), s.Workers, int64(s.Increments))
	if err != nil {
		return 0, fmt.Errorf("ledger: deficits: %w", err)
	}
	defer rows.Close()

	deficits := make([]int64, 0, s.Runs)
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("ledger: scan deficit: %w", err)
		}
		deficits = append(deficits, d)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("ledger: deficits: %w", err)
	}
	if len(deficits) == 0 {
		return 0, nil
	}

	slices.Sort(deficits)
	mid := len(deficits) / 2
	if len(deficits)%2 == 1 {
		return deficits[mid], nil
	}
	return (deficits[mid-1] + deficits[mid]) / 2, nil
}
