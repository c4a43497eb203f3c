// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — Experiment configuration
//
// Purpose:
//   - Layers constants defaults ← JSON file ← CLI flags into one Config.
//   - Rejects shapes the harness cannot run faithfully (overflow, too few workers).
//
// Notes:
//   - The JSON file is decoded with sonnet, same decoder the rest of the
//     repo uses for wire data.
//   - Fields absent from the file keep their defaults.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"reorder/constants"
	"reorder/spinmutex"

	"github.com/sugawarayuuta/sonnet"
)

var (
	ErrTooFewWorkers  = errors.New("config: fewer workers than needed for contention")
	ErrTooManyWorkers = errors.New("config: too many workers")
	ErrNoIncrements   = errors.New("config: increments must be positive")
	ErrOverflow       = errors.New("config: workers × increments overflows the 32-bit counter")
	ErrAuditTooLarge  = errors.New("config: increments too large for audit mode")
	ErrBadCore        = errors.New("config: first core must be non-negative")
	ErrBadRuns        = errors.New("config: runs must be non-negative")
)

// Config is the full, immutable description of an experiment series.
type Config struct {
	Workers    int                // N, concurrently spinning workers
	Increments uint32             // K, successful critical sections per worker
	Policy     spinmutex.Ordering // ordering attached to every flag operation
	Pin        bool               // lock each worker to its own OS thread and core
	FirstCore  int                // core of worker 0 when pinning
	SpinMask   uint32             // busy-work ends on a draw with draw&SpinMask == 0
	Seed       uint64             // 0 seeds busy-work from crypto/rand
	Audit      bool               // record critical-section tickets and check overlap
	Runs       int                // 0 = repeat until signalled
	Ledger     string             // sqlite path; empty disables persistence
	JSON       bool               // emit JSON lines instead of the text report
}

// fileConfig is the on-disk shape. Pointers distinguish "absent" from zero.
type fileConfig struct {
	Workers    *int    `json:"workers"`
	Increments *uint32 `json:"increments"`
	Policy     *string `json:"policy"`
	Pin        *bool   `json:"pin"`
	FirstCore  *int    `json:"first_core"`
	SpinMask   *uint32 `json:"spin_mask"`
	Seed       *uint64 `json:"seed"`
	Audit      *bool   `json:"audit"`
	Runs       *int    `json:"runs"`
	Ledger     *string `json:"ledger"`
	JSON       *bool   `json:"json"`
}

// Default returns the classic two-worker, ten-million-increment experiment
// under the Correct policy.
func Default() Config {
	return Config{
		Workers:    constants.DefaultWorkers,
		Increments: constants.DefaultIncrements,
		Policy:     spinmutex.Correct,
		FirstCore:  constants.DefaultFirstCore,
		SpinMask:   constants.DefaultSpinMask,
		Runs:       constants.DefaultRuns,
	}
}

// Load reads a JSON config file and overlays it on Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays a JSON document on Default.
func Parse(data []byte) (Config, error) {
	var f fileConfig
	if err := sonnet.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	c := Default()
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.Increments != nil {
		c.Increments = *f.Increments
	}
	if f.Policy != nil {
		p, err := spinmutex.ParseOrdering(*f.Policy)
		if err != nil {
			return Config{}, fmt.Errorf("config: policy: %w", err)
		}
		c.Policy = p
	}
	if f.Pin != nil {
		c.Pin = *f.Pin
	}
	if f.FirstCore != nil {
		c.FirstCore = *f.FirstCore
	}
	if f.SpinMask != nil {
		c.SpinMask = *f.SpinMask
	}
	if f.Seed != nil {
		c.Seed = *f.Seed
	}
	if f.Audit != nil {
		c.Audit = *f.Audit
	}
	if f.Runs != nil {
		c.Runs = *f.Runs
	}
	if f.Ledger != nil {
		c.Ledger = *f.Ledger
	}
	if f.JSON != nil {
		c.JSON = *f.JSON
	}
	return c, nil
}

// Validate checks every invariant the harness depends on.
func (c Config) Validate() error {
	switch {
	case c.Workers < constants.MinWorkers:
		return fmt.Errorf("%w: %d < %d", ErrTooFewWorkers, c.Workers, constants.MinWorkers)
	case c.Workers > constants.MaxWorkers:
		return fmt.Errorf("%w: %d > %d", ErrTooManyWorkers, c.Workers, constants.MaxWorkers)
	case c.Increments == 0:
		return ErrNoIncrements
	case c.Expected() > math.MaxUint32:
		return fmt.Errorf("%w: %d", ErrOverflow, c.Expected())
	case c.Audit && c.Increments > constants.MaxAuditIncrements:
		return fmt.Errorf("%w: %d > %d", ErrAuditTooLarge, c.Increments, constants.MaxAuditIncrements)
	case c.FirstCore < 0:
		return ErrBadCore
	case c.Runs < 0:
		return ErrBadRuns
	case !c.Policy.Valid():
		return fmt.Errorf("config: %w", spinmutex.ErrUnknownOrdering)
	}
	return nil
}

// Expected is N×K, the final counter value every run should report when
// no update is lost.
func (c Config) Expected() uint64 {
	return uint64(c.Workers) * uint64(c.Increments)
}
