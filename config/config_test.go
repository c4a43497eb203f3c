package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reorder/constants"
	"reorder/spinmutex"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Workers != 2 || c.Increments != 10_000_000 {
		t.Fatalf("Default shape = %d×%d, want 2×10000000", c.Workers, c.Increments)
	}
	if c.Policy != spinmutex.Correct {
		t.Fatalf("Default policy = %v", c.Policy)
	}
	if c.Expected() != 20_000_000 {
		t.Fatalf("Expected() = %d", c.Expected())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Default does not validate: %v", err)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := Parse([]byte(`{"workers": 4, "policy": "relaxed", "pin": true, "ledger": "runs.db"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Workers != 4 || c.Policy != spinmutex.Broken || !c.Pin || c.Ledger != "runs.db" {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.Increments != constants.DefaultIncrements {
		t.Errorf("absent increments = %d, want default", c.Increments)
	}
	if c.SpinMask != constants.DefaultSpinMask {
		t.Errorf("absent spin_mask = %d, want default", c.SpinMask)
	}
}

func TestParseExplicitZeroOverridesDefault(t *testing.T) {
	c, err := Parse([]byte(`{"spin_mask": 0, "runs": 3}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.SpinMask != 0 || c.Runs != 3 {
		t.Fatalf("got spin_mask=%d runs=%d", c.SpinMask, c.Runs)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"policy": "seqcst"}`)); !errors.Is(err, spinmutex.ErrUnknownOrdering) {
		t.Errorf("unknown policy err = %v", err)
	}
	if _, err := Parse([]byte(`{"workers": `)); err == nil {
		t.Error("truncated document should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.json")
	if err := os.WriteFile(path, []byte(`{"increments": 1000, "audit": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Increments != 1000 || !c.Audit {
		t.Fatalf("unexpected config %+v", c)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load of missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"one worker", func(c *Config) { c.Workers = 1 }, ErrTooFewWorkers},
		{"too many workers", func(c *Config) { c.Workers = constants.MaxWorkers + 1 }, ErrTooManyWorkers},
		{"zero increments", func(c *Config) { c.Increments = 0 }, ErrNoIncrements},
		{"overflow", func(c *Config) { c.Workers = 3; c.Increments = 2_000_000_000 }, ErrOverflow},
		{"audit too large", func(c *Config) { c.Audit = true }, ErrAuditTooLarge},
		{"negative core", func(c *Config) { c.FirstCore = -1 }, ErrBadCore},
		{"negative runs", func(c *Config) { c.Runs = -1 }, ErrBadRuns},
		{"bad policy", func(c *Config) { c.Policy = spinmutex.Ordering(5) }, spinmutex.ErrUnknownOrdering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mod(&c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsMaxCounter(t *testing.T) {
	c := Default()
	c.Workers = 3
	c.Increments = 1_431_655_765 // 3 × K == MaxUint32
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
