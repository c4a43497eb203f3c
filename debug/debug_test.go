package debug

import (
	"bytes"
	"errors"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })
	return &buf
}

func TestDropMessage(t *testing.T) {
	buf := capture(t)
	DropMessage("RUN", "shared value = 20000000")
	if got, want := buf.String(), "RUN: shared value = 20000000\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDropError(t *testing.T) {
	buf := capture(t)
	DropError("LEDGER", errors.New("disk full"))
	DropError("TRACE", nil)
	if got, want := buf.String(), "LEDGER: disk full\nTRACE\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
