// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: report.go — per-run output
//
// Purpose:
//   - Text: the classic one-liner "shared value = <N>" per run.
//   - JSON: one self-describing object per line, for scripts and plotting.
//
// Notes:
//   - Both implement experiment.Reporter and are safe for concurrent use.
//   - JSON encoding goes through sonnet like every other JSON path here.
// ─────────────────────────────────────────────────────────────────────────────

package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"reorder/experiment"
	"reorder/utils"

	"github.com/sugawarayuuta/sonnet"
)

const textPrefix = "shared value = "

// ───────────────────────────── Text Reporter ────────────────────────────────

// Text writes "shared value = <N>\n" for each run.
type Text struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func NewText(w io.Writer) *Text {
	return &Text{w: w, buf: make([]byte, 0, len(textPrefix)+16)}
}

func (t *Text) Report(r experiment.Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf[:0], textPrefix...)
	t.buf = utils.AppendUint(t.buf, uint64(r.Value))
	t.buf = append(t.buf, '\n')
	if _, err := t.w.Write(t.buf); err != nil {
		return fmt.Errorf("report: text: %w", err)
	}
	return nil
}

// ───────────────────────────── JSON Reporter ────────────────────────────────

// Record is the JSON shape of one run.
type Record struct {
	Policy     string `json:"policy"`
	Workers    int    `json:"workers"`
	Increments uint32 `json:"increments"`
	Value      uint32 `json:"value"`
	Expected   uint64 `json:"expected"`
	Deficit    int64  `json:"deficit"`
	Attempts   uint64 `json:"attempts"`
	Started    string `json:"started"`
	ElapsedNs  int64  `json:"elapsed_ns"`
	Arch       string `json:"arch"`
	Weak       bool   `json:"weak"`
	Pinned     bool   `json:"pinned"`
	Audited    bool   `json:"audited,omitempty"`
	Overlaps   uint64 `json:"overlaps,omitempty"`
}

// NewRecord flattens a Result.
func NewRecord(r experiment.Result) Record {
	return Record{
		Policy:     r.Policy.String(),
		Workers:    r.Workers,
		Increments: r.Increments,
		Value:      r.Value,
		Expected:   r.Expected,
		Deficit:    r.Deficit(),
		Attempts:   r.Attempts,
		Started:    r.Started.UTC().Format(time.RFC3339Nano),
		ElapsedNs:  r.Elapsed.Nanoseconds(),
		Arch:       r.Arch,
		Weak:       r.Weak,
		Pinned:     r.Pinned,
		Audited:    r.Audited,
		Overlaps:   r.Overlaps,
	}
}

// JSON writes one Record per line.
type JSON struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

func (j *JSON) Report(r experiment.Result) error {
	b, err := sonnet.Marshal(NewRecord(r))
	if err != nil {
		return fmt.Errorf("report: json: %w", err)
	}
	b = append(b, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("report: json: %w", err)
	}
	return nil
}
