// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostic logging (zero-fmt)
//
// Purpose:
//   - Logs setup steps, pinning problems, ledger errors and run summaries.
//   - Never used inside a worker loop: any syscall or shared write there
//     would perturb the timing the experiment measures.
//
// Notes:
//   - Avoids fmt to keep the footprint small; callers pre-format with utils.
//   - Output goes to stderr so stdout carries only the per-run reports.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"io"
	"os"
	"sync"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects diagnostics, returning the previous writer. Tests use
// it to capture output.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// DropError logs "<prefix>: <err>", or just the prefix when err is nil
// (used as a cheap trace tag).
//
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		printWarning(prefix + ": " + err.Error() + "\n")
	} else {
		printWarning(prefix + "\n")
	}
}

// DropMessage logs "<prefix>: <message>".
//
//go:inline
func DropMessage(prefix, message string) {
	printWarning(prefix + ": " + message + "\n")
}

func printWarning(msg string) {
	mu.Lock()
	_, _ = io.WriteString(out, msg)
	mu.Unlock()
}
