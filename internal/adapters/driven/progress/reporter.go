// Package progress implements driven.ProgressReporter for terminals.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/managed-outline/internal/core/ports/driven"
)

// Ensure Reporter implements the interface.
var _ driven.ProgressReporter = (*Reporter)(nil)

const barWidth = 20

// Reporter draws a progress bar. On a terminal the bar is redrawn in place;
// otherwise each update is written on its own line.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	inPlace bool
	message string
	last    int
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer, inPlace bool) *Reporter {
	return &Reporter{out: out, inPlace: inPlace, last: -1}
}

// NewTerminalReporter creates a reporter on stderr, redrawing in place when
// stderr is a terminal.
func NewTerminalReporter() *Reporter {
	return NewReporter(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

// Init starts a new progress run.
func (r *Reporter) Init(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = message
	r.last = -1
}

// Update reports completion in percent. Repeated values are ignored.
func (r *Reporter) Update(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	percent = max(0, min(100, percent))
	if percent == r.last {
		return
	}
	r.last = percent

	line := fmt.Sprintf("%s %s %3d%%", r.message, bar(percent), percent)
	if !r.inPlace {
		fmt.Fprintln(r.out, line)
		return
	}
	fmt.Fprintf(r.out, "\r%s", line)
	if percent == 100 {
		fmt.Fprintln(r.out)
	}
}

func bar(percent int) string {
	filled := percent * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
