package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Progress is a write-only console sink. Workers report from multiple
// goroutines, so every method takes the mutex.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	label   *color.Color
	enabled bool
}

// NewProgress writes to stderr so the merged PDF can go to stdout one day
// without interleaving.
func NewProgress(enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		label:   color.New(color.FgCyan, color.Bold),
		enabled: enabled,
	}
}

// Step reports one completed unit of the named stage.
func (p *Progress) Step(stage string, current, total int) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label.Fprintf(p.out, "[%s] ", stage)
	fmt.Fprintf(p.out, "%d/%d\n", current, total)
}

// Message prints a one-off line under the stage label.
func (p *Progress) Message(stage, text string) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label.Fprintf(p.out, "[%s] ", stage)
	fmt.Fprintln(p.out, text)
}
