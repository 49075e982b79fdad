// Package progress shows feedback while the assistant is working on a reply.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter signals that a request is pending.
type Reporter interface {
	Start(message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a spinner on stderr until Finish is called.
type TerminalReporter struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func (r *TerminalReporter) Start(message string) {
	r.Finish()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(message),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go spin(r.bar, r.stop, r.done)
}

func spin(bar *progressbar.ProgressBar, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	close(r.stop)
	<-r.done
	_ = r.bar.Finish()
	r.bar = nil
}

// CIReporter prints one line per pending request, suitable for logs.
type CIReporter struct {
	Out     io.Writer
	started time.Time
}

func (r *CIReporter) Start(message string) {
	r.started = time.Now()
	fmt.Fprintf(r.Out, "%s...\n", message)
}

func (r *CIReporter) Finish() {
	if r.started.IsZero() {
		return
	}
	fmt.Fprintf(r.Out, "done in %s\n", time.Since(r.started).Round(time.Millisecond))
	r.started = time.Time{}
}
