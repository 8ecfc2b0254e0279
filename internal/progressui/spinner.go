// Package progressui wraps github.com/briandowns/spinner to give the
// generate command a terminal progress indicator, gated on TTY/quiet
// exactly as the pack's level-builder gates its own spinner on verbose mode.
package progressui

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps briandowns/spinner with the generate command's message
// conventions.
type Spinner struct {
	s        *spinner.Spinner
	disabled bool
}

// New creates a spinner showing msg. When disabled is true (non-TTY stdout
// or --quiet), Start/Stop/UpdateMessage are all no-ops.
func New(msg string, disabled bool) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + msg
	_ = s.Color("cyan", "bold")
	return &Spinner{s: s, disabled: disabled}
}

// Start begins the spinner animation, unless disabled.
func (sp *Spinner) Start() {
	if !sp.disabled {
		sp.s.Start()
	}
}

// Stop halts the spinner animation.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// UpdateMessage replaces the spinner's suffix text.
func (sp *Spinner) UpdateMessage(format string, args ...interface{}) {
	sp.s.Suffix = " " + fmt.Sprintf(format, args...)
}
