// Package report renders outcome events and run summaries as text.
//
// The engine never branches on where report output goes; destination and
// verbosity are capabilities of the sink alone. Teeing to a log file is a
// matter of handing the sink an io.MultiWriter.
package report

import (
	"fmt"
	"io"

	"fixity/internal/model"
)

// Text renders events as human-readable lines.
//
// Non-anomalous confirmations (ok, updated, rehashed) are suppressed
// unless verbose. Anomalies are always rendered, marked with "!!" and the
// record key so an operator can copy the key straight into an override
// list. The engine serializes Report calls; Text adds no locking.
type Text struct {
	w       io.Writer
	verbose bool
}

// NewText creates a text sink writing to w.
func NewText(w io.Writer, verbose bool) *Text {
	return &Text{w: w, verbose: verbose}
}

// Report renders one event.
func (t *Text) Report(ev model.Event) {
	if !t.verbose && quiet(ev.Kind) {
		return
	}

	switch {
	case ev.Kind == model.KindSkippedUnreadable:
		fmt.Fprintf(t.w, "!! %-24s %s (%v)\n", ev.Kind, ev.Key, ev.Err)
	case ev.Anomaly():
		fmt.Fprintf(t.w, "!! %-24s %s\n", ev.Kind, ev.Key)
	default:
		fmt.Fprintf(t.w, "   %-24s %s\n", ev.Kind, ev.Key)
	}
}

// quiet lists the kinds suppressed when verbosity is disabled: routine
// confirmations that would drown a 120k-file run's report.
func quiet(kind model.EventKind) bool {
	switch kind {
	case model.KindOk, model.KindUpdatedAllowed, model.KindRehashed:
		return true
	default:
		return false
	}
}
