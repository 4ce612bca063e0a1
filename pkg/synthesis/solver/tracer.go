package solver

import (
	"fmt"
	"io"
)

// SearchPosition exposes the scheduler's state at a traced event.
type SearchPosition interface {
	// Goal returns the goal being expanded when the event fired.
	Goal() *Goal
	// Boundary snapshots the open frontier.
	Boundary() []*Goal
}

// Tracer receives search events that produced no progress: an
// expansion all of whose candidates died or were pruned. Tracing is
// observational only.
type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

// LoggingTracer writes a human-readable account of each failed
// expansion to Writer.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nFailed to expand:\n- %s\n", p.Goal())
	fmt.Fprintf(t.Writer, "Boundary:\n")
	for _, g := range p.Boundary() {
		fmt.Fprintf(t.Writer, "- %s\n", g)
	}
}
