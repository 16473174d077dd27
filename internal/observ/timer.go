// Package observ collects wall-clock timings for the --timings report.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one named timing bucket. Buckets fed through Add accumulate
// across calls and count how many samples they received.
type Phase struct {
	Name    string
	Start   time.Time
	Dur     time.Duration
	Samples int
	Note    string
}

// Timer tracks driver phases (compiler build, traversal) and per-subcommand
// totals of child-process time.
type Timer struct {
	phases []Phase
	index  map[string]int
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), index: make(map[string]int)}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Samples = 1
	p.Note = note
}

// Add accumulates d into the bucket called name, creating it on first use.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	idx, ok := t.index[name]
	if !ok {
		t.phases = append(t.phases, Phase{Name: name})
		idx = len(t.phases) - 1
		t.index[name] = idx
	}
	t.phases[idx].Dur += d
	t.phases[idx].Samples++
}

// Phases returns a copy of the recorded phases in creation order.
func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// Summary returns a human-readable table of all phases.
func (t *Timer) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range t.Phases() {
		fmt.Fprintf(&b, "  %-20s %9.2f ms", p.Name, toMillis(p.Dur))
		if p.Samples > 1 {
			fmt.Fprintf(&b, "  (%d runs, %.2f ms avg)", p.Samples, toMillis(p.Dur)/float64(p.Samples))
		}
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
