package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerAccumulates(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("build")
	tm.End(idx, "zig build")
	tm.Add("lex", 2*time.Millisecond)
	tm.Add("lex", 4*time.Millisecond)
	tm.Add("parse", time.Millisecond)

	phases := tm.Phases()
	if len(phases) != 3 {
		t.Fatalf("got %d phases, want 3", len(phases))
	}
	if phases[1].Name != "lex" || phases[1].Dur != 6*time.Millisecond || phases[1].Samples != 2 {
		t.Fatalf("lex bucket = %+v", phases[1])
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "(2 runs, 3.00 ms avg)") || !strings.Contains(sum, "// zig build") {
		t.Fatalf("unexpected summary:\n%s", sum)
	}
}

func TestNilTimerIsSafe(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Add("y", time.Second)
	if tm.Phases() != nil {
		t.Fatalf("nil timer returned phases")
	}
}
