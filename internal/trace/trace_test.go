package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		lvl, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if lvl.String() != name {
			t.Fatalf("ParseLevel(%q).String() = %q", name, lvl.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeFixture, true},
		{LevelPhase, ScopeCase, false},
		{LevelDetail, ScopeCase, true},
		{LevelDetail, ScopeProcess, false},
		{LevelDebug, ScopeProcess, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestSpansNestThroughContext(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, fixture := Start(ctx, ScopeFixture, "a.yt")
	_, proc := Start(ctx, ScopeProcess, "yot")
	proc.WithExtra("exit", "0").End("")
	fixture.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events, want 4:\n%s", len(lines), buf.String())
	}
	var procBegin struct {
		Kind     string `json:"kind"`
		Scope    string `json:"scope"`
		ParentID uint64 `json:"parent_id"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &procBegin); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if procBegin.Scope != "process" || procBegin.ParentID != fixture.ID() {
		t.Fatalf("process span = %+v, want parent %d", procBegin, fixture.ID())
	}
}

func TestNopSpansAreSafe(t *testing.T) {
	ctx, span := Start(context.Background(), ScopeCase, "lex")
	if span.ID() != 0 || CurrentSpan(ctx) != 0 {
		t.Fatalf("nop span should have no id")
	}
	if d := span.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("nop End returned %v", d)
	}
}

func TestLevelFiltersText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(tr, ScopeCase, "lex", 0).End("")
	if buf.Len() != 0 {
		t.Fatalf("case span emitted at phase level: %q", buf.String())
	}
	Begin(tr, ScopeFixture, "a.yt", 0).End("done")
	if !strings.Contains(buf.String(), "fixture:a.yt (done)") {
		t.Fatalf("missing fixture end line: %q", buf.String())
	}
}

func TestHeartbeatStops(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	h := StartHeartbeat(tr, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	h.Stop()
	if !strings.Contains(buf.String(), "heartbeat") {
		t.Fatalf("no heartbeat emitted")
	}
}

func TestPointRendersDetail(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopeDriver, "build", 0)
	Point(tr, ScopeDriver, "build-exit", "3", span.ID())
	Point(tr, ScopeCase, "hidden", "", span.ID())
	span.End("")
	if !strings.Contains(buf.String(), "• driver:build-exit (3)") {
		t.Fatalf("missing point line:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("case point emitted at phase level:\n%s", buf.String())
	}
}
