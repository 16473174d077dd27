package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"yotest/internal/runner"
)

func sampleStats() *runner.RunStats {
	return &runner.RunStats{
		Failed:      1,
		Ignored:     1,
		Passed:      1,
		FailedFiles: []string{"Example/b.yt"},
		Results: []runner.CaseResult{
			{Fixture: "Example/a.yt", Subcommand: "lex", Outcome: runner.OutcomePassed, Elapsed: 2 * time.Millisecond},
			{Fixture: "Example/b.yt", Subcommand: "lex", Outcome: runner.OutcomeFailed, ExitCode: 1},
			{Fixture: "Example/c.yt", Subcommand: "lex", Outcome: runner.OutcomeIgnored},
		},
	}
}

func TestCanonicalReport(t *testing.T) {
	rep := New("0.1.0", "./Example/", sampleStats())
	first, err := rep.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	second, err := New("0.1.0", "./Example/", sampleStats()).Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("canonical output differs between identical runs")
	}
	// Canonical JSON sorts keys: "cases" is the first member.
	if !bytes.HasPrefix(first, []byte(`{"cases":3,"failed":1,"failed_files":["Example/b.yt"]`)) {
		t.Fatalf("unexpected canonical prefix: %s", first)
	}

	var decoded Report
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(rep, &decoded); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := New("dev", "x", runner.NewRunStats()).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := `{"cases":0,"failed":0,"failed_files":[],"ignored":0,"passed":0,"results":[],"target":"x","tool":"yotest","version":"dev"}` + "\n"
	if string(data) != want {
		t.Fatalf("report = %s\nwant     %s", data, want)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheDir: %v", err)
	}
	project := t.TempDir()

	if _, ok, err := cache.Get(project); ok || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}

	fx := filepath.Join(project, "a.yt")
	if err := os.WriteFile(fx, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	run := &LastRun{
		Root:        project,
		Target:      "./Example/",
		FailedFiles: []string{fx, fx, filepath.Join(project, "gone.yt")},
		Finished:    time.Unix(1700000000, 0).UTC(),
	}
	if err := cache.Put(run); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(project)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Target != run.Target || !got.Finished.Equal(run.Finished) {
		t.Fatalf("Get = %+v", got)
	}
	if diff := cmp.Diff([]string{fx}, got.Failed()); diff != "" {
		t.Fatalf("Failed mismatch (-want +got):\n%s", diff)
	}
}
