// Package report persists the outcome of a run: a canonical JSON report for
// CI artifacts and a small on-disk cache of the last run's failures.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"yotest/internal/runner"
)

// Report is the JSON document written by `run --report`.
type Report struct {
	Tool        string       `json:"tool"`
	Version     string       `json:"version"`
	Target      string       `json:"target"`
	Failed      int          `json:"failed"`
	Ignored     int          `json:"ignored"`
	Passed      int          `json:"passed"`
	Cases       int          `json:"cases"`
	FailedFiles []string     `json:"failed_files"`
	Results     []CaseReport `json:"results"`
}

// CaseReport is one evaluation in the report.
type CaseReport struct {
	Fixture    string  `json:"fixture"`
	Subcommand string  `json:"subcommand"`
	Outcome    string  `json:"outcome"`
	ExitCode   int     `json:"exit_code"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// New builds a report from run statistics.
func New(version, target string, stats *runner.RunStats) *Report {
	r := &Report{
		Tool:        "yotest",
		Version:     version,
		Target:      target,
		Failed:      stats.Failed,
		Ignored:     stats.Ignored,
		Passed:      stats.Passed,
		Cases:       stats.Cases(),
		FailedFiles: append([]string{}, stats.FailedFiles...),
		Results:     make([]CaseReport, 0, len(stats.Results)),
	}
	for _, res := range stats.Results {
		r.Results = append(r.Results, CaseReport{
			Fixture:    res.Fixture,
			Subcommand: res.Subcommand,
			Outcome:    string(res.Outcome),
			ExitCode:   res.ExitCode,
			ElapsedMS:  float64(res.Elapsed) / float64(time.Millisecond),
		})
	}
	return r
}

// Canonical renders the report in RFC 8785 canonical form, so two runs with
// the same outcome produce byte-identical files.
func (r *Report) Canonical() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return append(out, '\n'), nil
}

// WriteFile writes the canonical report to path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Canonical()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
