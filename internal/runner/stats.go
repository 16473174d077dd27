package runner

import (
	"fmt"
	"io"
	"time"
)

// Outcome classifies a single evaluation.
type Outcome string

const (
	// OutcomePassed means the recorded triple matched.
	OutcomePassed Outcome = "passed"
	// OutcomeFailed means the compiler diverged from the record.
	OutcomeFailed Outcome = "failed"
	// OutcomeIgnored means no record exists and the fixture compiled.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeBuildFailed means no record exists and the fixture did not compile.
	OutcomeBuildFailed Outcome = "build-failed"
)

// Failed reports whether the outcome counts as a failure.
func (o Outcome) Failed() bool {
	return o == OutcomeFailed || o == OutcomeBuildFailed
}

// CaseResult is one fixture evaluated under one subcommand.
type CaseResult struct {
	Fixture    string
	Subcommand string
	Outcome    Outcome
	ExitCode   int
	Elapsed    time.Duration
}

// RunStats accumulates the results of one top-level run. Create one per run
// with NewRunStats and pass it to every evaluation of that run.
type RunStats struct {
	Failed      int
	Ignored     int
	Passed      int
	FailedFiles []string
	Results     []CaseResult
}

// NewRunStats returns an empty accumulator.
func NewRunStats() *RunStats {
	return &RunStats{FailedFiles: []string{}}
}

// Cases returns the number of evaluations recorded.
func (s *RunStats) Cases() int {
	return len(s.Results)
}

// OK reports whether the run had no failures.
func (s *RunStats) OK() bool {
	return s.Failed == 0
}

func (s *RunStats) record(res CaseResult) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case OutcomePassed:
		s.Passed++
	case OutcomeFailed:
		s.Failed++
	case OutcomeIgnored:
		s.Ignored++
	case OutcomeBuildFailed:
		s.Failed++
		s.Ignored++
	}
	if res.Outcome.Failed() {
		s.FailedFiles = append(s.FailedFiles, res.Fixture)
	}
}

// WriteSummary prints the end-of-run report: the failed/ignored counts and,
// when something failed, the failed fixtures in discovery order.
func WriteSummary(w io.Writer, s *RunStats) error {
	if _, err := fmt.Fprintf(w, "\nFailed: %d, Ignored: %d\n", s.Failed, s.Ignored); err != nil {
		return err
	}
	if s.Failed == 0 {
		return nil
	}
	if _, err := fmt.Fprint(w, "Failed files:\n\n"); err != nil {
		return err
	}
	for _, path := range s.FailedFiles {
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
	}
	return nil
}
