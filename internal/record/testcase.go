// Package record implements the golden test-case container: the in-memory
// TestCase model and its length-prefixed binary encoding stored next to each
// fixture as `<name>.<subcommand>.bi`.
package record

import "strings"

// RecordExt is the suffix shared by every golden record file.
const RecordExt = ".bi"

// TestCase is one recorded expectation for a fixture and a compiler subcommand.
type TestCase struct {
	Argv       []string
	Stdin      []byte
	ReturnCode int
	Stdout     []byte
	Stderr     []byte
}

// Empty returns the all-empty default record used when none exists on disk.
func Empty() *TestCase {
	return &TestCase{
		Argv:   []string{},
		Stdin:  []byte{},
		Stdout: []byte{},
		Stderr: []byte{},
	}
}

// Path derives the record path for fixturePath and subcommand: the fixture
// extension is stripped and "."+subcommand+".bi" appended. A path without
// the extension keeps its full name as the stem.
func Path(fixturePath, subcommand, fixtureExt string) string {
	stem := strings.TrimSuffix(fixturePath, fixtureExt)
	return stem + "." + subcommand + RecordExt
}
