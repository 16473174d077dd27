package record

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPath(t *testing.T) {
	cases := []struct {
		fixture string
		sub     string
		want    string
	}{
		{"Example/hello.yt", "lex", "Example/hello.lex.bi"},
		{"Example/hello.yt", "check", "Example/hello.check.bi"},
		{"./a/b.c.yt", "parse", "./a/b.c.parse.bi"},
		{"noext", "lex", "noext.lex.bi"},
	}
	for _, tc := range cases {
		if got := Path(tc.fixture, tc.sub, ".yt"); got != tc.want {
			t.Fatalf("Path(%q, %q) = %q, want %q", tc.fixture, tc.sub, got, tc.want)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.lex.bi"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing = %v, want ErrNotFound", err)
	}
	tc, err := LoadOrEmpty(filepath.Join(t.TempDir(), "absent.lex.bi"))
	if err != nil {
		t.Fatalf("LoadOrEmpty: %v", err)
	}
	if diff := cmp.Diff(Empty(), tc); diff != "" {
		t.Fatalf("LoadOrEmpty mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.check.bi")
	want := &TestCase{Argv: []string{"x"}, Stdin: []byte("in"), ReturnCode: 1, Stdout: []byte("out"), Stderr: []byte("err")}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}

	// Overwrite in place.
	want.ReturnCode = 0
	if err := Save(path, want); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, err = Load(path)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if got.ReturnCode != 0 {
		t.Fatalf("ReturnCode = %d, want 0", got.ReturnCode)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the record file, found %d entries", len(entries))
	}
}

func TestLoadMalformedCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lex.bi")
	if err := os.WriteFile(path, []byte(":i argc nope\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	var m *MalformedError
	if !errors.As(err, &m) {
		t.Fatalf("Load = %v, want *MalformedError", err)
	}
	if m.Path != path {
		t.Fatalf("MalformedError.Path = %q, want %q", m.Path, path)
	}
}
