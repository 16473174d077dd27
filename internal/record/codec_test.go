package record

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMarshalExactBytes(t *testing.T) {
	tc := &TestCase{
		Argv:       []string{"-x"},
		Stdin:      []byte("in"),
		ReturnCode: 0,
		Stdout:     []byte("42\n"),
		Stderr:     nil,
	}
	want := ":i argc 1\n" +
		":b arg0 2\n-x\n" +
		":b stdin 2\nin\n" +
		":i returncode 0\n" +
		":b stdout 3\n42\n\n" +
		":b stderr 0\n\n"
	if got := string(Marshal(tc)); got != want {
		t.Fatalf("Marshal mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		tc   *TestCase
	}{
		{"empty", Empty()},
		{"nil slices", &TestCase{}},
		{"pass scenario", &TestCase{Stdout: []byte("42\n")}},
		{"argv", &TestCase{Argv: []string{"--flag", "", "with space", "ünïcode"}}},
		{"negative returncode", &TestCase{ReturnCode: -9, Stderr: []byte("killed\n")}},
		{"blobs containing headers", &TestCase{
			Stdin:  []byte(":i argc 5\n"),
			Stdout: []byte("\n\n\n"),
			Stderr: []byte(":b stderr 3\nabc\n"),
		}},
		{"binary", &TestCase{Stdout: []byte{0, 1, 2, 0xff, '\n', 0xfe}, ReturnCode: 255}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			data := Marshal(tt.tc)
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.tc, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
			if again := Marshal(got); !bytes.Equal(again, data) {
				t.Fatalf("re-encoding differs:\nfirst  %q\nsecond %q", data, again)
			}
		})
	}
}

func TestMarshalDeterministic(t *testing.T) {
	tc := &TestCase{Argv: []string{"a", "b"}, Stdin: []byte("x"), ReturnCode: 3, Stdout: []byte("o"), Stderr: []byte("e")}
	first := Marshal(tc)
	second := Marshal(&TestCase{Argv: []string{"a", "b"}, Stdin: []byte("x"), ReturnCode: 3, Stdout: []byte("o"), Stderr: []byte("e")})
	if !bytes.Equal(first, second) {
		t.Fatalf("encoding is not deterministic:\n%q\n%q", first, second)
	}
}

func TestDecodedBlobsAreNonNil(t *testing.T) {
	got, err := Unmarshal(Marshal(&TestCase{}))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Argv == nil || got.Stdin == nil || got.Stdout == nil || got.Stderr == nil {
		t.Fatalf("decoded record has nil fields: %+v", got)
	}
}

func TestDecodeStrict(t *testing.T) {
	valid := ":i argc 0\n:b stdin 0\n\n:i returncode 0\n:b stdout 0\n\n:b stderr 0\n\n"
	if _, err := Unmarshal([]byte(valid)); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := []struct {
		name  string
		data  string
		field string
	}{
		{"empty input", "", fieldArgc},
		{"argc as blob", ":b argc 0\n\n", fieldArgc},
		{"wrong first field", ":i argv 0\n", fieldArgc},
		{"negative argc", ":i argc -1\n", fieldArgc},
		{"non-numeric argc", ":i argc x\n", fieldArgc},
		{"missing arg", ":i argc 1\n:b stdin 0\n\n", "arg0"},
		{"fields out of order", ":i argc 0\n:i returncode 0\n", fieldStdin},
		{"returncode as blob", ":i argc 0\n:b stdin 0\n\n:b returncode 0\n\n", fieldReturnCode},
		{"truncated blob", ":i argc 0\n:b stdin 5\nab", fieldStdin},
		{"missing terminator", ":i argc 0\n:b stdin 2\nab", fieldStdin},
		{"bad terminator", ":i argc 0\n:b stdin 2\nabX", fieldStdin},
		{"negative blob length", ":i argc 0\n:b stdin -2\n", fieldStdin},
		{"header without newline", ":i argc 0", fieldArgc},
		{"missing stderr", ":i argc 0\n:b stdin 0\n\n:i returncode 0\n:b stdout 0\n\n", fieldStderr},
		{"trailing data", valid + "x", fieldStderr},
		{"leading zero in blob length", ":i argc 0\n:b stdin 02\nab\n", fieldStdin},
		{"plus sign in argc", ":i argc +0\n", fieldArgc},
		{"negative zero argc", ":i argc -0\n", fieldArgc},
		{"plus sign in returncode", ":i argc 0\n:b stdin 0\n\n:i returncode +7\n", fieldReturnCode},
		{"negative zero returncode", ":i argc 0\n:b stdin 0\n\n:i returncode -0\n", fieldReturnCode},
		{"leading zero returncode", ":i argc 0\n:b stdin 0\n\n:i returncode 007\n", fieldReturnCode},
		{"empty number", ":i argc \n", fieldArgc},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if err == nil {
				t.Fatalf("expected decode error")
			}
			var m *MalformedError
			if !errors.As(err, &m) {
				t.Fatalf("error %v is not *MalformedError", err)
			}
			if m.Field != tt.field {
				t.Fatalf("MalformedError.Field = %q, want %q", m.Field, tt.field)
			}
		})
	}
}

func TestDecodeAcceptsOnlyReencodableNumbers(t *testing.T) {
	for _, data := range []string{
		":i argc 0\n:b stdin 0\n\n:i returncode -7\n:b stdout 10\n0123456789\n:b stderr 0\n\n",
		":i argc 1\n:b arg0 0\n\n:b stdin 0\n\n:i returncode 120\n:b stdout 0\n\n:b stderr 0\n\n",
	} {
		tc, err := Unmarshal([]byte(data))
		if err != nil {
			t.Fatalf("Unmarshal(%q): %v", data, err)
		}
		if again := string(Marshal(tc)); again != data {
			t.Fatalf("re-encoding changed the record:\nwant %q\ngot  %q", data, again)
		}
	}
}

func TestDecodeOffsetPointsAtField(t *testing.T) {
	data := ":i argc 0\n:b stdin 0\n\n:b returncode 0\n\n"
	_, err := Unmarshal([]byte(data))
	var m *MalformedError
	if !errors.As(err, &m) {
		t.Fatalf("expected *MalformedError, got %v", err)
	}
	if want := int64(len(":i argc 0\n:b stdin 0\n\n")); m.Offset != want {
		t.Fatalf("Offset = %d, want %d", m.Offset, want)
	}
}
