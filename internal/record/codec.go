package record

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Field type tags.
const (
	tagInt  = ":i "
	tagBlob = ":b "
)

// Field names in the fixed on-disk order.
const (
	fieldArgc       = "argc"
	fieldStdin      = "stdin"
	fieldReturnCode = "returncode"
	fieldStdout     = "stdout"
	fieldStderr     = "stderr"
)

func argField(i int) string {
	return "arg" + strconv.Itoa(i)
}

// Marshal encodes tc into its binary form.
func Marshal(tc *TestCase) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail.
	_ = Encode(&buf, tc) //nolint:errcheck
	return buf.Bytes()
}

// Encode writes tc to w. The output depends only on the record content.
func Encode(w io.Writer, tc *TestCase) error {
	if tc == nil {
		return fmt.Errorf("record: nil test case")
	}
	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.int(fieldArgc, int64(len(tc.Argv)))
	for i, arg := range tc.Argv {
		e.blob(argField(i), []byte(arg))
	}
	e.blob(fieldStdin, tc.Stdin)
	e.int(fieldReturnCode, int64(tc.ReturnCode))
	e.blob(fieldStdout, tc.Stdout)
	e.blob(fieldStderr, tc.Stderr)
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w   *bufio.Writer
	err error
	num []byte
}

func (e *encoder) header(tag, name string, n int64) {
	if e.err != nil {
		return
	}
	e.num = strconv.AppendInt(e.num[:0], n, 10)
	if _, err := e.w.WriteString(tag); err != nil {
		e.err = err
		return
	}
	if _, err := e.w.WriteString(name); err != nil {
		e.err = err
		return
	}
	if err := e.w.WriteByte(' '); err != nil {
		e.err = err
		return
	}
	if _, err := e.w.Write(e.num); err != nil {
		e.err = err
		return
	}
	e.err = e.w.WriteByte('\n')
}

func (e *encoder) int(name string, v int64) {
	e.header(tagInt, name, v)
}

func (e *encoder) blob(name string, data []byte) {
	e.header(tagBlob, name, int64(len(data)))
	if e.err != nil {
		return
	}
	if _, err := e.w.Write(data); err != nil {
		e.err = err
		return
	}
	e.err = e.w.WriteByte('\n')
}

// Unmarshal decodes a record held in memory.
func Unmarshal(data []byte) (*TestCase, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one record from r. Every field must appear in schema order
// with the expected tag and name, and nothing may follow the last field.
func Decode(r io.Reader) (*TestCase, error) {
	d := decoder{r: bufio.NewReader(r)}

	argc, err := d.count(fieldArgc)
	if err != nil {
		return nil, err
	}
	tc := &TestCase{Argv: make([]string, 0, min(argc, 64))}
	for i := 0; i < argc; i++ {
		arg, err := d.blob(argField(i))
		if err != nil {
			return nil, err
		}
		tc.Argv = append(tc.Argv, string(arg))
	}
	if tc.Stdin, err = d.blob(fieldStdin); err != nil {
		return nil, err
	}
	rc, err := d.int(fieldReturnCode, true)
	if err != nil {
		return nil, err
	}
	if tc.ReturnCode, err = safecast.Conv[int](rc); err != nil {
		return nil, d.malformed(fieldReturnCode, "value out of range")
	}
	if tc.Stdout, err = d.blob(fieldStdout); err != nil {
		return nil, err
	}
	if tc.Stderr, err = d.blob(fieldStderr); err != nil {
		return nil, err
	}
	if _, err := d.r.ReadByte(); err == nil {
		return nil, d.malformed(fieldStderr, "trailing data after last field")
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return tc, nil
}

type decoder struct {
	r   *bufio.Reader
	off int64
}

func (d *decoder) malformed(field, reason string) *MalformedError {
	return &MalformedError{Field: field, Offset: d.off, Reason: reason}
}

// header consumes one "<tag><name> <N>\n" line and returns the raw number.
func (d *decoder) header(tag, name string) (string, error) {
	line, err := d.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				return "", d.malformed(name, "unexpected end of record")
			}
			return "", d.malformed(name, "header line is not newline-terminated")
		}
		return "", err
	}
	prefix := tag + name + " "
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return "", d.malformed(name, fmt.Sprintf("expected %q header, got %q", prefix, truncateLine(line)))
	}
	num := string(line[len(prefix) : len(line)-1])
	d.off += int64(len(line))
	return num, nil
}

// int reads an integer field. Only a negative sign is allowed, and only when
// signed is set.
func (d *decoder) int(name string, signed bool) (int64, error) {
	num, err := d.header(tagInt, name)
	if err != nil {
		return 0, err
	}
	if !canonicalNumber(num, signed) {
		return 0, d.malformed(name, fmt.Sprintf("invalid integer %q", num))
	}
	v, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, d.malformed(name, fmt.Sprintf("invalid integer %q", num))
	}
	return v, nil
}

func (d *decoder) count(name string) (int, error) {
	v, err := d.int(name, false)
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int](v)
	if err != nil || n < 0 {
		return 0, d.malformed(name, fmt.Sprintf("invalid count %d", v))
	}
	return n, nil
}

func (d *decoder) blob(name string) ([]byte, error) {
	num, err := d.header(tagBlob, name)
	if err != nil {
		return nil, err
	}
	if !canonicalNumber(num, false) {
		return nil, d.malformed(name, fmt.Sprintf("invalid blob length %q", num))
	}
	size, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return nil, d.malformed(name, fmt.Sprintf("invalid blob length %q", num))
	}
	n, err := safecast.Conv[int64](size)
	if err != nil {
		return nil, d.malformed(name, fmt.Sprintf("blob length %d out of range", size))
	}
	// CopyN grows the buffer as data arrives so a corrupt length cannot
	// force a huge up-front allocation.
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, d.r, n)
	d.off += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d.malformed(name, fmt.Sprintf("truncated blob: want %d bytes, got %d", n, copied))
		}
		return nil, err
	}
	term, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d.malformed(name, "missing blob terminator")
		}
		return nil, err
	}
	if term != '\n' {
		return nil, d.malformed(name, fmt.Sprintf("blob terminator is %q, want '\\n'", term))
	}
	d.off++
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// canonicalNumber reports whether num is spelled the way the encoder writes
// it: "0" or a digit string without leading zeros, optionally negative.
// Anything else would not survive a decode/encode round trip.
func canonicalNumber(num string, signed bool) bool {
	if signed && strings.HasPrefix(num, "-") {
		num = num[1:]
		if num == "0" {
			return false
		}
	}
	if num == "" || (num[0] == '0' && len(num) > 1) {
		return false
	}
	for i := 0; i < len(num); i++ {
		if num[i] < '0' || num[i] > '9' {
			return false
		}
	}
	return true
}

func truncateLine(line []byte) string {
	const maxShown = 40
	line = bytes.TrimSuffix(line, []byte("\n"))
	if len(line) > maxShown {
		return string(line[:maxShown]) + "..."
	}
	return string(line)
}
