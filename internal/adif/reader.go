// Package adif decodes the ADIF contact-interchange format into raw records.
package adif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adifpush/adifpush/internal/qso"
)

// NotFoundError reports a log file path that does not exist. It is
// returned by Open before any record is produced.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("log file not found: %s", e.Path)
}

// Reader yields the records of one ADIF file in order, single pass. A
// second pass requires a new Open.
type Reader struct {
	f       *os.File
	scanner *bufio.Scanner
	header  bool // still inside the pre-<EOH> header
}

// Open opens an ADIF log file for reading. A missing file is reported as
// *NotFoundError; any record-level problem is deferred to Next.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{f: f, scanner: scanner, header: true}, nil
}

// Next returns the next record in the file. It returns io.EOF when the
// file is exhausted. A record that cannot be decoded is reported as a
// *qso.MalformedError; subsequent calls continue with the following entry.
func (r *Reader) Next() (qso.Raw, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Everything through <EOH> is header text, not records. The
		// header may span several lines (free text plus <adif_ver>/
		// <programid> tags), so only an actual record line ends header
		// mode early: some writers omit the header entirely.
		if r.header {
			if idx := indexTagFold(line, "<eoh>"); idx >= 0 {
				r.header = false
				line = strings.TrimSpace(line[idx+len("<eoh>"):])
				if line == "" {
					continue
				}
			} else if indexTagFold(line, "<call:") >= 0 || indexTagFold(line, "<eor>") >= 0 {
				// Headerless file; this line is already a record.
				r.header = false
			} else {
				continue
			}
		}

		return ParseString(line)
	}
	if err := r.scanner.Err(); err != nil {
		return qso.Raw{}, fmt.Errorf("failed to read log file: %w", err)
	}
	return qso.Raw{}, io.EOF
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ParseString decodes a single ADIF record from text. Fields are
// length-prefixed tags of the form <name:len>value, with an optional type
// suffix <name:len:T>. Tag names are case-insensitive and stored lowercase.
func ParseString(text string) (qso.Raw, error) {
	fields := make(map[string]string)
	rest := text

	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '>')
		if end < 0 {
			return qso.Raw{}, &qso.MalformedError{Field: "record", Reason: "unterminated tag"}
		}
		tag := rest[open+1 : open+end]
		rest = rest[open+end+1:]

		name, length, ok := splitTag(tag)
		if !ok {
			// <EOR>, <EOH> and anything without a length carry no value
			continue
		}
		if length > len(rest) {
			return qso.Raw{}, &qso.MalformedError{Field: name, Reason: "value shorter than declared length"}
		}
		fields[name] = rest[:length]
		rest = rest[length:]
	}

	if len(fields) == 0 {
		return qso.Raw{}, &qso.MalformedError{Field: "record", Reason: "no fields"}
	}
	return qso.Raw{Fields: fields, Text: strings.TrimSpace(text)}, nil
}

// splitTag splits "name:len" or "name:len:type" and reports whether the
// tag carries a value length.
func splitTag(tag string) (name string, length int, ok bool) {
	parts := strings.SplitN(tag, ":", 3)
	if len(parts) < 2 {
		return "", 0, false
	}
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if name == "" {
		return "", 0, false
	}
	n := 0
	for _, c := range strings.TrimSpace(parts[1]) {
		if c < '0' || c > '9' {
			return "", 0, false
		}
		n = n*10 + int(c-'0')
	}
	return name, n, true
}

// indexTagFold finds a tag case-insensitively.
func indexTagFold(s, tag string) int {
	return strings.Index(strings.ToLower(s), tag)
}
