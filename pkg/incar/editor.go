// Package incar reads and edits VASP INCAR-style configuration files.
//
// An INCAR file is an ordered sequence of lines. A subset are
// KEY = VALUE assignments; the rest are comments or blank lines and are
// passed through untouched. Edits preserve line positions: an existing
// key is rewritten in place, a missing key is appended. The first line
// matching a key is authoritative; later duplicates are inert but kept
// verbatim.
//
// All mutating operations rewrite the file atomically (write to a temp
// file in the same directory, then rename) so a crash never leaves a
// half-written INCAR behind.
package incar

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// lineKind distinguishes assignment lines from passthrough content.
type lineKind int

const (
	kindPassthrough lineKind = iota
	kindAssignment
)

// line is one physical line of the file. Passthrough lines keep only
// raw; assignment lines additionally carry the parsed key.
type line struct {
	kind lineKind
	raw  string
	key  string // canonical (lowercased) key, assignment lines only
}

// document is the parsed, ordered representation of an INCAR file.
type document struct {
	lines []line
}

// stripComment removes a trailing # or ! comment from a line.
func stripComment(s string) string {
	if i := strings.IndexAny(s, "#!"); i >= 0 {
		return s[:i]
	}
	return s
}

// parseLine classifies a single line. A line is an assignment when,
// after stripping any trailing comment and leading whitespace, it has
// the shape KEY = VALUE with a non-empty key.
func parseLine(raw string) line {
	code := strings.TrimLeft(stripComment(raw), " \t")
	eq := strings.Index(code, "=")
	if eq <= 0 {
		return line{kind: kindPassthrough, raw: raw}
	}
	key := strings.TrimSpace(code[:eq])
	if key == "" || strings.ContainsAny(key, " \t") {
		return line{kind: kindPassthrough, raw: raw}
	}
	return line{kind: kindAssignment, raw: raw, key: strings.ToLower(key)}
}

// parse reads the file at path into a document.
func parse(path string) (*document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc := &document{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		doc.lines = append(doc.lines, parseLine(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return doc, nil
}

// find returns the index of the first assignment line for key, or -1.
func (d *document) find(key string) int {
	want := strings.ToLower(strings.TrimSpace(key))
	for i, ln := range d.lines {
		if ln.kind == kindAssignment && ln.key == want {
			return i
		}
	}
	return -1
}

// value extracts the assignment value from the line at index i,
// with any trailing comment stripped and whitespace trimmed.
func (d *document) value(i int) string {
	code := stripComment(d.lines[i].raw)
	eq := strings.Index(code, "=")
	return strings.TrimSpace(code[eq+1:])
}

// write serializes the document back to path atomically.
func (d *document) write(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".incar-edit-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	w := bufio.NewWriter(tmp)
	for _, ln := range d.lines {
		if _, err := w.WriteString(ln.raw); err != nil {
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write temp file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// HasKey reports whether the file at path contains an assignment for
// key. Matching ignores leading whitespace and key case; trailing
// comments are ignored when testing.
func HasKey(key, path string) (bool, error) {
	doc, err := parse(path)
	if err != nil {
		return false, err
	}
	return doc.find(key) >= 0, nil
}

// GetValue returns the value of the first assignment for key. The
// second return is false when the key is absent.
func GetValue(key, path string) (string, bool, error) {
	doc, err := parse(path)
	if err != nil {
		return "", false, err
	}
	i := doc.find(key)
	if i < 0 {
		return "", false, nil
	}
	return doc.value(i), true, nil
}

// SetOrAppend rewrites the first assignment for key in place as
// "KEY = VALUE", or appends a new assignment (preceded by a blank
// line) when the key is absent. All other lines are untouched.
func SetOrAppend(key, value, path string) error {
	doc, err := parse(path)
	if err != nil {
		return err
	}
	rendered := fmt.Sprintf("%s = %s", key, value)
	if i := doc.find(key); i >= 0 {
		doc.lines[i] = parseLine(rendered)
	} else {
		doc.lines = append(doc.lines,
			line{kind: kindPassthrough, raw: ""},
			parseLine(rendered))
	}
	return doc.write(path)
}

// DeleteKey removes the first assignment line for key entirely. A
// missing key is a no-op and not an error.
func DeleteKey(key, path string) error {
	doc, err := parse(path)
	if err != nil {
		return err
	}
	i := doc.find(key)
	if i < 0 {
		return nil
	}
	doc.lines = append(doc.lines[:i], doc.lines[i+1:]...)
	return doc.write(path)
}
