// Package poscar reads VASP structure files (POSCAR/CONTCAR).
//
// Only the fixed header layout is interpreted: line 6 lists the species
// labels and line 7 the per-species atom counts, in the same order. The
// pair of those two verbatim lines forms a structural signature used to
// decide whether two structures describe the same atomic composition.
package poscar

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrTruncated indicates a structure file with fewer than 7 lines.
var ErrTruncated = errors.New("structure file has fewer than 7 lines")

// Signature is the verbatim (species line, counts line) pair of a
// structure file. Two structures are compatible iff both lines are
// byte-identical.
type Signature struct {
	Species string
	Counts  string
}

// Compatible reports whether two signatures describe the same atomic
// composition in the same order.
func Compatible(a, b Signature) bool {
	return a.Species == b.Species && a.Counts == b.Counts
}

// header reads the first 7 lines of the file at path.
func header(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open structure file: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines := make([]string, 0, 7)
	sc := bufio.NewScanner(f)
	for len(lines) < 7 && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read structure file: %w", err)
	}
	if len(lines) < 7 {
		return nil, fmt.Errorf("%s: %w", path, ErrTruncated)
	}
	return lines, nil
}

// ReadSignature extracts the structural signature of the file at path.
func ReadSignature(path string) (Signature, error) {
	lines, err := header(path)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Species: lines[5], Counts: lines[6]}, nil
}

// ReadCounts parses the per-species atom counts from line 7.
func ReadCounts(path string) ([]int, error) {
	lines, err := header(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(lines[6])
	counts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid atom count %q in %s: %w", f, path, err)
		}
		counts = append(counts, n)
	}
	return counts, nil
}
