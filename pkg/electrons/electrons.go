// Package electrons derives the NELECT electron-count parameter for a
// job, either from atomic composition and per-species valence data or
// from the last value a prior run reported in its output log.
package electrons

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zacherywillard/vasp-helper/pkg/poscar"
	"github.com/zacherywillard/vasp-helper/pkg/potcar"
)

// ErrValenceMismatch indicates that the number of valence entries does
// not equal the number of species atom counts. Order-for-order
// correspondence between the two lists is trusted, so a count mismatch
// is the only cross-check available and is always fatal rather than a
// guess.
var ErrValenceMismatch = errors.New("valence entry count does not match species count")

// ErrNoElectronCount indicates an output log without any reported
// electron-count line.
var ErrNoElectronCount = errors.New("no electron count found in output log")

// FromComposition computes the neutral electron count as the sum over
// species of atom count times valence. valencePath is a POTCAR-style
// valence reference, structurePath a POSCAR-style structure file.
func FromComposition(valencePath, structurePath string) (float64, error) {
	counts, err := poscar.ReadCounts(structurePath)
	if err != nil {
		return 0, err
	}
	zvals, err := potcar.ReadValences(valencePath)
	if err != nil {
		return 0, err
	}
	if len(zvals) != len(counts) {
		return 0, fmt.Errorf("%w: %d valence entries for %d species counts",
			ErrValenceMismatch, len(zvals), len(counts))
	}
	var total float64
	for i, n := range counts {
		total += float64(n) * zvals[i]
	}
	return total, nil
}

// FromOutputLog scans a prior run's output log (OUTCAR) for the last
// reported "NELECT = <value>" line and returns that value. The last
// occurrence is authoritative; earlier ones belong to superseded
// electronic steps.
func FromOutputLog(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open output log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		last  float64
		found bool
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		idx := strings.Index(line, "NELECT")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("NELECT"):]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			continue
		}
		fields := strings.Fields(rest[eq+1:])
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		last = v
		found = true
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to read output log: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%s: %w", path, ErrNoElectronCount)
	}
	return last, nil
}
