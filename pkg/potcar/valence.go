// Package potcar extracts per-species valence data from VASP POTCAR
// files.
//
// A POTCAR is a concatenation of pseudopotential blocks, one per
// species, in the order the species appear in the structure file. Each
// block carries a TITEL line naming the dataset and a labeled ZVAL
// field with the reference valence, typically:
//
//	POMASS =  47.880; ZVAL   =  12.000    mass and valenz
//
// Only those two fields are interpreted; everything else in the file is
// skipped.
package potcar

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadValences returns the ZVAL value of every species block in file
// order. The caller is responsible for checking that the number of
// entries matches the species count of the structure it is paired
// with; entry order is trusted to follow structure order and is not
// cross-validated against species labels.
func ReadValences(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open valence file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var zvals []float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "ZVAL") {
			continue
		}
		v, err := parseZVAL(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		zvals = append(zvals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read valence file: %w", err)
	}
	return zvals, nil
}

// parseZVAL extracts the numeric value following "ZVAL =" on a line.
// Fields on POTCAR header lines are separated by semicolons.
func parseZVAL(line string) (float64, error) {
	idx := strings.Index(line, "ZVAL")
	rest := line[idx+len("ZVAL"):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return 0, fmt.Errorf("malformed ZVAL line %q", line)
	}
	rest = rest[eq+1:]
	if semi := strings.Index(rest, ";"); semi >= 0 {
		rest = rest[:semi]
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("malformed ZVAL line %q", line)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed ZVAL line %q: %w", line, err)
	}
	return v, nil
}
