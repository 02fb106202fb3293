// Package resolve decides which concrete file supplies each required
// job input.
//
// Two rules apply. A file placed in the run's working directory acts as
// a global override for every job in the batch, taking precedence over
// the per-job copy in the source directory. For atomic coordinates, a
// relaxed CONTCAR is preferred over the initial POSCAR within the same
// directory, so variants always start from the most relaxed structure
// available.
package resolve

import (
	"os"
	"path/filepath"
)

// Structure file names in preference order.
const (
	FinalStructure   = "CONTCAR"
	InitialStructure = "POSCAR"
)

// Resolver resolves input files relative to a working directory.
type Resolver struct {
	// WorkDir is the run's working directory holding global overrides.
	WorkDir string
}

// Input returns the path supplying the named input: the override in
// WorkDir when present, otherwise the copy in sourceDir. The second
// return is false when neither exists.
func (r Resolver) Input(name, sourceDir string) (string, bool) {
	override := filepath.Join(r.WorkDir, name)
	if isFile(override) {
		return override, true
	}
	local := filepath.Join(sourceDir, name)
	if isFile(local) {
		return local, true
	}
	return "", false
}

// Structure returns the structure file representing dir's current
// atomic coordinates: a non-empty CONTCAR when present, otherwise
// POSCAR. The second return is false when neither exists.
func (r Resolver) Structure(dir string) (string, bool) {
	final := filepath.Join(dir, FinalStructure)
	if st, err := os.Stat(final); err == nil && !st.IsDir() && st.Size() > 0 {
		return final, true
	}
	initial := filepath.Join(dir, InitialStructure)
	if isFile(initial) {
		return initial, true
	}
	return "", false
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
