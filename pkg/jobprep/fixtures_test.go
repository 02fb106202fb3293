package jobprep

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes content under dir, creating parents as needed.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// structureContent renders a minimal POSCAR with the given species and
// counts lines.
func structureContent(species, counts string) string {
	return fmt.Sprintf("defect cell\n1.0\n a\n b\n c\n%s\n%s\nDirect\n 0 0 0\n", species, counts)
}

// valenceContent renders a minimal POTCAR with one ZVAL block per
// value.
func valenceContent(zvals ...float64) string {
	var s string
	for _, z := range zvals {
		s += fmt.Sprintf("   TITEL  = PAW_PBE X\n   POMASS =   1.000; ZVAL   =   %.3f    mass and valenz\n", z)
	}
	return s
}

// baselineDir materializes a complete neutral reference directory
// under root and returns its path.
func baselineDir(t *testing.T, root, name, incarContent string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFile(t, dir, "POSCAR", structureContent("   Ti   O", "     8     7"))
	writeFile(t, dir, "POTCAR", valenceContent(4.0, 6.0))
	writeFile(t, dir, "INCAR", incarContent)
	writeFile(t, dir, "KPOINTS", "gamma\n0\nGamma\n1 1 1\n")
	writeFile(t, dir, "submit.sh", "#!/bin/sh\nvasp_std\n")
	return dir
}
