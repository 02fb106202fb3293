package electrons

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func structureFile(t *testing.T, dir, countsLine string) string {
	content := fmt.Sprintf("TiO2\n1.0\na\nb\nc\n   Ti   O\n%s\nDirect\n", countsLine)
	return writeFile(t, dir, "POSCAR", content)
}

func valenceFile(t *testing.T, dir string, zvals ...float64) string {
	var content string
	for _, z := range zvals {
		content += fmt.Sprintf("   TITEL  = PAW_PBE X\n   POMASS = 1.0; ZVAL   =  %.3f    mass and valenz\n", z)
	}
	return writeFile(t, dir, "POTCAR", content)
}

func TestFromComposition(t *testing.T) {
	t.Run("sum of counts times valence", func(t *testing.T) {
		dir := t.TempDir()
		pos := structureFile(t, dir, "  8  7")
		pot := valenceFile(t, dir, 4.0, 6.0)

		got, err := FromComposition(pot, pos)
		require.NoError(t, err)
		assert.InDelta(t, 74.0, got, 1e-9)
	})

	t.Run("order independent total", func(t *testing.T) {
		dir := t.TempDir()
		pos := structureFile(t, dir, "  7  8")
		pot := valenceFile(t, dir, 6.0, 4.0)

		got, err := FromComposition(pot, pos)
		require.NoError(t, err)
		assert.InDelta(t, 74.0, got, 1e-9)
	})

	t.Run("entry count mismatch is absent, never a wrong number", func(t *testing.T) {
		dir := t.TempDir()
		pos := structureFile(t, dir, "  8  7  4")
		pot := valenceFile(t, dir, 4.0, 6.0)

		_, err := FromComposition(pot, pos)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValenceMismatch))
	})

	t.Run("missing structure file", func(t *testing.T) {
		dir := t.TempDir()
		pot := valenceFile(t, dir, 4.0)

		_, err := FromComposition(pot, filepath.Join(dir, "POSCAR"))
		require.Error(t, err)
	})

	t.Run("missing valence file", func(t *testing.T) {
		dir := t.TempDir()
		pos := structureFile(t, dir, "  8  7")

		_, err := FromComposition(filepath.Join(dir, "POTCAR"), pos)
		require.Error(t, err)
	})
}

func TestFromOutputLog(t *testing.T) {
	t.Run("last occurrence wins", func(t *testing.T) {
		dir := t.TempDir()
		log := writeFile(t, dir, "OUTCAR", `
 Dimension of arrays:
   NELECT =      74.0000    total number of electrons
 some other content
   NELECT =      75.0000    total number of electrons
`)
		got, err := FromOutputLog(log)
		require.NoError(t, err)
		assert.InDelta(t, 75.0, got, 1e-9)
	})

	t.Run("no electron count line", func(t *testing.T) {
		dir := t.TempDir()
		log := writeFile(t, dir, "OUTCAR", "nothing relevant here\n")

		_, err := FromOutputLog(log)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoElectronCount))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromOutputLog(filepath.Join(t.TempDir(), "OUTCAR"))
		require.Error(t, err)
	})
}
