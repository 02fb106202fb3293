package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolver_Input(t *testing.T) {
	t.Run("working directory override wins", func(t *testing.T) {
		work := t.TempDir()
		source := t.TempDir()
		override := touch(t, work, "KPOINTS", "override")
		touch(t, source, "KPOINTS", "per-job")

		got, ok := Resolver{WorkDir: work}.Input("KPOINTS", source)
		require.True(t, ok)
		assert.Equal(t, override, got)
	})

	t.Run("falls back to source directory", func(t *testing.T) {
		work := t.TempDir()
		source := t.TempDir()
		local := touch(t, source, "INCAR", "per-job")

		got, ok := Resolver{WorkDir: work}.Input("INCAR", source)
		require.True(t, ok)
		assert.Equal(t, local, got)
	})

	t.Run("absent everywhere", func(t *testing.T) {
		_, ok := Resolver{WorkDir: t.TempDir()}.Input("POTCAR", t.TempDir())
		assert.False(t, ok)
	})

	t.Run("directory with matching name is not an input", func(t *testing.T) {
		work := t.TempDir()
		source := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(work, "INCAR"), 0o755))
		local := touch(t, source, "INCAR", "per-job")

		got, ok := Resolver{WorkDir: work}.Input("INCAR", source)
		require.True(t, ok)
		assert.Equal(t, local, got)
	})
}

func TestResolver_Structure(t *testing.T) {
	r := Resolver{}

	t.Run("prefers final over initial", func(t *testing.T) {
		dir := t.TempDir()
		final := touch(t, dir, FinalStructure, "relaxed")
		touch(t, dir, InitialStructure, "initial")

		got, ok := r.Structure(dir)
		require.True(t, ok)
		assert.Equal(t, final, got)
	})

	t.Run("empty final falls back to initial", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, FinalStructure, "")
		initial := touch(t, dir, InitialStructure, "initial")

		got, ok := r.Structure(dir)
		require.True(t, ok)
		assert.Equal(t, initial, got)
	})

	t.Run("initial only", func(t *testing.T) {
		dir := t.TempDir()
		initial := touch(t, dir, InitialStructure, "initial")

		got, ok := r.Structure(dir)
		require.True(t, ok)
		assert.Equal(t, initial, got)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := r.Structure(t.TempDir())
		assert.False(t, ok)
	})
}
