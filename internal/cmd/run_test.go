package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacherywillard/vasp-helper/pkg/incar"
)

// writeBaseline materializes a complete neutral reference directory.
func writeBaseline(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		"POSCAR":    "cell\n1.0\n a\n b\n c\n   Ti   O\n     8     7\nDirect\n 0 0 0\n",
		"POTCAR":    "   TITEL  = PAW_PBE Ti\n   POMASS = 47.880; ZVAL   =   4.000 mass and valenz\n   TITEL  = PAW_PBE O\n   POMASS = 16.000; ZVAL   =   6.000 mass and valenz\n",
		"INCAR":     "ENCUT = 520\nICHARG = 1\n",
		"KPOINTS":   "auto\n0\nGamma\n2 2 2\n",
		"submit.sh": "#!/bin/sh\nvasp_std\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLoadRunManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workflow: create
paths:
  baseline_root: ./neutral
charges: [1]
`), 0o644))

	t.Run("loads and applies overrides", func(t *testing.T) {
		m, err := loadRunManifest(path, "create", map[string]any{"strictness": 2})
		require.NoError(t, err)
		assert.Equal(t, 2, m.StrictnessLevel())
	})

	t.Run("workflow mismatch is rejected", func(t *testing.T) {
		_, err := loadRunManifest(path, "extend", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Workflow mismatch")
	})

	t.Run("override that breaks validation is rejected", func(t *testing.T) {
		_, err := loadRunManifest(path, "create", map[string]any{"strictness": 7})
		require.Error(t, err)
	})
}

func TestExecuteRun_DryRunEndToEnd(t *testing.T) {
	baseRoot := t.TempDir()
	work := t.TempDir()
	writeBaseline(t, baseRoot, "V_O_0")

	manifestPath := filepath.Join(t.TempDir(), "run.yaml")
	content := fmt.Sprintf(`
workflow: create
paths:
  baseline_root: %s
  work_dir: %s
charges: [-1, 2]
submit:
  dry_run: true
`, baseRoot, work)
	require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0o644))

	m, err := loadRunManifest(manifestPath, "create", nil)
	require.NoError(t, err)
	require.NoError(t, executeRun(context.Background(), m))

	// Both variants were prepared with adjusted electron counts. The
	// baseline requests a density restart but has no CHGCAR, so the
	// flag was downgraded during artifact transfer.
	for name, want := range map[string]string{"V_O_-1": "75", "V_O_2": "72"} {
		v, ok, err := incar.GetValue("NELECT", filepath.Join(work, name, "INCAR"))
		require.NoError(t, err)
		require.True(t, ok, "NELECT missing for %s", name)
		assert.Equal(t, want, v)

		v, _, err = incar.GetValue("ICHARG", filepath.Join(work, name, "INCAR"))
		require.NoError(t, err)
		assert.Equal(t, "2", v)
	}
}

func TestExecuteRun_FatalOnEmptyBaselineRoot(t *testing.T) {
	manifestPath := filepath.Join(t.TempDir(), "run.yaml")
	content := fmt.Sprintf(`
workflow: create
paths:
  baseline_root: %s
  work_dir: %s
charges: [1]
`, t.TempDir(), t.TempDir())
	require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0o644))

	m, err := loadRunManifest(manifestPath, "create", nil)
	require.NoError(t, err)

	err = executeRun(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no neutral reference directories")
}
