package safety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacherywillard/vasp-helper/pkg/jobprep"
)

func jobDir(t *testing.T, root, name, incarContent string, artifacts map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "INCAR"), []byte(incarContent), 0o644))
	for name, content := range artifacts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		incar     string
		artifacts map[string]string
		wantSafe  bool
		wantIn    string
	}{
		{
			name:     "no restart requests is safe",
			incar:    "ENCUT = 520\n",
			wantSafe: true,
		},
		{
			name:      "density restart satisfied",
			incar:     "ICHARG = 1\n",
			artifacts: map[string]string{"CHGCAR": "density"},
			wantSafe:  true,
		},
		{
			name:     "density restart with missing artifact",
			incar:    "ICHARG = 1\n",
			wantSafe: false,
			wantIn:   "CHGCAR",
		},
		{
			name:      "density restart with empty artifact",
			incar:     "ICHARG = 1\n",
			artifacts: map[string]string{"CHGCAR": ""},
			wantSafe:  false,
			wantIn:    "CHGCAR",
		},
		{
			name:      "orbital restart satisfied",
			incar:     "ISTART = 2\n",
			artifacts: map[string]string{"WAVECAR": "orbitals"},
			wantSafe:  true,
		},
		{
			name:     "orbital restart with missing artifact",
			incar:    "ISTART = 3\n",
			wantSafe: false,
			wantIn:   "WAVECAR",
		},
		{
			name:      "empty orbital artifact still counts as present",
			incar:     "ISTART = 1\n",
			artifacts: map[string]string{"WAVECAR": ""},
			wantSafe:  true,
		},
		{
			name:     "both problems accumulate",
			incar:    "ICHARG = 1\nISTART = 1\n",
			wantSafe: false,
			wantIn:   "; ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := jobDir(t, t.TempDir(), "V_O_1", tt.incar, tt.artifacts)

			v := Check(dir)
			assert.Equal(t, tt.wantSafe, v.Safe())
			if tt.wantIn != "" {
				assert.Contains(t, v.Reason(), tt.wantIn)
			}
		})
	}
}

func TestCheck_UnreadableConfig(t *testing.T) {
	// A prepared job always has an INCAR; a missing one is still a
	// verdict, never a panic or fatal error.
	dir := filepath.Join(t.TempDir(), "V_O_1")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	v := Check(dir)
	assert.False(t, v.Safe())
	assert.Contains(t, v.Reason(), "configuration unreadable")
}

func TestCheckBatch(t *testing.T) {
	work := t.TempDir()
	jobDir(t, work, "V_O_-1", "ICHARG = 1\n", map[string]string{"CHGCAR": "density"})
	jobDir(t, work, "V_O_1", "ICHARG = 1\n", nil)
	jobDir(t, work, "V_O_2", "ENCUT = 520\n", nil)

	batch := jobprep.NewBatch("run-1")
	batch.Append(jobprep.Record{Name: "V_O_-1"})
	batch.Append(jobprep.Record{Name: "V_O_1"})
	batch.Append(jobprep.Record{Name: "V_O_2"})

	CheckBatch(work, batch, nil)

	_, unsafe := batch.UnsafeReason("V_O_-1")
	assert.False(t, unsafe)

	reason, unsafe := batch.UnsafeReason("V_O_1")
	assert.True(t, unsafe)
	assert.Contains(t, reason, "CHGCAR")

	_, unsafe = batch.UnsafeReason("V_O_2")
	assert.False(t, unsafe)

	assert.Equal(t, 1, batch.UnsafeCount())
}
