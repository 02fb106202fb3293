package potcar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSpecies = `  PAW_PBE Ti_sv 26Sep2005
   12.00000000000000
 parameters from PSCTR are:
   VRHFIN =Ti: 3s3p3d4s
   TITEL  = PAW_PBE Ti_sv 26Sep2005
   POMASS =   47.880; ZVAL   =   12.000    mass and valenz
   ENMAX  =  274.610; ENMIN  =  205.958 eV
 End of Dataset
  PAW_PBE O 08Apr2002
   6.00000000000000
 parameters from PSCTR are:
   TITEL  = PAW_PBE O 08Apr2002
   POMASS =   16.000; ZVAL   =    6.000    mass and valenz
 End of Dataset
`

func writeValence(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "POTCAR")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadValences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []float64
		wantErr bool
	}{
		{
			name:    "two species in file order",
			content: twoSpecies,
			want:    []float64{12.0, 6.0},
		},
		{
			name:    "no blocks yields empty",
			content: "not a potcar at all\n",
			want:    nil,
		},
		{
			name:    "zval without equals is malformed",
			content: "  POMASS = 1.0; ZVAL garbage\n",
			wantErr: true,
		},
		{
			name:    "zval with non-numeric value is malformed",
			content: "  ZVAL = twelve\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadValences(writeValence(t, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadValences_MissingFile(t *testing.T) {
	_, err := ReadValences(filepath.Join(t.TempDir(), "POTCAR"))
	require.Error(t, err)
}
