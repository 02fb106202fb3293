package jobprep

import (
	"strings"

	"github.com/zacherywillard/vasp-helper/pkg/incar"
)

// Job input and artifact file names.
const (
	ConfigFile      = "INCAR"
	KPointsFile     = "KPOINTS"
	ValenceFile     = "POTCAR"
	OutputLog       = "OUTCAR"
	DensityArtifact = "CHGCAR"
	OrbitalArtifact = "WAVECAR"
)

// INCAR keys interpreted by the pipeline.
const (
	KeyElectrons      = "NELECT"
	KeyDensityRestart = "ICHARG"
	KeyOrbitalRestart = "ISTART"
	KeySpin           = "ISPIN"
)

// Flag values.
const (
	// DensityFromRestart requests reading the density from a restart
	// file; DensityRecompute is the downgrade applied when the restart
	// file is unusable.
	DensityFromRestart = "1"
	DensityRecompute   = "2"

	// SpinTwoComponent is the two-component spin treatment subject to
	// parity adjustment.
	SpinTwoComponent = "2"
)

// orbitalRestartValues are the ISTART values that read orbitals from a
// restart file.
var orbitalRestartValues = map[string]bool{"1": true, "2": true, "3": true}

// flagValue extracts the effective flag token from an INCAR value,
// which may carry trailing annotations ("1  ! from CHGCAR").
func flagValue(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// RequestsDensityRestart reports whether the configuration at path
// requests reading the density from a restart file.
func RequestsDensityRestart(path string) (bool, error) {
	v, ok, err := incar.GetValue(KeyDensityRestart, path)
	if err != nil {
		return false, err
	}
	return ok && flagValue(v) == DensityFromRestart, nil
}

// RequestsOrbitalRestart reports whether the configuration at path
// requests restarting from orbitals.
func RequestsOrbitalRestart(path string) (bool, error) {
	v, ok, err := incar.GetValue(KeyOrbitalRestart, path)
	if err != nil {
		return false, err
	}
	return ok && orbitalRestartValues[flagValue(v)], nil
}
