package jobprep

import (
	"math"

	"github.com/zacherywillard/vasp-helper/pkg/incar"
)

// AdjustSpinParity reconciles the two-component spin treatment with a
// job's electron count. When the configuration at path sets ISPIN to
// the two-component value, the electron count is rounded to the
// nearest integer: an even count deletes the ISPIN key entirely (the
// code's default single-component treatment is correct for closed
// shells), an odd count leaves it untouched. Any other ISPIN value, or
// an absent key, is left alone.
//
// Callers gate this on the run's spin-handling toggle.
func AdjustSpinParity(path string, electronCount float64) error {
	v, ok, err := incar.GetValue(KeySpin, path)
	if err != nil {
		return err
	}
	if !ok || flagValue(v) != SpinTwoComponent {
		return nil
	}
	if int64(math.Round(electronCount))%2 != 0 {
		return nil
	}
	return incar.DeleteKey(KeySpin, path)
}
