package jobprep

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zacherywillard/vasp-helper/pkg/incar"
	"github.com/zacherywillard/vasp-helper/pkg/poscar"
	"github.com/zacherywillard/vasp-helper/pkg/resolve"
)

// TransferArtifacts applies the density/orbital reuse policy between a
// source and a destination job directory.
//
// With ignoreChecks set, both artifacts are copied unconditionally
// when present at the source. Otherwise reuse is gated on the
// destination configuration requesting the corresponding restart and
// on the two directories having byte-identical structural signatures:
//
//   - The density artifact is copied only when ICHARG requests a
//     density restart, signatures match and the source CHGCAR is
//     non-empty. When the flag is set and signatures match but the
//     artifact is missing or empty, the flag is downgraded in place to
//     recompute the density.
//   - The orbital artifact is copied only when ISTART requests an
//     orbital restart and signatures match. A missing WAVECAR is
//     silently skipped; no downgrade is applied. The asymmetry with
//     the density case is intentional.
func TransferArtifacts(sourceDir, destDir string, ignoreChecks bool) error {
	srcDensity := filepath.Join(sourceDir, DensityArtifact)
	srcOrbital := filepath.Join(sourceDir, OrbitalArtifact)

	if ignoreChecks {
		for _, src := range []string{srcDensity, srcOrbital} {
			if !isFile(src) {
				continue
			}
			if err := copyFile(src, filepath.Join(destDir, filepath.Base(src))); err != nil {
				return err
			}
		}
		return nil
	}

	destConfig := filepath.Join(destDir, ConfigFile)
	compatible := signaturesCompatible(sourceDir, destDir)

	wantDensity, err := RequestsDensityRestart(destConfig)
	if err != nil {
		return err
	}
	if wantDensity && compatible {
		if isNonEmptyFile(srcDensity) {
			if err := copyFile(srcDensity, filepath.Join(destDir, DensityArtifact)); err != nil {
				return err
			}
		} else if err := incar.SetOrAppend(KeyDensityRestart, DensityRecompute, destConfig); err != nil {
			return fmt.Errorf("failed to downgrade %s: %w", KeyDensityRestart, err)
		}
	}

	wantOrbital, err := RequestsOrbitalRestart(destConfig)
	if err != nil {
		return err
	}
	if wantOrbital && compatible && isFile(srcOrbital) {
		if err := copyFile(srcOrbital, filepath.Join(destDir, OrbitalArtifact)); err != nil {
			return err
		}
	}

	return nil
}

// signaturesCompatible resolves both directories' structure files and
// compares their signatures. Any unresolvable or unreadable structure
// makes the pair incompatible; reuse is never worth guessing about.
func signaturesCompatible(sourceDir, destDir string) bool {
	var r resolve.Resolver

	srcPath, ok := r.Structure(sourceDir)
	if !ok {
		return false
	}
	dstPath, ok := r.Structure(destDir)
	if !ok {
		return false
	}

	srcSig, err := poscar.ReadSignature(srcPath)
	if err != nil {
		return false
	}
	dstSig, err := poscar.ReadSignature(dstPath)
	if err != nil {
		return false
	}
	return poscar.Compatible(srcSig, dstSig)
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func isNonEmptyFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir() && st.Size() > 0
}

// copyFile copies src to dst through a temp file in dst's directory so
// an interrupted copy never leaves a partial artifact in place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}
