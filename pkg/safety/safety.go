// Package safety inspects prepared job directories before submission.
//
// Checks are pure inspection: a job whose configuration requests a
// restart must have the corresponding artifact in place. A failed
// check is a recorded verdict, never a fatal error; the submission
// decider applies the run's strictness policy to the verdicts.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/zacherywillard/vasp-helper/pkg/jobprep"
)

// Verdict is the safety evaluation of one prepared job.
type Verdict struct {
	// Name is the job directory name.
	Name string

	// Reasons lists every detected problem; empty means safe.
	Reasons []string
}

// Safe reports whether no problems were detected.
func (v Verdict) Safe() bool {
	return len(v.Reasons) == 0
}

// Reason joins all detected problems into one recorded string.
func (v Verdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// Check evaluates the prepared job directory at dir. It never fails:
// unreadable configuration and missing artifacts are verdicts, not
// errors.
func Check(dir string) Verdict {
	v := Verdict{Name: filepath.Base(dir)}
	config := filepath.Join(dir, jobprep.ConfigFile)

	wantDensity, err := jobprep.RequestsDensityRestart(config)
	if err != nil {
		v.Reasons = append(v.Reasons, fmt.Sprintf("configuration unreadable: %v", err))
		return v
	}
	if wantDensity && !isNonEmptyFile(filepath.Join(dir, jobprep.DensityArtifact)) {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"%s requests density restart but %s is missing or empty",
			jobprep.KeyDensityRestart, jobprep.DensityArtifact))
	}

	wantOrbital, err := jobprep.RequestsOrbitalRestart(config)
	if err != nil {
		v.Reasons = append(v.Reasons, fmt.Sprintf("configuration unreadable: %v", err))
		return v
	}
	if wantOrbital && !isFile(filepath.Join(dir, jobprep.OrbitalArtifact)) {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"%s requests orbital restart but %s is missing",
			jobprep.KeyOrbitalRestart, jobprep.OrbitalArtifact))
	}

	return v
}

// CheckBatch evaluates every prepared job in the batch, in preparation
// order, recording unsafe reasons against the batch. All preparation
// is complete before this runs; no job is mutated here.
func CheckBatch(workDir string, batch *jobprep.Batch, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, rec := range batch.Records() {
		v := Check(filepath.Join(workDir, rec.Name))
		if v.Safe() {
			continue
		}
		batch.Flag(rec.Name, v.Reason())
		logger.Warn("Job flagged unsafe",
			zap.String("run_id", batch.RunID),
			zap.String("job", rec.Name),
			zap.String("reason", v.Reason()))
	}
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func isNonEmptyFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir() && st.Size() > 0
}
