package jobprep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zacherywillard/vasp-helper/pkg/electrons"
	"github.com/zacherywillard/vasp-helper/pkg/incar"
	"github.com/zacherywillard/vasp-helper/pkg/manifest"
	"github.com/zacherywillard/vasp-helper/pkg/resolve"
)

// ErrMissingInput indicates a required job input that could not be
// resolved. Always fatal for the run.
var ErrMissingInput = errors.New("required job input missing")

// Preparer materializes job directories for one batch run.
//
// A Preparer is safe for single use only; create a new one per run.
type Preparer struct {
	manifest *manifest.Manifest
	resolver resolve.Resolver
	logger   *zap.Logger
}

// New creates a preparer for the given run manifest.
func New(m *manifest.Manifest, logger *zap.Logger) *Preparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{
		manifest: m,
		resolver: resolve.Resolver{WorkDir: m.Paths.WorkDir},
		logger:   logger,
	}
}

// Run executes the manifest's workflow and returns the prepared batch.
// Preparation is strictly sequential in discovery order; no job is
// submitted here. Any error is a fatal precondition failure: the run
// aborts immediately, leaving already-written directories in place.
func (p *Preparer) Run(ctx context.Context) (*Batch, error) {
	batch := NewBatch(uuid.New().String())

	p.logger.Info("Starting preparation",
		zap.String("run_id", batch.RunID),
		zap.String("workflow", p.manifest.Workflow))

	var err error
	switch p.manifest.Workflow {
	case manifest.WorkflowCreate:
		err = p.createFromNeutral(ctx, batch)
	case manifest.WorkflowExtend:
		err = p.continueExisting(ctx, batch)
	default:
		err = fmt.Errorf("unsupported workflow: %s", p.manifest.Workflow)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Info("Preparation complete",
		zap.String("run_id", batch.RunID),
		zap.Int("jobs", batch.Len()))
	return batch, nil
}

// createFromNeutral materializes charged variants of every neutral
// reference under the baseline root.
func (p *Preparer) createFromNeutral(ctx context.Context, batch *Batch) error {
	filter := Filter{Includes: p.manifest.Match.Includes, Excludes: p.manifest.Match.Excludes}
	neutrals, err := DiscoverNeutral(p.manifest.Paths.BaselineRoot, filter)
	if err != nil {
		return err
	}

	for _, neutral := range neutrals {
		if err := ctx.Err(); err != nil {
			return err
		}
		srcDir := filepath.Join(p.manifest.Paths.BaselineRoot, neutral.String())

		baseline, err := p.baselineElectrons(srcDir)
		if err != nil {
			return err
		}
		p.logger.Debug("Resolved baseline electron count",
			zap.String("baseline", neutral.String()),
			zap.Float64("electrons", baseline))

		for _, charge := range p.manifest.Charges {
			variant := neutral.WithCharge(charge)
			count := baseline - float64(charge)
			if err := p.materialize(srcDir, variant, count); err != nil {
				return err
			}
			batch.Append(Record{Name: variant.String(), Electrons: count, HasElectrons: true})
			p.logger.Info("Prepared job",
				zap.String("job", variant.String()),
				zap.Float64("electrons", count))
		}
	}
	return nil
}

// continueExisting copies existing jobs from the source root into the
// working directory for continuation.
func (p *Preparer) continueExisting(ctx context.Context, batch *Batch) error {
	filter := Filter{Includes: p.manifest.Match.Includes, Excludes: p.manifest.Match.Excludes}
	jobs, err := DiscoverJobs(p.manifest.Paths.SourceRoot, p.manifest.Include, filter)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		srcDir := filepath.Join(p.manifest.Paths.SourceRoot, job.String())
		destDir := filepath.Join(p.manifest.Paths.WorkDir, job.String())
		destConfig := filepath.Join(destDir, ConfigFile)

		if err := p.copyInputs(srcDir, destDir); err != nil {
			return err
		}
		if err := TransferArtifacts(srcDir, destDir, p.ignoreChecks()); err != nil {
			return err
		}

		rec := Record{Name: job.String()}
		if !job.Neutral() {
			count, err := p.chargedElectrons(job, srcDir)
			if err != nil {
				return err
			}
			if err := incar.SetOrAppend(KeyElectrons, formatElectrons(count), destConfig); err != nil {
				return err
			}
			rec.Electrons, rec.HasElectrons = count, true
		} else if v, ok, err := incar.GetValue(KeyElectrons, destConfig); err != nil {
			return err
		} else if ok {
			if count, perr := strconv.ParseFloat(flagValue(v), 64); perr == nil {
				rec.Electrons, rec.HasElectrons = count, true
			}
		}

		if p.manifest.Spin && rec.HasElectrons {
			if err := AdjustSpinParity(destConfig, rec.Electrons); err != nil {
				return err
			}
		}

		batch.Append(rec)
		p.logger.Info("Prepared job",
			zap.String("job", rec.Name),
			zap.Bool("electrons_resolved", rec.HasElectrons))
	}
	return nil
}

// materialize builds one charged variant directory from a baseline.
func (p *Preparer) materialize(srcDir string, variant JobName, count float64) error {
	destDir := filepath.Join(p.manifest.Paths.WorkDir, variant.String())
	destConfig := filepath.Join(destDir, ConfigFile)

	if err := p.copyInputs(srcDir, destDir); err != nil {
		return err
	}
	if err := incar.SetOrAppend(KeyElectrons, formatElectrons(count), destConfig); err != nil {
		return err
	}
	if err := TransferArtifacts(srcDir, destDir, p.ignoreChecks()); err != nil {
		return err
	}
	if p.manifest.Spin {
		if err := AdjustSpinParity(destConfig, count); err != nil {
			return err
		}
	}
	return nil
}

// copyInputs copies the required inputs into destDir: the resolved
// structure (written as the initial structure), the three
// configuration files and the submission script, each subject to
// working-directory override resolution.
func (p *Preparer) copyInputs(srcDir, destDir string) error {
	structure, ok := p.resolver.Structure(srcDir)
	if !ok {
		return fmt.Errorf("%s: structure file: %w", srcDir, ErrMissingInput)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create job directory %s: %w", destDir, err)
	}
	if err := copyFile(structure, filepath.Join(destDir, resolve.InitialStructure)); err != nil {
		return err
	}

	for _, name := range []string{ConfigFile, KPointsFile, ValenceFile, p.manifest.Submit.Script} {
		src, ok := p.resolver.Input(name, srcDir)
		if !ok {
			return fmt.Errorf("%s: %s: %w", srcDir, name, ErrMissingInput)
		}
		if err := copyFile(src, filepath.Join(destDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// baselineElectrons computes the neutral electron count of a baseline
// directory from its composition and valence data.
func (p *Preparer) baselineElectrons(baselineDir string) (float64, error) {
	structure, ok := p.resolver.Structure(baselineDir)
	if !ok {
		return 0, fmt.Errorf("%s: structure file: %w", baselineDir, ErrMissingInput)
	}
	valence, ok := p.resolver.Input(ValenceFile, baselineDir)
	if !ok {
		return 0, fmt.Errorf("%s: %s: %w", baselineDir, ValenceFile, ErrMissingInput)
	}
	count, err := electrons.FromComposition(valence, structure)
	if err != nil {
		return 0, fmt.Errorf("baseline electron count for %s: %w", baselineDir, err)
	}
	return count, nil
}

// chargedElectrons resolves the electron count for a charged job being
// continued: the last value reported in the source job's output log
// wins; otherwise it is recomputed from the matching baseline, which
// must exist.
func (p *Preparer) chargedElectrons(job JobName, srcDir string) (float64, error) {
	if count, err := electrons.FromOutputLog(filepath.Join(srcDir, OutputLog)); err == nil {
		p.logger.Debug("Electron count from prior output log",
			zap.String("job", job.String()),
			zap.Float64("electrons", count))
		return count, nil
	}

	baselineDir := filepath.Join(p.manifest.Paths.BaselineRoot, job.Baseline().String())
	if st, err := os.Stat(baselineDir); err != nil || !st.IsDir() {
		return 0, fmt.Errorf("%s has no usable output log and baseline %s: %w",
			job.String(), baselineDir, ErrMissingInput)
	}
	baseline, err := p.baselineElectrons(baselineDir)
	if err != nil {
		return 0, err
	}
	return baseline - float64(job.Charge), nil
}

func (p *Preparer) ignoreChecks() bool {
	return p.manifest.StrictnessLevel() == manifest.StrictnessIgnoreChecks
}

// formatElectrons renders an electron count the way VASP accepts it,
// without trailing zeros.
func formatElectrons(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
