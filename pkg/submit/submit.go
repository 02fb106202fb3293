// Package submit decides which prepared jobs are dispatched to the
// batch scheduler and performs the dispatch.
//
// The decision is a pure function of the completed batch and the run's
// strictness policy, evaluated once after every safety verdict is
// known. Dispatch invokes the scheduler as an opaque external command
// inside each selected job directory, optionally throttled.
package submit

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zacherywillard/vasp-helper/pkg/jobprep"
	"github.com/zacherywillard/vasp-helper/pkg/manifest"
)

// Decide selects the prepared jobs to submit, in preparation order.
//
//   - Dry-run: nothing is submitted regardless of strictness.
//   - Strictness 0: every prepared job.
//   - Strictness 1: only jobs with no recorded unsafe reason.
//   - Strictness 2: all jobs, unless any job is unsafe, then none.
func Decide(batch *jobprep.Batch, strictness int, dryRun bool) []string {
	if dryRun {
		return nil
	}
	if strictness == manifest.StrictnessAllOrNothing && batch.AnyUnsafe() {
		return nil
	}

	var names []string
	for _, rec := range batch.Records() {
		if strictness == manifest.StrictnessSafeOnly {
			if _, unsafe := batch.UnsafeReason(rec.Name); unsafe {
				continue
			}
		}
		names = append(names, rec.Name)
	}
	return names
}

// Submitter dispatches selected jobs to the scheduler.
type Submitter struct {
	command string
	script  string
	workDir string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewSubmitter builds a submitter from the manifest's submit
// configuration. A positive rate limit throttles scheduler calls.
func NewSubmitter(cfg manifest.SubmitConfig, workDir string, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Submitter{
		command: cfg.Command,
		script:  cfg.Script,
		workDir: workDir,
		logger:  logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s
}

// SubmitAll dispatches each named job sequentially, invoking the
// scheduler command with the submission script as its argument and the
// job directory as working directory. The first failing invocation
// aborts the remainder; scheduler exit status is otherwise not
// interpreted.
func (s *Submitter) SubmitAll(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := s.wait(ctx); err != nil {
			return err
		}

		dir := filepath.Join(s.workDir, name)
		cmd := exec.CommandContext(ctx, s.command, s.script)
		cmd.Dir = dir

		out, err := cmd.CombinedOutput()
		if err != nil {
			s.logger.Error("Scheduler submission failed",
				zap.String("job", name),
				zap.String("output", string(out)),
				zap.Error(err))
			return fmt.Errorf("failed to submit %s: %w", name, err)
		}
		s.logger.Info("Submitted job",
			zap.String("job", name),
			zap.String("scheduler_output", string(out)))
	}
	return nil
}

func (s *Submitter) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}
