package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"go.uber.org/zap"

	"github.com/zacherywillard/vasp-helper/internal/observability"
	"github.com/zacherywillard/vasp-helper/pkg/jobprep"
	"github.com/zacherywillard/vasp-helper/pkg/manifest"
	"github.com/zacherywillard/vasp-helper/pkg/safety"
	"github.com/zacherywillard/vasp-helper/pkg/submit"
)

// loadRunManifest loads a manifest and merges CLI flag overrides.
func loadRunManifest(path, wantWorkflow string, overrides map[string]any) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", path),
			zap.Error(err))
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}
	if m.Workflow != wantWorkflow {
		err := fmt.Errorf("manifest workflow is %q, this command runs %q", m.Workflow, wantWorkflow)
		return nil, exitError(foundry.ExitInvalidArgument, "Workflow mismatch", err)
	}
	if err := m.ApplyOverrides(overrides); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid overrides", err)
	}
	if err := m.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}
	return m, nil
}

// executeRun drives the three batch phases in order: prepare every
// job, safety-check every prepared job, then decide and submit. Each
// phase consumes the previous phase's complete output; nothing
// interleaves.
func executeRun(ctx context.Context, m *manifest.Manifest) error {
	log := observability.CLILogger

	batch, err := jobprep.New(m, log).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return exitError(foundry.ExitSignalInt, "Preparation cancelled", err)
		}
		log.Error("Preparation failed", zap.Error(err))
		switch {
		case errors.Is(err, jobprep.ErrNoNeutralDirs), errors.Is(err, jobprep.ErrNoJobs),
			errors.Is(err, jobprep.ErrMissingInput):
			return exitError(foundry.ExitFileNotFound, "Preparation failed", err)
		default:
			return exitError(foundry.ExitFileReadError, "Preparation failed", err)
		}
	}

	safety.CheckBatch(m.Paths.WorkDir, batch, log)

	return decideAndSubmit(ctx, m, batch)
}

// decideAndSubmit applies the strictness policy and dispatches the
// selected jobs.
func decideAndSubmit(ctx context.Context, m *manifest.Manifest, batch *jobprep.Batch) error {
	log := observability.CLILogger

	names := submit.Decide(batch, m.StrictnessLevel(), m.Submit.DryRun)
	printSummary(m, batch, names)

	if len(names) == 0 {
		log.Info("No jobs submitted",
			zap.String("run_id", batch.RunID),
			zap.Bool("dry_run", m.Submit.DryRun),
			zap.Int("unsafe", batch.UnsafeCount()))
		return nil
	}

	subCfg := m.Submit
	if settings != nil && settings.Scheduler != "" {
		subCfg.Command = settings.Scheduler
	}

	s := submit.NewSubmitter(subCfg, m.Paths.WorkDir, log)
	if err := s.SubmitAll(ctx, names); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitError(foundry.ExitSignalInt, "Submission cancelled", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Submission failed", err)
	}

	log.Info("Batch complete",
		zap.String("run_id", batch.RunID),
		zap.Int("prepared", batch.Len()),
		zap.Int("submitted", len(names)))
	return nil
}

// printSummary reports every prepared job, its verdict and the
// submission decision. Recorded-unsafe jobs are always listed, never
// silently dropped.
func printSummary(m *manifest.Manifest, batch *jobprep.Batch, submitted []string) {
	fmt.Printf("=== Batch %s ===\n", batch.RunID)
	fmt.Printf("Workflow:   %s\n", m.Workflow)
	fmt.Printf("Strictness: %d\n", m.StrictnessLevel())
	fmt.Printf("Prepared:   %d job(s), %d unsafe\n", batch.Len(), batch.UnsafeCount())
	fmt.Println()

	for _, rec := range batch.Records() {
		status := "safe"
		if reason, ok := batch.UnsafeReason(rec.Name); ok {
			status = "UNSAFE: " + reason
		}
		if rec.HasElectrons {
			fmt.Printf("  %-16s NELECT=%-10g %s\n", rec.Name, rec.Electrons, status)
		} else {
			fmt.Printf("  %-16s %-17s %s\n", rec.Name, "", status)
		}
	}
	fmt.Println()

	switch {
	case m.Submit.DryRun:
		fmt.Println("Dry-run: no jobs submitted.")
	case len(submitted) == 0:
		fmt.Println("No jobs selected for submission.")
	default:
		fmt.Printf("Submitting %d job(s).\n", len(submitted))
	}
}
