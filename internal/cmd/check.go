package cmd

import (
	"errors"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zacherywillard/vasp-helper/internal/observability"
	"github.com/zacherywillard/vasp-helper/pkg/jobprep"
	"github.com/zacherywillard/vasp-helper/pkg/manifest"
	"github.com/zacherywillard/vasp-helper/pkg/safety"

	"github.com/google/uuid"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Safety-check and submit already prepared job directories",
	Long: `Run the safety evaluation and submission decision over job
directories already present in the manifest's working directory,
without preparing anything. Useful after editing prepared jobs by
hand.

Example:
  vasp-helper check --job run.yaml
  vasp-helper check --job run.yaml --dry-run`,
	RunE: runCheck,
}

var (
	checkJobPath string
	checkDryRun  bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkJobPath, "job", "j", "", "Path to run manifest (required)")
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Decide but never submit")

	_ = checkCmd.MarkFlagRequired("job")
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(checkJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", checkJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}
	if checkDryRun {
		m.Submit.DryRun = true
	}

	filter := jobprep.Filter{Includes: m.Match.Includes, Excludes: m.Match.Excludes}
	jobs, err := jobprep.DiscoverJobs(m.Paths.WorkDir, m.Include, filter)
	if err != nil {
		if errors.Is(err, jobprep.ErrNoJobs) {
			return exitError(foundry.ExitFileNotFound, "No prepared jobs found", err)
		}
		return exitError(foundry.ExitFileReadError, "Discovery failed", err)
	}

	batch := jobprep.NewBatch(uuid.New().String())
	for _, j := range jobs {
		batch.Append(jobprep.Record{Name: j.String()})
	}

	safety.CheckBatch(m.Paths.WorkDir, batch, observability.CLILogger)

	return decideAndSubmit(cmd.Context(), m, batch)
}
