// Package cmd implements the vasp-helper command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zacherywillard/vasp-helper/internal/config"
	"github.com/zacherywillard/vasp-helper/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "vasp-helper",
	Short: "Prepare and safety-gate batches of VASP charge-state jobs",
	Long: `vasp-helper prepares batches of VASP job directories derived from a
neutral reference calculation, recomputes the NELECT electron count for
each charge state, checks that restart artifacts requested by a job's
INCAR are actually usable, and decides which prepared jobs to hand to
the batch scheduler.

All preparation completes before any safety check, and all safety
checks complete before any submission decision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.Load()
		return observability.Init(settings.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		observability.Sync()
	},
}

// settings holds environment-level overrides, loaded before every
// command runs.
var settings *config.Settings

var versionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}
