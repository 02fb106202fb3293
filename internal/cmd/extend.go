package cmd

import (
	"github.com/spf13/cobra"
)

var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Continue or restart existing jobs",
	Long: `Continue existing job directories found under the manifest's source
root, filtered by the inclusion mode (charged-only, neutral-only or
both).

Charged jobs take their electron count from the source job's prior
output log when one is available; otherwise it is recomputed from the
matching neutral baseline minus the charge. Neutral jobs keep their
configuration as-is.

Example:
  vasp-helper extend --job run.yaml
  vasp-helper extend --job run.yaml --include charged-only
  vasp-helper extend --job run.yaml --dry-run`,
	RunE: runExtend,
}

var (
	extendJobPath    string
	extendInclude    string
	extendStrictness int
	extendSpin       bool
	extendDryRun     bool
)

func init() {
	rootCmd.AddCommand(extendCmd)

	extendCmd.Flags().StringVarP(&extendJobPath, "job", "j", "", "Path to run manifest (required)")
	extendCmd.Flags().StringVar(&extendInclude, "include", "", "Override inclusion mode (charged-only|neutral-only|both)")
	extendCmd.Flags().IntVar(&extendStrictness, "strictness", 0, "Override strictness level (0|1|2)")
	extendCmd.Flags().BoolVar(&extendSpin, "spin", false, "Override spin-parity handling")
	extendCmd.Flags().BoolVar(&extendDryRun, "dry-run", false, "Prepare and check but never submit")

	_ = extendCmd.MarkFlagRequired("job")
}

func runExtend(cmd *cobra.Command, args []string) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("include") {
		overrides["include"] = extendInclude
	}
	if cmd.Flags().Changed("strictness") {
		overrides["strictness"] = extendStrictness
	}
	if cmd.Flags().Changed("spin") {
		overrides["spin"] = extendSpin
	}
	if extendDryRun {
		overrides["submit"] = map[string]any{"dry_run": true}
	}

	m, err := loadRunManifest(extendJobPath, "extend", overrides)
	if err != nil {
		return err
	}
	return executeRun(cmd.Context(), m)
}
