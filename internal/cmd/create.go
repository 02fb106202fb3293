package cmd

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create charged variants from neutral baselines",
	Long: `Create charge-state job directories from every neutral reference
found under the manifest's baseline root.

For each neutral directory <species>_<site>_0 the baseline electron
count is derived from its composition and valence data, and one job
directory is materialized per requested charge with
NELECT = baseline - charge.

Example:
  vasp-helper create --job run.yaml
  vasp-helper create --job run.yaml --charges=-1,1,2
  vasp-helper create --job run.yaml --dry-run`,
	RunE: runCreate,
}

var (
	createJobPath    string
	createCharges    []int
	createStrictness int
	createSpin       bool
	createDryRun     bool
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createJobPath, "job", "j", "", "Path to run manifest (required)")
	createCmd.Flags().IntSliceVar(&createCharges, "charges", nil, "Override requested charge states")
	createCmd.Flags().IntVar(&createStrictness, "strictness", 0, "Override strictness level (0|1|2)")
	createCmd.Flags().BoolVar(&createSpin, "spin", false, "Override spin-parity handling")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Prepare and check but never submit")

	_ = createCmd.MarkFlagRequired("job")
}

func runCreate(cmd *cobra.Command, args []string) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("charges") {
		overrides["charges"] = createCharges
	}
	if cmd.Flags().Changed("strictness") {
		overrides["strictness"] = createStrictness
	}
	if cmd.Flags().Changed("spin") {
		overrides["spin"] = createSpin
	}
	if createDryRun {
		overrides["submit"] = map[string]any{"dry_run": true}
	}

	m, err := loadRunManifest(createJobPath, "create", overrides)
	if err != nil {
		return err
	}
	return executeRun(cmd.Context(), m)
}
