// Package manifest defines the run manifest for vasp-helper jobs.
//
// A manifest describes one batch run: which workflow to execute, where
// the baseline and source job directories live, which charge states to
// materialize, and how strictly prepared jobs are gated before
// submission. Manifests are YAML or JSON files loaded with Load.
package manifest

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Workflow modes.
const (
	WorkflowCreate = "create" // charged variants from neutral baselines
	WorkflowExtend = "extend" // continue/restart existing jobs
)

// Inclusion modes for the extend workflow.
const (
	IncludeCharged = "charged-only"
	IncludeNeutral = "neutral-only"
	IncludeBoth    = "both"
)

// Submission strictness levels. Level 0 also disables artifact
// compatibility checks during preparation.
const (
	StrictnessIgnoreChecks = 0
	StrictnessSafeOnly     = 1
	StrictnessAllOrNothing = 2
)

// Manifest is the complete run description.
type Manifest struct {
	// Workflow selects the preparation workflow: "create" or "extend".
	Workflow string `yaml:"workflow" json:"workflow" mapstructure:"workflow"`

	// Paths locates the directories the run operates on.
	Paths PathsConfig `yaml:"paths" json:"paths" mapstructure:"paths"`

	// Charges lists the nonzero charge states to materialize in the
	// create workflow.
	Charges []int `yaml:"charges,omitempty" json:"charges,omitempty" mapstructure:"charges"`

	// Include filters discovered jobs in the extend workflow:
	// "charged-only", "neutral-only" or "both". Default: "both".
	Include string `yaml:"include,omitempty" json:"include,omitempty" mapstructure:"include"`

	// Match optionally narrows discovery with glob patterns applied to
	// job directory names.
	Match MatchConfig `yaml:"match,omitempty" json:"match,omitempty" mapstructure:"match"`

	// Spin enables spin-parity adjustment of prepared jobs.
	Spin bool `yaml:"spin,omitempty" json:"spin,omitempty" mapstructure:"spin"`

	// Strictness is the submission strictness level (0, 1 or 2).
	// Default: 1 (submit only jobs with no recorded unsafe reason).
	Strictness *int `yaml:"strictness,omitempty" json:"strictness,omitempty" mapstructure:"strictness"`

	// Submit configures scheduler dispatch.
	Submit SubmitConfig `yaml:"submit,omitempty" json:"submit,omitempty" mapstructure:"submit"`
}

// PathsConfig locates run directories.
type PathsConfig struct {
	// BaselineRoot holds the neutral reference directories. Required
	// for the create workflow; used by extend as the recompute
	// fallback for charged jobs without a usable output log.
	BaselineRoot string `yaml:"baseline_root,omitempty" json:"baseline_root,omitempty" mapstructure:"baseline_root"`

	// SourceRoot holds the existing jobs the extend workflow continues.
	SourceRoot string `yaml:"source_root,omitempty" json:"source_root,omitempty" mapstructure:"source_root"`

	// WorkDir is where prepared job directories are materialized and
	// where global input overrides are looked up. Default: ".".
	WorkDir string `yaml:"work_dir,omitempty" json:"work_dir,omitempty" mapstructure:"work_dir"`
}

// MatchConfig narrows job discovery with doublestar glob patterns.
type MatchConfig struct {
	Includes []string `yaml:"includes,omitempty" json:"includes,omitempty" mapstructure:"includes"`
	Excludes []string `yaml:"excludes,omitempty" json:"excludes,omitempty" mapstructure:"excludes"`
}

// SubmitConfig configures scheduler dispatch.
type SubmitConfig struct {
	// Command is the scheduler submission command. Default: "sbatch".
	Command string `yaml:"command,omitempty" json:"command,omitempty" mapstructure:"command"`

	// Script is the submission script filename expected in every
	// prepared job directory. Default: "submit.sh".
	Script string `yaml:"script,omitempty" json:"script,omitempty" mapstructure:"script"`

	// RateLimit caps scheduler submissions per second. Zero means
	// unlimited.
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" mapstructure:"rate_limit"`

	// DryRun prepares and checks jobs but never submits.
	DryRun bool `yaml:"dry_run,omitempty" json:"dry_run,omitempty" mapstructure:"dry_run"`
}

// ApplyDefaults fills optional fields with their documented defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Paths.WorkDir == "" {
		m.Paths.WorkDir = "."
	}
	if m.Include == "" {
		m.Include = IncludeBoth
	}
	if m.Strictness == nil {
		level := StrictnessSafeOnly
		m.Strictness = &level
	}
	if m.Submit.Command == "" {
		m.Submit.Command = "sbatch"
	}
	if m.Submit.Script == "" {
		m.Submit.Script = "submit.sh"
	}
}

// StrictnessLevel returns the effective strictness level.
func (m *Manifest) StrictnessLevel() int {
	if m.Strictness == nil {
		return StrictnessSafeOnly
	}
	return *m.Strictness
}

// Validate checks the manifest for structural errors. Defaults must be
// applied first.
func (m *Manifest) Validate() error {
	switch m.Workflow {
	case WorkflowCreate:
		if m.Paths.BaselineRoot == "" {
			return errors.New("create workflow requires paths.baseline_root")
		}
		if len(m.Charges) == 0 {
			return errors.New("create workflow requires at least one charge")
		}
		for _, q := range m.Charges {
			if q == 0 {
				return errors.New("charge 0 is the neutral reference and cannot be requested")
			}
		}
	case WorkflowExtend:
		if m.Paths.SourceRoot == "" {
			return errors.New("extend workflow requires paths.source_root")
		}
	case "":
		return errors.New("workflow is required")
	default:
		return fmt.Errorf("unsupported workflow: %s", m.Workflow)
	}

	switch m.Include {
	case IncludeCharged, IncludeNeutral, IncludeBoth:
	default:
		return fmt.Errorf("unsupported include mode: %s", m.Include)
	}

	if level := m.StrictnessLevel(); level < StrictnessIgnoreChecks || level > StrictnessAllOrNothing {
		return fmt.Errorf("strictness must be 0, 1 or 2, got %d", level)
	}
	if m.Submit.RateLimit < 0 {
		return errors.New("submit.rate_limit must be >= 0")
	}
	return nil
}

// ApplyOverrides merges a loosely-typed override map (e.g. assembled
// from CLI flags) into the manifest.
func (m *Manifest) ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           m,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build override decoder: %w", err)
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("invalid manifest overrides: %w", err)
	}
	return nil
}
