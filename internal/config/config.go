// Package config loads process-level settings from the environment.
//
// Run behavior lives in the manifest; this covers only the knobs that
// belong to the invoking environment, under the VASPHELPER_ prefix.
package config

import "github.com/spf13/viper"

// Settings are environment-level overrides.
type Settings struct {
	// LogLevel controls CLILogger verbosity. VASPHELPER_LOG_LEVEL.
	LogLevel string

	// Scheduler, when set, overrides the manifest's submission command
	// for every job. VASPHELPER_SCHEDULER. Useful for pointing a run
	// at a wrapper script on clusters that disallow direct sbatch.
	Scheduler string
}

// Load reads settings from the environment with defaults applied.
func Load() *Settings {
	v := viper.New()
	v.SetEnvPrefix("VASPHELPER")
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")
	v.SetDefault("scheduler", "")

	return &Settings{
		LogLevel:  v.GetString("log_level"),
		Scheduler: v.GetString("scheduler"),
	}
}
