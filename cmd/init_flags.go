package cmd

import (
	"fmt"

	"github.com/crytic/trapcheck/harness/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	initCmd.Flags().SortFlags = false

	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Overwrite without asking
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file without asking")

	// Scenario file
	initCmd.Flags().String("scenario", "", fmt.Sprintf("path to the scenario to run (default is %q)", defaultConfig.Harness.ScenarioFile))

	// Number of workers
	initCmd.Flags().Int("workers", 0, fmt.Sprintf("number of test runs executed at the same time (default is %d)", defaultConfig.Harness.Workers))

	// History directory
	initCmd.Flags().String("history-dir", "", "directory path of the verdict history database")
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to
// the init command. Paths are written as given, relative to the configuration file.
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update scenario file
	if cmd.Flags().Changed("scenario") {
		projectConfig.Harness.ScenarioFile, err = cmd.Flags().GetString("scenario")
		if err != nil {
			return err
		}
	}

	// Update number of workers
	if cmd.Flags().Changed("workers") {
		projectConfig.Harness.Workers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
	}

	// Update history directory
	if cmd.Flags().Changed("history-dir") {
		projectConfig.Harness.HistoryDirectory, err = cmd.Flags().GetString("history-dir")
		if err != nil {
			return err
		}
	}

	// The written configuration must be usable as-is
	return projectConfig.Harness.Validate()
}
