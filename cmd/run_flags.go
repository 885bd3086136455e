package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/crytic/trapcheck/harness/config"
	"github.com/spf13/cobra"
)

// addRunFlags adds the various flags for the run command
func addRunFlags() {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	runCmd.Flags().SortFlags = false

	// Config file
	runCmd.Flags().String("config", "", "path to config file")

	// Scenario file
	runCmd.Flags().String("scenario", "",
		fmt.Sprintf("path to the scenario to run (unless a config file is provided, default is %q)", defaultConfig.Harness.ScenarioFile))

	// Number of workers
	runCmd.Flags().Int("workers", 0,
		fmt.Sprintf("number of test runs executed at the same time (unless a config file is provided, default is %d)", defaultConfig.Harness.Workers))

	// Stop on failed test
	runCmd.Flags().Bool("stop-on-fail", false,
		fmt.Sprintf("stop running cases after the first failed or errored verdict (unless a config file is provided, default is %t)", defaultConfig.Harness.StopOnFailedTest))

	// History directory
	runCmd.Flags().String("history-dir", "",
		"directory path of the verdict history database. verdicts are not recorded if empty")

	// Timeout raw code
	runCmd.Flags().Int64("timeout-code", 0,
		fmt.Sprintf("raw value observed for cases which report no trap (unless a config file is provided, default is %d)", defaultConfig.Harness.TimeoutRawCode))

	// No color
	runCmd.Flags().Bool("no-color", false, "disable colored console output")
}

// updateProjectConfigWithRunFlags will update the given projectConfig with any CLI arguments that were provided to the
// run command. Paths provided through flags are made absolute so they stay relative to the working directory.
func updateProjectConfigWithRunFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update scenario file
	if cmd.Flags().Changed("scenario") {
		scenarioFile, err := cmd.Flags().GetString("scenario")
		if err != nil {
			return err
		}
		projectConfig.Harness.ScenarioFile, err = filepath.Abs(scenarioFile)
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

	// Update stop on failed test
	if cmd.Flags().Changed("stop-on-fail") {
		projectConfig.Harness.StopOnFailedTest, err = cmd.Flags().GetBool("stop-on-fail")
		if err != nil {
			return err
		}
	}

	// Update history directory
	if cmd.Flags().Changed("history-dir") {
		historyDirectory, err := cmd.Flags().GetString("history-dir")
		if err != nil {
			return err
		}
		// An empty directory disables the history
		projectConfig.Harness.HistoryDirectory = ""
		if historyDirectory != "" {
			projectConfig.Harness.HistoryDirectory, err = filepath.Abs(historyDirectory)
			if err != nil {
				return err
			}
		}
	}

	// Update timeout raw code
	if cmd.Flags().Changed("timeout-code") {
		projectConfig.Harness.TimeoutRawCode, err = cmd.Flags().GetInt64("timeout-code")
		if err != nil {
			return err
		}
	}

	// Update color output
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}
	return nil
}
