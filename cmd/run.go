package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/crytic/trapcheck/cmd/exitcodes"
	"github.com/crytic/trapcheck/harness"
	"github.com/crytic/trapcheck/harness/config"
	"github.com/crytic/trapcheck/history"
	"github.com/crytic/trapcheck/logging"
	"github.com/crytic/trapcheck/logging/colors"
	"github.com/crytic/trapcheck/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// runCmd represents the command provider for running a scenario
var runCmd = &cobra.Command{
	Use:               "run",
	Short:             "Runs a trap scenario",
	Long:              `Runs every case of a trap scenario and reports whether each test passed, failed or errored`,
	Args:              cmdValidateRunArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the run command
	addRunFlags()

	// Add the run command and its associated flags to the root command
	rootCmd.AddCommand(runCmd)
}

// cmdValidateRunArgs makes sure that there are no positional arguments provided to the run command
func cmdValidateRunArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("run does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the run command", err)
		return err
	}
	return nil
}

// cmdRunRun executes the CLI run command. It exits with ExitCodeTestErrored if any test run errored, with
// ExitCodeTestFailed if any test run failed, and successfully if every test run passed.
func cmdRunRun(cmd *cobra.Command, args []string) error {
	projectConfig, baseDirectory, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithRunFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	// Paths in the configuration file are relative to the file itself
	projectConfig.Harness.ScenarioFile = resolvePath(baseDirectory, projectConfig.Harness.ScenarioFile)
	projectConfig.Harness.HistoryDirectory = resolvePath(baseDirectory, projectConfig.Harness.HistoryDirectory)
	projectConfig.Logging.LogDirectory = resolvePath(baseDirectory, projectConfig.Logging.LogDirectory)

	err = projectConfig.Validate()
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return err
	}

	closeLogs, err := setupRunLogging(projectConfig.Logging, os.Stdout)
	if err != nil {
		cmdLogger.Error("Failed to set up logging", err)
		return err
	}
	defer closeLogs()

	scenario, err := harness.ReadScenarioFromFile(projectConfig.Harness.ScenarioFile)
	if err != nil {
		cmdLogger.Error("Failed to read the scenario", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Stop scheduling cases on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := runScenario(ctx, projectConfig.Harness, scenario)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return exitCodeErrorForSummary(results.Summary())
}

// setupRunLogging replaces the global logger with one configured for a scenario run. Console output goes to the
// provided writer, and structured output to a log file if a log directory is configured.
// Returns a function which closes the log file, or an error if the log file could not be created.
func setupRunLogging(loggingConfig config.LoggingConfig, console io.Writer) (func(), error) {
	if loggingConfig.NoColor {
		colors.DisableColor()
	}

	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	logging.GlobalLogger.AddWriter(console, logging.UNSTRUCTURED, !loggingConfig.NoColor)

	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}

	fileName := fmt.Sprintf("trapcheck-%d.log", time.Now().Unix())
	file, err := utils.CreateFile(loggingConfig.LogDirectory, fileName)
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED, false)
	cmdLogger.Info("Writing structured logs to: ", colors.Bold, file.Name(), colors.Reset)

	return func() {
		logging.GlobalLogger.RemoveWriter(file, logging.STRUCTURED, false)
		_ = file.Close()
	}, nil
}

// runScenario runs the scenario with the global logger, reporting every verdict to the console and, if configured,
// to the verdict history. The summary is logged even if the run was interrupted.
func runScenario(ctx context.Context, harnessConfig config.HarnessConfig, scenario *harness.Scenario) (*harness.Results, error) {
	runner, err := harness.NewRunner(harnessConfig, logging.GlobalLogger)
	if err != nil {
		cmdLogger.Error("Failed to create the runner", err)
		return nil, err
	}

	reporter := harness.NewLogReporter(logging.GlobalLogger)
	runner.AddReporter(reporter)

	if harnessConfig.HistoryDirectory != "" {
		store, err := history.Open(harnessConfig.HistoryDirectory)
		if err != nil {
			cmdLogger.Error("Failed to open the verdict history", err)
			return nil, err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				cmdLogger.Error("Failed to close the verdict history", closeErr)
			}
		}()
		runner.AddReporter(store)
	}

	cmdLogger.Info("Running scenario ", colors.Bold, scenario.Name, colors.Reset, " with ", len(scenario.Cases), " cases")
	results, err := runner.Run(ctx, scenario)
	if results != nil {
		reporter.ReportSummary(scenario.Name, results.Summary())
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			cmdLogger.Warn("Scenario ", scenario.Name, " was interrupted")
		} else {
			cmdLogger.Error("Failed to run scenario ", scenario.Name, err)
		}
		return results, err
	}
	return results, nil
}

// exitCodeErrorForSummary returns the error carrying the exit code of a finished scenario. ERRORED verdicts take
// precedence over FAILED ones. Returns nil if every test run passed.
func exitCodeErrorForSummary(summary harness.Summary) error {
	if summary.Errored > 0 {
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeTestErrored)
	}
	if summary.Failed > 0 {
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeTestFailed)
	}
	return nil
}
