package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/trapcheck/harness/config"
	"github.com/crytic/trapcheck/logging/colors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadProjectConfig navigates through the following possibilities to obtain the project configuration of a command:
// #1: We will search for either a custom config file (via --config) or the default (trapcheck.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If trapcheck.json can't be found, use the default project configuration.
// Returns the project configuration and the directory relative paths in it are resolved against.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, string, error) {
	workingDirectory, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	// If --config was not used, look for `trapcheck.json` in the current work directory
	if !configFlagUsed {
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if existenceError != nil && configFlagUsed {
		return nil, "", existenceError
	}

	// Possibility #3: --config flag was not used and trapcheck.json was not found, so use the default project config
	if existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
		return config.GetDefaultProjectConfig(), workingDirectory, nil
	}

	// Possibility #1: File was found
	cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
	projectConfig, err := config.ReadProjectConfigFromFile(configPath)
	if err != nil {
		return nil, "", err
	}
	return projectConfig, filepath.Dir(configPath), nil
}

// resolvePath resolves a path from the project configuration against the directory of the configuration file. Empty
// and absolute paths are returned unchanged.
func resolvePath(baseDirectory string, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDirectory, path)
}

// cmdValidFlagArgs will return which flags are valid for dynamic completion for a command which takes no positional
// arguments.
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Include the "--" prefix so the suggestion is not mistaken for a positional argument
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}
