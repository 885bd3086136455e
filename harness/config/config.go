package config

import (
	"encoding/json"
	"os"

	"github.com/crytic/trapcheck/traps"
	"github.com/crytic/trapcheck/version"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration used by the trapcheck CLI.
type ProjectConfig struct {
	// Harness describes the configuration used to run scenarios.
	Harness HarnessConfig `json:"harness"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`

	// RequiredVersion describes a semver constraint the running trapcheck version must satisfy. An empty string
	// accepts any version.
	RequiredVersion string `json:"requiredVersion"`
}

// HarnessConfig describes the configuration options used by the harness.Runner.
type HarnessConfig struct {
	// ScenarioFile describes the path of the scenario to run.
	ScenarioFile string `json:"scenarioFile"`

	// Workers describes the maximum number of test runs executed at the same time.
	Workers int `json:"workers"`

	// StopOnFailedTest describes whether the runner should stop scheduling test runs after the first FAILED or
	// ERRORED verdict.
	StopOnFailedTest bool `json:"stopOnFailedTest"`

	// TimeoutRawCode is the raw value observed for a case that reports no trap. It must not be a defined trap code,
	// so that a missing trap always ends as ERRORED.
	TimeoutRawCode int64 `json:"timeoutRawCode"`

	// HistoryDirectory describes the directory holding the verdict history database. If empty, verdicts are not
	// recorded.
	HistoryDirectory string `json:"historyDirectory"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes the directory where structured log files will be written. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// NoColor indicates whether console output should be colorized
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields missing from the
// file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of the defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse project config %s", path)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the running version is one the project was written for
	ok, err := version.SatisfiesConstraint(p.RequiredVersion)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("trapcheck version %s does not satisfy the required version %q", version.Version, p.RequiredVersion)
	}

	return p.Harness.Validate()
}

// Validate validates that the HarnessConfig meets certain requirements.
// Returns an error if one occurs.
func (h *HarnessConfig) Validate() error {
	// Verify the worker count is a positive number.
	if h.Workers <= 0 {
		return errors.Errorf("worker count must be a positive number")
	}

	// A timeout code inside the table would turn a missing trap into a pass or fail
	if code, err := traps.Classify(h.TimeoutRawCode); err == nil {
		return errors.Errorf("timeout raw code %d collides with trap code %s", h.TimeoutRawCode, code)
	}
	return nil
}
