package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Harness: HarnessConfig{
			ScenarioFile:     "scenario.json",
			Workers:          4,
			StopOnFailedTest: false,
			TimeoutRawCode:   -1,
			HistoryDirectory: "",
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
		RequiredVersion: "",
	}
}
