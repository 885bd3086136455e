package harness

import (
	"github.com/crytic/trapcheck/logging"
	"github.com/crytic/trapcheck/logging/colors"
)

// Reporter describes a sink which receives the verdict of every finished test run. Reporters may be called from
// several goroutines at once and must be safe for that.
type Reporter interface {
	// Report receives a finished test run. A returned error aborts the scenario.
	Report(result RunResult) error
}

// ReporterFunc adapts an ordinary function to the Reporter interface.
type ReporterFunc func(result RunResult) error

// Report calls f(result).
func (f ReporterFunc) Report(result RunResult) error {
	return f(result)
}

// LogReporter is a Reporter which logs every verdict and the final summary.
type LogReporter struct {
	logger *logging.Logger
}

// NewLogReporter creates a LogReporter which logs to the provided logger.
func NewLogReporter(logger *logging.Logger) *LogReporter {
	return &LogReporter{
		logger: logger,
	}
}

// Report logs the verdict line of a test run. Passed runs are logged at info level, failed and errored runs at warn
// level so they stand out.
func (r *LogReporter) Report(result RunResult) error {
	info := logging.StructuredLogInfo{
		logging.FORMAT_KEY: logging.TEST_RUN_RESULT,
		"id":               result.ID.String(),
		"expected":         result.Expected.String(),
		"status":           string(result.Status),
		"duration":         result.Duration.String(),
	}
	if result.RawObserved != nil {
		info["rawObserved"] = *result.RawObserved
	}

	if result.Status == StatusPassed {
		r.logger.Info(result.String(), info)
	} else {
		r.logger.Warn(result.String(), info)
	}
	return nil
}

// ReportSummary logs the summary of a scenario.
func (r *LogReporter) ReportSummary(scenarioName string, summary Summary) {
	buffer := logging.NewLogBuffer()
	// The counts lead the message so the summary formatter can find them
	buffer.Append(summary.String(), " in scenario ", colors.Bold, scenarioName)

	info := logging.StructuredLogInfo{
		logging.FORMAT_KEY: logging.TESTING_SUMMARY,
		"passed":           summary.Passed,
		"failed":           summary.Failed,
		"errored":          summary.Errored,
		"notRun":           summary.NotRun,
		"passRate":         summary.PassRate().StringFixed(2),
	}
	r.logger.Info(buffer, info)
}
