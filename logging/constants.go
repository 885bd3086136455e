package logging

import "github.com/crytic/trapcheck/logging/formatters"

// These constants are used to identify specialized formatting for various logs to console. They are provided as the
// FORMAT_KEY entry of a StructuredLogInfo.
const (
	// FORMAT_KEY is the StructuredLogInfo key which selects a console formatter
	FORMAT_KEY = "format"

	// TEST_RUN_RESULT is the constant to identify that a test run verdict needs special console formatting
	TEST_RUN_RESULT = formatters.TestRunResult

	// TESTING_SUMMARY is the constant to identify that the testing summary needs special console formatting
	TESTING_SUMMARY = formatters.TestSummary
)

// These constants are used to identify the various services that may do some logging
const (
	// HARNESS_SERVICE is the constant used to identify the harness package
	HARNESS_SERVICE = "harness"
)
