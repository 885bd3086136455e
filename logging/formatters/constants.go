package formatters

import "github.com/crytic/trapcheck/logging/colors"

// The list of constants below are used to search and replace various elements of a verdict line or test summary with
// a colorized, formatted version for console output
const (
	// passedRegex is the regex to find [PASSED] in a verdict line
	passedRegex = `(\[PASSED\])`
	// failedRegex is the regex to find [FAILED] in a verdict line
	failedRegex = `(\[FAILED\])`
	// erroredRegex is the regex to find [ERRORED] in a verdict line
	erroredRegex = `(\[ERRORED\])`
	// trapCodeRegex is the regex to find a trap code description such as TIMER2 (11)
	trapCodeRegex = `([A-Z][A-Z0-9_]+ \(\d+\))`
	// leftArrowRegex is the regex to find -> in a verdict line
	leftArrowRegex = `(\-\>)`
	// testSummaryRegex is the regex used to capture all integer and non-integer parts of a test summary string
	testSummaryRegex = `([-+]?\d+(?:\.\d+)?|[^\d]+)`
)

// The list of constants below are used to map a specific color to a specific type of text for console output
const (
	// passedColor is the color to use for [PASSED] or the number of passed test runs
	passedColor = colors.GREEN
	// failedColor is the color to use for [FAILED] or the number of failed test runs
	failedColor = colors.RED
	// erroredColor is the color to use for [ERRORED] or the number of errored test runs
	erroredColor = colors.YELLOW
	// trapCodeColor is the color to use for trap code descriptions
	trapCodeColor = colors.CYAN
)

// The list of constants below identify the formatter a log message should be rendered with on colored consoles
const (
	// TestRunResult identifies a single verdict line
	TestRunResult = "testRunResult"
	// TestSummary identifies the summary printed after a scenario
	TestSummary = "testSummary"
)
