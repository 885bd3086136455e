package formatters

import (
	"regexp"
	"strings"

	"github.com/crytic/trapcheck/logging/colors"
)

// Formatter rewrites a plain message into its colorized console form.
type Formatter func(msg string) string

// compiled once; the formatters may be called from every runner goroutine
var (
	passedRe      = regexp.MustCompile(passedRegex)
	failedRe      = regexp.MustCompile(failedRegex)
	erroredRe     = regexp.MustCompile(erroredRegex)
	trapCodeRe    = regexp.MustCompile(trapCodeRegex)
	leftArrowRe   = regexp.MustCompile(leftArrowRegex)
	testSummaryRe = regexp.MustCompile(testSummaryRegex)
)

// Lookup returns the Formatter registered for the given key, or nil if there is none.
func Lookup(key string) Formatter {
	switch key {
	case TestRunResult:
		return TestRunResultFormatter
	case TestSummary:
		return TestSummaryFormatter
	default:
		return nil
	}
}

// TestRunResultFormatter will colorize the status tag, trap codes and arrows of a verdict line for console output
func TestRunResultFormatter(msg string) string {
	// Colorize [PASSED], [FAILED] and [ERRORED]
	msg = passedRe.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, passedColor), colors.BOLD))
	msg = failedRe.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, failedColor), colors.BOLD))
	msg = erroredRe.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, erroredColor), colors.BOLD))

	// Colorize trap code descriptions
	msg = trapCodeRe.ReplaceAllString(msg, colors.Colorize(`$1`, trapCodeColor))

	// Replace '->' with a bold arrow glyph
	msg = leftArrowRe.ReplaceAllString(msg, colors.Colorize(colors.LEFT_ARROW, colors.BOLD))
	return msg
}

// TestSummaryFormatter will colorize the counts of the test summary for console output. The summary is expected to
// read "<passed> passed, <failed> failed, <errored> errored ...".
func TestSummaryFormatter(msg string) string {
	// Use testSummaryRegex to split the summary into its numeric and non-numeric parts
	matches := testSummaryRe.FindAllString(msg, -1)
	if len(matches) < 5 {
		return msg
	}

	// The first three numbers are the passed, failed and errored counts
	matchColors := []colors.Color{passedColor, failedColor, erroredColor}
	numberIndex := 0
	for i, match := range matches {
		if numberIndex >= len(matchColors) {
			break
		}
		if match[0] >= '0' && match[0] <= '9' || match[0] == '-' || match[0] == '+' {
			matches[i] = colors.Colorize(colors.Colorize(match, matchColors[numberIndex]), colors.BOLD)
			numberIndex++
		}
	}

	// Merge the string back together
	return strings.Join(matches, "")
}
