package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeTestFailed indicates a test run observed a defined trap code other than the one it expected.
	ExitCodeTestFailed = 7

	// ExitCodeTestErrored indicates a test run observed a raw value which is not a defined trap code. It takes
	// precedence over ExitCodeTestFailed.
	ExitCodeTestErrored = 8

	// ExitCodeHandledError indicates that there was an error that was logged already and does not need to be handled
	// by main.
	ExitCodeHandledError = 10
)
