package harness

// Status describes the state of a TestRun.
type Status string

const (
	// StatusPending describes a test run which has been created but not started.
	StatusPending Status = "PENDING"
	// StatusRunning describes a test run which has been started and is waiting for a trap to be observed.
	StatusRunning Status = "RUNNING"
	// StatusPassed describes a test run which observed the trap code it expected.
	StatusPassed Status = "PASSED"
	// StatusFailed describes a test run which observed a defined trap code other than the one it expected.
	StatusFailed Status = "FAILED"
	// StatusErrored describes a test run which observed a raw value that is not a defined trap code. This usually
	// indicates a wiring or configuration defect rather than a test logic defect.
	StatusErrored Status = "ERRORED"
)

// IsTerminal reports whether the status is a final verdict.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored:
		return true
	default:
		return false
	}
}

// canTransition reports whether a test run may move from one status to another. Transitions only move forward.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to.IsTerminal()
	default:
		return false
	}
}
