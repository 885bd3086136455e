package harness

import (
	"github.com/crytic/trapcheck/events"
	"github.com/crytic/trapcheck/traps"
	"github.com/google/uuid"
)

// RunnerEvents describes the event system for the Runner.
type RunnerEvents struct {
	// TestRunStarted emits events when a test run has been created and started.
	TestRunStarted events.EventEmitter[TestRunStartedEvent]

	// TestRunFinished emits events when a test run has reached its verdict.
	TestRunFinished events.EventEmitter[TestRunFinishedEvent]
}

// TestRunStartedEvent describes an event where a test run has entered RUNNING.
type TestRunStartedEvent struct {
	// Runner describes the Runner which started the test run.
	Runner *Runner

	// ID identifies the test run.
	ID uuid.UUID

	// Name describes the test.
	Name string

	// Expected is the trap code the test expects.
	Expected traps.TrapCode
}

// TestRunFinishedEvent describes an event where a test run has reached its verdict.
type TestRunFinishedEvent struct {
	// Runner describes the Runner which ran the test.
	Runner *Runner

	// Result describes the finished test run.
	Result RunResult
}
