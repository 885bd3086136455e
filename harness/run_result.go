package harness

import (
	"fmt"
	"time"

	"github.com/crytic/trapcheck/traps"
	"github.com/google/uuid"
)

// RunResult describes a finished TestRun. It is a value snapshot handed to reporters once the run that produced it
// has been discarded.
type RunResult struct {
	// ID uniquely identifies the run.
	ID uuid.UUID `json:"id"`

	// Name describes the test which ran.
	Name string `json:"name"`

	// Expected is the trap code the test expected.
	Expected traps.TrapCode `json:"expected"`

	// Observed is the trap code which was observed, or nil if the observed raw value was not a defined trap code.
	Observed *traps.TrapCode `json:"observed,omitempty"`

	// RawObserved is the raw value which was observed.
	RawObserved *int64 `json:"rawObserved,omitempty"`

	// Status is the verdict of the run.
	Status Status `json:"status"`

	// Message is the diagnostic message describing the verdict.
	Message string `json:"message"`

	// StartTime is the time the run was started.
	StartTime time.Time `json:"startTime"`

	// Duration is the time between starting the run and its verdict.
	Duration time.Duration `json:"duration"`
}

// String returns a single verdict line, e.g. "[FAILED] timer test -> expected trap TIMER2 (11) but observed
// TIMER0 (9)".
func (r RunResult) String() string {
	return fmt.Sprintf("[%s] %s -> %s", r.Status, r.Name, r.Message)
}
