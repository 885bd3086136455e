package harness

import (
	"fmt"
	"time"

	"github.com/crytic/trapcheck/traps"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TestRun describes a single execution of a test that expects a specific trap code. A TestRun moves forward through
// PENDING, RUNNING and one terminal status (PASSED, FAILED or ERRORED), and never moves back.
//
// A TestRun is owned by one caller at a time and is not safe for concurrent use. Callers running several tests at
// once must give each goroutine its own TestRun or serialize access to a shared one.
type TestRun struct {
	// id uniquely identifies the run. UUIDv7 identifiers sort by creation time.
	id uuid.UUID

	// name describes the test which is running.
	name string

	// expected is the trap code the test intends to provoke.
	expected traps.TrapCode

	// observed is the trap code which was reported. Only meaningful if observedSet is true.
	observed traps.TrapCode

	// observedSet indicates observed has been set. Once set it never changes.
	observedSet bool

	// raw is the raw value passed to Observe, if it was called.
	raw *int64

	// status is the current status of the run.
	status Status

	// message is a human-readable diagnostic describing the verdict.
	message string

	// startTime and finishTime describe when the run entered RUNNING and its terminal status.
	startTime  time.Time
	finishTime time.Time
}

// NewTestRun creates a PENDING TestRun expecting the provided trap code. Returns an error if expected is not a
// defined trap code.
func NewTestRun(name string, expected traps.TrapCode) (*TestRun, error) {
	if !expected.IsValid() {
		return nil, errors.WithStack(&traps.UnknownTrapCodeError{Raw: int64(expected)})
	}
	if name == "" {
		name = fmt.Sprintf("expect %s", expected)
	}
	return &TestRun{
		id:       uuid.Must(uuid.NewV7()),
		name:     name,
		expected: expected,
		status:   StatusPending,
	}, nil
}

// Start creates a TestRun expecting the provided trap code and moves it to RUNNING.
func Start(expected traps.TrapCode) (*TestRun, error) {
	run, err := NewTestRun("", expected)
	if err != nil {
		return nil, err
	}
	if err = run.Start(); err != nil {
		return nil, err
	}
	return run, nil
}

// Start moves a PENDING TestRun to RUNNING. Returns an InvalidStateError if the run was already started.
func (r *TestRun) Start() error {
	if err := r.transition("start", StatusRunning); err != nil {
		return err
	}
	r.startTime = time.Now()
	return nil
}

// Observe reports the raw value raised by the trap handler or test stub and moves the run to its verdict:
//   - a defined trap code equal to the expected one yields PASSED,
//   - a defined trap code different from the expected one yields FAILED,
//   - a raw value that is not a defined trap code yields ERRORED.
//
// Returns an InvalidStateError if the run is not RUNNING, e.g. when Observe is called twice or before Start. Such an
// error leaves the run untouched.
func (r *TestRun) Observe(raw int64) error {
	if r.status != StatusRunning {
		return newInvalidStateError("observe", r.status)
	}

	r.raw = &raw
	code, err := traps.Classify(raw)
	if err != nil {
		r.message = fmt.Sprintf("observed unknown trap code %d while expecting %s", raw, r.expected.Describe())
		return r.finish(StatusErrored)
	}

	r.observed = code
	r.observedSet = true
	if code == r.expected {
		r.message = fmt.Sprintf("observed expected trap %s", code.Describe())
		return r.finish(StatusPassed)
	}
	r.message = fmt.Sprintf("expected trap %s but observed %s", r.expected.Describe(), code.Describe())
	return r.finish(StatusFailed)
}

// Verdict returns the final status of the run. Returns an InvalidStateError if the run has not reached a verdict
// yet. Verdict does not modify the run and returns the same status every time it is called.
func (r *TestRun) Verdict() (Status, error) {
	if !r.status.IsTerminal() {
		return "", newInvalidStateError("read the verdict of", r.status)
	}
	return r.status, nil
}

// Result returns an immutable snapshot of a finished run. Returns an InvalidStateError if the run has not reached a
// verdict yet.
func (r *TestRun) Result() (RunResult, error) {
	status, err := r.Verdict()
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		ID:        r.id,
		Name:      r.name,
		Expected:  r.expected,
		Status:    status,
		Message:   r.message,
		StartTime: r.startTime,
		Duration:  r.finishTime.Sub(r.startTime),
	}
	if r.observedSet {
		observed := r.observed
		result.Observed = &observed
	}
	if r.raw != nil {
		raw := *r.raw
		result.RawObserved = &raw
	}
	return result, nil
}

// ID returns the unique identifier of the run.
func (r *TestRun) ID() uuid.UUID {
	return r.id
}

// Name returns the name of the test.
func (r *TestRun) Name() string {
	return r.name
}

// Expected returns the trap code the test expects.
func (r *TestRun) Expected() traps.TrapCode {
	return r.expected
}

// Observed returns the trap code which was observed. The second return value is false if no defined trap code has
// been observed.
func (r *TestRun) Observed() (traps.TrapCode, bool) {
	return r.observed, r.observedSet
}

// Status returns the current status of the run.
func (r *TestRun) Status() Status {
	return r.status
}

// Message returns the diagnostic message of the run. It is empty until the run reaches a verdict.
func (r *TestRun) Message() string {
	return r.message
}

// finish moves a RUNNING test run to a terminal status.
func (r *TestRun) finish(status Status) error {
	if err := r.transition("finish", status); err != nil {
		return err
	}
	r.finishTime = time.Now()
	return nil
}

// transition moves the run to a new status if the transition is allowed.
func (r *TestRun) transition(operation string, to Status) error {
	if !canTransition(r.status, to) {
		return newInvalidStateError(operation, r.status)
	}
	r.status = to
	return nil
}
