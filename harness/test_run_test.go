package harness

import (
	"bytes"
	"testing"

	"github.com/crytic/trapcheck/traps"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startRun starts a run expecting the provided code, failing the test on error.
func startRun(t *testing.T, expected traps.TrapCode) *TestRun {
	run, err := Start(expected)
	require.NoError(t, err)
	require.Equal(t, StatusRunning, run.Status())
	return run
}

// TestMatchingTrapPasses ensures observing the expected code passes for every code in the table.
func TestMatchingTrapPasses(t *testing.T) {
	for _, code := range traps.AllTrapCodes() {
		run := startRun(t, code)
		require.NoError(t, run.Observe(int64(code)))

		status, err := run.Verdict()
		assert.NoError(t, err)
		assert.Equal(t, StatusPassed, status, "code %s", code)

		observed, ok := run.Observed()
		assert.True(t, ok)
		assert.Equal(t, code, observed)
	}
}

// TestMismatchedTrapFails ensures observing any other defined code fails for every pair of codes.
func TestMismatchedTrapFails(t *testing.T) {
	for _, expected := range traps.AllTrapCodes() {
		for _, observed := range traps.AllTrapCodes() {
			if expected == observed {
				continue
			}
			run := startRun(t, expected)
			require.NoError(t, run.Observe(int64(observed)))

			status, err := run.Verdict()
			assert.NoError(t, err)
			assert.Equal(t, StatusFailed, status, "expected %s, observed %s", expected, observed)
		}
	}
}

// TestUnknownTrapErrors ensures a reserved value ends the run as ERRORED, not FAILED.
func TestUnknownTrapErrors(t *testing.T) {
	run := startRun(t, traps.AlignmentFault)
	require.NoError(t, run.Observe(6))

	status, err := run.Verdict()
	assert.NoError(t, err)
	assert.Equal(t, StatusErrored, status)
	assert.NotEqual(t, StatusFailed, status)

	_, ok := run.Observed()
	assert.False(t, ok)
	assert.Contains(t, run.Message(), "6")
}

// TestDoubleObserveIsInvalidState ensures a second observation is rejected and leaves the verdict untouched.
func TestDoubleObserveIsInvalidState(t *testing.T) {
	for _, second := range []int64{int64(traps.Timer2), int64(traps.Timer0), 6, -1} {
		run := startRun(t, traps.Timer2)
		require.NoError(t, run.Observe(int64(traps.Timer2)))

		err := run.Observe(second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidState))

		var stateErr *InvalidStateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, StatusPassed, stateErr.Status)

		// The observed code is immutable
		status, err := run.Verdict()
		assert.NoError(t, err)
		assert.Equal(t, StatusPassed, status)
		observed, _ := run.Observed()
		assert.Equal(t, traps.Timer2, observed)
	}
}

// TestObserveBeforeStartIsInvalidState ensures a PENDING run cannot be observed or read.
func TestObserveBeforeStartIsInvalidState(t *testing.T) {
	run, err := NewTestRun("pending", traps.Task1)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, run.Status())

	assert.ErrorIs(t, run.Observe(int64(traps.Task1)), ErrInvalidState)
	_, err = run.Verdict()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusPending, run.Status())

	// Starting twice is rejected as well
	require.NoError(t, run.Start())
	assert.ErrorIs(t, run.Start(), ErrInvalidState)
}

// TestVerdictWhileRunningIsInvalidState ensures the verdict cannot be read before a trap is observed.
func TestVerdictWhileRunningIsInvalidState(t *testing.T) {
	run := startRun(t, traps.PublicData)
	_, err := run.Verdict()
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = run.Result()
	assert.ErrorIs(t, err, ErrInvalidState)
}

// TestVerdictIsIdempotent ensures repeated verdict reads return the same status.
func TestVerdictIsIdempotent(t *testing.T) {
	for _, raw := range []int64{int64(traps.Undef), int64(traps.Task2), 13} {
		run := startRun(t, traps.Undef)
		require.NoError(t, run.Observe(raw))

		first, err := run.Verdict()
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			status, err := run.Verdict()
			assert.NoError(t, err)
			assert.Equal(t, first, status)
		}
	}
}

// TestStartRejectsUndefinedCode ensures a run cannot expect a reserved value.
func TestStartRejectsUndefinedCode(t *testing.T) {
	_, err := Start(traps.TrapCode(7))
	assert.ErrorIs(t, err, traps.ErrUnknownTrapCode)
}

// TestEndToEndScenarios walks through the documented end-to-end scenarios.
func TestEndToEndScenarios(t *testing.T) {
	// Matching timer
	run := startRun(t, traps.Timer2)
	require.NoError(t, run.Observe(11))
	status, err := run.Verdict()
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, status)

	// Wrong timer
	run = startRun(t, traps.Timer2)
	require.NoError(t, run.Observe(9))
	status, err = run.Verdict()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.Contains(t, run.Message(), "TIMER2")
	assert.Contains(t, run.Message(), "TIMER0")

	// Unknown value
	run = startRun(t, traps.TableWalk)
	require.NoError(t, run.Observe(20))
	status, err = run.Verdict()
	require.NoError(t, err)
	assert.Equal(t, StatusErrored, status)
	assert.Contains(t, run.Message(), "20")
}

// TestResultSnapshot ensures the result carries the run's data.
func TestResultSnapshot(t *testing.T) {
	run, err := NewTestRun("walk", traps.TableWalk)
	require.NoError(t, err)
	require.NoError(t, run.Start())
	require.NoError(t, run.Observe(int64(traps.PublicData)))

	result, err := run.Result()
	require.NoError(t, err)
	assert.Equal(t, run.ID(), result.ID)
	assert.Equal(t, "walk", result.Name)
	assert.Equal(t, traps.TableWalk, result.Expected)
	require.NotNil(t, result.Observed)
	assert.Equal(t, traps.PublicData, *result.Observed)
	require.NotNil(t, result.RawObserved)
	assert.EqualValues(t, 17, *result.RawObserved)
	assert.Equal(t, StatusFailed, result.Status)
	assert.GreaterOrEqual(t, int64(result.Duration), int64(0))
	assert.Equal(t, "[FAILED] walk -> expected trap TABLE_WALK (18) but observed PUBLIC_DATA (17)", result.String())

	// Unknown observations keep the raw value but no trap code
	run = startRun(t, traps.TableWalk)
	require.NoError(t, run.Observe(-5))
	result, err = run.Result()
	require.NoError(t, err)
	assert.Nil(t, result.Observed)
	assert.EqualValues(t, -5, *result.RawObserved)
}

// TestRunIdentifiersAreOrdered ensures run identifiers sort by creation order.
func TestRunIdentifiersAreOrdered(t *testing.T) {
	first, err := NewTestRun("first", traps.Start)
	require.NoError(t, err)
	second, err := NewTestRun("second", traps.Start)
	require.NoError(t, err)
	firstID, secondID := first.ID(), second.ID()
	assert.Negative(t, bytes.Compare(firstID[:], secondID[:]))

	// Unnamed runs are named after their expected code
	unnamed, err := NewTestRun("", traps.Start)
	require.NoError(t, err)
	assert.Equal(t, "expect START", unnamed.Name())
}
