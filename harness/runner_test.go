package harness

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/crytic/trapcheck/harness/config"
	"github.com/crytic/trapcheck/logging"
	"github.com/crytic/trapcheck/traps"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawCode returns a pointer to a raw observed value.
func rawCode(raw int64) *int64 {
	return &raw
}

// newTestRunner creates a Runner with the default harness config, modified by mutate if it is not nil.
func newTestRunner(t *testing.T, mutate func(c *config.HarnessConfig)) *Runner {
	harnessConfig := config.GetDefaultProjectConfig().Harness
	if mutate != nil {
		mutate(&harnessConfig)
	}
	runner, err := NewRunner(harnessConfig, logging.NewLogger(zerolog.Disabled))
	require.NoError(t, err)
	return runner
}

// mixedScenario returns a scenario with two passing cases, one failing case and one errored case.
func mixedScenario() *Scenario {
	return &Scenario{
		Name: "mixed",
		Cases: []ScenarioCase{
			{Name: "timer2 fires", Expected: traps.Timer2, Observed: rawCode(11)},
			{Name: "wrong timer", Expected: traps.Timer2, Observed: rawCode(9)},
			{Name: "table walk", Expected: traps.TableWalk, Observed: rawCode(20)},
			{Name: "alignment", Expected: traps.AlignmentFault, Observed: rawCode(3)},
		},
	}
}

// TestRunnerRunsEveryCase ensures every case is run and results are kept in scenario order.
func TestRunnerRunsEveryCase(t *testing.T) {
	runner := newTestRunner(t, nil)

	var lock sync.Mutex
	reported := make(map[string]Status)
	runner.AddReporter(ReporterFunc(func(result RunResult) error {
		lock.Lock()
		defer lock.Unlock()
		reported[result.Name] = result.Status
		return nil
	}))

	results, err := runner.Run(context.Background(), mixedScenario())
	require.NoError(t, err)

	all := results.All()
	require.Len(t, all, 4)
	assert.Equal(t, []Status{StatusPassed, StatusFailed, StatusErrored, StatusPassed},
		[]Status{all[0].Status, all[1].Status, all[2].Status, all[3].Status})
	assert.Equal(t, "wrong timer", all[1].Name)

	summary := results.Summary()
	assert.Equal(t, Summary{Passed: 2, Failed: 1, Errored: 1}, summary)
	assert.Len(t, results.WithStatus(StatusErrored), 1)
	assert.Len(t, reported, 4)
	assert.Equal(t, StatusFailed, reported["wrong timer"])
}

// TestRunnerInjectsTimeoutCode ensures a case without an observed value ends as ERRORED with the timeout code.
func TestRunnerInjectsTimeoutCode(t *testing.T) {
	runner := newTestRunner(t, func(c *config.HarnessConfig) { c.TimeoutRawCode = 99 })
	scenario := &Scenario{
		Name:  "timeout",
		Cases: []ScenarioCase{{Name: "never fires", Expected: traps.Task1}},
	}

	results, err := runner.Run(context.Background(), scenario)
	require.NoError(t, err)
	all := results.All()
	require.Len(t, all, 1)
	assert.Equal(t, StatusErrored, all[0].Status)
	assert.EqualValues(t, 99, *all[0].RawObserved)
	assert.Contains(t, all[0].Message, "99")
}

// TestRunnerStopsOnFailedTest ensures no case is started after the first non-passing verdict with a single worker.
func TestRunnerStopsOnFailedTest(t *testing.T) {
	runner := newTestRunner(t, func(c *config.HarnessConfig) {
		c.Workers = 1
		c.StopOnFailedTest = true
	})

	results, err := runner.Run(context.Background(), mixedScenario())
	require.NoError(t, err)

	summary := results.Summary()
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Errored)
	assert.Equal(t, 2, summary.NotRun)
}

// TestRunnerEvents ensures started and finished events are published for every case.
func TestRunnerEvents(t *testing.T) {
	runner := newTestRunner(t, nil)

	var lock sync.Mutex
	var started, finished int
	runner.Events.TestRunStarted.Subscribe(func(event TestRunStartedEvent) error {
		lock.Lock()
		defer lock.Unlock()
		assert.Equal(t, runner, event.Runner)
		started++
		return nil
	})
	runner.Events.TestRunFinished.Subscribe(func(event TestRunFinishedEvent) error {
		lock.Lock()
		defer lock.Unlock()
		assert.True(t, event.Result.Status.IsTerminal())
		finished++
		return nil
	})

	_, err := runner.Run(context.Background(), mixedScenario())
	require.NoError(t, err)
	assert.Equal(t, 4, started)
	assert.Equal(t, 4, finished)
}

// TestRunnerReporterErrorAborts ensures a failing reporter aborts the scenario with its error.
func TestRunnerReporterErrorAborts(t *testing.T) {
	runner := newTestRunner(t, func(c *config.HarnessConfig) { c.Workers = 1 })
	reportErr := errors.New("sink unavailable")
	runner.AddReporter(ReporterFunc(func(result RunResult) error {
		return reportErr
	}))

	_, err := runner.Run(context.Background(), mixedScenario())
	assert.ErrorIs(t, err, reportErr)
}

// TestRunnerCancelledContext ensures a cancelled context runs nothing and returns its error.
func TestRunnerCancelledContext(t *testing.T) {
	runner := newTestRunner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := runner.Run(ctx, mixedScenario())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, results.Summary().NotRun)
}

// TestRunnerRejectsInvalidInput ensures invalid configs and scenarios are rejected up front.
func TestRunnerRejectsInvalidInput(t *testing.T) {
	harnessConfig := config.GetDefaultProjectConfig().Harness
	harnessConfig.Workers = 0
	_, err := NewRunner(harnessConfig, nil)
	assert.Error(t, err)

	runner := newTestRunner(t, nil)
	_, err = runner.Run(context.Background(), &Scenario{Name: "empty"})
	assert.Error(t, err)
}

// TestLogReporter ensures verdicts and summaries are logged.
func TestLogReporter(t *testing.T) {
	logger := logging.NewLogger(zerolog.InfoLevel)
	var buf bytes.Buffer
	logger.AddWriter(&buf, logging.UNSTRUCTURED, false)

	runner, err := NewRunner(config.GetDefaultProjectConfig().Harness, logger)
	require.NoError(t, err)
	reporter := NewLogReporter(logger)
	runner.AddReporter(reporter)

	results, err := runner.Run(context.Background(), mixedScenario())
	require.NoError(t, err)
	reporter.ReportSummary("mixed", results.Summary())

	output := buf.String()
	assert.Contains(t, output, "[PASSED] timer2 fires")
	assert.Contains(t, output, "[FAILED] wrong timer -> expected trap TIMER2 (11) but observed TIMER0 (9)")
	assert.Contains(t, output, "[ERRORED] table walk -> observed unknown trap code 20")
	assert.Contains(t, output, "2 passed, 1 failed, 1 errored (50.00% pass rate) in scenario mixed")
}
