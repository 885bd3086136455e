package harness

import (
	"context"

	"github.com/crytic/trapcheck/harness/config"
	"github.com/crytic/trapcheck/logging"
	"github.com/crytic/trapcheck/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Runner drives the cases of a Scenario to their verdicts. Every case gets its own TestRun, owned by the goroutine
// which runs it, so runs never share state.
type Runner struct {
	// config describes the harness configuration the runner was created with.
	config config.HarnessConfig

	// logger describes the Runner's logger.
	logger *logging.Logger

	// reporters receive every finished test run.
	reporters []Reporter

	// Events describes the event system for the Runner.
	Events RunnerEvents
}

// NewRunner creates a Runner with the provided configuration. Returns an error if the configuration is invalid.
func NewRunner(harnessConfig config.HarnessConfig, logger *logging.Logger) (*Runner, error) {
	if err := harnessConfig.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &Runner{
		config:    harnessConfig,
		logger:    logger.NewSubLogger("module", logging.HARNESS_SERVICE),
		reporters: make([]Reporter, 0),
	}, nil
}

// AddReporter registers a Reporter which receives every finished test run. Reporters must be added before Run is
// called.
func (r *Runner) AddReporter(reporter Reporter) {
	r.reporters = append(r.reporters, reporter)
}

// Run executes every case of the scenario with at most the configured number of workers at a time, and returns the
// results in scenario order. If StopOnFailedTest is set, cases which have not started when the first FAILED or
// ERRORED verdict arrives are not run. A cancelled context stops scheduling new cases and its error is returned along
// with the results gathered so far.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (*Results, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	results := newResults(len(scenario.Cases))
	stopCtx, stop := context.WithCancel(ctx)
	defer stop()

	group, groupCtx := errgroup.WithContext(stopCtx)
	group.SetLimit(r.config.Workers)

	r.logger.Debug("Running ", len(scenario.Cases), " cases of scenario ", scenario.Name, " with ", r.config.Workers, " workers")
	for i, scenarioCase := range scenario.Cases {
		// Stop scheduling once cancelled or stopped after a failure
		if utils.CheckContextDone(groupCtx) {
			break
		}

		group.Go(func() error {
			// A case may have waited for a worker while the scenario stopped
			if utils.CheckContextDone(groupCtx) {
				return nil
			}

			result, err := r.runCase(scenarioCase)
			if err != nil {
				return err
			}
			results.add(i, result)

			if r.config.StopOnFailedTest && result.Status != StatusPassed {
				r.logger.Info("Stopping scenario after ", result.Status, " verdict of ", result.Name)
				stop()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	if ctx.Err() != nil {
		return results, errors.WithStack(ctx.Err())
	}
	return results, nil
}

// runCase creates, starts and observes the TestRun of a single case, then hands its result to the reporters.
func (r *Runner) runCase(scenarioCase ScenarioCase) (RunResult, error) {
	run, err := NewTestRun(scenarioCase.Name, scenarioCase.Expected)
	if err != nil {
		return RunResult{}, err
	}
	if err = run.Start(); err != nil {
		r.logger.Error("Failed to start test run ", run.Name(), err)
		return RunResult{}, err
	}

	err = r.Events.TestRunStarted.Publish(TestRunStartedEvent{
		Runner:   r,
		ID:       run.ID(),
		Name:     run.Name(),
		Expected: run.Expected(),
	})
	if err != nil {
		return RunResult{}, errors.Wrapf(err, "test run started event handler failed for %s", run.Name())
	}

	// No reported trap means the harness deadline passed
	raw := r.config.TimeoutRawCode
	if scenarioCase.Observed != nil {
		raw = *scenarioCase.Observed
	} else {
		r.logger.Debug("No trap reported for ", run.Name(), ", observing timeout code ", raw)
	}

	// Misuse of the state machine is a harness bug, never a test outcome
	if err = run.Observe(raw); err != nil {
		r.logger.Error("Failed to observe trap for test run ", run.Name(), err)
		return RunResult{}, err
	}
	result, err := run.Result()
	if err != nil {
		r.logger.Error("Failed to read verdict of test run ", run.Name(), err)
		return RunResult{}, err
	}

	err = r.Events.TestRunFinished.Publish(TestRunFinishedEvent{
		Runner: r,
		Result: result,
	})
	if err != nil {
		return RunResult{}, errors.Wrapf(err, "test run finished event handler failed for %s", run.Name())
	}

	for _, reporter := range r.reporters {
		if err = reporter.Report(result); err != nil {
			return RunResult{}, errors.Wrapf(err, "failed to report verdict of %s", run.Name())
		}
	}
	return result, nil
}
