package harness

import (
	"fmt"
	"sync"

	"github.com/crytic/trapcheck/utils"
	"github.com/shopspring/decimal"
)

// Results describes the results of running a Scenario. It is safe for concurrent use.
type Results struct {
	// results holds the result of every finished case, indexed by case position.
	results []*RunResult

	// lock guards results.
	lock sync.Mutex
}

// Summary describes the verdict counts of a Results.
type Summary struct {
	// Passed, Failed and Errored count the runs with each verdict.
	Passed  int
	Failed  int
	Errored int

	// NotRun counts scenario cases which were never run, e.g. because the runner stopped after a failure.
	NotRun int
}

// newResults creates a Results with room for the given number of cases.
func newResults(cases int) *Results {
	return &Results{
		results: make([]*RunResult, cases),
	}
}

// add records the result of the case at the given index.
func (r *Results) add(index int, result RunResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.results[index] = &result
}

// All returns the results of every case that ran, in scenario order.
func (r *Results) All() []RunResult {
	r.lock.Lock()
	defer r.lock.Unlock()

	all := make([]RunResult, 0, len(r.results))
	for _, result := range r.results {
		if result != nil {
			all = append(all, *result)
		}
	}
	return all
}

// WithStatus returns the results with the provided verdict, in scenario order.
func (r *Results) WithStatus(status Status) []RunResult {
	return utils.SliceWhere(r.All(), func(result RunResult) bool {
		return result.Status == status
	})
}

// Summary counts the verdicts of the results.
func (r *Results) Summary() Summary {
	r.lock.Lock()
	defer r.lock.Unlock()

	var summary Summary
	for _, result := range r.results {
		if result == nil {
			summary.NotRun++
			continue
		}
		switch result.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusErrored:
			summary.Errored++
		}
	}
	return summary
}

// Total returns the number of runs that reached a verdict.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Errored
}

// PassRate returns the percentage of finished runs that passed. It is zero if no run finished.
func (s Summary) PassRate() decimal.Decimal {
	if s.Total() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Passed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(s.Total())))
}

// String returns the summary as "<passed> passed, <failed> failed, <errored> errored (<rate>% pass rate)".
func (s Summary) String() string {
	msg := fmt.Sprintf("%d passed, %d failed, %d errored (%s%% pass rate)", s.Passed, s.Failed, s.Errored, s.PassRate().StringFixed(2))
	if s.NotRun > 0 {
		msg += fmt.Sprintf(", %d not run", s.NotRun)
	}
	return msg
}
