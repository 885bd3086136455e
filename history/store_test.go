package history

import (
	"context"
	"testing"

	"github.com/crytic/trapcheck/harness"
	"github.com/crytic/trapcheck/harness/config"
	"github.com/crytic/trapcheck/traps"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finishedResult runs a single test to its verdict and returns the result.
func finishedResult(t *testing.T, name string, expected traps.TrapCode, raw int64) harness.RunResult {
	run, err := harness.NewTestRun(name, expected)
	require.NoError(t, err)
	require.NoError(t, run.Start())
	require.NoError(t, run.Observe(raw))
	result, err := run.Result()
	require.NoError(t, err)
	return result
}

// TestRecordAndGet ensures a stored verdict reads back unchanged.
func TestRecordAndGet(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	for _, raw := range []int64{int64(traps.Timer1), int64(traps.Timer3), 1000} {
		result := finishedResult(t, "timer1", traps.Timer1, raw)
		require.NoError(t, store.Record(result))

		stored, err := store.Get(result.ID)
		require.NoError(t, err)
		assert.Equal(t, result.ID, stored.ID)
		assert.Equal(t, result.Name, stored.Name)
		assert.Equal(t, result.Expected, stored.Expected)
		assert.Equal(t, result.Observed, stored.Observed)
		assert.Equal(t, result.RawObserved, stored.RawObserved)
		assert.Equal(t, result.Status, stored.Status)
		assert.Equal(t, result.Message, stored.Message)
		assert.Equal(t, result.Duration, stored.Duration)
		assert.True(t, result.StartTime.Equal(stored.StartTime))
	}

	_, err = store.Get(uuid.New())
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

// TestListMostRecentFirst ensures verdicts are listed newest first and limits are honored.
func TestListMostRecentFirst(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	names := []string{"first", "second", "third"}
	for _, name := range names {
		require.NoError(t, store.Record(finishedResult(t, name, traps.Undef, int64(traps.Undef))))
	}

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)

	limited, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "second", limited[1].Name)
}

// TestHistoryPersistsAcrossOpens ensures verdicts survive closing and reopening the store.
func TestHistoryPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	result := finishedResult(t, "walk", traps.TableWalk, 20)
	require.NoError(t, store.Record(result))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	stored, err := store.Get(result.ID)
	require.NoError(t, err)
	assert.Equal(t, harness.StatusErrored, stored.Status)
	assert.Nil(t, stored.Observed)
}

// TestStoreAsReporter ensures the store records every verdict of a concurrent scenario.
func TestStoreAsReporter(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	runner, err := harness.NewRunner(config.GetDefaultProjectConfig().Harness, nil)
	require.NoError(t, err)
	runner.AddReporter(store)

	scenario := &harness.Scenario{Name: "all codes"}
	for _, code := range traps.AllTrapCodes() {
		raw := int64(code)
		scenario.Cases = append(scenario.Cases, harness.ScenarioCase{Name: code.String(), Expected: code, Observed: &raw})
	}
	results, err := runner.Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, len(scenario.Cases), results.Summary().Passed)

	stored, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, stored, len(scenario.Cases))
}
