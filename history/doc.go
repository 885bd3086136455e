// Package history persists test run verdicts across harness invocations so that regressions in trap delivery can be
// traced back to the run that first showed them.
package history
