// Package traps defines the closed set of trap and test outcome codes reported by the harness under test, and the
// classifier which validates raw values against it.
package traps
