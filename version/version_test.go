package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionSatisfies(t *testing.T) {
	tests := []struct {
		version    string
		constraint string
		expected   bool
		wantErr    bool
	}{
		{version: "0.3.0", constraint: "", expected: true},
		{version: "0.3.0", constraint: ">= 0.2.0", expected: true},
		{version: "0.3.0", constraint: ">= 0.2, < 0.3", expected: false},
		{version: "1.2.0", constraint: "^1.0", expected: true},
		{version: "0.3.0", constraint: "not a constraint", wantErr: true},
		{version: "bogus", constraint: ">= 0.1", wantErr: true},
	}
	for _, tc := range tests {
		ok, err := versionSatisfies(tc.version, tc.constraint)
		if tc.wantErr {
			assert.Error(t, err, "%s %s", tc.version, tc.constraint)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, ok, "%s %s", tc.version, tc.constraint)
	}

	// The running version must satisfy a constraint on itself
	ok, err := SatisfiesConstraint("= " + Version)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "0.3.0", GitCommit: "0123456789abcdef", GitTreeDirty: true, GoVersion: "go1.23.3"}
	assert.Equal(t, "0123456", info.ShortCommit())
	assert.Contains(t, info.String(), "trapcheck version 0.3.0")
	assert.Contains(t, info.String(), "0123456-dirty")
	assert.Equal(t, "unknown", info.FormattedTime())
}
