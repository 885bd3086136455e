package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestColorizeToggle ensures disabling color strips escape codes and enabling restores them.
func TestColorizeToggle(t *testing.T) {
	t.Cleanup(EnableColor)

	DisableColor()
	assert.False(t, Enabled())
	assert.Equal(t, "PASSED", GreenBold("PASSED"))

	enabled = true
	assert.Equal(t, "\x1b[1m\x1b[32mPASSED\x1b[0m\x1b[0m", GreenBold("PASSED"))
	assert.Equal(t, "11", Reset(11))
}
