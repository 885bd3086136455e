package exitcodes

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestGetInnerErrorAndExitCode ensures errors are mapped to the exit codes main exits with.
func TestGetInnerErrorAndExitCode(t *testing.T) {
	err, code := GetInnerErrorAndExitCode(nil)
	assert.NoError(t, err)
	assert.Equal(t, ExitCodeSuccess, code)

	generic := errors.New("boom")
	err, code = GetInnerErrorAndExitCode(generic)
	assert.Equal(t, generic, err)
	assert.Equal(t, ExitCodeGeneralError, code)

	err, code = GetInnerErrorAndExitCode(NewErrorWithExitCode(nil, ExitCodeTestErrored))
	assert.NoError(t, err)
	assert.Equal(t, ExitCodeTestErrored, code)

	// Wrapped exit code errors are still found
	err, code = GetInnerErrorAndExitCode(errors.Wrap(NewErrorWithExitCode(generic, ExitCodeHandledError), "run"))
	assert.Equal(t, generic, err)
	assert.Equal(t, ExitCodeHandledError, code)
}
