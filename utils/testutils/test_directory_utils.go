package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/trapcheck/utils"
	"github.com/stretchr/testify/require"
)

// CopyToTestDirectory copies files or directories from the provided filePath (relative to the working directory of
// the test, usually a testdata/ path) to an ephemeral directory used for unit tests.
// Returns the absolute path of the copy.
func CopyToTestDirectory(t *testing.T, filePath string) string {
	// Construct our file path relative to our working directory
	cwd, err := os.Getwd()
	require.NoError(t, err)
	sourcePath := filepath.Join(cwd, filePath)

	// Verify the file path exists
	sourcePathInfo, err := os.Stat(sourcePath)
	require.NoError(t, err)

	// Copy our source to an isolated test directory
	targetPath := filepath.Join(t.TempDir(), "trapcheckTest", sourcePathInfo.Name())
	if sourcePathInfo.IsDir() {
		err = utils.CopyDirectory(sourcePath, targetPath)
	} else {
		err = utils.CopyFile(sourcePath, targetPath)
	}
	require.NoError(t, err)

	// Get a normalized absolute path
	targetPath, err = filepath.Abs(targetPath)
	require.NoError(t, err)
	return targetPath
}

// ExecuteInDirectory executes the given method in a given test directory. It changes the current working directory
// to the directory specified, runs the provided method, then restores the working directory. This wraps tests so
// any file artifacts generated do not end up in the codebase directories.
func ExecuteInDirectory(t *testing.T, testPath string, method func()) {
	// Backup our old working directory
	cwd, err := os.Getwd()
	require.NoError(t, err)

	// Change to the directory of the path if it refers to a file
	testPathInfo, err := os.Stat(testPath)
	require.NoError(t, err)
	testDirectory := testPath
	if !testPathInfo.IsDir() {
		testDirectory = filepath.Dir(testPath)
	}

	require.NoError(t, os.Chdir(testDirectory))

	// Restore our working directory even if the method fails the test (we must leave the test directory or else
	// clean up will fail post testing)
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()
	method()
}
