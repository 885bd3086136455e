package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "trapcheck.json"

// DefaultHistoryListLimit describes how many verdicts the history command lists unless told otherwise.
const DefaultHistoryListLimit = 20
