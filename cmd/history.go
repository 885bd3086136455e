package cmd

import (
	"fmt"

	"github.com/crytic/trapcheck/history"
	"github.com/spf13/cobra"
)

// historyCmd represents the command provider for listing recorded verdicts
var historyCmd = &cobra.Command{
	Use:               "history",
	Short:             "Lists recorded verdicts",
	Long:              `Lists the verdicts recorded in a verdict history database, most recent first`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunHistory,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	historyCmd.Flags().String("history-dir", "", "directory path of the verdict history database")
	historyCmd.Flags().Int("limit", DefaultHistoryListLimit, "maximum number of verdicts to list. 0 lists every verdict")
	_ = historyCmd.MarkFlagRequired("history-dir")
	rootCmd.AddCommand(historyCmd)
}

// cmdRunHistory executes the history CLI command
func cmdRunHistory(cmd *cobra.Command, args []string) error {
	directory, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		cmdLogger.Error("Failed to run the history command", err)
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		cmdLogger.Error("Failed to run the history command", err)
		return err
	}

	store, err := history.Open(directory)
	if err != nil {
		cmdLogger.Error("Failed to open the verdict history", err)
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			cmdLogger.Error("Failed to close the verdict history", closeErr)
		}
	}()

	results, err := store.List(limit)
	if err != nil {
		cmdLogger.Error("Failed to list the verdict history", err)
		return err
	}
	for _, result := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", result.StartTime.Format("2006-01-02 15:04:05"), result.ID, result)
	}
	return nil
}
