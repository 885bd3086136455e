package cmd

import (
	"fmt"

	"github.com/crytic/trapcheck/cmd/exitcodes"
	"github.com/crytic/trapcheck/traps"
	"github.com/crytic/trapcheck/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// classifyCmd represents the command provider for classifying raw trap values
var classifyCmd = &cobra.Command{
	Use:   "classify <raw>...",
	Short: "Classifies raw trap values",
	Long: `Classifies raw trap values reported by a trap handler. Each value may be given as a decimal number or by
name, with or without the TESTING_ prefix. Values which are not defined trap codes are reported as errors.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: cmdValidClassifyArgs,
	RunE:              cmdRunClassify,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

// cmdValidClassifyArgs suggests the names of the defined trap codes
func cmdValidClassifyArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return utils.SliceSelect(traps.AllTrapCodes(), traps.TrapCode.String), cobra.ShellCompDirectiveNoFileComp
}

// cmdRunClassify executes the classify CLI command. Every value is classified even if an earlier one is unknown.
func cmdRunClassify(cmd *cobra.Command, args []string) error {
	var unknown int
	for _, arg := range args {
		code, err := traps.ParseTrapCode(arg)
		if err != nil {
			unknown++
			cmdLogger.Error("Failed to classify ", arg, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code.Describe(), code.Category())
	}

	if unknown > 0 {
		err := errors.Errorf("%d of %d values are not defined trap codes", unknown, len(args))
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return nil
}
