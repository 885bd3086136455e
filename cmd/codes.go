package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/crytic/trapcheck/traps"
	"github.com/spf13/cobra"
)

// codesCmd represents the command provider for printing the trap code table
var codesCmd = &cobra.Command{
	Use:               "codes",
	Short:             "Prints the trap code table",
	Long:              `Prints the name, value and category of every defined trap code`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunCodes,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	codesCmd.Flags().String("category", "", "only print trap codes of the given category")
	rootCmd.AddCommand(codesCmd)
}

// cmdRunCodes executes the codes CLI command
func cmdRunCodes(cmd *cobra.Command, args []string) error {
	category, err := cmd.Flags().GetString("category")
	if err != nil {
		cmdLogger.Error("Failed to run the codes command", err)
		return err
	}

	codes := traps.AllTrapCodes()
	if category != "" {
		codes = traps.TrapCodesInCategory(traps.Category(category))
		if len(codes) == 0 {
			err = fmt.Errorf("unknown trap code category %q", category)
			cmdLogger.Error("Failed to run the codes command", err)
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVALUE\tCATEGORY")
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%d\t%s\n", code, uint8(code), code.Category())
	}
	return w.Flush()
}
