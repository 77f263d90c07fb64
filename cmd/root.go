package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timesheets",
	Short: "Generate billing timesheets from TrackingTime data",
	Long: `timesheets fetches your time-tracking events from the TrackingTime API,
aggregates them per day, project and task, and writes an invoice-style
HTML timesheet. Fetched events can then be marked as billed.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(customersCmd)
}
