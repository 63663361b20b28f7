package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent command executions",
	Long: `Show recent audit records, most recent first.

Reads the tail of the audit log file. For the full history, read the
audit log file directly; it is append-only and never rewritten.`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 10, "maximum records to show")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	gw, _, err := newGateway(false)
	if err != nil {
		return err
	}

	records := gw.Log(logLimit)
	if len(records) == 0 {
		fmt.Println("No recorded executions.")
		return nil
	}
	for _, r := range records {
		fmt.Println(r.Format())
	}
	return nil
}
