// Package cmd implements the CLI commands for shellgate.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xdg/shellgate/internal/version"
)

// debugFlag enables debug-level logging for all commands.
var debugFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shellgate",
	Short: "Autonomous shell command gateway",
	Long: `Shellgate executes shell commands on behalf of automated agents under an
allowlist policy: a command runs without human confirmation only when its
program is on the allowlist. Every attempt is executed under a wall-clock
timeout with bounded output capture and recorded in an append-only audit log.

Authorization covers the first program of the command line only. The command
text is shell-interpreted, so pipes and redirection work, and later pipeline
stages are not themselves checked against the allowlist.`,
	Version:      version.Version,
	SilenceUsage: true,
	// Errors are printed in Execute so an ExitCodeError can pass through
	// silently; it exists to set the exit status, not to be shown.
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// Execute runs the root command and returns any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}
