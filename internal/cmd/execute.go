package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/shellgate/internal/gateway"
)

// timeoutExitCode is the exit status for a timed-out command, matching the
// convention of the timeout(1) utility.
const timeoutExitCode = 124

var executeTimeoutSecs int

var executeCmd = &cobra.Command{
	Use:   "execute <command> [args...]",
	Short: "Run a command through the gateway",
	Long: `Run a shell command through the gateway.

The command's first program must be on the allowlist or the request is
rejected. Captured stdout and stderr are written through, and the process
exit code becomes shellgate's own exit code (124 if the command timed out).

The command text is shell-interpreted, so quote shell operators to keep
your own shell from consuming them:

  shellgate execute 'ls -l | head -3'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().IntVarP(&executeTimeoutSecs, "timeout", "t", 0,
		"timeout in seconds (0 means the configured default)")
	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	gw, _, err := newGateway(false)
	if err != nil {
		return err
	}

	resp := gw.Handle(cmd.Context(), gateway.Request{
		Command: strings.Join(args, " "),
		Timeout: time.Duration(executeTimeoutSecs) * time.Second,
	})

	switch resp.Status {
	case gateway.StatusRejected:
		fmt.Fprintf(os.Stderr, "shellgate: %s\n", resp.Reason)
		if d := authorizedProgram(args[0]); d != "" {
			fmt.Fprintf(os.Stderr, "To allow it: shellgate allowlist add %s\n", d)
		}
		return NewExitCodeError(1)

	case gateway.StatusError:
		fmt.Fprintf(os.Stderr, "shellgate: %s\n", resp.Reason)
		return NewExitCodeError(1)
	}

	// Pass the captured streams through unchanged.
	fmt.Fprint(os.Stdout, resp.Result.Stdout)
	fmt.Fprint(os.Stderr, resp.Result.Stderr)

	if resp.Result.Truncated {
		fmt.Fprintln(os.Stderr, "shellgate: output truncated at capture ceiling")
	}
	if resp.Result.TimedOut {
		fmt.Fprintln(os.Stderr, "shellgate: command timed out")
		return NewExitCodeError(timeoutExitCode)
	}
	if resp.Result.ExitCode != 0 {
		return NewExitCodeError(resp.Result.ExitCode)
	}
	return nil
}

// authorizedProgram returns the program token a rejected command would
// need allowlisted, for the hint message.
func authorizedProgram(first string) string {
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
