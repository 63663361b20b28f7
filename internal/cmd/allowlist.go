package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xdg/shellgate/internal/policy"
)

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Manage the allowed-commands list",
}

var allowlistListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List allowed commands",
	Long:    `List the program names allowed to run, sorted, one per line.`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runAllowlistList,
}

var allowlistAddCmd = &cobra.Command{
	Use:   "add <program>",
	Short: "Add a program to the allowlist",
	Long: `Add a program name to the allowlist and persist it.

The name is the bare program, not a full command line: "git", not
"git push". Adding a name that is already allowed is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runAllowlistAdd,
}

func init() {
	allowlistCmd.AddCommand(allowlistListCmd)
	allowlistCmd.AddCommand(allowlistAddCmd)
	rootCmd.AddCommand(allowlistCmd)
}

func runAllowlistList(cmd *cobra.Command, args []string) error {
	gw, cfg, err := newGateway(false)
	if err != nil {
		return err
	}

	if gw.PolicyDegraded() {
		fmt.Fprintf(os.Stderr, "Warning: allowlist file %s is unavailable; showing the built-in default set\n", cfg.Allowlist)
	}
	for _, name := range gw.Allowed() {
		fmt.Println(name)
	}
	return nil
}

func runAllowlistAdd(cmd *cobra.Command, args []string) error {
	gw, _, err := newGateway(false)
	if err != nil {
		return err
	}

	name := args[0]
	res, err := gw.Allow(name)
	if err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	switch res {
	case policy.Added:
		fmt.Printf("Added %s to the allowlist.\n", name)
	case policy.AlreadyPresent:
		fmt.Printf("%s is already allowed.\n", name)
	}
	return nil
}
