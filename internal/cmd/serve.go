package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xdg/shellgate/internal/clog"
	"github.com/xdg/shellgate/internal/server"
)

// SharedSecretEnvVar optionally carries a shared secret that socket
// clients must echo in every request.
const SharedSecretEnvVar = "SHELLGATE_SECRET"

var serveSocketPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent-facing request/response protocol",
	Long: `Serve the line-delimited JSON protocol for agent-side transports.

By default requests are read from stdin and answered on stdout, one JSON
document per line, until stdin closes. With --socket, shellgate listens on
a Unix socket instead and serves each connection as an independent session
until interrupted.

Methods: execute_command {command, timeout}, list_allowed_commands,
get_command_log {limit}. When ` + SharedSecretEnvVar + ` is set, socket
requests must carry the same value in their "secret" field.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSocketPath, "socket", "",
		"listen on this Unix socket instead of stdio")
	// `--socket` with no value listens on the default path.
	serveCmd.Flags().Lookup("socket").NoOptDefVal = server.DefaultSocketPath()
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	gw, cfg, err := newGateway(true)
	if err != nil {
		return err
	}

	secret := os.Getenv(SharedSecretEnvVar)
	srv := server.New(gw, secret)

	if serveSocketPath == "" {
		// stdio mode: stdout is the wire, so the banner goes to stderr.
		fmt.Fprintf(os.Stderr, "shellgate gateway ready (%d allowed commands)\n", len(gw.Allowed()))
		clog.Info("serve: stdio session started")
		err := srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		clog.Info("serve: stdio session ended")
		return err
	}

	ss := server.NewSocketServer(srv, serveSocketPath)
	if err := ss.Start(); err != nil {
		return fmt.Errorf("start socket server: %w", err)
	}
	fmt.Fprintf(os.Stderr, "shellgate listening on %s (allowlist: %s)\n", ss.SocketPath(), cfg.Allowlist)

	// Block until interrupted, then drain in-flight sessions.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	clog.Info("serve: received %v, shutting down", sig)

	return ss.Stop()
}
