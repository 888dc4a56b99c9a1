// Package servercmd assembles the titi-server cobra command tree: the
// control-bus TCP server (spec.md §4.G/§4.H) with a minimal CLI surface
// around it (§6): --port/-p, --token-file, --listen, --config, --version.
package servercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"titi/internal/version"
)

// NewRootCmd builds the titi-server command tree. The root command
// itself starts the server; `version` is kept as an explicit
// subcommand alongside cobra's auto-generated --version flag.
func NewRootCmd() *cobra.Command {
	var port int
	var tokenFile string
	var listen string
	var configPath string
	var logPath string

	root := &cobra.Command{
		Use:     "titi-server",
		Short:   "titi control-bus server",
		Long:    "titi-server runs the line-oriented control bus that titi panes publish output to and receive injected input from.",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, serverOptions{
				port:       port,
				tokenFile:  tokenFile,
				listen:     listen,
				configPath: configPath,
				logPath:    logPath,
			})
		},
	}

	root.Flags().IntVarP(&port, "port", "p", defaultPort, "Port to listen on")
	root.Flags().StringVar(&tokenFile, "token-file", "", "Path to the auth token file (default $HOME/.titi/token)")
	root.Flags().StringVar(&listen, "listen", "", "Full listen address, overrides --port (e.g. 0.0.0.0:6379)")
	root.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (default $HOME/.titi/config.yaml)")
	root.Flags().StringVar(&logPath, "log-file", "", "Path to a JSONL event log; unset disables logging")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the titi-server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}
