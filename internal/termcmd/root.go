// Package termcmd assembles the titi cobra command tree: a single pane
// terminal that either runs headless, driven entirely by a remote
// control bus (spec.md §4.D/§4.J), or interactively, rendering its grid
// straight to the attached TTY (§6).
package termcmd

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"titi/internal/version"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// NewRootCmd builds the titi command tree.
func NewRootCmd() *cobra.Command {
	var opts runOptions
	var shellArgsRaw string

	root := &cobra.Command{
		Use:     "titi",
		Short:   "titi terminal pane",
		Long:    "titi runs a single PTY-backed terminal pane, either headless against a remote control bus or interactively against the attached TTY.",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			shellArgs, err := shlex.Split(shellArgsRaw)
			if err != nil {
				return fmt.Errorf("titi: parsing --shell-args: %w", err)
			}
			opts.shellArgs = shellArgs
			return run(cmd, opts)
		},
	}

	root.Flags().BoolVar(&opts.headless, "headless", false, "Run without a local renderer, driven entirely by the control bus")
	root.Flags().StringVar(&opts.server, "server", "", "Control bus address (host:port); required with --headless")
	root.Flags().StringVar(&opts.token, "token", "", "Control bus auth token; required with --headless")
	root.Flags().StringVar(&opts.session, "session", "default", "Session name, used to namespace control bus channels")
	root.Flags().StringVar(&opts.pane, "pane", "0", "Pane name within the session")
	root.Flags().IntVar(&opts.cols, "cols", defaultCols, "Terminal width in columns")
	root.Flags().IntVar(&opts.rows, "rows", defaultRows, "Terminal height in rows")
	root.Flags().StringVar(&shellArgsRaw, "shell-args", "", "Shell command and arguments to run interactively (default: $SHELL)")
	root.Flags().StringVar(&opts.logPath, "log-file", "", "Path to a JSONL event log; unset disables logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newListCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the titi version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		},
	}
}
