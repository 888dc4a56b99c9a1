package termcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"titi/internal/bridge"
	"titi/internal/busclient"
	"titi/internal/eventlog"
	"titi/internal/terminal"
)

// runOptions collects the root command's flags.
type runOptions struct {
	headless  bool
	server    string
	token     string
	session   string
	pane      string
	cols      int
	rows      int
	shellArgs []string
	logPath   string
}

func run(cmd *cobra.Command, opts runOptions) error {
	if err := validate(opts); err != nil {
		return err
	}
	if opts.headless {
		return runHeadless(cmd, opts)
	}
	return runInteractive(cmd, opts)
}

// validate enforces spec 6's rule that --headless requires both
// --server and --token: a headless pane has no other way to reach the
// control bus it exists to be driven by.
func validate(opts runOptions) error {
	if !opts.headless {
		return nil
	}
	if opts.server == "" {
		return fmt.Errorf("titi: --headless requires --server")
	}
	if opts.token == "" {
		return fmt.Errorf("titi: --headless requires --token")
	}
	return nil
}

// runHeadless dials the control bus, binds a Terminal to it, and runs
// the bridge tick loop (spec 4.J) until the PTY or the bridge's stop
// signal ends it.
func runHeadless(cmd *cobra.Command, opts runOptions) error {
	bus, err := busclient.Dial(opts.server, opts.token)
	if err != nil {
		return err
	}
	defer bus.Close()

	term, err := terminal.NewWithServer(opts.cols, opts.rows, bus, opts.session, opts.pane)
	if err != nil {
		return fmt.Errorf("titi: starting terminal: %w", err)
	}
	defer term.Close()

	log := eventlog.New(opts.logPath != "", opts.logPath)
	defer log.Close()
	term.OnDropFinal(func(final byte, params []int) {
		log.ParserDroppedSequence(final, params)
	})

	br := bridge.New(term, opts.session, opts.pane, log)

	// Best-effort: mark this pane connected for `titi list`'s status
	// dots. A server that predates CONNECT/DISCONNECT PANE replies -ERR
	// and the bridge still runs.
	bus.Command(fmt.Sprintf("CONNECT PANE %s %s", opts.session, opts.pane))
	defer bus.Command(fmt.Sprintf("DISCONNECT PANE %s %s", opts.session, opts.pane))

	fmt.Fprintf(cmd.OutOrStdout(), "titi: headless pane %s/%s attached to %s\n", opts.session, opts.pane, opts.server)
	return br.Run()
}
