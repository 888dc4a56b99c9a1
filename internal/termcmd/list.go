package termcmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"titi/internal/busclient"
	s "titi/internal/termstyle"
)

// listOptions collects the `titi list` subcommand's flags.
type listOptions struct {
	server string
	token  string
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions and panes known to a control bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "Control bus address (host:port)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Control bus auth token")
	cmd.MarkFlagRequired("server")
	cmd.MarkFlagRequired("token")

	return cmd
}

// runList dials the control bus and prints every session's panes, each
// marked with a green dot if a terminal is currently attached or a gray
// dot otherwise — the `titi list` analogue of spec 6's CLI surface.
func runList(cmd *cobra.Command, opts listOptions) error {
	bus, err := busclient.Dial(opts.server, opts.token)
	if err != nil {
		return err
	}
	defer bus.Close()

	sessions, err := listCommand(bus, "LIST SESSIONS")
	if err != nil {
		return fmt.Errorf("titi: listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
		return nil
	}

	out := cmd.OutOrStdout()
	for i, sessionID := range sessions {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s\n", s.Bold(sessionID))

		panes, err := listCommand(bus, "LIST PANES "+sessionID)
		if err != nil {
			fmt.Fprintf(out, "  %s\n", s.Dim(fmt.Sprintf("(error: %v)", err)))
			continue
		}
		for _, paneID := range panes {
			connected, err := paneConnected(bus, sessionID, paneID)
			dot := s.GrayDot()
			if err == nil && connected {
				dot = s.GreenDot()
			}
			fmt.Fprintf(out, "  %s %s\n", dot, paneID)
		}
	}
	return nil
}

// paneConnected queries STATUS PANE and reports whether a terminal is
// currently attached.
func paneConnected(bus *busclient.Client, sessionID, paneID string) (bool, error) {
	resp, err := bus.Command(fmt.Sprintf("STATUS PANE %s %s", sessionID, paneID))
	if err != nil {
		return false, err
	}
	if strings.HasPrefix(resp, "-ERR") {
		return false, fmt.Errorf("%s", resp)
	}
	var status struct {
		Connected bool `json:"connected"`
	}
	if err := json.Unmarshal([]byte(resp), &status); err != nil {
		return false, err
	}
	return status.Connected, nil
}

// listCommand issues a command expected to return the control bus's
// quoted-array wire format (e.g. `["a", "b"]`) and parses it into a
// slice of unquoted strings.
func listCommand(bus *busclient.Client, line string) ([]string, error) {
	resp, err := bus.Command(line)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(resp, "-ERR") {
		return nil, fmt.Errorf("%s", resp)
	}
	return parseArray(resp)
}

// parseArray parses the control bus's array wire format: "[" + comma-
// space-joined quoted strings + "]", mirroring protocol.quoteString's
// escaping (only inner quotes backslash-escaped).
func parseArray(resp string) ([]string, error) {
	resp = strings.TrimSpace(resp)
	if !strings.HasPrefix(resp, "[") || !strings.HasSuffix(resp, "]") {
		return nil, fmt.Errorf("busclient: malformed array response: %q", resp)
	}
	body := resp[1 : len(resp)-1]
	if body == "" {
		return nil, nil
	}
	var items []string
	for _, raw := range strings.Split(body, ", ") {
		if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
			return nil, fmt.Errorf("busclient: malformed array item: %q", raw)
		}
		items = append(items, strings.ReplaceAll(raw[1:len(raw)-1], `\"`, `"`))
	}
	return items, nil
}
