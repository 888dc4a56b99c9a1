package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"titi/internal/channels"
	"titi/internal/eventlog"
	"titi/internal/registry"
)

// Dispatcher routes parsed commands to the registry and channel
// manager, matching the command table in section 4.G.
type Dispatcher struct {
	registry *registry.Registry
	channels *channels.Manager
	log      *eventlog.Logger
}

// NewDispatcher builds a Dispatcher over a shared registry and channel
// manager. log may be nil, in which case session/pane mutations are
// not logged.
func NewDispatcher(reg *registry.Registry, ch *channels.Manager, log *eventlog.Logger) *Dispatcher {
	if log == nil {
		log = eventlog.Nop()
	}
	return &Dispatcher{registry: reg, channels: ch, log: log}
}

// Handle executes command/args (as returned by ParseCommand: only the
// command is upper-cased; args, including subcommand words, are matched
// as sent) for conn, returning the response to serialize back to the
// client.
func (d *Dispatcher) Handle(command string, args []string, conn channels.ConnID) Response {
	switch {
	case command == "LIST" && arg(args, 0) == "SESSIONS":
		return d.listSessions()
	case command == "LIST" && arg(args, 0) == "PANES":
		if len(args) < 2 {
			return Errorf("LIST PANES requires session_id")
		}
		return d.listPanes(args[1])
	case command == "CREATE" && arg(args, 0) == "SESSION":
		return d.createSession(argOrEmpty(args, 1), argOrEmpty(args, 2))
	case command == "CREATE" && arg(args, 0) == "PANE":
		if len(args) < 2 {
			return Errorf("CREATE PANE requires session_id")
		}
		return d.createPane(args[1], argOrEmpty(args, 2))
	case command == "CLOSE" && arg(args, 0) == "PANE":
		if len(args) < 3 {
			return Errorf("CLOSE PANE requires session_id and pane_id")
		}
		return d.closePane(args[1], args[2])
	case command == "CLOSE" && arg(args, 0) == "SESSION":
		if len(args) < 2 {
			return Errorf("CLOSE SESSION requires session_id")
		}
		return d.closeSession(args[1])
	case command == "CONNECT" && arg(args, 0) == "PANE":
		if len(args) < 3 {
			return Errorf("CONNECT PANE requires session_id and pane_id")
		}
		return d.setPaneConnected(args[1], args[2], true)
	case command == "DISCONNECT" && arg(args, 0) == "PANE":
		if len(args) < 3 {
			return Errorf("DISCONNECT PANE requires session_id and pane_id")
		}
		return d.setPaneConnected(args[1], args[2], false)
	case command == "STATUS" && arg(args, 0) == "PANE":
		if len(args) < 3 {
			return Errorf("STATUS PANE requires session_id and pane_id")
		}
		return d.paneStatus(args[1], args[2])
	case command == "SUBSCRIBE":
		if len(args) < 1 {
			return Errorf("SUBSCRIBE requires channel name")
		}
		d.channels.Subscribe(args[0], conn)
		return OK()
	case command == "UNSUBSCRIBE":
		if len(args) < 1 {
			return Errorf("UNSUBSCRIBE requires channel name")
		}
		d.channels.Unsubscribe(args[0], conn)
		return OK()
	case command == "PUBLISH":
		if len(args) < 2 {
			return Errorf("PUBLISH requires channel and message")
		}
		content := strings.Join(args[1:], " ")
		count := d.channels.Publish(args[0], content)
		return OKWithData(fmt.Sprintf("published to %d subscribers", count))
	case command == "INJECT":
		if len(args) < 2 {
			return Errorf("INJECT requires target and command")
		}
		return d.inject(args[0], strings.Join(args[1:], " "))
	case command == "CAPTURE":
		if len(args) < 1 {
			return Errorf("CAPTURE requires target")
		}
		mode := "FULL"
		if len(args) >= 2 {
			mode = args[1]
		}
		return d.capture(args[0], mode)
	case command == "LLEN":
		if len(args) < 1 {
			return Errorf("LLEN requires channel name")
		}
		return StringResponse(strconv.Itoa(d.channels.QueueLength(args[0])))
	case command == "RPOP":
		if len(args) < 1 {
			return Errorf("RPOP requires channel name")
		}
		if content, ok := d.channels.RPop(args[0]); ok {
			return StringResponse(content)
		}
		return StringResponse("(nil)")
	default:
		return Errorf("Unknown command: %s", command)
	}
}

func arg(args []string, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i]
}

func argOrEmpty(args []string, i int) string { return arg(args, i) }

func (d *Dispatcher) listSessions() Response {
	return ArrayResponse(d.registry.ListSessions())
}

func (d *Dispatcher) listPanes(sessionID string) Response {
	panes, ok := d.registry.ListPanes(sessionID)
	if !ok {
		return Errorf("Session '%s' not found", sessionID)
	}
	return ArrayResponse(panes)
}

func (d *Dispatcher) createSession(name, paneName string) Response {
	sessionID, err := d.registry.CreateSession(name)
	if err != nil {
		return Errorf("%s", err.Error())
	}
	d.log.SessionCreated(sessionID)
	paneID, err := d.registry.CreatePane(sessionID, paneName)
	if err != nil {
		return Errorf("%s", err.Error())
	}
	d.log.PaneCreated(sessionID, paneID)
	return OKWithData(fmt.Sprintf("session-id:%s pane-id:%s", sessionID, paneID))
}

func (d *Dispatcher) createPane(sessionID, name string) Response {
	paneID, err := d.registry.CreatePane(sessionID, name)
	if err != nil {
		return Errorf("%s", err.Error())
	}
	d.log.PaneCreated(sessionID, paneID)
	return OKWithData(fmt.Sprintf("pane-id:%s", paneID))
}

func (d *Dispatcher) closePane(sessionID, paneID string) Response {
	if err := d.registry.RemovePane(sessionID, paneID); err != nil {
		return Errorf("%s", err.Error())
	}
	d.log.PaneRemoved(sessionID, paneID)
	return OK()
}

func (d *Dispatcher) closeSession(sessionID string) Response {
	if err := d.registry.RemoveSession(sessionID); err != nil {
		return Errorf("%s", err.Error())
	}
	d.log.SessionRemoved(sessionID)
	return OK()
}

// setPaneConnected records whether a pane currently has a terminal
// attached, driven by the headless CLI's CONNECT/DISCONNECT PANE calls
// around its bridge run loop.
func (d *Dispatcher) setPaneConnected(sessionID, paneID string, connected bool) Response {
	if !d.registry.SetPaneConnected(sessionID, paneID, connected) {
		return Errorf("Pane '%s/%s' not found", sessionID, paneID)
	}
	return OK()
}

// paneStatus reports a pane's connection state for `titi list`'s status
// dots.
func (d *Dispatcher) paneStatus(sessionID, paneID string) Response {
	info, ok := d.registry.GetPane(sessionID, paneID)
	if !ok {
		return Errorf("Pane '%s/%s' not found", sessionID, paneID)
	}
	resp, err := JSONResponse(map[string]any{
		"session":   sessionID,
		"pane":      paneID,
		"connected": info.TerminalConnected,
	})
	if err != nil {
		return Errorf("%s", err.Error())
	}
	return resp
}

// inject parses a "<sid>/<pid>" target and publishes to its input
// channel, appending a real newline (not a literal backslash-n).
func (d *Dispatcher) inject(target, command string) Response {
	if !validTarget(target) {
		return Errorf("Invalid target format. Use: session-id/pane-id")
	}
	channel := target + "/input"
	d.channels.Publish(channel, command+"\n")
	return OK()
}

// capture publishes a capture request and replies with a receipt; the
// actual snapshot arrives later on the target's capture-response
// channel, read via RPOP/SUBSCRIBE like any other channel.
func (d *Dispatcher) capture(target, mode string) Response {
	if !validTarget(target) {
		return Errorf("Invalid target format. Use: session-id/pane-id")
	}
	requestID := uuid.NewString()
	channel := target + "/capture-request"
	body := fmt.Sprintf(`{"mode":%q,"request_id":%q}`, mode, requestID)
	d.channels.Publish(channel, body)

	parts := strings.SplitN(target, "/", 2)
	resp, err := JSONResponse(map[string]string{
		"session":    parts[0],
		"pane":       parts[1],
		"mode":       mode,
		"request_id": requestID,
		"status":     "requested",
	})
	if err != nil {
		return Errorf("%s", err.Error())
	}
	return resp
}

func validTarget(target string) bool {
	parts := strings.SplitN(target, "/", 2)
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}
