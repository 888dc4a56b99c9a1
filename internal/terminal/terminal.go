// Package terminal composes the grid, parser, and PTY into the unit
// spec.md §4.D calls Terminal, and adds the bridge-facing hooks
// (PollServerInput, PublishOutputIfNeeded) that couple a Terminal to the
// control bus without the terminal knowing about sockets directly — it
// depends only on the small Bus interface below.
package terminal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"titi/internal/grid"
	"titi/internal/ptyio"
	"titi/internal/vtparser"
)

// Bus is the thin interface the bridge-facing methods need from the
// control bus's channel manager. *channels.Manager implements it.
type Bus interface {
	RPop(channel string) (string, bool)
	Publish(channel, content string) int
}

// Terminal owns a Grid, a VT Parser bound to that grid, and a PTY. All
// access is serialized by mu, matching spec 5's "Grid is shared... guard
// with a mutex, hold it for the smallest region possible."
type Terminal struct {
	mu     sync.Mutex
	grid   *grid.Grid
	parser *vtparser.Parser
	pty    *ptyio.PTY

	bus          Bus
	sessionID    string
	paneID       string
	onDropFinal  func(final byte, params []int)
	onRawOutput  func(data []byte)
	writeTimeout time.Duration
}

// New constructs a Terminal with a freshly spawned PTY of the given
// size.
func New(cols, rows int) (*Terminal, error) {
	p, err := ptyio.Spawn(cols, rows)
	if err != nil {
		return nil, err
	}
	return newWithPTY(p, cols, rows), nil
}

// NewWithArgs is New but spawns program/args instead of the resolved
// default shell, for the interactive CLI's --shell-args override.
func NewWithArgs(cols, rows int, program string, args []string) (*Terminal, error) {
	p, err := ptyio.SpawnArgs(program, args, cols, rows)
	if err != nil {
		return nil, err
	}
	return newWithPTY(p, cols, rows), nil
}

// NewWithServer is New plus a bus binding for the headless bridge path
// (spec 4.D's new_with_server).
func NewWithServer(cols, rows int, bus Bus, sessionID, paneID string) (*Terminal, error) {
	t, err := New(cols, rows)
	if err != nil {
		return nil, err
	}
	t.bus = bus
	t.sessionID = sessionID
	t.paneID = paneID
	return t, nil
}

func newWithPTY(p *ptyio.PTY, cols, rows int) *Terminal {
	g := grid.New(cols, rows)
	parser := vtparser.New(g)
	t := &Terminal{
		grid:         g,
		parser:       parser,
		pty:          p,
		writeTimeout: 3 * time.Second,
	}
	parser.OnUnknownFinal(func(final byte, params []int) {
		if t.onDropFinal != nil {
			t.onDropFinal(final, params)
		}
	})
	return t
}

// OnDropFinal registers a callback for debug-level logging of dropped
// unknown CSI/ESC finals (spec 4.B).
func (t *Terminal) OnDropFinal(fn func(final byte, params []int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDropFinal = fn
}

// OnRawOutput registers a callback invoked with each raw chunk read
// from the PTY, after the parser has consumed it (outside the lock).
// The interactive CLI uses
// this to answer OSC 10/11 color queries the child emits, since the
// Grid itself has no concept of "the real terminal's colors" to hand
// back.
func (t *Terminal) OnRawOutput(fn func(data []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRawOutput = fn
}

// Grid exposes the underlying grid for renderers/extractors. Callers
// must not mutate it directly; use the Terminal's own methods, which
// hold the lock.
func (t *Terminal) Grid() *grid.Grid {
	return t.grid
}

// Read proxies the PTY read. It blocks until data arrives or the read
// fails, so callers run it on a dedicated goroutine (see ReadLoop).
func (t *Terminal) Read(buf []byte) (int, error) {
	return t.pty.Read(buf)
}

// ReadLoop runs Read in a loop on the calling goroutine, invoking
// ProcessOutput for each chunk and onData after each mutation, until the
// PTY read fails (child exit or close). Intended to be run on its own
// goroutine per Terminal.
func (t *Terminal) ReadLoop(onData func()) error {
	buf := make([]byte, 4096)
	for {
		n, err := t.Read(buf)
		if n > 0 {
			t.ProcessOutput(buf[:n])
			if onData != nil {
				onData()
			}
		}
		if err != nil {
			return err
		}
	}
}

// ProcessOutput feeds bytes read from the PTY into the parser, mutating
// the grid.
func (t *Terminal) ProcessOutput(data []byte) {
	t.mu.Lock()
	onRaw := t.onRawOutput
	t.parser.Write(data)
	t.mu.Unlock()
	if onRaw != nil {
		onRaw(data)
	}
}

// Write proxies to the PTY; used by both direct (GUI/interactive) input
// and headless input injection.
func (t *Terminal) Write(data []byte) error {
	return t.pty.Write(data, t.writeTimeout)
}

// Resize resizes both the PTY and the grid.
func (t *Terminal) Resize(cols, rows int) error {
	t.mu.Lock()
	t.grid.Resize(cols, rows)
	t.mu.Unlock()
	return t.pty.Resize(cols, rows)
}

// ScrollBackUp/ScrollBackDown/ScrollToBottom proxy to the grid.
func (t *Terminal) ScrollBackUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grid.ScrollBackUp(n)
}

func (t *Terminal) ScrollBackDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grid.ScrollBackDown(n)
}

func (t *Terminal) ScrollToBottom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grid.ScrollToBottom()
}

// InputChannel and OutputChannel return this terminal's pane channel
// names, per spec 6's convention <session>/pane-<pane>/{input,output}.
func (t *Terminal) InputChannel() string  { return fmt.Sprintf("%s/pane-%s/input", t.sessionID, t.paneID) }
func (t *Terminal) OutputChannel() string { return fmt.Sprintf("%s/pane-%s/output", t.sessionID, t.paneID) }
func (t *Terminal) CaptureRequestChannel() string {
	return fmt.Sprintf("%s/pane-%s/capture-request", t.sessionID, t.paneID)
}
func (t *Terminal) CaptureResponseChannel() string {
	return fmt.Sprintf("%s/pane-%s/capture-response", t.sessionID, t.paneID)
}

// PollServerInput does a non-blocking RPOP of the pane's input channel;
// any bytes received are written to the PTY verbatim. Used by the
// headless bridge tick (spec 4.J step 3).
func (t *Terminal) PollServerInput() error {
	if t.bus == nil {
		return nil
	}
	msg, ok := t.bus.RPop(t.InputChannel())
	if !ok {
		return nil
	}
	return t.Write([]byte(msg))
}

// PublishOutputIfNeeded collects dirty lines (or all lines if the grid
// is fully dirty), trims trailing spaces, and publishes one message per
// line to the pane's output channel in the format "L<row>: <text>",
// then clears the dirty set. Best-effort: publish failures (no bus
// bound, or a disconnected bus) are swallowed, matching spec 4.J's "a
// disconnected control bus does not stop the terminal from running".
func (t *Terminal) PublishOutputIfNeeded() {
	if t.bus == nil {
		return
	}
	t.mu.Lock()
	rows := t.dirtyRowsLocked()
	t.grid.ClearDirty()
	t.mu.Unlock()

	for _, row := range rows {
		line := t.lineText(row)
		line = strings.TrimRight(line, " ")
		t.bus.Publish(t.OutputChannel(), fmt.Sprintf("L%d: %s", row, line))
	}
}

func (t *Terminal) dirtyRowsLocked() []int {
	rowSet := make(map[int]struct{})
	if t.grid.AllDirty() {
		for y := 0; y < t.grid.Rows(); y++ {
			rowSet[y] = struct{}{}
		}
	} else {
		for _, p := range t.grid.DirtyCells() {
			rowSet[p.Row] = struct{}{}
		}
	}
	rows := make([]int, 0, len(rowSet))
	for y := range rowSet {
		rows = append(rows, y)
	}
	// stable, ascending order for deterministic test expectations
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1] > rows[j]; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
	return rows
}

func (t *Terminal) lineText(row int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	for x := 0; x < t.grid.Cols(); x++ {
		b.WriteRune(t.grid.GetCell(x, row).Ch)
	}
	return b.String()
}

// captureRequest is the body of a CAPTURE-request channel message.
type captureRequest struct {
	Mode      string `json:"mode"`
	RequestID string `json:"request_id"`
}

// captureResponse is published on the capture-response channel, per the
// resolution of spec 9's CAPTURE open question.
type captureResponse struct {
	RequestID string   `json:"request_id"`
	Session   string   `json:"session"`
	Pane      string   `json:"pane"`
	Mode      string   `json:"mode"`
	Lines     []string `json:"lines"`
}

// PollCaptureRequest does a non-blocking RPOP of the pane's
// capture-request channel; if a well-formed request is present, it
// snapshots the grid and publishes a captureResponse. Malformed bodies
// are dropped silently. Run as step 2.5 of the bridge tick.
func (t *Terminal) PollCaptureRequest() {
	if t.bus == nil {
		return
	}
	msg, ok := t.bus.RPop(t.CaptureRequestChannel())
	if !ok {
		return
	}
	var req captureRequest
	if err := json.Unmarshal([]byte(msg), &req); err != nil {
		return
	}
	lines := t.captureLines(req.Mode)
	resp := captureResponse{
		RequestID: req.RequestID,
		Session:   t.sessionID,
		Pane:      t.paneID,
		Mode:      req.Mode,
		Lines:     lines,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	t.bus.Publish(t.CaptureResponseChannel(), string(data))
}

func (t *Terminal) captureLines(mode string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.grid.Rows()
	cols := t.grid.Cols()

	full := strings.EqualFold(mode, "FULL")
	lines := make([]string, 0, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < cols; x++ {
			b.WriteRune(t.grid.GetCell(x, y).Ch)
		}
		text := b.String()
		if !full && strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, text)
	}
	return lines
}

// Close releases the PTY.
func (t *Terminal) Close() error {
	return t.pty.Close()
}
