// Package bridge runs the headless cooperative tick loop described in
// spec.md §4.J: it couples a *terminal.Terminal to the control bus
// without a GUI, polling PTY output and server-injected input at a
// fixed rate on its own goroutine.
package bridge

import (
	"time"

	"titi/internal/eventlog"
)

// tickInterval targets the ~100 Hz cadence spec 4.J calls for.
const tickInterval = 10 * time.Millisecond

// Terminal is the subset of *terminal.Terminal the bridge drives. A
// narrow interface keeps this package testable without a real PTY.
//
// ReadLoop is expected to block on the PTY (step 1: "read() -> if
// Some(bytes), process_output(bytes)") and is run on its own goroutine
// so that PollServerInput/PublishOutputIfNeeded are never starved by a
// PTY that is idle for a while; the tick loop itself only drives steps
// 2 through 4.
type Terminal interface {
	ReadLoop(onData func()) error
	PublishOutputIfNeeded()
	PollCaptureRequest()
	PollServerInput() error
}

// Bridge owns one Terminal and drives its read/publish/inject cycle
// until the PTY closes or Stop is called.
type Bridge struct {
	term      Terminal
	sessionID string
	paneID    string
	log       *eventlog.Logger

	stop    chan struct{}
	done    chan struct{}
	readErr chan error
}

// New constructs a Bridge for term. sessionID/paneID are used only for
// log correlation. log may be nil, in which case logging is a no-op.
func New(term Terminal, sessionID, paneID string, log *eventlog.Logger) *Bridge {
	if log == nil {
		log = eventlog.Nop()
	}
	return &Bridge{
		term:      term,
		sessionID: sessionID,
		paneID:    paneID,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		readErr:   make(chan error, 1),
	}
}

// Run drives the tick loop until the PTY read loop ends (child exited,
// PTY closed) or Stop is called. Blocks the calling goroutine;
// typically invoked as `go bridge.Run()`.
func (b *Bridge) Run() error {
	defer close(b.done)
	go func() {
		b.readErr <- b.term.ReadLoop(func() {})
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return nil
		case err := <-b.readErr:
			return err
		case <-ticker.C:
			// Step 2: publish dirty lines.
			b.term.PublishOutputIfNeeded()

			// Step 2.5: answer any pending capture request.
			b.term.PollCaptureRequest()

			// Step 3: inject any server-queued input.
			if err := b.term.PollServerInput(); err != nil {
				b.log.BridgeTickError(b.sessionID, b.paneID, err.Error())
			}
		}
	}
}

// Stop signals Run to exit and blocks until it has done so. Does not
// close the underlying Terminal; callers close it separately so the
// read-loop goroutine unblocks.
func (b *Bridge) Stop() {
	close(b.stop)
	<-b.done
}
