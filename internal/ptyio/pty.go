// Package ptyio spawns a shell behind a pseudo-terminal and exposes
// blocking read, timed write, and resize. It owns no job-control logic
// beyond spawn/resize/close, per spec's explicit scope boundary.
package ptyio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
)

// ErrWriteTimeout is returned by Write when the PTY's input buffer is
// full and the write could not complete within the timeout: a full PTY
// buffer must never block the scheduler indefinitely.
var ErrWriteTimeout = errors.New("ptyio: write timed out")

// PTY wraps a spawned shell's pseudo-terminal master.
type PTY struct {
	cmd *exec.Cmd
	f   *os.File

	writeMu sync.Mutex
}

// Spawn starts the resolved shell attached to a new PTY sized cols x
// rows.
func Spawn(cols, rows int) (*PTY, error) {
	shell := ResolveShell()
	cmd := exec.Command(shell)
	cmd.Env = os.Environ()
	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("ptyio: spawn %s: %w", shell, err)
	}
	return &PTY{cmd: cmd, f: f}, nil
}

// SpawnArgs is Spawn with explicit program and argv, used by the
// interactive CLI's --shell-args flag.
func SpawnArgs(program string, args []string, cols, rows int) (*PTY, error) {
	cmd := exec.Command(program, args...)
	cmd.Env = os.Environ()
	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("ptyio: spawn %s: %w", program, err)
	}
	return &PTY{cmd: cmd, f: f}, nil
}

// Read blocks until at least one byte is available, the child exits, or
// the PTY is closed; the last two return the underlying read error
// wrapped with a "ptyio: read" prefix. It is not required to be
// non-blocking at the syscall level; callers run it on its own
// goroutine (see package terminal), matching the original's read-loop
// shape while fitting Go's blocking-read idiom.
func (p *PTY) Read(buf []byte) (int, error) {
	n, err := p.f.Read(buf)
	if err != nil {
		return n, fmt.Errorf("ptyio: read: %w", err)
	}
	return n, nil
}

// Write sends bytes to the PTY, verbatim, giving up after timeout if
// the PTY's buffer stays full. A timeout <=0 disables the deadline.
func (p *PTY) Write(data []byte, timeout time.Duration) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if timeout <= 0 {
		_, err := p.f.Write(data)
		if err != nil {
			return fmt.Errorf("ptyio: write: %w", err)
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.f.Write(data)
		done <- err
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ptyio: write: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrWriteTimeout
	}
}

// Resize changes the PTY's reported window size.
func (p *PTY) Resize(cols, rows int) error {
	if err := pty.Setsize(p.f, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("ptyio: resize: %w", err)
	}
	return nil
}

// Close closes the PTY master, which SIGHUPs the child.
func (p *PTY) Close() error {
	return p.f.Close()
}

// Wait blocks until the child process exits.
func (p *PTY) Wait() error {
	return p.cmd.Wait()
}
