package termcmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"titi/internal/grid"
	"titi/internal/terminal"
)

// renderer owns the one thing the interactive CLI adds on top of
// Terminal: drawing its Grid to the attached TTY. It does no GPU
// rendering, glyph shaping, or windowing, per spec's Non-goals — just
// an SGR-per-cell text dump, the "ambient" CLI surface around the
// shared core.
type renderer struct {
	mu    sync.Mutex
	term  *terminal.Terminal
	out   *termenv.Output
	oscFg string
	oscBg string
}

// runInteractive puts the TTY in raw mode, spawns a local Terminal (no
// control bus), and mirrors its Grid to stdout until the child shell
// exits.
func runInteractive(cmd *cobra.Command, opts runOptions) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("titi: stdin is not a terminal (use --headless for non-interactive use)")
	}

	cols, rows := opts.cols, opts.rows
	if c, r, err := term.GetSize(fd); err == nil {
		cols, rows = c, r
	}

	var t *terminal.Terminal
	var err error
	if len(opts.shellArgs) > 0 {
		t, err = terminal.NewWithArgs(cols, rows, opts.shellArgs[0], opts.shellArgs[1:])
	} else {
		t, err = terminal.New(cols, rows)
	}
	if err != nil {
		return fmt.Errorf("titi: starting terminal: %w", err)
	}
	defer t.Close()

	restore, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("titi: entering raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, restore)
		os.Stdout.WriteString("\033[?25h\033[0m\r\n")
	}()

	r := &renderer{term: t, out: termenv.NewOutput(os.Stdout)}
	r.cacheRealColors()
	t.OnRawOutput(r.respondOSCColors)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	go r.watchResize(sigCh, fd)
	defer signal.Stop(sigCh)

	go forwardStdin(t)

	os.Stdout.WriteString("\033[2J\033[H")
	readErr := make(chan error, 1)
	go func() {
		readErr <- t.ReadLoop(r.render)
	}()

	return <-readErr
}

// forwardStdin copies raw keystrokes straight to the PTY; the grid
// doesn't interpret input, it only renders the child's output.
func forwardStdin(t *terminal.Terminal) {
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			t.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// watchResize updates both the PTY and the grid on SIGWINCH.
func (r *renderer) watchResize(sigCh <-chan os.Signal, fd int) {
	for range sigCh {
		cols, rows, err := term.GetSize(fd)
		if err != nil {
			continue
		}
		r.term.Resize(cols, rows)
		os.Stdout.WriteString("\033[2J")
		r.render()
	}
}

// render redraws every row of the grid, cursor-homed, one line at a
// time. Called after each PTY read, so it is frequent; it does no
// double-buffering or diffing beyond the grid's own dirty tracking
// being irrelevant here (a full redraw is cheap at terminal sizes).
func (r *renderer) render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.term.Grid()
	var b strings.Builder
	b.WriteString("\033[H")
	for y := 0; y < g.Rows(); y++ {
		b.WriteString(r.renderLine(g, y))
		if y < g.Rows()-1 {
			b.WriteString("\r\n")
		}
	}
	os.Stdout.WriteString(b.String())
}

// renderLine emits one row as a sequence of styled runs, grouping
// consecutive cells that share a style into one termenv.Style rather
// than styling cell by cell.
func (r *renderer) renderLine(g *grid.Grid, y int) string {
	var b strings.Builder
	var run strings.Builder
	var runStyle grid.Style
	haveRun := false

	flush := func() {
		if !haveRun {
			return
		}
		b.WriteString(r.styled(run.String(), runStyle))
		run.Reset()
		haveRun = false
	}

	for x := 0; x < g.Cols(); x++ {
		cell := g.GetCell(x, y)
		if !haveRun || cell.Style != runStyle {
			flush()
			runStyle = cell.Style
			haveRun = true
		}
		run.WriteRune(cell.Ch)
		if runewidth.RuneWidth(cell.Ch) == 2 && x+1 < g.Cols() {
			x++
		}
	}
	flush()
	return b.String()
}

// styled renders text under s using the output's detected color
// profile, so a basic-ANSI terminal gets degraded colors instead of a
// raw truecolor escape it can't understand.
func (r *renderer) styled(text string, s grid.Style) string {
	if s == (grid.Style{}) {
		return text
	}
	st := r.out.String(text)
	if s.Bold {
		st = st.Bold()
	}
	if s.Italic {
		st = st.Italic()
	}
	if s.Underline {
		st = st.Underline()
	}
	if s.Inverse {
		st = st.Reverse()
	}
	if s.Strikethrough {
		st = st.CrossOut()
	}
	if fg, ok := termenvColor(r.out, s.Fg); ok {
		st = st.Foreground(fg)
	}
	if bg, ok := termenvColor(r.out, s.Bg); ok {
		st = st.Background(bg)
	}
	return st.String()
}

// termenvColor maps a grid.Color to a termenv.Color, leaving
// ColorDefault unmapped so the terminal's own default fg/bg shows
// through rather than being overridden.
func termenvColor(out *termenv.Output, c grid.Color) (termenv.Color, bool) {
	switch c.Kind {
	case grid.ColorNamed:
		return out.Color(strconv.Itoa(int(c.Index))), true
	case grid.ColorRGB:
		return out.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), true
	default:
		return nil, false
	}
}
