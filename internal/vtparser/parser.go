// Package vtparser implements a Paul Williams-style ANSI/VT escape state
// machine. The parser is driven byte-by-byte and preserves state across
// chunk boundaries — the same *Parser instance must be reused for every
// read from a single PTY, never reconstructed per chunk, or multi-byte
// sequences (UTF-8 runs, split escape sequences) would break.
//
// The parser owns no screen state; it emits events to a GridSink, which
// in this module is implemented by *grid.Grid (see sink.go).
package vtparser

import "unicode/utf8"

type state uint8

const (
	stateGround state = iota
	stateEscape
	stateCSIEntry
	stateCSIParam
	stateOSC
	stateOSCEsc
	stateDCS // accepted and discarded, per spec 4.B
	stateDCSEsc
)

// Parser is a byte-at-a-time VT/ANSI state machine. Zero value is not
// usable; construct with New.
type Parser struct {
	st state

	// UTF-8 assembly
	utf8Buf  [utf8.UTFMax]byte
	utf8Want int
	utf8Got  int

	// CSI/ESC accumulation
	params       []int
	curParam     int
	curParamSet  bool
	intermediate []byte

	// OSC/DCS accumulation (discarded on dispatch, but we track the
	// terminator state machine so embedded ESC doesn't misparse).
	// onUnknownFinal, when set, is called with the dropped final byte
	// for debug logging (spec 4.B: "unknown finals are logged at debug
	// level and dropped").
	onUnknownFinal func(final byte, params []int)

	sgr sgrHandler
}

// New constructs a Parser bound to g. GridSink covers both the
// cursor/screen operations and the current-style accessors that SGR
// handling needs (see sgr.go), so the common case (package terminal
// wiring a *grid.Grid) passes a single value.
func New(g GridSink) *Parser {
	return &Parser{
		st:  stateGround,
		sgr: sgrHandler{g: g},
	}
}

// OnUnknownFinal registers a callback invoked when the parser drops an
// unrecognized CSI/ESC final byte. Intended for debug-level logging.
func (p *Parser) OnUnknownFinal(fn func(final byte, params []int)) {
	p.onUnknownFinal = fn
}

// Write feeds bytes into the parser, mutating the bound grid as events
// are recognized. It never returns an error: malformed input is
// absorbed, per spec's "parser never crashes" contract.
func (p *Parser) Write(data []byte) {
	for _, b := range data {
		p.step(b)
	}
}

func (p *Parser) step(b byte) {
	switch p.st {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateCSIEntry, stateCSIParam:
		p.stepCSI(b)
	case stateOSC:
		p.stepOSC(b)
	case stateOSCEsc:
		if b == '\\' {
			p.st = stateGround
		} else {
			p.st = stateOSC
			p.stepOSC(b)
		}
	case stateDCS:
		if b == 0x1b {
			p.st = stateDCSEsc
		}
	case stateDCSEsc:
		if b == '\\' {
			p.st = stateGround
		} else {
			p.st = stateDCS
		}
	}
}

func (p *Parser) stepGround(b byte) {
	switch {
	case b == 0x1b:
		p.beginEscape()
	case b == '\n' || b == 0x0b || b == 0x0c: // LF, VT, FF
		p.sgr.g.Newline()
	case b == '\r':
		p.sgr.g.CarriageReturn()
	case b == 0x08:
		p.sgr.g.Backspace()
	case b == '\t':
		p.sgr.g.Tab()
	case b < 0x20:
		// other C0 controls: consumed silently
	case b < 0x80:
		p.sgr.g.PutChar(rune(b))
	default:
		p.feedUTF8(b)
	}
}

// feedUTF8 assembles UTF-8 continuation bytes into a full code point
// before emitting PutChar. Invalid sequences are dropped, never
// crashing the parser.
func (p *Parser) feedUTF8(b byte) {
	if p.utf8Got == 0 {
		n := utf8SeqLen(b)
		if n == 0 {
			return // invalid lead byte, drop
		}
		p.utf8Want = n
		p.utf8Got = 1
		p.utf8Buf[0] = b
		if n == 1 {
			p.flushUTF8()
		}
		return
	}
	if b&0xC0 != 0x80 {
		// not a continuation byte: abandon the partial sequence and
		// reprocess b as a fresh lead byte
		p.utf8Got = 0
		p.stepGround(b)
		return
	}
	p.utf8Buf[p.utf8Got] = b
	p.utf8Got++
	if p.utf8Got >= p.utf8Want {
		p.flushUTF8()
	}
}

func (p *Parser) flushUTF8() {
	r, size := utf8.DecodeRune(p.utf8Buf[:p.utf8Got])
	if r != utf8.RuneError || size == p.utf8Got {
		p.sgr.g.PutChar(r)
	}
	p.utf8Got = 0
	p.utf8Want = 0
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

func (p *Parser) beginEscape() {
	p.st = stateEscape
	p.params = p.params[:0]
	p.curParam = 0
	p.curParamSet = false
	p.intermediate = p.intermediate[:0]
}

func (p *Parser) stepEscape(b byte) {
	switch {
	case b == '[':
		p.st = stateCSIEntry
	case b == ']':
		p.st = stateOSC
	case b == 'P':
		p.st = stateDCS
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
	default:
		// ESC dispatch: accepted and discarded per spec 4.B
		p.st = stateGround
	}
}

func (p *Parser) stepCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.curParam = p.curParam*10 + int(b-'0')
		p.curParamSet = true
		p.st = stateCSIParam
	case b == ';':
		p.params = append(p.params, p.curParam)
		p.curParam = 0
		p.curParamSet = false
		p.st = stateCSIParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = append(p.intermediate, b)
	case b >= 0x40 && b <= 0x7e:
		if p.curParamSet || len(p.params) > 0 {
			p.params = append(p.params, p.curParam)
		}
		p.dispatchCSI(b, p.params, p.intermediate)
		p.st = stateGround
	default:
		// ignored byte within CSI (e.g. stray C0), stay in state
	}
}

func (p *Parser) stepOSC(b byte) {
	switch b {
	case 0x07: // BEL terminates OSC
		p.st = stateGround
	case 0x1b:
		p.st = stateOSCEsc
	default:
		// body bytes accepted and discarded per spec 4.B
	}
}

func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

func rawParam(params []int, i, def int) (int, bool) {
	if i >= len(params) {
		return def, false
	}
	return params[i], true
}

func (p *Parser) dispatchCSI(final byte, params []int, intermediate []byte) {
	g := p.sgr.g
	switch final {
	case 'A':
		g.MoveCursor(0, -param(params, 0, 1))
	case 'B':
		g.MoveCursor(0, param(params, 0, 1))
	case 'C':
		g.MoveCursor(param(params, 0, 1), 0)
	case 'D':
		g.MoveCursor(-param(params, 0, 1), 0)
	case 'H', 'f':
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		g.SetCursor(col-1, row-1)
	case 'J':
		// All variants collapse to clear_screen: an acceptable
		// simplification licensed by spec 4.B / 9.
		g.ClearScreen()
	case 'K':
		g.ClearLine()
	case 'r':
		top, _ := rawParam(params, 0, 1)
		bottom, ok := rawParam(params, 1, 0)
		if !ok || bottom == 0 {
			bottom = g.Rows()
		}
		g.SetScrollRegion(top-1, bottom-1)
	case 's':
		g.SaveCursor()
	case 'u':
		g.RestoreCursor()
	case 'm':
		p.sgr.apply(params)
	default:
		if p.onUnknownFinal != nil {
			p.onUnknownFinal(final, params)
		}
	}
}
