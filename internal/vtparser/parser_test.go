package vtparser

import (
	"testing"

	"titi/internal/grid"
)

func cellText(g *grid.Grid, y int) string {
	s := make([]rune, g.Cols())
	for x := 0; x < g.Cols(); x++ {
		s[x] = g.GetCell(x, y).Ch
	}
	return string(s)
}

func TestWritePlainTextPutsChars(t *testing.T) {
	g := grid.New(10, 2)
	p := New(g)
	p.Write([]byte("hi"))
	if got := cellText(g, 0); got[:2] != "hi" {
		t.Errorf("row 0 = %q, want prefix hi", got)
	}
}

func TestWriteSplitAcrossChunksPreservesState(t *testing.T) {
	g := grid.New(10, 2)
	p := New(g)
	// Split a CSI cursor-move sequence across two Write calls.
	p.Write([]byte("\x1b["))
	p.Write([]byte("5C")) // cursor forward 5
	x, _ := g.Cursor()
	if x != 5 {
		t.Errorf("cursor x after split CSI = %d, want 5", x)
	}
}

func TestCursorMovementCSI(t *testing.T) {
	g := grid.New(10, 10)
	p := New(g)
	p.Write([]byte("\x1b[5;3H")) // row 5, col 3 (1-indexed)
	x, y := g.Cursor()
	if x != 2 || y != 4 {
		t.Errorf("cursor after CUP = (%d,%d), want (2,4)", x, y)
	}
}

func TestClearScreenCSI(t *testing.T) {
	g := grid.New(5, 2)
	p := New(g)
	p.Write([]byte("ab"))
	p.Write([]byte("\x1b[2J"))
	if got := cellText(g, 0); got != "     " {
		t.Errorf("row after clear = %q, want blank", got)
	}
}

func TestSGRResetToDefault(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[1;31m")) // bold + red fg
	if !g.CurrentStyle().Bold {
		t.Fatal("expected bold after SGR 1")
	}
	p.Write([]byte("\x1b[0m"))
	if g.CurrentStyle() != grid.DefaultStyle {
		t.Errorf("style after SGR 0 = %+v, want DefaultStyle", g.CurrentStyle())
	}
}

func TestSGREmptyParamsIsReset(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[1m"))
	p.Write([]byte("\x1b[m")) // bare ESC[m == reset
	if g.CurrentStyle() != grid.DefaultStyle {
		t.Errorf("style after bare SGR = %+v, want DefaultStyle", g.CurrentStyle())
	}
}

func TestSGRNamedForegroundAndBackground(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[31;44m"))
	s := g.CurrentStyle()
	if s.Fg != grid.Named(1) {
		t.Errorf("fg = %+v, want Named(1) red", s.Fg)
	}
	if s.Bg != grid.Named(4) {
		t.Errorf("bg = %+v, want Named(4) blue", s.Bg)
	}
}

func TestSGR256ColorForeground(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[38;5;196m")) // a color-cube entry
	want := grid.Color256(196)
	if g.CurrentStyle().Fg != want {
		t.Errorf("fg = %+v, want %+v", g.CurrentStyle().Fg, want)
	}
}

func TestSGR256ColorBoundaries(t *testing.T) {
	cases := []struct {
		idx  uint8
		kind grid.ColorKind
	}{
		{0, grid.ColorNamed},
		{15, grid.ColorNamed},
		{16, grid.ColorRGB},
		{231, grid.ColorRGB},
		{232, grid.ColorRGB},
		{255, grid.ColorRGB},
	}
	for _, c := range cases {
		got := grid.Color256(c.idx)
		if got.Kind != c.kind {
			t.Errorf("Color256(%d).Kind = %v, want %v", c.idx, got.Kind, c.kind)
		}
	}
	// Grayscale ramp endpoints per spec formula: 8 + (idx-232)*10.
	if g232 := grid.Color256(232); g232.R != 8 {
		t.Errorf("Color256(232).R = %d, want 8", g232.R)
	}
	if g255 := grid.Color256(255); g255.R != 8+23*10 {
		t.Errorf("Color256(255).R = %d, want %d", g255.R, 8+23*10)
	}
}

func TestSGRTrueColor(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[38;2;10;20;30m"))
	want := grid.RGB(10, 20, 30)
	if g.CurrentStyle().Fg != want {
		t.Errorf("fg = %+v, want %+v", g.CurrentStyle().Fg, want)
	}
}

func TestSGRMalformedExtendedColorIsDropped(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("\x1b[38;5m")) // missing the palette index
	if g.CurrentStyle().Fg != grid.DefaultColor {
		t.Errorf("fg after malformed extended color = %+v, want unchanged default", g.CurrentStyle().Fg)
	}
}

func TestUnknownCSIFinalInvokesCallback(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)

	var gotFinal byte
	var gotParams []int
	p.OnUnknownFinal(func(final byte, params []int) {
		gotFinal = final
		gotParams = append([]int(nil), params...)
	})
	p.Write([]byte("\x1b[7;9x")) // 'x' is not a final we handle
	if gotFinal != 'x' {
		t.Fatalf("expected callback with final 'x', got %q", gotFinal)
	}
	if len(gotParams) != 2 || gotParams[0] != 7 || gotParams[1] != 9 {
		t.Errorf("params = %v, want [7 9]", gotParams)
	}
}

func TestUTF8MultibyteCharacter(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte("caf\xc3\xa9")) // "café"
	if got := cellText(g, 0); got[:len("café")] != "café" {
		t.Errorf("row 0 = %q, want prefix café", got)
	}
}

func TestUTF8InvalidLeadByteDropped(t *testing.T) {
	g := grid.New(5, 1)
	p := New(g)
	p.Write([]byte{0xff, 'a'})
	if got := cellText(g, 0); got[0] != 'a' {
		t.Errorf("row 0 = %q, want leading invalid byte dropped, then 'a'", got)
	}
}

func TestScrollRegionCSI(t *testing.T) {
	g := grid.New(5, 10)
	p := New(g)
	p.Write([]byte("\x1b[3;6r"))
	top, bottom := g.ScrollRegion()
	if top != 2 || bottom != 5 {
		t.Errorf("scroll region = (%d,%d), want (2,5)", top, bottom)
	}
}

func TestSaveRestoreCursorCSI(t *testing.T) {
	g := grid.New(5, 5)
	p := New(g)
	p.Write([]byte("\x1b[3;3H\x1b[s"))
	p.Write([]byte("\x1b[1;1H\x1b[u"))
	x, y := g.Cursor()
	if x != 2 || y != 2 {
		t.Errorf("cursor after save/restore = (%d,%d), want (2,2)", x, y)
	}
}

func TestOSCSequenceIsDiscarded(t *testing.T) {
	g := grid.New(10, 1)
	p := New(g)
	p.Write([]byte("\x1b]0;window title\x07abc"))
	if got := cellText(g, 0); got[:3] != "abc" {
		t.Errorf("row 0 = %q, want abc after discarded OSC", got)
	}
}

func TestDCSSequenceIsDiscarded(t *testing.T) {
	g := grid.New(10, 1)
	p := New(g)
	p.Write([]byte("\x1bPq...garbage...\x1b\\xyz"))
	if got := cellText(g, 0); got[:3] != "xyz" {
		t.Errorf("row 0 = %q, want xyz after discarded DCS", got)
	}
}
