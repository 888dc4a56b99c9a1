package termcmd

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"titi/internal/grid"
)

func newTestRenderer() *renderer {
	return &renderer{out: termenv.NewOutput(&strings.Builder{}, termenv.WithProfile(termenv.TrueColor))}
}

func TestStyledDefaultStyleIsPlainText(t *testing.T) {
	r := newTestRenderer()
	if got := r.styled("hi", grid.DefaultStyle); got != "hi" {
		t.Errorf("styled(DefaultStyle) = %q, want plain %q", got, "hi")
	}
}

func TestStyledBoldNamedColorAddsEscapes(t *testing.T) {
	r := newTestRenderer()
	s := grid.Style{Fg: grid.Named(1), Bg: grid.DefaultColor, Bold: true}
	got := r.styled("x", s)
	if got == "x" {
		t.Errorf("styled(bold+fg) = %q, want styling applied", got)
	}
}

func TestRenderLineBlankRowIsPlainSpaces(t *testing.T) {
	g := grid.New(5, 1)
	r := newTestRenderer()
	line := r.renderLine(g, 0)
	if line != "     " {
		t.Errorf("renderLine = %q, want five spaces", line)
	}
}

func TestTermenvColorSkipsDefault(t *testing.T) {
	r := newTestRenderer()
	if _, ok := termenvColor(r.out, grid.DefaultColor); ok {
		t.Error("termenvColor(DefaultColor) should report ok=false")
	}
	if _, ok := termenvColor(r.out, grid.Named(2)); !ok {
		t.Error("termenvColor(Named) should report ok=true")
	}
	if _, ok := termenvColor(r.out, grid.RGB(1, 2, 3)); !ok {
		t.Error("termenvColor(RGB) should report ok=true")
	}
}
