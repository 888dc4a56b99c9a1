package termcmd

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestColorToXParseColorFormatsRGB(t *testing.T) {
	got := colorToXParseColor(termenv.RGBColor("#ff0080"))
	want := "rgb:ffff/0000/8080"
	if got != want {
		t.Errorf("colorToXParseColor(#ff0080) = %q, want %q", got, want)
	}
}

func TestColorToXParseColorNonRGBIsEmpty(t *testing.T) {
	if got := colorToXParseColor(termenv.ANSIColor(1)); got != "" {
		t.Errorf("colorToXParseColor(ANSIColor) = %q, want empty", got)
	}
}

func TestRespondOSCColorsNoCacheIsNoop(t *testing.T) {
	r := newTestRenderer()
	// No PTY/term bound; respondOSCColors must not panic when there is
	// simply nothing cached to respond with.
	r.respondOSCColors([]byte("\033]10;?\033\\"))
}
