package termcmd

import (
	"bytes"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// cacheRealColors queries the real terminal's foreground/background
// colors before the child shell starts. Grid has no notion of "the
// terminal's own" default colors, so a child that queries OSC 10/11
// would otherwise get no reply at all.
func (r *renderer) cacheRealColors() {
	if fg := r.out.ForegroundColor(); fg != nil {
		r.oscFg = colorToXParseColor(fg)
	}
	if bg := r.out.BackgroundColor(); bg != nil {
		r.oscBg = colorToXParseColor(bg)
	}
}

// respondOSCColors answers OSC 10/11 color queries found in raw PTY
// output with the cached real-terminal colors.
func (r *renderer) respondOSCColors(data []byte) {
	if r.oscFg != "" && bytes.Contains(data, []byte("\033]10;?")) {
		r.term.Write([]byte(fmt.Sprintf("\033]10;%s\033\\", r.oscFg)))
	}
	if r.oscBg != "" && bytes.Contains(data, []byte("\033]11;?")) {
		r.term.Write([]byte(fmt.Sprintf("\033]11;%s\033\\", r.oscBg)))
	}
}

// colorToXParseColor converts a termenv truecolor value to the X11
// "rgb:RRRR/GGGG/BBBB" format OSC 10/11 replies use, via go-colorful's
// hex parsing rather than hand-rolling the #rrggbb split.
func colorToXParseColor(c termenv.Color) string {
	hex, ok := c.(termenv.RGBColor)
	if !ok {
		return ""
	}
	col, err := colorful.Hex(string(hex))
	if err != nil {
		return ""
	}
	r, g, b := col.RGB255()
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
