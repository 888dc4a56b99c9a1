package grid

// Style is the set of attributes applied to a cell's glyph.
type Style struct {
	Fg            Color
	Bg            Color
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Inverse       bool
}

// DefaultStyle is the style newly constructed cells and a freshly reset
// SGR state use.
var DefaultStyle = Style{Fg: DefaultColor, Bg: DefaultColor}

// Reset restores s to DefaultStyle in place.
func (s *Style) Reset() {
	*s = DefaultStyle
}
