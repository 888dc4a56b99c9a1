package grid

// Cell is a single glyph position: a Unicode code point plus the style
// it was written with. The zero value holds rune 0, not a space; clear
// operations and the grid's default fill use blankCell instead.
type Cell struct {
	Ch    rune
	Style Style
}

// blankCell is the value clear operations fill with.
func blankCell() Cell {
	return Cell{Ch: ' ', Style: DefaultStyle}
}
