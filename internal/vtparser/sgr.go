package vtparser

import "titi/internal/grid"

// sgrHandler applies Select Graphic Rendition parameter streams to the
// grid's current style.
type sgrHandler struct {
	g GridSink
}

// apply processes one ESC[...m parameter list against the grid's
// current style. An empty list is equivalent to a single 0 (reset).
func (h *sgrHandler) apply(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	s := h.g.CurrentStyle()
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s = grid.DefaultStyle
		case p == 1:
			s.Bold = true
		case p == 3:
			s.Italic = true
		case p == 4:
			s.Underline = true
		case p == 7:
			s.Inverse = true
		case p == 9:
			s.Strikethrough = true
		case p == 22:
			s.Bold = false
		case p == 23:
			s.Italic = false
		case p == 24:
			s.Underline = false
		case p == 27:
			s.Inverse = false
		case p == 29:
			s.Strikethrough = false
		case p >= 30 && p <= 37:
			s.Fg = grid.Named(uint8(p - 30))
		case p == 38:
			c, consumed := h.parseExtendedColor(params[i+1:])
			if consumed > 0 {
				s.Fg = c
				i += consumed
			} else {
				i = len(params)
			}
		case p == 39:
			s.Fg = grid.DefaultColor
		case p >= 40 && p <= 47:
			s.Bg = grid.Named(uint8(p - 40))
		case p == 48:
			c, consumed := h.parseExtendedColor(params[i+1:])
			if consumed > 0 {
				s.Bg = c
				i += consumed
			} else {
				i = len(params)
			}
		case p == 49:
			s.Bg = grid.DefaultColor
		case p >= 90 && p <= 97:
			s.Fg = grid.Named(uint8(p-90) + 8)
		case p >= 100 && p <= 107:
			s.Bg = grid.Named(uint8(p-100) + 8)
		}
	}
	h.g.SetCurrentStyle(s)
}

// parseExtendedColor interprets the sub-parameters following a 38 or 48
// code: either "5;N" (256-color palette) or "2;R;G;B" (true color). It
// returns the resolved color and how many of rest were consumed (0 if
// malformed, in which case the caller drops the whole extended spec).
func (h *sgrHandler) parseExtendedColor(rest []int) (grid.Color, int) {
	if len(rest) == 0 {
		return grid.DefaultColor, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return grid.DefaultColor, 0
		}
		idx := rest[1]
		if idx < 0 || idx > 255 {
			idx = 0
		}
		return grid.Color256(uint8(idx)), 2
	case 2:
		if len(rest) < 4 {
			return grid.DefaultColor, 0
		}
		return grid.RGB(clampByte(rest[1]), clampByte(rest[2]), clampByte(rest[3])), 4
	default:
		return grid.DefaultColor, 0
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
