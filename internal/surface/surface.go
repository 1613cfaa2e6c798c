// Package surface implements a width×height grid of transparent layers
// composited top-down into one visible frame, plus scrolling and two
// kinds of time-based animation.
package surface

import (
	"strings"

	"github.com/trailhuang/mechshell/internal/textutil"
)

// OpacityThreshold is the minimum opacity (exclusive) a cell must have to
// be chosen during composition.
const OpacityThreshold = 15

// Layer is one codepoint/opacity grid. Layer 0 is the surface's opaque
// base; higher layers are overlays.
type Layer struct {
	width, height  int
	codepoints     [][]rune
	opacities      [][]byte
	defaultOpacity byte
}

func newLayer(width, height int, transparentClear bool) *Layer {
	l := &Layer{width: width, height: height}
	if !transparentClear {
		l.defaultOpacity = 255
	}
	l.codepoints = make([][]rune, height)
	l.opacities = make([][]byte, height)
	for r := 0; r < height; r++ {
		l.codepoints[r] = blankRow(width)
		l.opacities[r] = opacityRow(width, l.defaultOpacity)
	}
	return l
}

func blankRow(width int) []rune {
	row := make([]rune, width)
	for i := range row {
		row[i] = ' '
	}
	return row
}

func opacityRow(width int, v byte) []byte {
	row := make([]byte, width)
	for i := range row {
		row[i] = v
	}
	return row
}

// Surface owns a fixed-size grid of layers, an append cursor, and the
// animations currently running against it.
type Surface struct {
	width, height        int
	layers               []*Layer
	cursorRow, cursorCol int
	animations           []Animation
}

// New returns a surface with one opaque base layer and numExtraLayers
// transparent overlays above it.
func New(width, height, numExtraLayers int) *Surface {
	s := &Surface{width: width, height: height}
	s.layers = append(s.layers, newLayer(width, height, false))
	for i := 0; i < numExtraLayers; i++ {
		s.layers = append(s.layers, newLayer(width, height, true))
	}
	return s
}

// Width and Height report the fixed grid dimensions.
func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// LayerCount reports how many layers the surface owns.
func (s *Surface) LayerCount() int { return len(s.layers) }

// SetChar writes one codepoint into layer at (row,col) and makes that cell
// opaque.
func (s *Surface) SetChar(layer, row, col int, ch rune) {
	l := s.layers[layer]
	l.codepoints[row][col] = ch
	l.opacities[row][col] = 255
}

// SetStr writes s starting at (row,col) on layer, one rune per cell,
// truncated at the right edge.
func (s *Surface) SetStr(layer, row, col int, str string) {
	c := col
	for _, r := range str {
		if c >= s.width {
			break
		}
		s.SetChar(layer, row, c, r)
		c++
	}
}

// SetStrClipped writes at most maxWidth displayed cells of str starting at
// (row,col) on layer.
func (s *Surface) SetStrClipped(layer, row, col int, str string, maxWidth int) {
	c := col
	written := 0
	for _, r := range str {
		w := textutil.RuneDisplayWidth(r)
		if c >= s.width || written+w > maxWidth {
			break
		}
		s.SetChar(layer, row, c, r)
		c++
		written += w
	}
}

// SetOpacity sets a cell's opacity directly (0-255).
func (s *Surface) SetOpacity(layer, row, col int, opacity byte) {
	s.layers[layer].opacities[row][col] = opacity
}

// SetOpaque is SetOpacity(layer,row,col,255).
func (s *Surface) SetOpaque(layer, row, col int) {
	s.SetOpacity(layer, row, col, 255)
}

// CopyStr overwrites an entire row of layer with str, left-aligned and
// space-padded, and marks the row opaque.
func (s *Surface) CopyStr(layer, row int, str string) {
	s.Clear(layer, row)
	s.SetStr(layer, row, 0, str)
	for c := 0; c < s.width; c++ {
		s.SetOpaque(layer, row, c)
	}
}

// Clear resets one row of layer to its default blank/opacity state.
func (s *Surface) Clear(layer, row int) {
	l := s.layers[layer]
	l.codepoints[row] = blankRow(s.width)
	l.opacities[row] = opacityRow(s.width, l.defaultOpacity)
}

// composedCell walks layers top-down (highest index first) and returns the
// codepoint of the first one whose opacity at (row,col) exceeds
// OpacityThreshold; a space if none qualify.
func (s *Surface) composedCell(row, col int) rune {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if l.opacities[row][col] > OpacityThreshold {
			return l.codepoints[row][col]
		}
	}
	return ' '
}

// GetUtf32Char is the composed codepoint at (row,col).
func (s *Surface) GetUtf32Char(row, col int) rune { return s.composedCell(row, col) }

// GetUtf8Line returns the composed content of an entire row as a UTF-8
// string.
func (s *Surface) GetUtf8Line(row int) string {
	var b strings.Builder
	for c := 0; c < s.width; c++ {
		b.WriteRune(s.composedCell(row, c))
	}
	return b.String()
}

// Append writes text into layer starting at the cursor, wrapping to
// further rows as needed. If the text needs more rows than remain, the
// surface scrolls up by the overflow; the rows displaced off the top are
// returned concatenated (each row's composed content, in order), or an
// empty string if nothing was displaced.
func (s *Surface) Append(text string, layer int) string {
	var scrolledOff strings.Builder
	l := s.layers[layer]
	for _, r := range text {
		if s.cursorCol >= s.width {
			s.cursorCol = 0
			s.cursorRow++
			if s.cursorRow >= s.height {
				scrolledOff.WriteString(s.Scroll(1))
				s.cursorRow = s.height - 1
			}
		}
		l.codepoints[s.cursorRow][s.cursorCol] = r
		l.opacities[s.cursorRow][s.cursorCol] = 255
		s.cursorCol++
	}
	return scrolledOff.String()
}

// Scroll copies rows [n, height) up to [0, height-n) on every layer,
// filling the vacated rows with each layer's blank/default-opacity state,
// and returns the composed content of the n rows that were pushed off the
// top, concatenated.
func (s *Surface) Scroll(n int) string {
	if n <= 0 {
		return ""
	}
	if n > s.height {
		n = s.height
	}
	var removed strings.Builder
	for r := 0; r < n; r++ {
		removed.WriteString(s.GetUtf8Line(r))
	}
	for _, l := range s.layers {
		copy(l.codepoints, l.codepoints[n:])
		copy(l.opacities, l.opacities[n:])
		for r := s.height - n; r < s.height; r++ {
			l.codepoints[r] = blankRow(s.width)
			l.opacities[r] = opacityRow(s.width, l.defaultOpacity)
		}
	}
	if s.cursorRow >= n {
		s.cursorRow -= n
	} else {
		s.cursorRow = 0
	}
	return removed.String()
}

// SetCursor repositions the append cursor.
func (s *Surface) SetCursor(row, col int) { s.cursorRow, s.cursorCol = row, col }

// Cursor reports the append cursor's current position.
func (s *Surface) Cursor() (row, col int) { return s.cursorRow, s.cursorCol }

// AddAnimation registers a running animation.
func (s *Surface) AddAnimation(a Animation) {
	s.animations = append(s.animations, a)
}

// Update advances every running animation by dt, then compacts out any
// that have completed. Every animation observes the same dt for a frame.
func (s *Surface) Update(dt float64) {
	for _, a := range s.animations {
		a.Update(dt)
	}
	live := s.animations[:0]
	for _, a := range s.animations {
		if !a.Complete() {
			live = append(live, a)
		}
	}
	s.animations = live
}

// Animations exposes the currently running animations (read-only use:
// tests and diagnostics).
func (s *Surface) Animations() []Animation { return s.animations }
