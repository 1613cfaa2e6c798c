// Package textutil converts between UTF-8 and UTF-32 buffers and measures
// displayed-character counts, underlying every column-width calculation in
// the line editor and the layered surface.
//
// Width measurement is grounded on github.com/mattn/go-runewidth and
// grapheme stepping on github.com/rivo/uniseg.
package textutil

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// UTF8ToUTF32 decodes a UTF-8 byte buffer into UTF-32 codepoints.
func UTF8ToUTF32(s string) []rune {
	return []rune(s)
}

// UTF32ToUTF8 encodes UTF-32 codepoints back into a UTF-8 string. Round
// trips with UTF8ToUTF32 for every valid input.
func UTF32ToUTF8(r []rune) string {
	return string(r)
}

// DisplayWidth measures the number of terminal cells a string occupies,
// ignoring UTF-8 continuation bytes and accounting for wide/zero-width
// runes the way a real terminal would.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneDisplayWidth is the cell width of a single rune (0, 1 or 2).
func RuneDisplayWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// GraphemeCount returns the number of user-perceived characters in s,
// which can be fewer than len([]rune(s)) when combining marks or
// grapheme clusters are present.
func GraphemeCount(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		n++
	}
	return n
}

// TruncateFromBack removes the trailing n displayed characters (graphemes)
// from s and returns what remains.
func TruncateFromBack(s string, n int) string {
	if n <= 0 {
		return s
	}
	var clusters []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if n >= len(clusters) {
		return ""
	}
	keep := clusters[:len(clusters)-n]
	out := ""
	for _, c := range keep {
		out += c
	}
	return out
}

// Pad right-pads s with spaces until it measures at least width displayed
// cells. If s is already that wide or wider, it is returned unchanged.
func Pad(s string, width int) string {
	w := DisplayWidth(s)
	if w >= width {
		return s
	}
	pad := make([]byte, width-w)
	for i := range pad {
		pad[i] = ' '
	}
	return s + string(pad)
}

// ByteOffsetAtCell maps a displayed-cell column (0-based, measured from
// the start of s) to the byte offset of the rune starting at or crossing
// that column.
func ByteOffsetAtCell(s string, cell int) int {
	if cell <= 0 {
		return 0
	}
	width := 0
	for i, r := range s {
		if width >= cell {
			return i
		}
		width += RuneDisplayWidth(r)
	}
	return len(s)
}

// GraphemeAt returns the byte offset of the start of the k-th grapheme
// cluster in s, and the byte length of that cluster. If k is out of range
// it returns the length of s and 0.
func GraphemeAt(s string, k int) (offset, length int) {
	i := 0
	pos := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		start, end := gr.Positions()
		if i == k {
			return start, end - start
		}
		i++
		pos = end
	}
	return pos, 0
}
