package editor

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// cursorForward emits ESC[nC — cursor right by n cells.
func cursorForward(n int) string {
	if n <= 0 {
		return ""
	}
	return ansi.CursorForward(n)
}

// cursorPrevLine emits ESC[nF — cursor to column 0 of the n-th previous
// line.
func cursorPrevLine(n int) string {
	if n <= 0 {
		return ""
	}
	return ansi.CursorPreviousLine(n)
}

// cursorNextLine emits ESC[nE — cursor to column 0 of the n-th next line.
func cursorNextLine(n int) string {
	if n <= 0 {
		return ""
	}
	return ansi.CursorNextLine(n)
}

// foregroundTruecolor emits ESC[38;2;r;g;bm for c, but only when termProfile
// reports truecolor support; on a degraded profile it falls back to no
// styling at all rather than emitting codes the terminal can't render.
func foregroundTruecolor(c colorful.Color) string {
	if termProfile < termenv.TrueColor {
		return ""
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// backgroundTruecolor emits ESC[48;2;r;g;bm for c, gated the same way as
// foregroundTruecolor.
func backgroundTruecolor(c colorful.Color) string {
	if termProfile < termenv.TrueColor {
		return ""
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// resetStyle emits the style-reset sequence. Always safe to emit even when
// nothing was styled, since an unstyled stretch of text just ignores it.
func resetStyle() string {
	return ansi.ResetStyle
}

// overlayColor, descriptionColor and promptSuffixColor are the logical
// colors completion overlays and the prompt suffix render with, gated on
// termProfile's detected capability by foreground/backgroundTruecolor.
var (
	overlayColor      = colorful.Color{R: 0.40, G: 0.80, B: 1.00}
	descriptionColor  = colorful.Color{R: 0.55, G: 0.55, B: 0.55}
	promptSuffixColor = colorful.Color{R: 0.30, G: 0.90, B: 0.40}
)

// termProfile is resolved once at startup and gates every truecolor escape
// this package emits.
var termProfile = termenv.ColorProfile()

func wrapStyle(style, s string) string {
	if style == "" {
		return s
	}
	return style + s + resetStyle()
}

// StyleSuffix wraps s in the prompt suffix's foreground color, resetting
// style at the end. Exported for session.Prompt, which renders the suffix
// but lives outside this package. On a degraded terminal profile this is a
// no-op, matching foregroundTruecolor's own fallback.
func StyleSuffix(s string) string {
	return wrapStyle(foregroundTruecolor(promptSuffixColor), s)
}

// StyleSuggestion wraps s in the inline ghost-text background highlight
// used for an auto-complete suggestion inserted ahead of the cursor.
func StyleSuggestion(s string) string {
	return wrapStyle(backgroundTruecolor(overlayColor), s)
}
