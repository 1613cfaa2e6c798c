// Package editor implements the line editor that holds an authoritative
// model of the visible prompt line, supports in-place
// edits and cursor navigation, renders auto-complete overlay rows, and
// emits the minimal escape/backspace sequence needed to keep a real
// terminal in sync with that model.
package editor

import (
	"io"
	"strings"

	"github.com/trailhuang/mechshell/internal/textutil"
)

// Key identifies one decoded keypress.
type Key int

const (
	KeyEOF Key = iota
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyReturn
	KeyTab
	KeyAscii
	KeyDelete
	KeyEnd
	KeyHome
	KeyIgnored
)

// KeyEvent is one decoded keypress; Rune is meaningful only for KeyAscii.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// Result tags what the caller should do after HandleKey.
type Result int

const (
	ResultNone Result = iota
	ResultCommand
	ResultTab
	ResultUp
	ResultDown
	ResultEOF
)

// Outcome is HandleKey's return value.
type Outcome struct {
	Result Result
	Line   string
}

// overlayState tracks an active auto-complete suggestion.
type overlayState struct {
	active      bool
	paramIndex  int
	completions []string
	description string
	// start is the rune index (within the input, i.e. GetInputPosition
	// units) at which the suggested text begins.
	start int
	// insertedLen is how many runes of suggested text were inserted, so
	// ClearAutoComplete knows how much to remove.
	insertedLen int
	rowsWritten int
}

// Editor is the line editor's state.
type Editor struct {
	out io.Writer

	line       []rune // input only, no prompt text
	position   int    // displayed-cell cursor column from the left edge (includes promptSize)
	y          int
	promptSize int

	nextLines []string

	overlay overlayState
	silent  bool
}

// New returns an editor writing escape sequences and echoed text to out.
func New(out io.Writer) *Editor {
	return &Editor{out: out}
}

// SetPromptSize records the starting column of user input, called by the
// owning session after it renders a prompt.
func (e *Editor) SetPromptSize(n int) {
	e.promptSize = n
	e.position = n
}

// SetSilent suppresses echo of keystrokes (still maintains the model).
func (e *Editor) SetSilent(v bool) { e.silent = v }

// Line returns the current input text.
func (e *Editor) Line() string { return string(e.line) }

// GetInputPosition is position - prompt_size: the cursor's rune index
// within the input.
func (e *Editor) GetInputPosition() int { return e.position - e.promptSize }

func (e *Editor) write(s string) {
	if e.silent || s == "" {
		return
	}
	io.WriteString(e.out, s)
}

func (e *Editor) suffixFrom(runeIdx int) string {
	if runeIdx < 0 {
		runeIdx = 0
	}
	if runeIdx > len(e.line) {
		runeIdx = len(e.line)
	}
	return string(e.line[runeIdx:])
}

func (e *Editor) suffixWidth(runeIdx int) int {
	return textutil.DisplayWidth(e.suffixFrom(runeIdx))
}

// redrawSuffixAndReposition writes every rune from runeIdx to the end of
// the line, then returns the cursor to runeIdx using raw backspaces (the
// core never emits a "cursor left" CSI form, only rightward ESC[nC or raw
// backspace).
func (e *Editor) redrawSuffixAndReposition(runeIdx int) {
	suffix := e.suffixFrom(runeIdx)
	e.write(suffix)
	e.write(strings.Repeat("\b", textutil.DisplayWidth(suffix)))
}

func (e *Editor) moveCursorRight(cells int) {
	if cells <= 0 {
		return
	}
	e.position += cells
	e.write(cursorForward(cells))
}

func (e *Editor) moveCursorLeft(cells int) {
	if cells <= 0 {
		return
	}
	e.position -= cells
	e.write(strings.Repeat("\b", cells))
}

// HandleKey advances the model for one decoded keypress and emits the
// corresponding escape/backspace sequence.
func (e *Editor) HandleKey(ev KeyEvent) Outcome {
	switch ev.Key {
	case KeyBackspace:
		e.handleBackspace()
	case KeyLeft:
		if e.GetInputPosition() > 0 {
			w := textutil.RuneDisplayWidth(e.line[e.GetInputPosition()-1])
			e.moveCursorLeft(w)
		}
	case KeyRight:
		if ip := e.GetInputPosition(); ip < len(e.line) {
			w := textutil.RuneDisplayWidth(e.line[ip])
			e.moveCursorRight(w)
		}
	case KeyHome:
		e.moveCursorLeft(e.position - e.promptSize)
	case KeyEnd:
		e.moveCursorRight(e.suffixWidth(e.GetInputPosition()))
	case KeyDelete:
		e.handleDelete()
	case KeyReturn:
		if e.overlay.active {
			e.TryFinishAutoComplete()
		}
		line := string(e.line)
		e.line = nil
		e.position = e.promptSize
		e.write("\r\n")
		return Outcome{Result: ResultCommand, Line: line}
	case KeyTab:
		return Outcome{Result: ResultTab}
	case KeyUp:
		return Outcome{Result: ResultUp}
	case KeyDown:
		return Outcome{Result: ResultDown}
	case KeyAscii:
		e.handleAscii(ev.Rune)
	case KeyEOF:
		return Outcome{Result: ResultEOF}
	case KeyIgnored:
		// no-op
	}
	return Outcome{Result: ResultNone}
}

func (e *Editor) handleBackspace() {
	if e.overlay.active && e.GetInputPosition() <= e.overlay.start {
		e.ClearAutoComplete()
		return
	}
	ip := e.GetInputPosition()
	if ip <= 0 {
		return
	}
	removedWidth := textutil.RuneDisplayWidth(e.line[ip-1])
	e.line = append(e.line[:ip-1], e.line[ip:]...)
	e.moveCursorLeft(removedWidth)
	e.redrawSuffixAndReposition(ip - 1)
	e.write(" ")
	e.write(strings.Repeat("\b", 1))
}

func (e *Editor) handleDelete() {
	ip := e.GetInputPosition()
	if ip >= len(e.line) {
		return
	}
	e.line = append(e.line[:ip], e.line[ip+1:]...)
	e.redrawSuffixAndReposition(ip)
	e.write(" ")
	e.write(strings.Repeat("\b", 1))
}

func (e *Editor) handleAscii(r rune) {
	if e.overlay.active {
		ip := e.GetInputPosition()
		switch {
		case r == ' ':
			e.TryFinishAutoComplete()
			return
		case ip == e.overlay.start:
			e.overlay.start++
		case ip < e.overlay.start:
			e.ClearAutoComplete()
		}
	}
	e.insertRune(r)
}

func (e *Editor) insertRune(r rune) {
	e.insertStyledRune(r, false)
}

// insertStyledRune is insertRune, optionally highlighting the inserted
// character as ghost text (an auto-complete suggestion ahead of the
// cursor, not yet committed by the user).
func (e *Editor) insertStyledRune(r rune, suggested bool) {
	ip := e.GetInputPosition()
	tail := append([]rune{}, e.line[ip:]...)
	e.line = append(e.line[:ip], append([]rune{r}, tail...)...)
	w := textutil.RuneDisplayWidth(r)
	if suggested {
		e.write(StyleSuggestion(string(r)))
	} else {
		e.write(string(r))
	}
	e.position += w
	e.redrawSuffixAndReposition(ip + 1)
}

// currentToken returns the partially-typed word immediately before the
// cursor (from the preceding whitespace run, or the start of the line).
func (e *Editor) currentToken() string {
	ip := e.GetInputPosition()
	start := ip
	for start > 0 && e.line[start-1] != ' ' {
		start--
	}
	return string(e.line[start:ip])
}

// SetCompletions installs the first of a non-empty completion list as an
// inline suggestion and renders the remaining alternatives plus a
// description on the overlay rows beneath the prompt.
func (e *Editor) SetCompletions(paramIndex int, completions []string, description string) {
	if len(completions) == 0 {
		return
	}
	first := completions[0]
	token := e.currentToken()
	ip := e.GetInputPosition()

	e.overlay = overlayState{active: true, paramIndex: paramIndex, completions: completions, description: description}

	if strings.HasPrefix(first, token) {
		suffix := first[len(token):]
		e.overlay.start = ip
		for _, r := range suffix {
			e.insertStyledRune(r, true)
		}
		e.overlay.insertedLen = len([]rune(suffix))
	} else {
		for range token {
			e.handleBackspace()
		}
		e.overlay.start = e.GetInputPosition()
		for _, r := range first {
			e.insertStyledRune(r, true)
		}
		e.overlay.insertedLen = len([]rune(first))
	}

	e.renderOverlayRows(completions[1:], description)
}

// renderOverlayRows writes the "remaining alternatives" row and the
// description row beneath the input line, then returns the cursor to the
// end of the inserted completion.
func (e *Editor) renderOverlayRows(alternatives []string, description string) {
	const width = 72
	alt := formatAlternatives(alternatives, width)
	e.CreateLines(2)
	e.AddLine(wrapStyle(foregroundTruecolor(overlayColor), alt))
	e.AddLine(wrapStyle(foregroundTruecolor(descriptionColor), description))
	e.overlay.rowsWritten = 2
	e.write(cursorPrevLine(len(e.nextLines)))
	e.moveCursorRightToCurrentColumn()
}

func (e *Editor) moveCursorRightToCurrentColumn() {
	e.write(cursorForward(e.position))
}

func formatAlternatives(alts []string, width int) string {
	if len(alts) == 0 {
		return ""
	}
	out := "["
	for i, a := range alts {
		candidate := out + a
		if i < len(alts)-1 {
			candidate += ", "
		}
		candidate += "]"
		if textutil.DisplayWidth(candidate) > width {
			return out + ".." + "]"
		}
		out += a
		if i < len(alts)-1 {
			out += ", "
		}
	}
	return out + "]"
}

// TryFinishAutoComplete commits the active suggestion, appending a single
// trailing space, and clears overlay state.
func (e *Editor) TryFinishAutoComplete() {
	if !e.overlay.active {
		return
	}
	e.clearOverlayRows()
	e.insertRune(' ')
	e.overlay = overlayState{}
}

// ClearAutoComplete removes the inserted suggestion text and the overlay
// rows without committing. The cursor sits right after the inserted text,
// so removal walks backward.
func (e *Editor) ClearAutoComplete() {
	if !e.overlay.active {
		return
	}
	n := e.overlay.insertedLen
	e.overlay.active = false
	for i := 0; i < n; i++ {
		e.handleBackspace()
	}
	e.clearOverlayRows()
	e.overlay = overlayState{}
}

func (e *Editor) clearOverlayRows() {
	if e.overlay.rowsWritten == 0 {
		return
	}
	e.ClearNextLines()
}

// GetParamIndex returns the zero-based token index the cursor is
// positioned in, at, or just after.
func (e *Editor) GetParamIndex() int {
	ip := e.GetInputPosition()
	idx := 0
	inToken := false
	for i := 0; i < ip && i < len(e.line); i++ {
		if e.line[i] == ' ' {
			if inToken {
				idx++
			}
			inToken = false
		} else {
			inToken = true
		}
	}
	if ip >= len(e.line) {
		if ip > 0 && e.line[ip-1] == ' ' {
			return idx
		}
		if inToken {
			return idx
		}
	}
	return idx
}

// CreateLines ensures n blank overlay rows exist beneath the prompt.
func (e *Editor) CreateLines(n int) {
	for len(e.nextLines) < n {
		e.nextLines = append(e.nextLines, "")
		e.write("\r\n")
	}
}

// AddLine writes s on the next available overlay row.
func (e *Editor) AddLine(s string) {
	e.write("\r\n")
	e.write(s)
	e.nextLines = append(e.nextLines, s)
	e.y++
}

// ClearNextLines erases the overlay rows one by one, preserving the
// cursor's logical position once done.
func (e *Editor) ClearNextLines() {
	for range e.nextLines {
		e.write(cursorNextLine(1))
		e.write("\r" + strings.Repeat(" ", 72) + "\r")
	}
	if len(e.nextLines) > 0 {
		e.write(cursorPrevLine(len(e.nextLines)))
	}
	e.nextLines = nil
	e.y = 0
	e.write(cursorForward(e.position))
}
