package editor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(e *Editor, s string) {
	for _, r := range s {
		e.HandleKey(KeyEvent{Key: KeyAscii, Rune: r})
	}
}

func TestHandleKeyBuildsLineAndReturnsOnEnter(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)

	typeString(e, "ping alpha")
	outcome := e.HandleKey(KeyEvent{Key: KeyReturn})

	assert.Equal(t, ResultCommand, outcome.Result)
	assert.Equal(t, "ping alpha", outcome.Line)
	assert.Equal(t, "", e.Line())
}

func TestBackspaceRemovesLastRune(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "abc")

	e.HandleKey(KeyEvent{Key: KeyBackspace})
	assert.Equal(t, "ab", e.Line())
}

func TestDeleteRemovesRuneUnderCursor(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "abc")
	e.HandleKey(KeyEvent{Key: KeyLeft})
	e.HandleKey(KeyEvent{Key: KeyLeft})

	e.HandleKey(KeyEvent{Key: KeyDelete})
	assert.Equal(t, "ac", e.Line())
}

func TestCursorLeftRightMoveWithinBounds(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "abc")
	require.Equal(t, 3, e.GetInputPosition())

	e.HandleKey(KeyEvent{Key: KeyLeft})
	assert.Equal(t, 2, e.GetInputPosition())

	e.HandleKey(KeyEvent{Key: KeyLeft})
	e.HandleKey(KeyEvent{Key: KeyLeft})
	e.HandleKey(KeyEvent{Key: KeyLeft}) // one extra left at position 0 should be a no-op
	assert.Equal(t, 0, e.GetInputPosition())

	e.HandleKey(KeyEvent{Key: KeyRight})
	assert.Equal(t, 1, e.GetInputPosition())
}

func TestGetParamIndexTracksTokenUnderCursor(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "set debug 5")

	assert.Equal(t, 2, e.GetParamIndex())

	for i := 0; i < 2; i++ {
		e.HandleKey(KeyEvent{Key: KeyLeft})
	}
	assert.Equal(t, 1, e.GetParamIndex())
}

func TestSetCompletionsInsertsFirstAlternativeInline(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "se")

	e.SetCompletions(0, []string{"set", "show"}, "menu commands")
	assert.Equal(t, "set", e.Line())
}

func TestTryFinishAutoCompleteCommitsWithTrailingSpace(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "se")
	e.SetCompletions(0, []string{"set"}, "")

	e.TryFinishAutoComplete()
	assert.Equal(t, "set ", e.Line())
}

func TestClearAutoCompleteRemovesSuggestedText(t *testing.T) {
	var out bytes.Buffer
	e := New(&out)
	e.SetPromptSize(0)
	typeString(e, "se")
	e.SetCompletions(0, []string{"set"}, "")

	e.ClearAutoComplete()
	assert.Equal(t, "se", e.Line())
}
