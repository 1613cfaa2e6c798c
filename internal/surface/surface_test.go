package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStrAndComposedRead(t *testing.T) {
	s := New(10, 3, 1)
	s.SetStr(0, 0, 0, "hello")
	assert.Equal(t, "hello     ", s.GetUtf8Line(0))
}

func TestHigherLayerOccludesLowerLayer(t *testing.T) {
	s := New(5, 1, 1)
	s.SetStr(0, 0, 0, "AAAAA")
	s.SetChar(1, 0, 2, 'X')
	assert.Equal(t, "AAXAA", s.GetUtf8Line(0))
}

func TestLowOpacityDoesNotOcclude(t *testing.T) {
	s := New(5, 1, 1)
	s.SetStr(0, 0, 0, "AAAAA")
	s.SetChar(1, 0, 2, 'X')
	s.SetOpacity(1, 0, 2, OpacityThreshold)
	assert.Equal(t, "AAAAA", s.GetUtf8Line(0))
}

func TestAppendWrapsLazilyBeforeNextChar(t *testing.T) {
	s := New(5, 2, 0)
	s.SetCursor(0, 0)

	scrolled := s.Append("ABCDE", 0)
	assert.Empty(t, scrolled)
	assert.Equal(t, "ABCDE", s.GetUtf8Line(0))
	row, col := s.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 5, col)

	scrolled = s.Append("F", 0)
	assert.Empty(t, scrolled)
	assert.Equal(t, "F    ", s.GetUtf8Line(1))
	row, col = s.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
}

func TestAppendScrollsWhenPastLastRow(t *testing.T) {
	s := New(3, 1, 0)
	s.SetCursor(0, 0)
	s.Append("ABC", 0)

	scrolled := s.Append("DEF", 0)
	assert.Equal(t, "ABC", scrolled)
	assert.Equal(t, "DEF", s.GetUtf8Line(0))
}

func TestScrollReturnsDisplacedRows(t *testing.T) {
	s := New(4, 2, 0)
	s.SetStr(0, 0, 0, "row0")
	s.SetStr(0, 1, 0, "row1")

	removed := s.Scroll(1)
	assert.Equal(t, "row0", removed)
	assert.Equal(t, "row1", s.GetUtf8Line(0))
	assert.Equal(t, "    ", s.GetUtf8Line(1))
}

func TestScrollInRevealsCharactersOverTime(t *testing.T) {
	s := New(20, 1, 1)
	anim := NewScrollIn(s, 1, 0, 0, 10, "0123456789", 1.0)

	anim.Update(0.5)
	for col := 0; col < 5; col++ {
		assert.Equal(t, byte(0), s.layers[1].opacities[0][col], "col %d should be transparent", col)
	}
	for col := 5; col < 10; col++ {
		assert.Equal(t, byte(255), s.layers[1].opacities[0][col], "col %d should be opaque", col)
	}
	assert.False(t, anim.Complete())

	anim.Update(0.5)
	assert.True(t, anim.Complete())
	assert.Equal(t, "0123456789          ", s.GetUtf8Line(0))
}

func TestTickerTapeAdvancesOneCellPerInterval(t *testing.T) {
	s := New(10, 1, 1)
	tt := NewTickerTape(s, 1, 0, 0, 5, "ABC", 1.0, false, true)
	assert.Equal(t, "          ", s.GetUtf8Line(0))

	tt.Update(1.0)
	assert.Equal(t, "    A     ", s.GetUtf8Line(0))

	tt.Update(1.0)
	assert.Equal(t, "   AB     ", s.GetUtf8Line(0))
}

func TestTickerTapeCompletesWhenNotLooping(t *testing.T) {
	s := New(10, 1, 1)
	tt := NewTickerTape(s, 1, 0, 0, 3, "AB", 10.0, false, false)
	for i := 0; i < 10 && !tt.Complete(); i++ {
		tt.Update(1.0)
	}
	assert.True(t, tt.Complete())
}

func TestUpdateCompactsFinishedAnimations(t *testing.T) {
	s := New(10, 1, 1)
	s.AddAnimation(NewScrollIn(s, 1, 0, 0, 3, "AB", 1.0))
	require.Len(t, s.Animations(), 1)

	s.Update(2.0)
	assert.Empty(t, s.Animations())
}
