package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAddEvictsOldest(t *testing.T) {
	h := NewHistory(2, nil)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	assert.Equal(t, []string{"two", "three"}, h.All())
}

func TestHistoryPreviousAndNext(t *testing.T) {
	h := NewHistory(10, []string{"a", "b", "c"})

	cmd, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, "c", cmd)

	cmd, ok = h.Previous()
	require.True(t, ok)
	assert.Equal(t, "b", cmd)

	cmd, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "c", cmd)

	cmd, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "", cmd)
}

func TestHistoryResetPositionAfterAdd(t *testing.T) {
	h := NewHistory(10, []string{"a", "b"})
	h.Previous()
	h.Add("c")
	cmd, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, "c", cmd)
}
