package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndLookup(t *testing.T) {
	r := New()
	r.Put("alpha-reactor", "reactor", RootID)

	kind, ok := r.Lookup("alpha-reactor")
	require.True(t, ok)
	assert.Equal(t, "reactor", kind)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestEnumerateFiltersByKind(t *testing.T) {
	r := New()
	r.Put("alpha-reactor", "reactor", RootID)
	r.Put("bravo-reactor", "reactor", RootID)
	r.Put("charlie-mech", "mech", RootID)

	assert.ElementsMatch(t, []string{"alpha-reactor", "bravo-reactor"}, r.Enumerate("reactor"))
	assert.ElementsMatch(t, []string{"alpha-reactor", "bravo-reactor", "charlie-mech"}, r.Enumerate(""))
}

func TestEnumerateInScopesByContainer(t *testing.T) {
	r := New()
	r.Put("charlie-mech", "mech", RootID)
	r.Put("alpha-reactor", "reactor", "charlie-mech")
	r.Put("bravo-reactor", "reactor", RootID)

	assert.Equal(t, []string{"alpha-reactor"}, r.EnumerateIn("charlie-mech", ""))
}

func TestIsInstalledAndIsTopLevel(t *testing.T) {
	r := New()
	r.Put("charlie-mech", "mech", RootID)
	r.Put("alpha-reactor", "reactor", "charlie-mech")

	assert.True(t, r.IsTopLevel("charlie-mech"))
	assert.False(t, r.IsInstalled("charlie-mech"))

	assert.True(t, r.IsInstalled("alpha-reactor"))
	assert.False(t, r.IsTopLevel("alpha-reactor"))
}

func TestPutAssignsStableUUID(t *testing.T) {
	r := New()
	first := r.Put("alpha-reactor", "reactor", RootID)
	second := r.Put("alpha-reactor", "reactor", "charlie-mech")
	assert.Equal(t, first.UUID, second.UUID)
}

func TestClassTableRegisterAndResolve(t *testing.T) {
	c := NewClassTable()
	c.Register("reactor", 4)

	pc, ok := c.Resolve("reactor")
	require.True(t, ok)
	assert.Equal(t, 4, pc.MaxIndex)

	_, ok = c.Resolve("unknown")
	assert.False(t, ok)
}
