package commandtree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/paramlist"
)

func buildTestTree(t *testing.T) (*Tree, NodeHandle, NodeHandle) {
	t.Helper()
	tree := New(nil)
	root := tree.Root()

	setNode, err := tree.Insert(root, "set", "change a setting", nil, nil, nil)
	require.NoError(t, err)

	_, err = tree.Insert(setNode, "alpha", "alpha setting",
		paramlist.New(paramkind.NewIntRangeKind("level", 1, 10)),
		func(ec *ExecContext) error { return nil }, nil)
	require.NoError(t, err)

	_, err = tree.Insert(setNode, "beta", "beta setting",
		paramlist.New(paramkind.NewIntRangeKind("count", 1, 5), paramkind.NewBoolKind("enabled")),
		func(ec *ExecContext) error { return nil }, nil)
	require.NoError(t, err)

	return tree, root, setNode
}

func TestExecuteRecursiveFullMatch(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	var out bytes.Buffer

	res, err := tree.ExecuteRecursive(root, &out, []string{"set", "alpha", "3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Found, res.Action)
	assert.Equal(t, 3, res.UsedTokens)
}

func TestExecuteRecursiveIgnoresLeftoverTokens(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	var out bytes.Buffer

	res, err := tree.ExecuteRecursive(root, &out, []string{"set", "alpha", "3", "garbage"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Found, res.Action)
	assert.Equal(t, 3, res.UsedTokens)
	assert.Less(t, res.UsedTokens, 4)
}

func TestExecuteRecursiveNoneFound(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	var out bytes.Buffer

	res, err := tree.ExecuteRecursive(root, &out, []string{"nonexistent"}, nil)
	require.NoError(t, err)
	assert.Equal(t, NoneFound, res.Action)
}

func TestExecuteRecursivePartialCompletion(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	var out bytes.Buffer

	res, err := tree.ExecuteRecursive(root, &out, []string{"set", "beta", "9", "on"}, nil)
	require.NoError(t, err)
	assert.Equal(t, PartialCompletion, res.Action)
	assert.True(t, res.HasPartial)
}

func TestDuplicateChildNameRejected(t *testing.T) {
	tree := New(nil)
	root := tree.Root()
	_, err := tree.Insert(root, "show", "show status", nil, nil, nil)
	require.NoError(t, err)
	_, err = tree.Insert(root, "show", "duplicate", nil, nil, nil)
	assert.Error(t, err)
}

func TestCleanupRunsOnExitOnce(t *testing.T) {
	tree := New(nil)
	root := tree.Root()
	var calls int
	h, err := tree.Insert(root, "configure", "enter config", nil, nil,
		func(ec *ExitContext) { calls++ })
	require.NoError(t, err)

	var out bytes.Buffer
	tree.Cleanup(&out, h)
	tree.Cleanup(&out, h)
	assert.Equal(t, 2, calls)
}

func TestScanIsPureAndReusableForCompletion(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	ctx := paramkind.NewContext(&bytes.Buffer{}, nil)

	res := tree.Scan(root, ctx, []string{"set", "alpha"})
	assert.Equal(t, PartialCompletion, res.Action)

	var execOut bytes.Buffer
	execRes, err := tree.ExecuteRecursive(root, &execOut, []string{"set", "alpha"}, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Action, execRes.Action)
	assert.Equal(t, res.UsedTokens, execRes.UsedTokens)
}

func TestAutoCompleteImplListsChildrenByPrefix(t *testing.T) {
	tree, root, _ := buildTestTree(t)
	ctx := paramkind.NewContext(&bytes.Buffer{}, nil)

	completions := tree.AutoCompleteImpl(root, ctx, []string{"se"}, 0)
	require.Len(t, completions, 1)
	assert.Equal(t, "set", completions[0].Text)
}
