package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhuang/mechshell/internal/commandtree"
	"github.com/trailhuang/mechshell/internal/historystore"
	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/paramlist"
)

func newTestSession(t *testing.T) (*Session, *commandtree.Tree, *bytes.Buffer) {
	t.Helper()
	tree := commandtree.New(nil)
	root := tree.Root()

	var pinged []string
	_, err := tree.Insert(root, "ping", "ping something", nil,
		func(ec *commandtree.ExecContext) error {
			pinged = append(pinged, "pong")
			_, _ = ec.Out.Write([]byte("pong\n"))
			return nil
		}, nil)
	require.NoError(t, err)

	configureNode, err := tree.Insert(root, "configure", "enter config", nil, nil,
		func(ec *commandtree.ExitContext) { _, _ = ec.Out.Write([]byte("left configure\n")) })
	require.NoError(t, err)
	_, err = tree.Insert(configureNode, "show", "show config", nil,
		func(ec *commandtree.ExecContext) error {
			_, _ = ec.Out.Write([]byte("config shown\n"))
			return nil
		}, nil)
	require.NoError(t, err)

	cli := &CLI{Tree: tree, HistoryFile: historystore.NewMemory(nil)}
	var out bytes.Buffer
	s := New(cli, &out, 10, true)
	return s, tree, &out
}

func TestFeedDispatchesRootCommand(t *testing.T) {
	s, _, out := newTestSession(t)
	ok := s.Feed("ping", FeedOptions{})
	assert.True(t, ok)
	assert.Contains(t, out.String(), "pong")
}

func TestFeedDescendsIntoMenu(t *testing.T) {
	s, tree, out := newTestSession(t)
	ok := s.Feed("configure", FeedOptions{})
	require.True(t, ok)
	assert.NotEqual(t, tree.Root(), s.Current())

	out.Reset()
	ok = s.Feed("show", FeedOptions{})
	require.True(t, ok)
	assert.Contains(t, out.String(), "config shown")
}

func TestExitReturnsToParentAndRunsOnExit(t *testing.T) {
	s, tree, out := newTestSession(t)
	s.Feed("configure", FeedOptions{})
	out.Reset()

	s.Exit(out)
	assert.Equal(t, tree.Root(), s.Current())
	assert.Contains(t, out.String(), "left configure")
	assert.False(t, s.ExitFlag())
}

func TestExitAtRootSetsExitFlag(t *testing.T) {
	s, _, out := newTestSession(t)
	s.Exit(out)
	assert.True(t, s.ExitFlag())
}

func TestHelpCommandListsGlobalsAndCurrent(t *testing.T) {
	s, _, out := newTestSession(t)
	ok := s.Feed("help", FeedOptions{})
	require.True(t, ok)
	text := out.String()
	assert.Contains(t, text, "exit")
	assert.Contains(t, text, "ping")
}

func TestFeedUnknownCommandReportsError(t *testing.T) {
	s, _, out := newTestSession(t)
	ok := s.Feed("doesnotexist", FeedOptions{})
	assert.False(t, ok)
	assert.Contains(t, out.String(), "couldn't find command")
}

func TestFeedCascadesCleanupThroughNestedMenusOnTerminalCommand(t *testing.T) {
	tree := commandtree.New(nil)
	root := tree.Root()

	var order []string
	alpha, err := tree.Insert(root, "alpha", "enter alpha", nil, nil,
		func(ec *commandtree.ExitContext) { order = append(order, "alpha") })
	require.NoError(t, err)

	_, err = tree.Insert(alpha, "beta", "run beta", paramlist.New(paramkind.NewIntKind("n")),
		func(ec *commandtree.ExecContext) error { return nil },
		func(ec *commandtree.ExitContext) { order = append(order, "beta") })
	require.NoError(t, err)

	cli := &CLI{Tree: tree, HistoryFile: historystore.NewMemory(nil)}
	var out bytes.Buffer
	s := New(cli, &out, 10, false)

	ok := s.Feed("alpha beta 3", FeedOptions{})
	require.True(t, ok)
	assert.Equal(t, []string{"beta", "alpha"}, order)
	assert.Equal(t, tree.Root(), s.Current())
}

func TestRegisterOutputMirrorsToAdditionalObserver(t *testing.T) {
	s, _, out := newTestSession(t)
	var transcript bytes.Buffer
	require.NoError(t, s.RegisterOutput(&transcript))

	ok := s.Feed("ping", FeedOptions{})
	require.True(t, ok)
	assert.Contains(t, out.String(), "pong")
	assert.Contains(t, transcript.String(), "pong")

	require.NoError(t, s.DeregisterOutput(&transcript))
	out.Reset()
	transcript.Reset()
	s.Feed("ping", FeedOptions{})
	assert.Contains(t, out.String(), "pong")
	assert.Empty(t, transcript.String())
}

func TestRunProgramFeedsEveryLineWithoutSavingHistory(t *testing.T) {
	s, _, out := newTestSession(t)
	s.RunProgram("startup", []string{"ping", "ping"})

	text := out.String()
	assert.Contains(t, text, "running startup...")
	assert.Equal(t, 2, strings.Count(text, "pong"))
	assert.Empty(t, s.history.All())
}

func TestGetCompletionsRotatesOnRepeatedTab(t *testing.T) {
	tree := commandtree.New(nil)
	root := tree.Root()
	_, _ = tree.Insert(root, "alpha", "", nil, func(ec *commandtree.ExecContext) error { return nil }, nil)
	_, _ = tree.Insert(root, "also", "", nil, func(ec *commandtree.ExecContext) error { return nil }, nil)
	cli := &CLI{Tree: tree, HistoryFile: historystore.NewMemory(nil)}
	var out bytes.Buffer
	s := New(cli, &out, 10, false)

	first := s.GetCompletions("al", 0)
	require.Len(t, first, 2)
	second := s.GetCompletions("al", 0)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].Text, second[0].Text)
}
