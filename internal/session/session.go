// Package session implements the current-menu pointer, global-scope
// commands, history, completion rotation state, and prompt rendering
// that sit on top of a command tree.
package session

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/trailhuang/mechshell/internal/commandtree"
	"github.com/trailhuang/mechshell/internal/editor"
	"github.com/trailhuang/mechshell/internal/historystore"
	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/streamio"
	"github.com/trailhuang/mechshell/pkg/types"
)

// ExceptionHandler routes an on_execute callback error to a final
// diagnostic. A nil handler falls back to a generic one-line message.
type ExceptionHandler func(out io.Writer, err error)

// CLI is the owner shared across one or more sessions: the root command
// tree, history storage, and the hooks run when a session's root scope is
// exited.
type CLI struct {
	Tree        *commandtree.Tree
	HistoryFile historystore.Store
	OnException ExceptionHandler
	OnExit      func()
	Logger      *zap.Logger
}

// promptSizeSetter lets Session report its rendered suffix width back to a
// line editor without importing internal/editor.
type promptSizeSetter interface {
	SetPromptSize(n int)
}

// FeedOptions tunes one Feed call.
type FeedOptions struct {
	DontSave     bool
	PrintCmd     bool
	SilentOutput bool
}

// Session is one interactive shell: the active scope, global commands,
// history and completion rotation state.
type Session struct {
	cli    *CLI
	cout   *streamio.FanOut
	editor promptSizeSetter

	current commandtree.NodeHandle
	top     commandtree.NodeHandle
	hasTop  bool

	globalScope commandtree.NodeHandle
	exitHandle  commandtree.NodeHandle

	exitFlag   bool
	silentFlag bool

	completionRotation int
	lastCompletionKey  string

	history *History

	// entryBound records, per menu node, the parameter context bound by
	// the command that most recently entered it — seeding ctx lookups for
	// commands run later inside that scope.
	entryBound map[commandtree.NodeHandle][]types.BoundValue
}

// New builds a session rooted at cli.Tree.Root(), registering help/exit
// and (if withHistoryCommand is true) the history global command. out is
// registered as the session's initial output observer; callers can attach
// or detach further observers later with RegisterOutput/DeregisterOutput
// (a second terminal, a transcript log, a test buffer) without the command
// tree knowing more than one sink exists.
func New(cli *CLI, out io.Writer, maxHistory int, withHistoryCommand bool) *Session {
	cout := streamio.New()
	_ = cout.Register(out)

	s := &Session{
		cli:        cli,
		cout:       cout,
		current:    cli.Tree.Root(),
		entryBound: make(map[commandtree.NodeHandle][]types.BoundValue),
	}

	var seed []string
	if cli.HistoryFile != nil {
		if cmds, err := cli.HistoryFile.Commands(); err == nil {
			seed = cmds
		}
	}
	s.history = NewHistory(maxHistory, seed)

	s.globalScope = cli.Tree.NewContainer()
	helpHandle, _ := cli.Tree.Insert(s.globalScope, "help", "list available commands", nil,
		func(ec *commandtree.ExecContext) error {
			s.printHelp(ec.Out)
			return nil
		}, nil)
	_ = helpHandle

	exitHandle, _ := cli.Tree.Insert(s.globalScope, "exit", "leave the current scope", nil,
		func(ec *commandtree.ExecContext) error {
			s.Exit(ec.Out)
			return nil
		}, nil)
	s.exitHandle = exitHandle

	if withHistoryCommand {
		cli.Tree.Insert(s.globalScope, "history", "print command history", nil,
			func(ec *commandtree.ExecContext) error {
				for _, cmd := range s.history.All() {
					fmt.Fprintln(ec.Out, cmd)
				}
				return nil
			}, nil)
	}

	return s
}

// Sink returns the session's output writer (a fan-out multiplexing every
// registered observer), or an io.Discard-equivalent while the silent flag
// is set.
func (s *Session) Sink() io.Writer {
	if s.silentFlag {
		return discard{}
	}
	return s.cout
}

// RegisterOutput attaches an additional observer that every command's
// output is copied to, alongside the session's primary writer. Fails if
// called while a write is already in progress.
func (s *Session) RegisterOutput(w io.Writer) error {
	return s.cout.Register(w)
}

// DeregisterOutput detaches a previously registered observer.
func (s *Session) DeregisterOutput(w io.Writer) error {
	return s.cout.Deregister(w)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// SetEditor wires a line editor so Prompt can report its suffix width.
func (s *Session) SetEditor(e promptSizeSetter) { s.editor = e }

// Current returns the active scope's handle.
func (s *Session) Current() commandtree.NodeHandle { return s.current }

// ExitFlag reports whether the session has ended (root scope exited).
func (s *Session) ExitFlag() bool { return s.exitFlag }

// Silent reports or sets the session's silent-output flag.
func (s *Session) Silent() bool        { return s.silentFlag }
func (s *Session) SetSilent(v bool)    { s.silentFlag = v }

func (s *Session) ancestorBound() []types.BoundValue {
	return s.entryBound[s.current]
}

// Feed tokenises and dispatches one input line. It returns true iff the
// dispatch resolved to a fully matched command (action Found).
func (s *Session) Feed(line string, opts FeedOptions) bool {
	out := s.Sink()
	if opts.PrintCmd {
		fmt.Fprintln(out, line)
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}

	if !opts.DontSave {
		s.history.Add(line)
	}

	preFeedCurrent := s.current
	seed := s.ancestorBound()

	res, err := s.cli.Tree.ExecuteRecursive(s.current, out, tokens, seed)
	if err == nil && res.Action == commandtree.NoneFound && s.current != s.cli.Tree.Root() {
		res, err = s.cli.Tree.ExecuteRecursive(s.cli.Tree.Root(), out, tokens, seed)
	}
	if err == nil && res.Action == commandtree.NoneFound {
		res, err = s.cli.Tree.ExecuteRecursive(s.globalScope, out, tokens, seed)
	}

	if err != nil {
		s.handleException(out, err)
		return false
	}

	switch res.Action {
	case commandtree.NoneFound:
		fmt.Fprintf(out, "couldn't find command %q\n", tokens[0])
		return false
	case commandtree.PartialCompletion:
		fmt.Fprintln(out, s.cli.Tree.Help(res.Partial))
		return false
	}

	// Scope transition (action == Found only).
	last := res.Scanned[len(res.Scanned)-1]
	switch {
	case last == s.exitHandle:
		// Exit already repositioned s.current.
	case s.cli.Tree.Node(last).IsMenu():
		s.entryBound[last] = res.FinalBound
		s.current = last
	default:
		for i := len(res.Scanned) - 1; i >= 0; i-- {
			if res.Scanned[i] == preFeedCurrent {
				break
			}
			s.cli.Tree.Cleanup(out, res.Scanned[i])
		}
	}

	if !res.FreeHit && res.UsedTokens < len(tokens) {
		fmt.Fprintf(out, "couldn't find command %q; discarding remainder\n", tokens[res.UsedTokens])
	}

	return true
}

// RunProgram feeds every line of program in order, each as if dontSaveCommand
// had been set (so the batch itself never pollutes recall history), printing
// a one-line banner naming the program first. Intended for replaying a saved
// script of commands rather than interactive entry.
func (s *Session) RunProgram(name string, program []string) {
	fmt.Fprintf(s.Sink(), "running %s...\n", name)
	for _, line := range program {
		s.Feed(line, FeedOptions{DontSave: true})
	}
}

func (s *Session) handleException(out io.Writer, err error) {
	if s.cli.OnException != nil {
		s.cli.OnException(out, err)
		return
	}
	fmt.Fprintln(out, "an internal error occurred running that command")
}

// Exit invokes current's Cleanup, then moves current to its parent. At the
// root, it runs the exit hooks, persists history, and sets the exit flag.
func (s *Session) Exit(out io.Writer) {
	s.cli.Tree.Cleanup(out, s.current)
	parent := s.cli.Tree.Node(s.current).Parent
	if parent == commandtree.NoHandle {
		if s.cli.OnExit != nil {
			s.cli.OnExit()
		}
		if s.cli.HistoryFile != nil {
			_ = s.cli.HistoryFile.Store(s.history.All())
		}
		s.exitFlag = true
		return
	}
	s.current = parent
}

// PushTop saves current for a later Pop.
func (s *Session) PushTop() {
	s.top = s.current
	s.hasTop = true
}

// Pop walks up from current invoking Cleanup until reaching the saved top,
// then restores current to it.
func (s *Session) Pop(out io.Writer) {
	if !s.hasTop {
		return
	}
	cur := s.current
	for cur != s.top {
		s.cli.Tree.Cleanup(out, cur)
		parent := s.cli.Tree.Node(cur).Parent
		if parent == commandtree.NoHandle {
			break
		}
		cur = parent
	}
	s.current = s.top
	s.hasTop = false
}

const promptSuffix = "  \\-> "

// Prompt renders the joined ancestor prompt_display chain, reports the
// suffix's displayed-cell count to the wired editor, and returns the full
// prompt text (chain, newline, suffix).
func (s *Session) Prompt() string {
	chain := s.cli.Tree.Ancestors(s.current)
	names := make([]string, 0, len(chain))
	for _, h := range chain {
		names = append(names, s.cli.Tree.Node(h).Display())
	}
	head := strings.Join(names, ">")

	if s.editor != nil {
		s.editor.SetPromptSize(len([]rune(promptSuffix)))
	}
	return head + "\n" + editor.StyleSuffix(promptSuffix)
}

func (s *Session) printHelp(out io.Writer) {
	fmt.Fprintln(out, "global commands:")
	commandtree.Fprint(out, s.cli.Tree, s.globalScope, "  ")
	fmt.Fprintln(out, "available commands:")
	commandtree.Fprint(out, s.cli.Tree, s.current, "  ")
}

// GetCompletions tries current, the root menu, then the global scope, in
// order, returning the first non-empty completion list; it then rotates
// that list by the session's rotation index, advancing the index modulo
// the list's length so repeated Tab presses with identical input cycle
// through alternatives.
func (s *Session) GetCompletions(line string, k int) []paramkind.Completion {
	var list []paramkind.Completion
	for _, start := range []commandtree.NodeHandle{s.current, s.cli.Tree.Root(), s.globalScope} {
		list = s.completeAgainst(start, line, k)
		if len(list) > 0 {
			break
		}
	}
	if len(list) == 0 {
		return nil
	}

	key := completionKey(line, k, list)
	if key != s.lastCompletionKey {
		s.completionRotation = 0
		s.lastCompletionKey = key
	}

	n := len(list)
	idx := s.completionRotation % n
	rotated := make([]paramkind.Completion, n)
	for i := 0; i < n; i++ {
		rotated[i] = list[(idx+i)%n]
	}
	s.completionRotation = (s.completionRotation + 1) % n
	return rotated
}

func completionKey(line string, k int, list []paramkind.Completion) string {
	texts := make([]string, len(list))
	for i, c := range list {
		texts[i] = c.Text
	}
	return fmt.Sprintf("%s\x00%d\x00%s", line, k, strings.Join(texts, "\x00"))
}

// completeAgainst runs the completion-for-one-command procedure starting
// at start.
func (s *Session) completeAgainst(start commandtree.NodeHandle, line string, k int) []paramkind.Completion {
	tokens := strings.Fields(line)
	ctx := paramkind.NewContext(discard{}, s.entryBound[start])

	if len(tokens) == 0 {
		return s.cli.Tree.AutoCompleteImpl(start, ctx, nil, 0)
	}

	res := s.cli.Tree.Scan(start, ctx, tokens)

	var target commandtree.NodeHandle
	var consumed int
	switch {
	case res.HasPartial:
		target = res.Partial
		consumed = res.UsedTokens
	case len(res.Scanned) > 0:
		target = res.Scanned[len(res.Scanned)-1]
		consumed = res.UsedTokens
	default:
		target = start
		consumed = 0
	}

	var relative []string
	if consumed < len(tokens) {
		relative = tokens[consumed:]
	}
	relK := k - consumed
	if relK == len(relative) {
		relative = append(relative, "")
	}
	if relK < 0 {
		return nil
	}
	return s.cli.Tree.AutoCompleteImpl(target, ctx, relative, relK)
}
