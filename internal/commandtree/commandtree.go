// Package commandtree implements a named tree of command nodes with
// parameters, an execute callback, an optional exit callback, and
// children — owning the scan/prepare/execute logic for itself and its
// descendants.
//
// Nodes live in an arena (Tree.nodes) and are addressed by the stable
// integer NodeHandle, not by pointer: parent/child links are handles, array
// indexing replaces pointer-chasing, and cycles are impossible by
// construction.
package commandtree

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/paramlist"
	"github.com/trailhuang/mechshell/pkg/types"
)

// NodeHandle addresses a node within a Tree's arena.
type NodeHandle int

// NoHandle is the sentinel for "no parent" (the root) and "no match".
const NoHandle NodeHandle = -1

// Action is the four-state outcome of a scan: a richer enum than a plain
// success/failure flag, distinguishing no match, a partial path, a full
// match, and a full path with invalid arguments.
type Action int

const (
	NoneFound Action = iota
	PartialCompletion
	Found
	BadOrMissingParams
)

func (a Action) String() string {
	switch a {
	case NoneFound:
		return "NoneFound"
	case PartialCompletion:
		return "PartialCompletion"
	case Found:
		return "Found"
	case BadOrMissingParams:
		return "BadOrMissingParams"
	default:
		return "Unknown"
	}
}

// ExecContext is handed to a node's OnExecute callback: the output sink,
// the chain of node handles scanned so far (ending with this node), this
// node's own bound parameter values, and the shared parsing context for
// ancestor lookups.
type ExecContext struct {
	Out   io.Writer
	Chain []NodeHandle
	Own   []types.BoundValue
	PCtx  *paramkind.Context
	Tree  *Tree
}

// ExecuteFunc runs a command's effect.
type ExecuteFunc func(ec *ExecContext) error

// ExitContext is handed to a node's OnExit callback when control leaves its
// scope.
type ExitContext struct {
	Out    io.Writer
	Handle NodeHandle
	Tree   *Tree
}

// ExitFunc runs cleanup when a scope is left.
type ExitFunc func(ec *ExitContext)

// Node is one command or menu: a name, description, optional parameters,
// an execute callback, an optional exit callback, and an ordered list of
// children. Invariant: children have unique names within a parent.
type Node struct {
	Handle        NodeHandle
	Name          string
	Description   string
	PromptDisplay string
	Params        *paramlist.List
	OnExecute     ExecuteFunc
	OnExit        ExitFunc
	Parent        NodeHandle
	Children      []NodeHandle
}

// IsMenu reports whether this node has children and so acts as a scope
// that a session can descend into.
func (n *Node) IsMenu() bool { return len(n.Children) > 0 }

// Display is PromptDisplay if set, else Name.
func (n *Node) Display() string {
	if n.PromptDisplay != "" {
		return n.PromptDisplay
	}
	return n.Name
}

// Tree owns the node arena rooted at handle 0.
type Tree struct {
	nodes  []*Node
	logger *zap.Logger
}

// New creates a tree with an unnamed root node. A nil logger defaults to a
// no-op logger.
func New(logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tree{logger: logger}
	t.nodes = append(t.nodes, &Node{Handle: 0, Parent: NoHandle})
	return t
}

// Root is the tree's root handle.
func (t *Tree) Root() NodeHandle { return 0 }

// Node dereferences a handle. Panics on an out-of-range handle, which would
// indicate a bug in the caller, not recoverable user input.
func (t *Tree) Node(h NodeHandle) *Node { return t.nodes[h] }

// Insert adds a new child command to parent. Duplicate names under the
// same parent are rejected.
func (t *Tree) Insert(parent NodeHandle, name, description string, params *paramlist.List, onExecute ExecuteFunc, onExit ExitFunc) (NodeHandle, error) {
	p := t.nodes[parent]
	for _, ch := range p.Children {
		if t.nodes[ch].Name == name {
			return NoHandle, errors.Errorf("commandtree: duplicate child name %q under %q", name, p.Name)
		}
	}
	h := NodeHandle(len(t.nodes))
	node := &Node{
		Handle:      h,
		Name:        name,
		Description: description,
		Params:      params,
		OnExecute:   onExecute,
		OnExit:      onExit,
		Parent:      parent,
	}
	t.nodes = append(t.nodes, node)
	p.Children = append(p.Children, h)
	return h, nil
}

// NewContainer allocates a detached node with no parent, usable as a
// synthetic scope whose children are never reachable by descending from
// the root — the session's global-command scope is one of these.
func (t *Tree) NewContainer() NodeHandle {
	h := NodeHandle(len(t.nodes))
	t.nodes = append(t.nodes, &Node{Handle: h, Parent: NoHandle})
	return h
}

// Ancestors returns the chain from the root (exclusive) down to h
// (inclusive), root-first.
func (t *Tree) Ancestors(h NodeHandle) []NodeHandle {
	var chain []NodeHandle
	for cur := h; cur != NoHandle && cur != t.Root(); cur = t.nodes[cur].Parent {
		chain = append([]NodeHandle{cur}, chain...)
	}
	return chain
}

// prepareNode checks whether tokens[0] names this node and, if so, whether
// its parameter list binds cleanly against the rest. The consumed-token
// count always includes the name token.
func (t *Tree) prepareNode(h NodeHandle, ctx *paramkind.Context, tokens []string) (Action, int, paramlist.Result) {
	n := t.nodes[h]
	if len(tokens) == 0 || tokens[0] != n.Name {
		return NoneFound, 0, paramlist.Result{}
	}
	if n.Params == nil || n.Params.Len() == 0 {
		return Found, 1, paramlist.Result{}
	}
	rest := tokens[1:]
	res := n.Params.Prepare(ctx, rest)
	if res.Ok() && res.Prepared == n.Params.Len() {
		return Found, 1 + res.ConsumedTokens, res
	}
	return BadOrMissingParams, 1 + res.ConsumedTokens, res
}

// Validate reports whether a command line's shape is acceptable for this
// node. Plain menus always match; node subtypes that want line-shape
// gating (none ship in this tree) would override it.
func (n *Node) Validate(line string) bool { return true }

// ScanResult is the outcome of a scan (and, for ExecuteRecursive, of the
// execution that follows it).
type ScanResult struct {
	Action     Action
	Scanned    []NodeHandle
	ScannedOwn [][]types.BoundValue
	Partial    NodeHandle
	HasPartial bool
	UsedTokens int
	FreeHit    bool
	// FinalBound is the parameter context's full bound list (seed plus
	// every value bound while scanning), useful to a caller that wants to
	// retain it as the seed for a freshly entered submenu's future scans.
	FinalBound []types.BoundValue
}

// Cleanup invokes h's OnExit exactly once, if set.
func (t *Tree) Cleanup(out io.Writer, h NodeHandle) {
	n := t.nodes[h]
	if n.OnExit != nil {
		n.OnExit(&ExitContext{Out: out, Handle: h, Tree: t})
	}
}

// Scan walks children of start against tokens, descending through each
// matched child without executing anything — the pure lookahead used both
// by ExecuteRecursive (which executes afterwards) and by completion
// (which never should).
func (t *Tree) Scan(start NodeHandle, pctx *paramkind.Context, tokens []string) ScanResult {
	var scanned []NodeHandle
	var scannedOwn [][]types.BoundValue
	current := start
	idx := 0
	partial := NoHandle
	hasPartial := false

scan:
	for {
		node := t.nodes[current]
		for _, ch := range node.Children {
			status, consumed, res := t.prepareNode(ch, pctx, tokens[idx:])
			switch status {
			case Found:
				scanned = append(scanned, ch)
				scannedOwn = append(scannedOwn, res.Bound)
				idx += consumed
				current = ch
				continue scan
			case BadOrMissingParams:
				partial = ch
				hasPartial = true
				break scan
			}
		}
		break
	}

	freeHit := false
	for _, h := range scanned {
		if t.nodes[h].Params != nil && t.nodes[h].Params.IsFree() {
			freeHit = true
		}
	}

	result := ScanResult{
		Scanned:    scanned,
		ScannedOwn: scannedOwn,
		Partial:    partial,
		HasPartial: hasPartial,
		UsedTokens: idx,
		FreeHit:    freeHit,
		FinalBound: append([]types.BoundValue(nil), pctx.Bound...),
	}

	switch {
	case len(scanned) == 0:
		result.Action = NoneFound
	case hasPartial:
		result.Action = PartialCompletion
	default:
		result.Action = Found
	}
	return result
}

// ExecuteRecursive scans children of start against tokens (via Scan), then
// executes every fully-matched command in discovery order, stopping at the
// first name-matching child whose parameters failed to bind.
//
// seed carries bound values from the session's ancestor scopes (already
// entered menus), so a command parameter deep in the tree can still refer
// back to a value bound when an ancestor menu was entered.
func (t *Tree) ExecuteRecursive(start NodeHandle, out io.Writer, tokens []string, seed []types.BoundValue) (ScanResult, error) {
	pctx := paramkind.NewContext(out, seed)
	result := t.Scan(start, pctx, tokens)
	if len(result.Scanned) == 0 {
		return result, nil
	}

	chain := make([]NodeHandle, 0, len(result.Scanned))
	for i, h := range result.Scanned {
		chain = append(chain, h)
		n := t.nodes[h]
		if n.OnExecute == nil {
			continue
		}
		ec := &ExecContext{
			Out:   out,
			Chain: append([]NodeHandle(nil), chain...),
			Own:   result.ScannedOwn[i],
			PCtx:  pctx,
			Tree:  t,
		}
		if err := n.OnExecute(ec); err != nil {
			return result, errors.Wrapf(err, "executing %q", n.Name)
		}
	}
	return result, nil
}

// AutoCompleteImpl returns completions for the token at relative index k
// within this node's own command line: at k=0, every child whose name
// starts with param_tokens[0] (or every child, if param_tokens is empty);
// at k>0, delegates to the parameter list.
func (t *Tree) AutoCompleteImpl(h NodeHandle, ctx *paramkind.Context, paramTokens []string, k int) []paramkind.Completion {
	n := t.nodes[h]
	if k == 0 {
		var prefix string
		if len(paramTokens) > 0 {
			prefix = paramTokens[0]
		}
		var out []paramkind.Completion
		for _, ch := range n.Children {
			name := t.nodes[ch].Name
			if len(prefix) == 0 || hasStringPrefix(name, prefix) {
				out = append(out, paramkind.Completion{Text: name, Description: t.nodes[ch].Description})
			}
		}
		return out
	}
	if n.Params == nil {
		return nil
	}
	var rest []string
	if len(paramTokens) > 1 {
		rest = paramTokens[1:]
	}
	return n.Params.Complete(ctx, rest, k-1)
}

func hasStringPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// Help renders a node's usage line: its name, parameter type labels, and
// description.
func (t *Tree) Help(h NodeHandle) string {
	n := t.nodes[h]
	line := n.Name
	if n.Params != nil {
		for _, p := range n.Params.Params() {
			line += " " + p.TypeLabel()
		}
	}
	if n.Description != "" {
		line += " - " + n.Description
	}
	return line
}

// Fprint writes a node's usage line (omitted for the tree root) followed
// by those of all its descendants, each level indented two more spaces
// than its parent, to out.
func Fprint(out io.Writer, t *Tree, h NodeHandle, indent string) {
	n := t.nodes[h]
	if h != t.Root() {
		fmt.Fprintf(out, "%s%s\n", indent, t.Help(h))
	}
	for _, ch := range n.Children {
		Fprint(out, t, ch, indent+"  ")
	}
}
