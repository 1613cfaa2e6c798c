// Package mechshell re-exports the public surface of the command-tree
// shell engine: the pieces a host application wires together to run an
// interactive session, without reaching into internal/.
package mechshell

import (
	"io"

	"go.uber.org/zap"

	"github.com/trailhuang/mechshell/internal/commandtree"
	"github.com/trailhuang/mechshell/internal/editor"
	"github.com/trailhuang/mechshell/internal/historystore"
	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/paramlist"
	"github.com/trailhuang/mechshell/internal/registry"
	"github.com/trailhuang/mechshell/internal/session"
	"github.com/trailhuang/mechshell/internal/surface"
	"github.com/trailhuang/mechshell/pkg/types"
)

// Re-exported types a host application names directly.
type (
	Tree         = commandtree.Tree
	NodeHandle   = commandtree.NodeHandle
	ExecContext  = commandtree.ExecContext
	ExecuteFunc  = commandtree.ExecuteFunc
	ExitContext  = commandtree.ExitContext
	ExitFunc     = commandtree.ExitFunc
	Action       = commandtree.Action
	ParamList    = paramlist.List
	ParamContext = paramkind.Context
	BoundValue   = types.BoundValue
	ValueKind    = types.ValueKind
	Config       = types.Config
	CLI          = session.CLI
	Session      = session.Session
	FeedOptions  = session.FeedOptions
	Editor       = editor.Editor
	Surface      = surface.Surface
	Registry     = registry.Registry
	HistoryStore = historystore.Store
)

const (
	NoHandle            = commandtree.NoHandle
	KindInt             = types.KindInt
	KindFloat           = types.KindFloat
	KindString          = types.KindString
	KindObjectID        = types.KindObjectID
	KindBool            = types.KindBool
	NoneFound           = commandtree.NoneFound
	PartialCompletion   = commandtree.PartialCompletion
	Found               = commandtree.Found
	BadOrMissingParams  = commandtree.BadOrMissingParams
)

// NewTree constructs an empty command tree rooted at handle 0.
func NewTree(logger *zap.Logger) *Tree { return commandtree.New(logger) }

// NewParams builds a parameter list from an ordered sequence of kinds.
func NewParams(kinds ...paramkind.Kind) *ParamList { return paramlist.New(kinds...) }

// NewInt, NewIntRange, NewFloat, NewFloatRange, NewString, NewEnum, NewBool
// build the concrete parameter kinds a command registers.
func NewInt(name string) paramkind.Kind { return paramkind.NewIntKind(name) }
func NewIntRange(name string, min, max int) paramkind.Kind {
	return paramkind.NewIntRangeKind(name, min, max)
}
func NewFloat(name string) paramkind.Kind { return paramkind.NewFloatKind(name) }
func NewFloatRange(name string, min, max float64) paramkind.Kind {
	return paramkind.NewFloatRangeKind(name, min, max)
}
func NewString(name string) paramkind.Kind           { return paramkind.NewStringKind(name) }
func NewEnum(name string, values ...string) paramkind.Kind {
	return paramkind.NewEnumKind(name, values...)
}
func NewBool(name string) paramkind.Kind { return paramkind.NewBoolKind(name) }
func NewObjectRef(name string, lister paramkind.ObjectLister, filter paramkind.ObjectFilter) paramkind.Kind {
	return paramkind.NewObjectRefKind(name, lister, filter)
}
func NewIndex(name string, resolver paramkind.RangeResolver) paramkind.Kind {
	return paramkind.NewIndexKind(name, resolver)
}

// NewRegistry returns an empty reference domain object registry.
func NewRegistry() *Registry { return registry.New() }

// NewSurface returns a layered terminal surface with one opaque base layer
// and the given number of transparent overlay layers.
func NewSurface(width, height, extraLayers int) *Surface {
	return surface.New(width, height, extraLayers)
}

// NewEditor returns a line editor writing to out.
func NewEditor(out io.Writer) *Editor { return editor.New(out) }

// NewSession builds a session over cli, registering the global help/exit
// commands and, if withHistoryCommand is true, the optional history
// command. out becomes the session's initial output observer; a host can
// attach further observers (a transcript log, a second terminal) with
// Session's RegisterOutput method.
func NewSession(cli *CLI, out io.Writer, maxHistory int, withHistoryCommand bool) *Session {
	return session.New(cli, out, maxHistory, withHistoryCommand)
}

// DefaultConfig returns the baseline configuration for an in-process shell.
func DefaultConfig() *Config { return types.DefaultConfig() }
