package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trailhuang/mechshell/internal/commandtree"
	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/internal/paramlist"
	"github.com/trailhuang/mechshell/internal/registry"
	"github.com/trailhuang/mechshell/pkg/types"
)

// registerDemoDomain builds a small mech-bay command surface exercising
// object references, ranged integers, booleans, free text and dynamic
// indices (no float or enum parameter is registered): a worked example of
// registering commands against the tree, the way a host application would
// wire its own domain.
func registerDemoDomain(tree *commandtree.Tree, reg *registry.Registry, classes *registry.ClassTable, logger *zap.Logger) {
	root := tree.Root()

	reg.Put("alpha-reactor", "reactor", registry.RootID)
	reg.Put("bravo-reactor", "reactor", registry.RootID)
	reg.Put("charlie-mech", "mech", registry.RootID)
	classes.Register("reactor", 4)

	tree.Insert(root, "show", "show the current running configuration", nil,
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintln(ec.Out, "mech bay status: nominal")
			for _, id := range reg.Enumerate("") {
				fmt.Fprintf(ec.Out, "  %s\n", id)
			}
			return nil
		}, nil)

	pingParams := paramlist.New(paramkind.NewObjectRefKind("target", reg, paramkind.AcceptAll))
	tree.Insert(root, "ping", "ping a registered object by id", pingParams,
		func(ec *commandtree.ExecContext) error {
			id, err := paramlist.StringAt(ec.Own, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(ec.Out, "%s: pong\n", id)
			return nil
		}, nil)

	clearNode, _ := tree.Insert(root, "clear", "clear diagnostics", nil, nil, nil)
	tree.Insert(clearNode, "alerts", "clear the active alert queue", nil,
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintln(ec.Out, "alerts cleared")
			return nil
		}, nil)
	tree.Insert(clearNode, "log", "clear the event log", nil,
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintln(ec.Out, "log cleared")
			return nil
		}, nil)

	tree.Insert(root, "debug", "toggle verbose diagnostics", nil,
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintln(ec.Out, "debug: current level unchanged (no argument form)")
			return nil
		}, nil)

	setNode, _ := tree.Insert(root, "set", "change a mech-bay setting", nil, nil, nil)

	tree.Insert(setNode, "debug", "set the debug verbosity level",
		paramlist.New(paramkind.NewIntRangeKind("level", 1, 10)),
		func(ec *commandtree.ExecContext) error {
			level, _ := paramlist.IntAt(ec.Own, 0)
			fmt.Fprintf(ec.Out, "debug level set to %d\n", level)
			return nil
		}, nil)

	tree.Insert(setNode, "telemetry", "set telemetry level and whether it is broadcast",
		paramlist.New(paramkind.NewIntRangeKind("level", 1, 10), paramkind.NewBoolKind("broadcast")),
		func(ec *commandtree.ExecContext) error {
			level, _ := paramlist.IntAt(ec.Own, 0)
			fmt.Fprintf(ec.Out, "telemetry level %d, broadcast=%v\n", level, ec.Own[1].Bool)
			return nil
		}, nil)

	tree.Insert(setNode, "callsign", "set the mech bay's callsign",
		paramlist.New(paramkind.NewStringKind("name")),
		func(ec *commandtree.ExecContext) error {
			name, _ := paramlist.StringAt(ec.Own, 0)
			fmt.Fprintf(ec.Out, "callsign set to %q\n", name)
			return nil
		}, nil)

	tree.Insert(setNode, "armor", "toggle armor plating",
		paramlist.New(paramkind.NewBoolKind("state")),
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintf(ec.Out, "armor plating %v\n", ec.Own[0].Bool)
			return nil
		}, nil)

	tree.Insert(setNode, "note", "attach a free-text note to the bay log",
		paramlist.New(paramkind.NewStringKind("text")),
		func(ec *commandtree.ExecContext) error {
			text, _ := paramlist.StringAt(ec.Own, 0)
			fmt.Fprintf(ec.Out, "note logged: %q\n", text)
			return nil
		}, nil)

	configureNode, _ := tree.Insert(root, "configure", "enter configuration mode", nil, nil,
		func(ec *commandtree.ExitContext) {
			fmt.Fprintln(ec.Out, "leaving configuration mode")
		})

	interfaceParams := paramlist.New(paramkind.NewObjectRefKind("reactor", reg, func(ctx *paramkind.Context, id, kind string) bool {
		return kind == "reactor"
	}))
	interfaceNode, _ := tree.Insert(configureNode, "interface", "configure a specific reactor", interfaceParams, nil,
		func(ec *commandtree.ExitContext) {
			fmt.Fprintln(ec.Out, "leaving interface mode")
		})

	slotResolver := func(ctx *paramkind.Context) (int, int, bool) {
		if _, ok := ctx.Lookup(types.KindObjectID, 0); !ok {
			return 0, 0, false
		}
		pc, ok := classes.Resolve("reactor")
		if !ok {
			return 0, 0, false
		}
		return 1, pc.MaxIndex, true
	}
	tree.Insert(interfaceNode, "slot", "set the active slot on the interfaced reactor",
		paramlist.New(paramkind.NewIndexKind("slot", slotResolver)),
		func(ec *commandtree.ExecContext) error {
			fmt.Fprintf(ec.Out, "active slot set to %d\n", ec.Own[0].Int)
			return nil
		}, nil)
}
