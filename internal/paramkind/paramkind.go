// Package paramkind implements typed parameter kinds that parse, validate
// and complete one token against a parameter context shared by the rest
// of the current command chain.
//
// Concrete kinds are plain structs implementing Kind, replacing dynamic
// dispatch over parameter type with an enum-of-variants: types.ValueKind
// tags the bound value's shape, and Context.Lookup walks previously-bound
// values by that tag.
package paramkind

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/trailhuang/mechshell/pkg/types"
)

// Completion is one advisory auto-complete alternative: the text to insert
// and a short human-readable description shown alongside it.
type Completion struct {
	Text        string
	Description string
}

// Context is the per-invocation object threaded through Parse/Complete: the
// output sink for diagnostics, and every parameter bound so far in the
// current command chain (ancestors first, then this command's left-to-right
// bindings).
type Context struct {
	Out   io.Writer
	Bound []types.BoundValue
}

// NewContext creates a context seeded with a prior chain's bound values
// (e.g. the session's retained ancestor-scope bindings).
func NewContext(out io.Writer, seed []types.BoundValue) *Context {
	bound := make([]types.BoundValue, len(seed))
	copy(bound, seed)
	return &Context{Out: out, Bound: bound}
}

// Bind appends a successfully parsed value to the chain, making it visible
// to subsequent Lookup calls (including later parameters of the same
// command).
func (c *Context) Bind(v types.BoundValue) {
	c.Bound = append(c.Bound, v)
}

// Lookup walks Bound from most-recent to least-recent looking for a value
// of the given kind, skipping the first `skip` matches it finds. This is
// how an index parameter (e.g. a slot index) reaches back to "the module
// chosen earlier" without knowing its exact position in the chain.
func (c *Context) Lookup(kind types.ValueKind, skip int) (types.BoundValue, bool) {
	skipped := 0
	for i := len(c.Bound) - 1; i >= 0; i-- {
		if c.Bound[i].Kind != kind {
			continue
		}
		if skipped < skip {
			skipped++
			continue
		}
		return c.Bound[i], true
	}
	return types.BoundValue{}, false
}

// Kind is one typed command parameter: a name, a type tag and the ability
// to parse, validate and complete a single token.
type Kind interface {
	Name() string
	Tag() types.ValueKind
	TypeLabel() string
	// Parse must be pure with respect to ctx and token; the only permitted
	// side effect on failure is writing a diagnostic to ctx.Out.
	Parse(ctx *Context, token string) (types.BoundValue, bool)
	Complete(ctx *Context, token string) []Completion
}

// Validate is Parse discarding the value.
func Validate(k Kind, ctx *Context, token string) bool {
	_, ok := k.Parse(ctx, token)
	return ok
}

// IntKind parses a signed integer, optionally bounded to [Min, Max].
type IntKind struct {
	ParamName string
	HasRange  bool
	Min, Max  int
}

func NewIntKind(name string) *IntKind { return &IntKind{ParamName: name} }

func NewIntRangeKind(name string, min, max int) *IntKind {
	return &IntKind{ParamName: name, HasRange: true, Min: min, Max: max}
}

func (k *IntKind) Name() string           { return k.ParamName }
func (k *IntKind) Tag() types.ValueKind   { return types.KindInt }
func (k *IntKind) TypeLabel() string {
	if k.HasRange {
		return fmt.Sprintf("<%d-%d>", k.Min, k.Max)
	}
	return "<int>"
}

func (k *IntKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	n, err := strconv.Atoi(token)
	if err != nil {
		fmt.Fprintf(ctx.Out, "parameter %s: %q is not an integer\n", k.ParamName, token)
		return types.BoundValue{}, false
	}
	if k.HasRange && (n < k.Min || n > k.Max) {
		fmt.Fprintf(ctx.Out, "parameter %s: %d out of range %d-%d\n", k.ParamName, n, k.Min, k.Max)
		return types.BoundValue{}, false
	}
	return types.BoundValue{Kind: types.KindInt, Param: k.ParamName, Int: n}, true
}

func (k *IntKind) Complete(ctx *Context, token string) []Completion {
	return []Completion{{Text: k.TypeLabel(), Description: "integer parameter"}}
}

// FloatKind parses a float64, optionally bounded to [Min, Max].
type FloatKind struct {
	ParamName string
	HasRange  bool
	Min, Max  float64
}

func NewFloatKind(name string) *FloatKind { return &FloatKind{ParamName: name} }

func NewFloatRangeKind(name string, min, max float64) *FloatKind {
	return &FloatKind{ParamName: name, HasRange: true, Min: min, Max: max}
}

func (k *FloatKind) Name() string         { return k.ParamName }
func (k *FloatKind) Tag() types.ValueKind { return types.KindFloat }
func (k *FloatKind) TypeLabel() string {
	if k.HasRange {
		return fmt.Sprintf("<%g-%g>", k.Min, k.Max)
	}
	return "<float>"
}

func (k *FloatKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		fmt.Fprintf(ctx.Out, "parameter %s: %q is not a number\n", k.ParamName, token)
		return types.BoundValue{}, false
	}
	if k.HasRange && (f < k.Min || f > k.Max) {
		fmt.Fprintf(ctx.Out, "parameter %s: %g out of range %g-%g\n", k.ParamName, f, k.Min, k.Max)
		return types.BoundValue{}, false
	}
	return types.BoundValue{Kind: types.KindFloat, Param: k.ParamName, Float: f}, true
}

func (k *FloatKind) Complete(ctx *Context, token string) []Completion {
	return []Completion{{Text: k.TypeLabel(), Description: "decimal parameter"}}
}

// StringKind accepts any non-empty token (or, when used as the sole
// parameter of a "free" list, the whole joined remainder of the line).
type StringKind struct {
	ParamName   string
	AllowEmpty  bool
}

func NewStringKind(name string) *StringKind { return &StringKind{ParamName: name} }

func (k *StringKind) Name() string         { return k.ParamName }
func (k *StringKind) Tag() types.ValueKind { return types.KindString }
func (k *StringKind) TypeLabel() string    { return strings.ToUpper(k.ParamName) }

func (k *StringKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	if token == "" && !k.AllowEmpty {
		fmt.Fprintf(ctx.Out, "parameter %s: expected text\n", k.ParamName)
		return types.BoundValue{}, false
	}
	return types.BoundValue{Kind: types.KindString, Param: k.ParamName, Str: token}, true
}

func (k *StringKind) Complete(ctx *Context, token string) []Completion { return nil }

// EnumKind accepts one of a fixed set of values (case-sensitive, matched
// verbatim) and completes by prefix.
type EnumKind struct {
	ParamName string
	Values    []string
}

func NewEnumKind(name string, values ...string) *EnumKind {
	return &EnumKind{ParamName: name, Values: values}
}

func (k *EnumKind) Name() string         { return k.ParamName }
func (k *EnumKind) Tag() types.ValueKind { return types.KindString }
func (k *EnumKind) TypeLabel() string    { return "(" + strings.Join(k.Values, "|") + ")" }

func (k *EnumKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	for _, v := range k.Values {
		if v == token {
			return types.BoundValue{Kind: types.KindString, Param: k.ParamName, Str: v}, true
		}
	}
	fmt.Fprintf(ctx.Out, "parameter %s: %q must be one of %s\n", k.ParamName, token, strings.Join(k.Values, ", "))
	return types.BoundValue{}, false
}

func (k *EnumKind) Complete(ctx *Context, token string) []Completion {
	var out []Completion
	for _, v := range k.Values {
		if strings.HasPrefix(v, token) {
			out = append(out, Completion{Text: v, Description: k.ParamName})
		}
	}
	return out
}

// BoolKind accepts "on"/"off" (or any two words the caller supplies).
type BoolKind struct {
	ParamName     string
	TrueWord, FalseWord string
}

func NewBoolKind(name string) *BoolKind {
	return &BoolKind{ParamName: name, TrueWord: "on", FalseWord: "off"}
}

func (k *BoolKind) Name() string         { return k.ParamName }
func (k *BoolKind) Tag() types.ValueKind { return types.KindBool }
func (k *BoolKind) TypeLabel() string    { return fmt.Sprintf("(%s|%s)", k.TrueWord, k.FalseWord) }

func (k *BoolKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	switch token {
	case k.TrueWord:
		return types.BoundValue{Kind: types.KindBool, Param: k.ParamName, Bool: true}, true
	case k.FalseWord:
		return types.BoundValue{Kind: types.KindBool, Param: k.ParamName, Bool: false}, true
	}
	fmt.Fprintf(ctx.Out, "parameter %s: expected %s or %s\n", k.ParamName, k.TrueWord, k.FalseWord)
	return types.BoundValue{}, false
}

func (k *BoolKind) Complete(ctx *Context, token string) []Completion {
	var out []Completion
	for _, v := range []string{k.TrueWord, k.FalseWord} {
		if strings.HasPrefix(v, token) {
			out = append(out, Completion{Text: v, Description: k.ParamName})
		}
	}
	return out
}

// ObjectFilter decides whether an object reference satisfies an
// object-reference parameter, given the context accumulated so far (for
// filters like "mountable by the controller bound earlier").
type ObjectFilter func(ctx *Context, id, kind string) bool

// AcceptAll is the trivial filter used by unconstrained object references.
func AcceptAll(ctx *Context, id, kind string) bool { return true }

// ObjectLister enumerates known objects; this is the shape of query
// mechshell issues against the external domain registry.
// internal/registry.Registry satisfies this.
type ObjectLister interface {
	// Lookup resolves a textual id to (kind, ok).
	Lookup(id string) (kind string, ok bool)
	// Enumerate lists every known object id, optionally narrowed to a kind.
	Enumerate(kindFilter string) []string
}

// ObjectRefKind parses a textual id, checked for existence against a
// Lister and a caller-supplied predicate (filters like accepts-all, is-a,
// mountable-by, not-installed, is-installed, top-level).
type ObjectRefKind struct {
	ParamName string
	Lister    ObjectLister
	Filter    ObjectFilter
	KindHint  string // non-empty narrows Enumerate for completion
}

func NewObjectRefKind(name string, lister ObjectLister, filter ObjectFilter) *ObjectRefKind {
	if filter == nil {
		filter = AcceptAll
	}
	return &ObjectRefKind{ParamName: name, Lister: lister, Filter: filter}
}

func (k *ObjectRefKind) Name() string         { return k.ParamName }
func (k *ObjectRefKind) Tag() types.ValueKind { return types.KindObjectID }
func (k *ObjectRefKind) TypeLabel() string    { return "<" + k.ParamName + ">" }

func (k *ObjectRefKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	kind, ok := k.Lister.Lookup(token)
	if !ok {
		fmt.Fprintf(ctx.Out, "parameter %s: no such object %q\n", k.ParamName, token)
		return types.BoundValue{}, false
	}
	if !k.Filter(ctx, token, kind) {
		fmt.Fprintf(ctx.Out, "parameter %s: %q is not a valid choice here\n", k.ParamName, token)
		return types.BoundValue{}, false
	}
	return types.BoundValue{Kind: types.KindObjectID, Param: k.ParamName, ObjectID: token}, true
}

func (k *ObjectRefKind) Complete(ctx *Context, token string) []Completion {
	var out []Completion
	for _, id := range k.Lister.Enumerate(k.KindHint) {
		if !strings.HasPrefix(id, token) {
			continue
		}
		if kind, ok := k.Lister.Lookup(id); !ok || !k.Filter(ctx, id, kind) {
			continue
		}
		out = append(out, Completion{Text: id, Description: k.ParamName})
	}
	return out
}

// RangeResolver looks up the valid [min, max] range for an index parameter
// from a value bound earlier in the same chain (e.g. the slot count of the
// module chosen by a prior parameter).
type RangeResolver func(ctx *Context) (min, max int, ok bool)

// IndexKind is a slot/line/port index whose valid range depends on an
// earlier-bound parameter, resolved dynamically via Resolver
// — an index parameter bound to an earlier value.
type IndexKind struct {
	ParamName string
	Resolver  RangeResolver
}

func NewIndexKind(name string, resolver RangeResolver) *IndexKind {
	return &IndexKind{ParamName: name, Resolver: resolver}
}

func (k *IndexKind) Name() string         { return k.ParamName }
func (k *IndexKind) Tag() types.ValueKind { return types.KindInt }
func (k *IndexKind) TypeLabel() string    { return "<" + k.ParamName + ">" }

func (k *IndexKind) Parse(ctx *Context, token string) (types.BoundValue, bool) {
	min, max, ok := k.Resolver(ctx)
	if !ok {
		fmt.Fprintf(ctx.Out, "parameter %s: no referent bound earlier in this command\n", k.ParamName)
		return types.BoundValue{}, false
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < min || n > max {
		fmt.Fprintf(ctx.Out, "parameter %s: %q is not a valid index in %d-%d\n", k.ParamName, token, min, max)
		return types.BoundValue{}, false
	}
	return types.BoundValue{Kind: types.KindInt, Param: k.ParamName, Int: n}, true
}

func (k *IndexKind) Complete(ctx *Context, token string) []Completion {
	min, max, ok := k.Resolver(ctx)
	if !ok {
		return nil
	}
	var out []Completion
	for i := min; i <= max; i++ {
		s := strconv.Itoa(i)
		if strings.HasPrefix(s, token) {
			out = append(out, Completion{Text: s, Description: k.ParamName})
		}
	}
	return out
}
