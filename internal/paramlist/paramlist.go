// Package paramlist implements an ordered sequence of parameter kinds
// attached to a command node, with batch parse/complete and tuple-style
// retrieval.
package paramlist

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trailhuang/mechshell/internal/paramkind"
	"github.com/trailhuang/mechshell/pkg/types"
)

// List is the ordered parameter sequence of one command. It is "free" iff
// it holds exactly one string parameter, in which case Prepare joins every
// remaining token with single spaces and binds the result to that one
// parameter instead of matching tokens 1-for-1.
type List struct {
	params []paramkind.Kind
}

// New builds a parameter list from an ordered sequence of kinds.
func New(kinds ...paramkind.Kind) *List {
	return &List{params: kinds}
}

// Params returns the ordered kinds, for callers that need type labels
// (help text, prompts).
func (l *List) Params() []paramkind.Kind { return l.params }

// Len is the declared parameter count (1 for a free list, regardless of
// how many tokens it ends up swallowing).
func (l *List) Len() int { return len(l.params) }

// IsFree reports whether this list consumes the rest of the line as one
// joined string.
func (l *List) IsFree() bool {
	if len(l.params) != 1 {
		return false
	}
	_, ok := l.params[0].(*paramkind.StringKind)
	return ok
}

// Result is the outcome of a Prepare call.
type Result struct {
	// Prepared is the count of successfully bound parameters.
	Prepared int
	// FailedIndices holds the token indices (relative to the tokens slice
	// passed to Prepare) that failed to parse.
	FailedIndices []int
	// Bound holds every successfully parsed value, in parameter order.
	Bound []types.BoundValue
	// ConsumedTokens is the number of tokens this list consumed, counting
	// from the start of the tokens slice it was given.
	ConsumedTokens int
}

// Ok reports whether no attempted parameter failed to parse. Parameters
// left without a token are not failures, so Ok can hold while Prepared is
// less than the list's Len.
func (r Result) Ok() bool {
	return len(r.FailedIndices) == 0
}

// Prepare attempts to parse every parameter against tokens, in the order
// declared. It never short-circuits on a single failure: every position is
// attempted so the caller can report every bad parameter at once.
func (l *List) Prepare(ctx *paramkind.Context, tokens []string) Result {
	if l.IsFree() {
		joined := joinTokens(tokens)
		v, ok := l.params[0].Parse(ctx, joined)
		if !ok {
			return Result{FailedIndices: []int{0}, ConsumedTokens: len(tokens)}
		}
		ctx.Bind(v)
		return Result{Prepared: 1, Bound: []types.BoundValue{v}, ConsumedTokens: len(tokens)}
	}

	var res Result
	consumed := 0
	for i, kind := range l.params {
		if i >= len(tokens) {
			break
		}
		v, ok := kind.Parse(ctx, tokens[i])
		consumed = i + 1
		if !ok {
			res.FailedIndices = append(res.FailedIndices, i)
			continue
		}
		ctx.Bind(v)
		res.Bound = append(res.Bound, v)
		res.Prepared++
	}
	res.ConsumedTokens = consumed
	return res
}

func joinTokens(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

// Complete returns advisory completions for the parameter at index k. It
// first validates every preceding parameter (0..k-1) against tokens; if any
// fails, no completions are returned, per the gating rule.
func (l *List) Complete(ctx *paramkind.Context, tokens []string, k int) []paramkind.Completion {
	if k < 0 || k >= len(l.params) {
		return nil
	}
	if l.IsFree() {
		if k != 0 {
			return nil
		}
		var tok string
		if len(tokens) > 0 {
			tok = joinTokens(tokens)
		}
		return l.params[0].Complete(ctx, tok)
	}
	for i := 0; i < k; i++ {
		if i >= len(tokens) {
			return nil
		}
		if !paramkind.Validate(l.params[i], ctx, tokens[i]) {
			return nil
		}
	}
	var token string
	if k < len(tokens) {
		token = tokens[k]
	}
	return l.params[k].Complete(ctx, token)
}

// Values retrieves this list's bound values as an ordered tuple matching
// the requested kinds. A type mismatch is a command-author error: it is
// reported to ctx.Out and the mismatched slot receives a zero value, so the
// caller can proceed without panicking.
func (l *List) Values(ctx *paramkind.Context, bound []types.BoundValue, want ...types.ValueKind) []types.BoundValue {
	out := make([]types.BoundValue, len(want))
	for i, k := range want {
		if i >= len(bound) {
			fmt.Fprintf(ctx.Out, "internal error: requested parameter %d but only %d were bound\n", i, len(bound))
			continue
		}
		if bound[i].Kind != k {
			fmt.Fprintf(ctx.Out, "internal error: parameter %d is %s, not %s\n", i, bound[i].Kind, k)
			continue
		}
		out[i] = bound[i]
	}
	return out
}

// ErrTypeMismatch is returned by strongly-typed retrieval helpers
// (IntAt, StringAt, ...) on a kind mismatch, wrapped with the offending
// index via github.com/pkg/errors so callers can add call-site context.
var ErrTypeMismatch = errors.New("paramlist: parameter type mismatch")

// IntAt retrieves bound[i] as an int, or returns ErrTypeMismatch.
func IntAt(bound []types.BoundValue, i int) (int, error) {
	if i >= len(bound) {
		return 0, errors.Wrapf(ErrTypeMismatch, "index %d out of range (%d bound)", i, len(bound))
	}
	if bound[i].Kind != types.KindInt {
		return 0, errors.Wrapf(ErrTypeMismatch, "index %d is %s", i, bound[i].Kind)
	}
	return bound[i].Int, nil
}

// StringAt retrieves bound[i] as a string, or returns ErrTypeMismatch.
func StringAt(bound []types.BoundValue, i int) (string, error) {
	if i >= len(bound) {
		return "", errors.Wrapf(ErrTypeMismatch, "index %d out of range (%d bound)", i, len(bound))
	}
	if bound[i].Kind != types.KindString && bound[i].Kind != types.KindObjectID {
		return "", errors.Wrapf(ErrTypeMismatch, "index %d is %s", i, bound[i].Kind)
	}
	if bound[i].Kind == types.KindObjectID {
		return bound[i].ObjectID, nil
	}
	return bound[i].Str, nil
}
