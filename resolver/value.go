package resolver

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mdhitche/jsonref/pointer"
	"github.com/mdhitche/jsonref/referrors"
)

// Value returns v with any chain of references followed to the value it
// finally resolves to. Values that are not Refs are returned unchanged.
func Value(v any) (any, error) {
	var seen map[*Ref]bool
	for {
		r, ok := v.(*Ref)
		if !ok {
			return v, nil
		}
		if seen[r] {
			return nil, &referrors.ReferenceError{Ref: r.uri, IsCircular: true, Message: "reference chain loops"}
		}
		if seen == nil {
			seen = make(map[*Ref]bool)
		}
		seen[r] = true

		next, err := r.Resolve()
		if err != nil {
			return nil, err
		}
		v = next
	}
}

// Get walks v along the given reference tokens, resolving references on the
// way, and returns the fully resolved value at the end.
//
//	name, err := resolver.Get(doc, "definitions", "pet", "properties", "name")
func Get(v any, tokens ...string) (any, error) {
	got, err := pointer.Pointer(tokens).GetWith(v, Value)
	if err != nil {
		return nil, err
	}
	return Value(got)
}

// Len returns the number of members of an object, elements of an array or
// bytes of a string, resolving v first.
func Len(v any) (int, error) {
	v, err := Value(v)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case map[string]any:
		return len(t), nil
	case []any:
		return len(t), nil
	case string:
		return len(t), nil
	default:
		return 0, fmt.Errorf("value of type %T has no length", v)
	}
}

// Expand returns a copy of v with every reference replaced by its resolved
// value, recursively. Circular references cannot be expanded and fail with
// an error matching referrors.ErrCircularReference.
func Expand(v any) (any, error) {
	return expand(v, make(map[*Ref]bool), false)
}

// ExpandPreservingCycles is Expand, except that a reference met again while
// it is being expanded is written as a reference object instead of failing.
// A reference from the root document keeps its text as written; one from
// any other document is written with its absolute URI.
func ExpandPreservingCycles(v any) (any, error) {
	return expand(v, make(map[*Ref]bool), true)
}

func expand(v any, active map[*Ref]bool, keepCycles bool) (any, error) {
	switch t := v.(type) {
	case *Ref:
		if active[t] {
			if keepCycles {
				return map[string]any{refKey: t.cycleURI()}, nil
			}
			return nil, &referrors.ReferenceError{Ref: t.uri, IsCircular: true, Message: "cannot expand recursive structure"}
		}
		active[t] = true
		defer delete(active, t)

		next, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return expand(next, active, keepCycles)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			nv, err := expand(val, active, keepCycles)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			nv, err := expand(val, active, keepCycles)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

// refPair identifies one comparison of two references (either may be nil).
type refPair struct {
	a, b *Ref
}

// Equal reports whether a and b are structurally equal once references are
// resolved. Numbers compare by value regardless of their Go type. A pair of
// references already being compared further up is assumed equal, so
// recursive structures compare without looping.
func Equal(a, b any) (bool, error) {
	return equal(a, b, make(map[refPair]bool))
}

func equal(a, b any, seen map[refPair]bool) (bool, error) {
	ra, _ := a.(*Ref)
	rb, _ := b.(*Ref)
	if ra != nil || rb != nil {
		pair := refPair{a: ra, b: rb}
		if seen[pair] {
			return true, nil
		}
		seen[pair] = true
		defer delete(seen, pair)

		var err error
		if a, err = Value(a); err != nil {
			return false, err
		}
		if b, err = Value(b); err != nil {
			return false, err
		}
	}

	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false, nil
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok {
				return false, nil
			}
			if eq, err := equal(av, bv, seen); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false, nil
		}
		for i := range at {
			if eq, err := equal(at[i], bt[i], seen); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	default:
		if af, ok := toFloat(a); ok {
			bf, ok := toFloat(b)
			return ok && af == bf, nil
		}
		return reflect.DeepEqual(a, b), nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
