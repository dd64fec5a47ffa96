package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/mdhitche/jsonref/internal/uriutil"
	"github.com/mdhitche/jsonref/referrors"
	"github.com/mdhitche/jsonref/uristore"
)

// Ref is a lazy stand-in for the value a {"$ref": ...} object points to.
//
// A Ref starts unresolved. The first call to Resolve asks its Dereferencer
// for the target and memoizes the result; every later call returns the memo
// without dereferencing again. A failed resolution is not memoized, so the
// caller may retry.
//
// Go cannot intercept operations on a value, so consumers make the resolve
// step explicit: call Resolve, or use the package helpers Value, Get, Equal,
// Len and Expand, which look through Refs. Refs marshal (JSON, YAML) and
// format (fmt) as their resolved value.
type Ref struct {
	uri          string
	raw          string
	base         string
	d            *Dereferencer
	dereferenced bool
	resolving    bool
	value        any
}

// newRef joins raw against base and returns an unresolved Ref.
// A reference that cannot be parsed as a URI fails here, at load time.
func (d *Dereferencer) newRef(raw, base string) (*Ref, error) {
	uri, err := uriutil.Join(base, raw)
	if err != nil {
		return nil, &referrors.ReferenceError{Ref: raw, Message: "invalid reference URI", Cause: err}
	}
	return &Ref{uri: uri, raw: raw, base: base, d: d}, nil
}

// URI returns the absolute (base-joined) reference URI.
func (r *Ref) URI() string {
	return r.uri
}

// Raw returns the reference as written in the document.
func (r *Ref) Raw() string {
	return r.raw
}

// cycleURI is the URI written back for a reference that cannot be expanded.
// References found in the root document keep their text as written, which
// stays valid relative to that document; others use the absolute URI.
func (r *Ref) cycleURI() string {
	if uristore.Normalize(r.base) == r.d.root {
		return r.raw
	}
	return r.uri
}

// Dereferenced reports whether the Ref has been resolved.
func (r *Ref) Dereferenced() bool {
	return r.dereferenced
}

// Resolve returns the referenced value, dereferencing it on first use.
// The value is not resolved further: if the target is itself a reference,
// a *Ref is returned (see Value).
func (r *Ref) Resolve() (any, error) {
	if r.dereferenced {
		return r.value, nil
	}
	if r.resolving {
		return nil, &referrors.ReferenceError{Ref: r.uri, IsCircular: true, Message: "reference resolves through itself"}
	}
	r.resolving = true
	defer func() { r.resolving = false }()

	r.d.log().Debug("dereferencing", "ref", r.uri)
	v, err := r.d.Dereference(r.uri)
	if err != nil {
		return nil, fmt.Errorf("resolving $ref %s: %w", r.uri, err)
	}
	r.value, r.dereferenced = v, true
	return v, nil
}

// MarshalJSON encodes the resolved value. Circular references are written
// back as {"$ref": ...}, see ExpandPreservingCycles.
func (r *Ref) MarshalJSON() ([]byte, error) {
	v, err := ExpandPreservingCycles(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalYAML implements the go.yaml.in/yaml/v4 Marshaler interface.
func (r *Ref) MarshalYAML() (any, error) {
	return ExpandPreservingCycles(r)
}

// String formats the resolved value. If resolution fails the reference and
// the error are shown instead.
func (r *Ref) String() string {
	v, err := ExpandPreservingCycles(r)
	if err != nil {
		return fmt.Sprintf("$ref(%s): %v", r.uri, err)
	}
	return fmt.Sprint(v)
}
