// Package pointer evaluates JSON Pointers (RFC 6901) given in URI fragment
// form against parsed JSON documents.
//
// A document is any tree of map[string]any, []any and scalar values, such as
// the output of encoding/json or go.yaml.in/yaml/v4 when unmarshalling into
// an any.
//
//	doc := map[string]any{"a": map[string]any{"b": 42}}
//	v, err := pointer.Resolve(doc, "/a/b") // v == 42
//
// Resolution is not recursive: a pointer that lands on a {"$ref": ...} object
// returns that object.
package pointer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mdhitche/jsonref/referrors"
)

// Pointer is a decoded JSON Pointer: the sequence of reference tokens.
// The empty Pointer refers to the whole document.
type Pointer []string

// ExpandFunc is applied to every intermediate value before it is indexed.
// It lets callers force lazily resolved values met along the path.
type ExpandFunc func(v any) (any, error)

// Parse decodes a URI fragment into a Pointer.
// Percent-escapes are decoded first (a malformed escape leaves the fragment as
// written), then one leading '/' is stripped, the rest is split on '/' and
// each token is unescaped with [Unescape].
func Parse(fragment string) Pointer {
	if fragment == "" {
		return Pointer{}
	}
	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}
	fragment = strings.TrimPrefix(fragment, "/")
	parts := strings.Split(fragment, "/")
	p := make(Pointer, len(parts))
	for i, part := range parts {
		p[i] = Unescape(part)
	}
	return p
}

// Unescape decodes a single reference token.
// Per RFC 6901, ~1 represents / and ~0 represents ~, decoded in that order.
func Unescape(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// Escape encodes a single reference token.
func Escape(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}

// String returns the pointer in its escaped "/a/b" form.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, token := range p {
		sb.WriteByte('/')
		sb.WriteString(Escape(token))
	}
	return sb.String()
}

// Resolve walks doc along the pointer given as a URI fragment.
func Resolve(doc any, fragment string) (any, error) {
	return walk(doc, Parse(fragment), fragment, nil)
}

// ResolveWith is Resolve with an [ExpandFunc] applied as in [Pointer.GetWith].
// Errors report the fragment as given.
func ResolveWith(doc any, fragment string, expand ExpandFunc) (any, error) {
	return walk(doc, Parse(fragment), fragment, expand)
}

// Get walks doc along p.
func (p Pointer) Get(doc any) (any, error) {
	return walk(doc, p, p.String(), nil)
}

// GetWith walks doc along p, passing each value that is about to be indexed
// through expand. The value finally returned is not expanded.
func (p Pointer) GetWith(doc any, expand ExpandFunc) (any, error) {
	return walk(doc, p, p.String(), expand)
}

func walk(doc any, p Pointer, raw string, expand ExpandFunc) (any, error) {
	current := doc
	for i, token := range p {
		if expand != nil {
			var err error
			if current, err = expand(current); err != nil {
				return nil, err
			}
		}

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[token]
			if !ok {
				return nil, resolutionError(raw, token, i, "missing key")
			}
			current = next

		case []any:
			index, err := parseIndex(token)
			if err != nil {
				return nil, resolutionError(raw, token, i, err.Error())
			}
			if index >= len(v) {
				return nil, resolutionError(raw, token, i,
					fmt.Sprintf("array index %d out of bounds (length %d)", index, len(v)))
			}
			current = v[index]

		default:
			return nil, resolutionError(raw, token, i, fmt.Sprintf("cannot traverse into type %T", v))
		}
	}
	return current, nil
}

// parseIndex parses an array index token: base-10 digits, no leading zeros.
func parseIndex(token string) (int, error) {
	if token == "-" {
		return 0, fmt.Errorf("index '-' refers to the element after the last one")
	}
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, fmt.Errorf("invalid array index '%s' (must be a non-negative integer)", token)
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, fmt.Errorf("invalid array index '%s' (must be a non-negative integer)", token)
		}
	}
	index, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid array index '%s': %w", token, err)
	}
	return index, nil
}

func resolutionError(raw, token string, index int, msg string) error {
	return &referrors.ResolutionError{
		Pointer: raw,
		Segment: token,
		Index:   index,
		Message: msg,
	}
}
