package resolver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mdhitche/jsonref/referrors"
	"go.yaml.in/yaml/v4"
)

// maxNestingDepth bounds container nesting while decoding.
const maxNestingDepth = 10000

// objectHook is invoked once per completed JSON object, innermost first.
// Its result replaces the object in the tree being built.
type objectHook func(obj map[string]any) (any, error)

// hookError carries an objectHook failure out of the decoder unchanged.
type hookError struct {
	err error
}

func (e hookError) Error() string { return e.err.Error() }

// decodeDocument decodes data in the given format. An unknown format is
// sniffed from the content.
func decodeDocument(data []byte, format SourceFormat, source string, hook objectHook) (any, SourceFormat, error) {
	if format == SourceFormatUnknown {
		format = detectFormatFromContent(data)
	}
	switch format {
	case SourceFormatJSON:
		v, err := decodeJSON(data, source, hook)
		return v, format, err
	case SourceFormatYAML:
		v, err := decodeYAML(data, source)
		if err != nil || hook == nil {
			return v, format, err
		}
		v, err = applyHook(v, hook)
		return v, format, err
	default:
		return nil, format, &referrors.ParseError{Source: source, Message: "empty document"}
	}
}

// decodeJSON decodes a single JSON value from data, calling hook on every
// object as soon as its closing brace is read.
func decodeJSON(data []byte, source string, hook objectHook) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, hook, 0)
	if err != nil {
		var he hookError
		if errors.As(err, &he) {
			return nil, he.err
		}
		var limitErr *referrors.ResourceLimitError
		if errors.As(err, &limitErr) {
			return nil, err
		}
		return nil, &referrors.ParseError{Source: source, Offset: dec.InputOffset(), Message: "invalid JSON", Cause: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &referrors.ParseError{Source: source, Offset: dec.InputOffset(), Message: "unexpected data after top-level value"}
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, hook objectHook, depth int) (any, error) {
	if depth > maxNestingDepth {
		return nil, &referrors.ResourceLimitError{
			ResourceType: "nesting_depth",
			Limit:        maxNestingDepth,
			Actual:       int64(depth),
			Message:      "document too deeply nested",
		}
	}

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := make(map[string]any)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec, hook, depth+1)
				if err != nil {
					return nil, err
				}
				obj[key] = val
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if hook != nil {
				v, err := hook(obj)
				if err != nil {
					return nil, hookError{err: err}
				}
				return v, nil
			}
			return obj, nil
		case '[':
			arr := make([]any, 0)
			for dec.More() {
				val, err := decodeValue(dec, hook, depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		return convertNumber(t), nil
	default:
		// string, bool or nil
		return t, nil
	}
}

// convertNumber maps JSON numbers onto the types YAML decoding produces:
// int for integers that fit, float64 otherwise.
func convertNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}

// decodeYAML unmarshals YAML (a superset of JSON) and converts any mapping
// with non-string keys into map[string]any.
func decodeYAML(data []byte, source string) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &referrors.ParseError{Source: source, Message: "invalid YAML", Cause: err}
	}
	return normalizeYAML(v), nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// applyHook runs hook bottom-up over an already decoded tree, the way the
// JSON decoder invokes it during parsing.
func applyHook(v any, hook objectHook) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			nv, err := applyHook(val, hook)
			if err != nil {
				return nil, err
			}
			t[k] = nv
		}
		return hook(t)
	case []any:
		for i, val := range t {
			nv, err := applyHook(val, hook)
			if err != nil {
				return nil, err
			}
			t[i] = nv
		}
		return t, nil
	default:
		return v, nil
	}
}
