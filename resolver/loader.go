package resolver

// refKey is the member that marks an object as a JSON Reference.
const refKey = "$ref"

// LoadParsed replaces every {"$ref": "..."} object in an already parsed tree
// with a *Ref and returns the new tree. The input is not modified. Relative
// references are joined against baseURI, and the returned tree is stored
// under baseURI as the root for same-document references.
//
// Only the tree structure is rewritten here; nothing is dereferenced until a
// Ref is first resolved. A reference that is not a valid URI fails now.
func (d *Dereferencer) LoadParsed(tree any, baseURI string) (any, error) {
	if err := d.claimRoot(baseURI); err != nil {
		return nil, err
	}
	out, err := d.substitute(tree, baseURI)
	if err != nil {
		return nil, err
	}
	d.setRoot(baseURI, out)
	return out, nil
}

// Load decodes data (JSON or YAML) and substitutes references while the
// document is being built: JSON objects go through the reference hook as soon
// as they are complete. See LoadParsed for the semantics.
func (d *Dereferencer) Load(data []byte, baseURI string) (any, error) {
	if err := d.claimRoot(baseURI); err != nil {
		return nil, err
	}
	source := baseURI
	if source == "" {
		source = "<input>"
	}
	out, _, err := decodeDocument(data, detectFormatFromContent(data), source, d.refHook(baseURI))
	if err != nil {
		return nil, err
	}
	d.setRoot(baseURI, out)
	return out, nil
}

// refHook returns the object hook that turns reference objects into Refs.
func (d *Dereferencer) refHook(baseURI string) objectHook {
	return func(obj map[string]any) (any, error) {
		raw, ok := obj[refKey].(string)
		if !ok {
			return obj, nil
		}
		return d.newRef(raw, baseURI)
	}
}

// substitute copies v, replacing reference objects with Refs. An object whose
// "$ref" member is not a string is an ordinary object.
func (d *Dereferencer) substitute(v any, baseURI string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if raw, ok := t[refKey].(string); ok {
			return d.newRef(raw, baseURI)
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			nv, err := d.substitute(val, baseURI)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			nv, err := d.substitute(val, baseURI)
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
