package mcpserver

import (
	"context"
	"sort"
	"strconv"

	"github.com/mdhitche/jsonref/pointer"
	"github.com/mdhitche/jsonref/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type refsInput struct {
	Doc    docInput `json:"doc"              jsonschema:"The document to scan"`
	Target string   `json:"target,omitempty" jsonschema:"Only references whose URI matches (case-insensitive, * glob)"`
	Detail bool     `json:"detail,omitempty" jsonschema:"List each reference location instead of counts per target"`
	Offset int      `json:"offset,omitempty" jsonschema:"Skip the first N results"`
	Limit  int      `json:"limit,omitempty"  jsonschema:"Maximum number of results (default from JSONREF_REFS_LIMIT)"`
}

type refLocation struct {
	Pointer string `json:"pointer"`
	URI     string `json:"uri"`
}

type refsOutput struct {
	Total     int           `json:"total"`
	Returned  int           `json:"returned"`
	Targets   []groupCount  `json:"targets,omitempty"`
	Locations []refLocation `json:"locations,omitempty"`
}

func handleRefs(_ context.Context, _ *mcp.CallToolRequest, input refsInput) (*mcp.CallToolResult, refsOutput, error) {
	if err := validateGlobPattern(input.Target); err != nil {
		return errResult(err), refsOutput{}, nil
	}

	// Scanning never resolves, so no fetches happen here.
	result, err := input.Doc.load(nil)
	if err != nil {
		return errResult(err), refsOutput{}, nil
	}

	var locations []refLocation
	collectRefs(result.Data, nil, func(loc refLocation) {
		if matchRefGlob(loc.URI, input.Target) {
			locations = append(locations, loc)
		}
	})

	if input.Detail {
		page := paginate(locations, input.Offset, input.Limit)
		return nil, refsOutput{Total: len(locations), Returned: len(page), Locations: page}, nil
	}

	groups := groupAndSort(locations, func(loc refLocation) string { return loc.URI })
	page := paginate(groups, input.Offset, input.Limit)
	return nil, refsOutput{Total: len(groups), Returned: len(page), Targets: page}, nil
}

// collectRefs walks a loaded tree in key order and reports every Ref with
// the JSON Pointer of its location. Refs are not followed.
func collectRefs(v any, path pointer.Pointer, visit func(refLocation)) {
	switch t := v.(type) {
	case *resolver.Ref:
		visit(refLocation{Pointer: path.String(), URI: t.URI()})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectRefs(t[k], append(path[:len(path):len(path)], k), visit)
		}
	case []any:
		for i, elem := range t {
			collectRefs(elem, append(path[:len(path):len(path)], strconv.Itoa(i)), visit)
		}
	}
}
