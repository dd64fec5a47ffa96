package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdhitche/jsonref/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type pointerInput struct {
	Doc       docInput `json:"doc"                  jsonschema:"The document to evaluate the pointer against"`
	Pointer   string   `json:"pointer"              jsonschema:"JSON Pointer, e.g. /definitions/Pet/properties (a leading # is accepted)"`
	AllowHTTP *bool    `json:"allow_http,omitempty" jsonschema:"Follow http(s) references (default from JSONREF_ALLOW_HTTP)"`
}

type pointerOutput struct {
	Pointer string `json:"pointer"`
	Type    string `json:"type"`
	Ref     string `json:"ref,omitempty"`
	Value   string `json:"value"`
}

func handlePointer(_ context.Context, _ *mcp.CallToolRequest, input pointerInput) (*mcp.CallToolResult, pointerOutput, error) {
	result, err := input.Doc.load(input.AllowHTTP)
	if err != nil {
		return errResult(err), pointerOutput{}, nil
	}

	found, err := selectPointer(result.Data, input.Pointer)
	if err != nil {
		return errResult(err), pointerOutput{}, nil
	}

	output := pointerOutput{Pointer: input.Pointer}
	if ref, ok := found.(*resolver.Ref); ok {
		output.Ref = ref.URI()
	}

	v, err := resolver.ExpandPreservingCycles(found)
	if err != nil {
		return errResult(err), pointerOutput{}, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errResult(err), pointerOutput{}, nil
	}
	output.Type = jsonType(v)
	output.Value = string(data)
	return nil, output, nil
}

// jsonType names the JSON type of a decoded value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
