package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mdhitche/jsonref/pointer"
	"github.com/mdhitche/jsonref/resolver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.yaml.in/yaml/v4"
)

type resolveInput struct {
	Doc       docInput `json:"doc"                  jsonschema:"The document to resolve"`
	AllowHTTP *bool    `json:"allow_http,omitempty" jsonschema:"Follow http(s) references (default from JSONREF_ALLOW_HTTP)"`
	Pointer   string   `json:"pointer,omitempty"    jsonschema:"JSON Pointer selecting the part of the document to return, e.g. /definitions/Pet"`
	Format    string   `json:"format,omitempty"     jsonschema:"Output format: json or yaml (default: input format)"`
	Strict    bool     `json:"strict,omitempty"     jsonschema:"Fail on circular references instead of keeping them as $ref objects"`
}

type resolveOutput struct {
	BaseURI  string `json:"base_uri,omitempty"`
	Format   string `json:"format"`
	Fetches  int    `json:"fetches"`
	Document string `json:"document"`
}

func handleResolve(_ context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	format, err := outputFormat(input.Format)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	result, err := input.Doc.load(input.AllowHTTP)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	v, err := selectPointer(result.Data, input.Pointer)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	if input.Strict {
		v, err = resolver.Expand(v)
	} else {
		v, err = resolver.ExpandPreservingCycles(v)
	}
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	if format == "" {
		format = string(result.SourceFormat)
	}
	data, err := marshalDocument(v, format)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	return nil, resolveOutput{
		BaseURI:  result.BaseURI,
		Format:   format,
		Fetches:  result.Dereferencer.Fetches(),
		Document: string(data),
	}, nil
}

// selectPointer evaluates p ("/a/b" or "#/a/b") against doc, following
// references along the way. An empty pointer selects doc.
func selectPointer(doc any, p string) (any, error) {
	fragment := strings.TrimPrefix(p, "#")
	if fragment == "" {
		return doc, nil
	}
	return pointer.ResolveWith(doc, fragment, resolver.Value)
}

func outputFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		return "", nil
	case "json":
		return string(resolver.SourceFormatJSON), nil
	case "yaml", "yml":
		return string(resolver.SourceFormatYAML), nil
	default:
		return "", fmt.Errorf("invalid format %q; valid values: json, yaml", format)
	}
}

// marshalDocument encodes v as indented JSON, or as YAML when format is yaml.
func marshalDocument(v any, format string) ([]byte, error) {
	if format == string(resolver.SourceFormatYAML) {
		return yaml.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
