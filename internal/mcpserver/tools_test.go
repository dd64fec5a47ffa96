package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocJSON = `{
  "definitions": {
    "id": {"type": "integer"},
    "pet": {
      "type": "object",
      "properties": {
        "id": {"$ref": "#/definitions/id"},
        "parent": {"$ref": "#/definitions/pet"}
      }
    }
  },
  "items": [{"$ref": "#/definitions/id"}, {"$ref": "#/definitions/pet"}],
  "a/b": "slash"
}`

func boolPtr(b bool) *bool { return &b }

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestResolveTool_Content(t *testing.T) {
	input := resolveInput{Doc: docInput{Content: testDocJSON}, Pointer: "/definitions/pet/properties/id"}
	result, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Nil(t, result)

	assert.Equal(t, "json", output.Format)
	assert.JSONEq(t, `{"type": "integer"}`, output.Document)
	assert.Equal(t, 0, output.Fetches)
}

func TestResolveTool_CyclesPreserved(t *testing.T) {
	input := resolveInput{Doc: docInput{Content: testDocJSON}, Pointer: "#/definitions/pet"}
	_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &doc))
	props := doc["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer"}, props["id"])
	parent := props["parent"].(map[string]any)
	assert.Equal(t, map[string]any{"$ref": "#/definitions/pet"}, parent["properties"].(map[string]any)["parent"])
}

func TestResolveTool_Strict(t *testing.T) {
	input := resolveInput{Doc: docInput{Content: testDocJSON}, Strict: true}
	result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "circular reference")
}

func TestResolveTool_YAML(t *testing.T) {
	content := "x:\n  $ref: '#/y'\ny:\n  name: yaml\n"

	_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: content}})
	require.NoError(t, err)
	assert.Equal(t, "yaml", output.Format)
	assert.Contains(t, output.Document, "x:")
	assert.Contains(t, output.Document, "name: yaml")
	assert.NotContains(t, output.Document, "$ref")

	_, output, err = handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: content}, Format: "json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": {"name": "yaml"}, "y": {"name": "yaml"}}`, output.Document)
}

func TestResolveTool_InvalidFormat(t *testing.T) {
	result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: `{}`}, Format: "xml"})
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "invalid format")
}

func TestResolveTool_InputValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  docInput
		want string
	}{
		{"no input", docInput{}, "exactly one of file, url, or content"},
		{"two inputs", docInput{Content: `{}`, URL: "http://example.com/a.json"}, "exactly one of file, url, or content"},
		{"missing file", docInput{File: "/tmp/does-not-exist/doc.json"}, "failed to read file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: tt.doc})
			require.NoError(t, err)
			text := errorText(t, result)
			assert.Contains(t, text, tt.want)
			assert.NotContains(t, text, "/tmp/")
		})
	}
}

func TestResolveTool_InlineSizeLimit(t *testing.T) {
	withConfig(t, func(c *serverConfig) { c.MaxInlineSize = 8 })

	result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: testDocJSON}})
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "exceeds maximum")
}

func TestResolveTool_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defs.yaml"), []byte("name:\n  type: string\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.json"), []byte(`{"name": {"$ref": "defs.yaml#/name"}}`), 0o600))

	_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{
		Doc: docInput{File: filepath.Join(dir, "main.json")},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": {"type": "string"}}`, output.Document)
	assert.Equal(t, 1, output.Fetches)
	assert.True(t, strings.HasPrefix(output.BaseURI, "file://"))
}

func TestResolveTool_FileCycleKeepsRelativeRef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.json")
	require.NoError(t, os.WriteFile(path, []byte(testDocJSON), 0o600))

	_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{
		Doc:     docInput{File: path},
		Pointer: "/definitions/pet/properties/parent/properties/parent",
	})
	require.NoError(t, err)
	assert.NotContains(t, output.Document, "file://")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &doc))
	parent := doc["properties"].(map[string]any)["parent"]
	assert.Equal(t, map[string]any{"$ref": "#/definitions/pet"}, parent)
}

func TestResolveTool_HTTPRefs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": {"type": "integer"}}`))
	}))
	defer server.Close()
	content := `{"id": {"$ref": "` + server.URL + `/defs.json#/id"}}`

	t.Run("private address blocked by default", func(t *testing.T) {
		withConfig(t, func(c *serverConfig) { c.AllowPrivateIPs = false })

		result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: content}})
		require.NoError(t, err)
		assert.Contains(t, errorText(t, result), "blocked request")
	})

	t.Run("allowed private address", func(t *testing.T) {
		withConfig(t, func(c *serverConfig) { c.AllowPrivateIPs = true })

		_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{Doc: docInput{Content: content}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id": {"type": "integer"}}`, output.Document)
		assert.Equal(t, 1, output.Fetches)
	})

	t.Run("http disabled per call", func(t *testing.T) {
		withConfig(t, func(c *serverConfig) { c.AllowPrivateIPs = true })

		result, _, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{
			Doc:       docInput{Content: content},
			AllowHTTP: boolPtr(false),
		})
		require.NoError(t, err)
		assert.Contains(t, errorText(t, result), "http references are disabled")
	})

	t.Run("url input with base", func(t *testing.T) {
		withConfig(t, func(c *serverConfig) { c.AllowPrivateIPs = true })

		_, output, err := handleResolve(context.Background(), &mcp.CallToolRequest{}, resolveInput{
			Doc:     docInput{URL: server.URL + "/defs.json"},
			Pointer: "/id/type",
		})
		require.NoError(t, err)
		assert.Equal(t, `"integer"`, output.Document)
		assert.Equal(t, server.URL+"/defs.json", output.BaseURI)
	})
}

func TestPointerTool(t *testing.T) {
	tests := []struct {
		name     string
		pointer  string
		wantType string
		wantRef  string
		want     string
	}{
		{"object", "/definitions/id", "object", "", `{"type": "integer"}`},
		{"through reference", "/items/1/properties/id/type", "string", "", `"integer"`},
		{"lands on reference", "/items/0", "object", "#/definitions/id", `{"type": "integer"}`},
		{"escaped key", "/a~1b", "string", "", `"slash"`},
		{"whole document", "", "object", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := handlePointer(context.Background(), &mcp.CallToolRequest{}, pointerInput{
				Doc:     docInput{Content: testDocJSON},
				Pointer: tt.pointer,
			})
			require.NoError(t, err)
			require.Nil(t, result)

			assert.Equal(t, tt.wantType, output.Type)
			assert.Equal(t, tt.wantRef, output.Ref)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, output.Value)
			}
		})
	}
}

func TestPointerTool_Unresolvable(t *testing.T) {
	result, _, err := handlePointer(context.Background(), &mcp.CallToolRequest{}, pointerInput{
		Doc:     docInput{Content: testDocJSON},
		Pointer: "/definitions/missing",
	})
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "unresolvable JSON pointer")
}

func TestRefsTool(t *testing.T) {
	t.Run("ranked targets", func(t *testing.T) {
		_, output, err := handleRefs(context.Background(), &mcp.CallToolRequest{}, refsInput{Doc: docInput{Content: testDocJSON}})
		require.NoError(t, err)

		assert.Equal(t, 2, output.Total)
		assert.Equal(t, []groupCount{
			{Key: "#/definitions/id", Count: 2},
			{Key: "#/definitions/pet", Count: 2},
		}, output.Targets)
		assert.Empty(t, output.Locations)
	})

	t.Run("detail with filter", func(t *testing.T) {
		_, output, err := handleRefs(context.Background(), &mcp.CallToolRequest{}, refsInput{
			Doc:    docInput{Content: testDocJSON},
			Target: "*/id",
			Detail: true,
		})
		require.NoError(t, err)

		assert.Equal(t, []refLocation{
			{Pointer: "/definitions/pet/properties/id", URI: "#/definitions/id"},
			{Pointer: "/items/0", URI: "#/definitions/id"},
		}, output.Locations)
	})

	t.Run("pagination", func(t *testing.T) {
		_, output, err := handleRefs(context.Background(), &mcp.CallToolRequest{}, refsInput{
			Doc:    docInput{Content: testDocJSON},
			Detail: true,
			Offset: 1,
			Limit:  2,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, output.Total)
		assert.Equal(t, 2, output.Returned)
	})

	t.Run("invalid glob", func(t *testing.T) {
		result, _, err := handleRefs(context.Background(), &mcp.CallToolRequest{}, refsInput{
			Doc:    docInput{Content: testDocJSON},
			Target: "[bad*",
		})
		require.NoError(t, err)
		assert.Contains(t, errorText(t, result), "invalid glob pattern")
	})
}
