// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes jsonref reference resolution as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mdhitche/jsonref"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `jsonref MCP server: resolves JSON Reference ($ref) objects in JSON and YAML documents.

Tools take a document as exactly one of file, url or content. Relative references resolve against the file or URL location, or against base_uri when given. References to local files are followed only for file inputs and only below the file's directory.

Configuration: All defaults are configurable via JSONREF_* environment variables set in your MCP client config.

Key settings:
- JSONREF_ALLOW_HTTP (default: true) - follow http(s) references (per call: allow_http)
- JSONREF_ALLOW_PRIVATE_IPS (default: false) - allow fetches from private and loopback addresses
- JSONREF_FETCH_TIMEOUT (default: 30s) - timeout per fetched document
- JSONREF_MAX_FILE_SIZE (default: 10MB) - maximum size of a loaded or fetched document
- JSONREF_MAX_INLINE_SIZE (default: 10MB) - maximum size of inline content
- JSONREF_MAX_REF_DEPTH (default: 100) - maximum nesting of references followed through references
- JSONREF_REFS_LIMIT (default: 100) - default result limit for the refs tool`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "jsonref", Version: jsonref.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Load a JSON or YAML document and return it with every $ref replaced by the value it points to. Use pointer to return only part of the result (for example /definitions/Pet). References that loop back on themselves are kept as {\"$ref\": uri} unless strict=true, which reports them as errors. Output format defaults to the input format; set format to json or yaml to override.",
	}, handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pointer",
		Description: "Evaluate a JSON Pointer (RFC 6901, e.g. /paths/~1pets/get) against a document, following $ref objects met along the way. Returns the value found there as JSON, and the reference URI when the pointer lands on a $ref.",
	}, handlePointer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refs",
		Description: "List the $ref targets of a document without resolving them, ranked by reference count (most-referenced first). Use target to filter (supports * glob, e.g. *definitions/*). Use detail=true to list each reference location instead of counts. Use offset/limit to paginate. Default limit is configurable via JSONREF_REFS_LIMIT.",
	}, handleRefs)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.RefsLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.RefsLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in ranked results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[keyFn(item)]++
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchRefGlob never encounters an
// invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}

// matchRefGlob reports whether a reference URI matches pattern, ignoring
// case. A pattern without glob characters must match exactly.
func matchRefGlob(ref, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return strings.EqualFold(ref, pattern)
	}
	// Replace / with : so filepath.Match's * can cross path boundaries.
	normalizedRef := strings.ReplaceAll(strings.ToLower(ref), "/", ":")
	normalizedPattern := strings.ReplaceAll(strings.ToLower(pattern), "/", ":")
	matched, err := filepath.Match(normalizedPattern, normalizedRef)
	return err == nil && matched
}
