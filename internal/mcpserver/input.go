package mcpserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mdhitche/jsonref/resolver"
)

// docInput represents the three ways a document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type docInput struct {
	File    string `json:"file,omitempty"     jsonschema:"Path to a JSON or YAML file on disk"`
	URL     string `json:"url,omitempty"      jsonschema:"URL to fetch a JSON or YAML document from"`
	Content string `json:"content,omitempty"  jsonschema:"Inline document content (JSON or YAML)"`
	BaseURI string `json:"base_uri,omitempty" jsonschema:"URI that relative references are resolved against (defaults to the file or URL location)"`
}

// load reads the document from whichever input was provided and replaces
// its references with lazy Refs. Every call gets its own Dereferencer, so
// concurrent tool calls share nothing.
func (s docInput) load(allowHTTP *bool) (*resolver.LoadResult, error) {
	count := 0
	if s.File != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	if s.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	// Enforce inline content size limit.
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set JSONREF_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	httpRefs := cfg.AllowHTTPRefs
	if allowHTTP != nil {
		httpRefs = *allowHTTP
	}

	opts := []resolver.Option{
		resolver.WithHTTPRefs(httpRefs),
		resolver.WithHTTPClient(newHTTPClient()),
		resolver.WithMaxFileSize(cfg.MaxFileSize),
		resolver.WithMaxRefDepth(cfg.MaxRefDepth),
		resolver.WithLogger(resolver.NewSlogAdapter(slog.Default()).With("component", "mcpserver")),
	}
	switch {
	case s.File != "":
		opts = append(opts, resolver.WithFilePath(s.File))
	case s.URL != "":
		opts = append(opts, resolver.WithFilePath(s.URL))
	case s.Content != "":
		opts = append(opts, resolver.WithBytes([]byte(s.Content)))
	}
	if s.BaseURI != "" {
		opts = append(opts, resolver.WithBaseURI(s.BaseURI))
	}
	return resolver.LoadWithOptions(opts...)
}

// newHTTPClient returns the client used for URL inputs and http references:
// SSRF-safe unless private IPs are allowed.
func newHTTPClient() *http.Client {
	if cfg.AllowPrivateIPs {
		return &http.Client{Timeout: cfg.FetchTimeout}
	}
	return newSafeHTTPClient(cfg.FetchTimeout)
}
