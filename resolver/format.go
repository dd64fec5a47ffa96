package resolver

import (
	"bytes"
	"mime"
	"path"
	"path/filepath"
	"strings"
)

// SourceFormat is the serialization format of a loaded document.
type SourceFormat string

const (
	// SourceFormatJSON indicates the source was JSON
	SourceFormatJSON SourceFormat = "json"
	// SourceFormatYAML indicates the source was YAML
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatUnknown indicates the format could not be determined
	SourceFormatUnknown SourceFormat = "unknown"
)

// detectFormatFromPath detects the format from a file extension
func detectFormatFromPath(p string) SourceFormat {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json":
		return SourceFormatJSON
	case ".yaml", ".yml":
		return SourceFormatYAML
	default:
		return SourceFormatUnknown
	}
}

// detectFormatFromContentType maps a Content-Type header to a format
func detectFormatFromContentType(contentType string) SourceFormat {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return SourceFormatUnknown
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return SourceFormatJSON
	case strings.Contains(mediaType, "yaml"):
		return SourceFormatYAML
	default:
		return SourceFormatUnknown
	}
}

// detectFormatFromContent guesses the format from the first non-space byte.
// JSON documents start with '{' or '[' (or are bare scalars, which YAML
// decodes identically).
func detectFormatFromContent(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return SourceFormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}

// detectFormat combines the URI extension, Content-Type and content sniffing,
// in that order of preference.
func detectFormat(uri, contentType string, data []byte) SourceFormat {
	p, _, _ := strings.Cut(uri, "?")
	if f := detectFormatFromPath(path.Base(p)); f != SourceFormatUnknown {
		return f
	}
	if f := detectFormatFromContentType(contentType); f != SourceFormatUnknown {
		return f
	}
	return detectFormatFromContent(data)
}

// isURL reports whether s is an http:// or https:// URL
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
