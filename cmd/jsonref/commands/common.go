// Package commands provides CLI command handlers for jsonref.
package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mdhitche/jsonref/resolver"
	"go.yaml.in/yaml/v4"
)

// Output format constants
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// stdout and stdin are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
// An empty format means "same as the input".
func ValidateOutputFormat(format string) error {
	if format != "" && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, FormatJSON, FormatYAML)
	}
	return nil
}

// MarshalDocument marshals a document to bytes in the specified format
func MarshalDocument(doc any, format string) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// LoadFlags are the document loading flags shared by every command that
// reads a document.
type LoadFlags struct {
	BaseURI  string
	NoHTTP   bool
	Insecure bool
	FileRefs string
	MaxDepth int
	Verbose  bool
}

// register binds the loading flags to fs.
func (f *LoadFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.BaseURI, "base", "", "URI that relative references resolve against (default: the file or URL location)")
	fs.BoolVar(&f.NoHTTP, "no-http", false, "do not follow http(s) references")
	fs.BoolVar(&f.Insecure, "insecure", false, "disable TLS certificate verification for https references")
	fs.StringVar(&f.FileRefs, "files", "", "follow file:// references below this directory (default: the input file's directory)")
	fs.IntVar(&f.MaxDepth, "max-depth", resolver.DefaultMaxRefDepth, "maximum nesting of references followed through references")
	fs.BoolVar(&f.Verbose, "v", false, "log fetches and resolution steps to stderr")
}

// Load reads the document at path (a file, URL or "-" for stdin) and
// replaces its references with lazy Refs.
func (f *LoadFlags) Load(path string) (*resolver.LoadResult, error) {
	opts := []resolver.Option{
		resolver.WithHTTPRefs(!f.NoHTTP),
		resolver.WithInsecureSkipVerify(f.Insecure),
		resolver.WithMaxRefDepth(f.MaxDepth),
	}
	if path == StdinFilePath {
		opts = append(opts, resolver.WithReader(stdin))
	} else {
		opts = append(opts, resolver.WithFilePath(path))
	}
	if f.BaseURI != "" {
		opts = append(opts, resolver.WithBaseURI(f.BaseURI))
	}
	if f.FileRefs != "" {
		opts = append(opts, resolver.WithFileRefs(f.FileRefs))
	}
	if f.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, resolver.WithLogger(resolver.NewSlogAdapter(slog.New(handler))))
	}
	return resolver.LoadWithOptions(opts...)
}

// FormatDocPath returns a display-friendly path for the document.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatDocPath(p string) string {
	if p == StdinFilePath {
		return "<stdin>"
	}
	return p
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}
