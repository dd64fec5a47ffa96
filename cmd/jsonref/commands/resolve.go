package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mdhitche/jsonref"
	"github.com/mdhitche/jsonref/pointer"
	"github.com/mdhitche/jsonref/resolver"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	LoadFlags
	Format  string
	Pointer string
	Strict  bool
	Quiet   bool
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
// Returns the FlagSet and a ResolveFlags struct with bound flag variables.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: input format)")
	fs.StringVar(&flags.Format, "f", "", "output format: json or yaml (default: input format)")
	fs.StringVar(&flags.Pointer, "pointer", "", "JSON Pointer selecting the part of the document to output")
	fs.StringVar(&flags.Pointer, "p", "", "JSON Pointer selecting the part of the document to output")
	fs.BoolVar(&flags.Strict, "strict", false, "fail on circular references instead of keeping them as $ref objects")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: jsonref resolve [flags] <file|url|->\n\n")
		Writef(output, "Load a JSON or YAML document and output it with every $ref replaced.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  jsonref resolve schema.json\n")
		Writef(output, "  jsonref resolve -f yaml -p /definitions/Pet https://example.com/schema.json\n")
		Writef(output, "  cat schema.json | jsonref resolve -q --base https://example.com/schema.json -\n")
		Writef(output, "\nCircular References:\n")
		Writef(output, "  A reference met again while it is being expanded is written as {\"$ref\": uri}.\n")
		Writef(output, "  Use --strict to report it as an error instead.\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    Document resolved\n")
		Writef(output, "  1    Loading or resolution failed\n")
	}

	return fs, flags
}

// HandleResolve executes the resolve command
func HandleResolve(args []string) error {
	fs, flags := SetupResolveFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("resolve command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	docPath := fs.Arg(0)
	result, err := flags.Load(docPath)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	v, err := selectPointer(result.Data, flags.Pointer)
	if err != nil {
		return err
	}
	if flags.Strict {
		v, err = resolver.Expand(v)
	} else {
		v, err = resolver.ExpandPreservingCycles(v)
	}
	if err != nil {
		return fmt.Errorf("resolving references: %w", err)
	}

	format := flags.Format
	if format == "" {
		format = string(result.SourceFormat)
	}
	data, err := MarshalDocument(v, format)
	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	if !flags.Quiet {
		Writef(os.Stderr, "jsonref version: %s\n", jsonref.Version())
		Writef(os.Stderr, "Document: %s\n", FormatDocPath(docPath))
		if result.BaseURI != "" {
			Writef(os.Stderr, "Base URI: %s\n", result.BaseURI)
		}
		Writef(os.Stderr, "Fetched Documents: %d\n", result.Dereferencer.Fetches())
		Writef(os.Stderr, "Load Time: %v\n\n", result.LoadTime)
	}
	Writef(stdout, "%s\n", strings.TrimRight(string(data), "\n"))
	return nil
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
