package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/mdhitche/jsonref/resolver"
)

// PointerFlags contains flags for the pointer command
type PointerFlags struct {
	LoadFlags
	Format string
	Raw    bool
}

// SetupPointerFlags creates and configures a FlagSet for the pointer command.
// Returns the FlagSet and a PointerFlags struct with bound flag variables.
func SetupPointerFlags() (*flag.FlagSet, *PointerFlags) {
	fs := flag.NewFlagSet("pointer", flag.ContinueOnError)
	flags := &PointerFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Format, "format", FormatJSON, "output format: json or yaml")
	fs.StringVar(&flags.Format, "f", FormatJSON, "output format: json or yaml")
	fs.BoolVar(&flags.Raw, "raw", false, "print string values without quotes")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: jsonref pointer [flags] <file|url|-> <pointer>\n\n")
		Writef(output, "Evaluate a JSON Pointer (RFC 6901) against a document, following $ref objects.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  jsonref pointer schema.json /definitions/Pet\n")
		Writef(output, "  jsonref pointer --raw openapi.yaml '/paths/~1pets/get/summary'\n")
	}

	return fs, flags
}

// HandlePointer executes the pointer command
func HandlePointer(args []string) error {
	fs, flags := SetupPointerFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("pointer command requires a file path, URL, or '-' and a JSON pointer")
	}
	if flags.Format == "" {
		flags.Format = FormatJSON
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	result, err := flags.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	found, err := selectPointer(result.Data, fs.Arg(1))
	if err != nil {
		return err
	}
	v, err := resolver.ExpandPreservingCycles(found)
	if err != nil {
		return fmt.Errorf("resolving references: %w", err)
	}

	if s, ok := v.(string); ok && flags.Raw {
		Writef(stdout, "%s\n", s)
		return nil
	}
	data, err := MarshalDocument(v, flags.Format)
	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", flags.Format, err)
	}
	Writef(stdout, "%s\n", strings.TrimRight(string(data), "\n"))
	return nil
}
