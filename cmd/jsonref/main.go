package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mdhitche/jsonref"
	"github.com/mdhitche/jsonref/cmd/jsonref/commands"
	"github.com/mdhitche/jsonref/internal/mcpserver"
)

// commandNames lists the top-level commands for typo suggestions.
var commandNames = []string{"resolve", "pointer", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("jsonref v%s\n", jsonref.Version())
		fmt.Println(jsonref.BuildInfo())
	case "help", "-h", "--help":
		printUsage()
	case "resolve":
		exitOnError(commands.HandleResolve(os.Args[2:]))
	case "pointer":
		exitOnError(commands.HandlePointer(os.Args[2:]))
	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := mcpserver.Run(ctx)
		stop()
		exitOnError(err)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}
}

// exitOnError prints err to stderr and exits with status 1.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", errorPrefix(os.Stderr), err)
	os.Exit(1)
}

// errorPrefix returns "Error:", in bold red when f is a terminal and
// NO_COLOR is unset.
func errorPrefix(f *os.File) string {
	const prefix = "Error:"
	if os.Getenv("NO_COLOR") != "" {
		return prefix
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return prefix
	}
	c := color.New(color.FgRed, color.Bold)
	c.EnableColor()
	return c.Sprint(prefix)
}

// suggestCommand returns the command closest to input within an edit
// distance of 2, or "" when none is that close.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`jsonref - JSON Reference resolution tools

Usage:
  jsonref <command> [options]

Commands:
  resolve     Output a JSON or YAML document with every $ref replaced
  pointer     Evaluate a JSON Pointer against a document, following $refs
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  jsonref resolve schema.json
  jsonref resolve -f yaml https://example.com/api/schema.json
  jsonref pointer openapi.yaml /components/schemas/Pet
  cat schema.json | jsonref resolve -q -

Run 'jsonref <command> --help' for more information on a command.`)
}
