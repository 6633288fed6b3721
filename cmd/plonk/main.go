// Command plonk hot-reloads a compiled native binary by rebuilding one
// package as a shared library and redirecting a chosen function symbol
// into the freshly built code inside the running target process.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	args := os.Args[1:]

	// When invoked as a subcommand of an outer tool, argv[1] may repeat the
	// program's own base name; skip that positional before cobra parses it
	// as our own subcommand, per SPEC_FULL.md §6.
	if len(args) > 0 && filepath.Base(os.Args[0]) == args[0] {
		args = args[1:]
	}

	root := newRootCommand()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
