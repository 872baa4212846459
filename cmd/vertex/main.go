// Command vertex is the CLI boundary (C0a): compile Vertex source to the
// on-disk bytecode format, or run an already-compiled file directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes (spec.md §6): 0 success, 1 compile failure, 2 runtime
// failure.
const (
	exitOK      = 0
	exitCompile = 1
	exitRuntime = 2
)

func main() {
	root := &cobra.Command{
		Use:   "vertex",
		Short: "Compile and run Vertex programs",
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCompile)
	}
}
