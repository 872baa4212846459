package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vertexlang/vertex/internal/stackcode"
)

func newRunCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:     "run <file.vxc>",
		Short:   "Run a compiled Vertex bytecode file",
		Example: "vertex run math.vxc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runFile(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitRuntime)
			}
			fmt.Println(result)
			return nil
		},
	}

	// A compiled .vxc file runs on internal/stackcode's sequential
	// stack VM, which has no worker pool to size — --workers is
	// accepted for CLI-surface parity with the library's concurrent
	// graph VM (vertex.NewMachine) but has no effect here. Programs
	// that actually want worker concurrency are run through that
	// library API instead of this subcommand.
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "accepted for parity with the library API; unused by this subcommand's sequential stack VM")

	return cmd
}

func runFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("vertex: %w", err)
	}

	prog, err := stackcode.ReadProgram(raw)
	if err != nil {
		return "", fmt.Errorf("vertex: %w", err)
	}

	result, err := stackcode.NewVM(prog).Exec(0)
	if err != nil {
		return "", fmt.Errorf("vertex: %w", err)
	}
	return result.String(), nil
}
