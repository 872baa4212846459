package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/lexer"
	"github.com/vertexlang/vertex/internal/parser"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/stdlib"
)

func newCompileCmd() *cobra.Command {
	var entryFlag, outFlag string

	cmd := &cobra.Command{
		Use:     "compile <file-or-glob>",
		Short:   "Compile one or more Vertex source files to the on-disk bytecode format",
		Example: "vertex compile math.vx --entry Math.Main -o math.vxc\n  vertex compile 'src/**/*.vx' -o build/program.vxc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outFlag
			if out == "" {
				out = replaceExt(args[0], ".vxc")
			}
			if err := runCompile(args[0], entryFlag, out); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitCompile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entryFlag, "entry", "", "dotted path of the function to linearize (default: first exported, zero-argument function found)")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output path (default: input file with its extension replaced by .vxc)")

	return cmd
}

func runCompile(pattern, entryFlag, out string) error {
	source, err := readSources(pattern)
	if err != nil {
		return fmt.Errorf("vertex: %w", err)
	}

	p := parser.New(source)
	root, errs := p.ParseContext()
	if len(errs) > 0 {
		return firstOfMany("parse", errs)
	}

	reg := registry.New()
	if err := stdlib.Register(reg); err != nil {
		return err
	}

	ctx, errs := ir.Build(root, reg)
	if len(errs) > 0 {
		return firstOfMany("build", errs)
	}

	entry, err := resolveEntry(ctx, entryFlag)
	if err != nil {
		return err
	}

	prog := bytecode.Assemble(ctx, reg)
	stack, err := bytecode.Linearize(prog, entry)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, stack.Bytes(), 0o644); err != nil {
		return fmt.Errorf("vertex: %w", err)
	}
	fmt.Printf("compiled %s -> %s (entry %s)\n", pattern, out, entry)
	return nil
}

// readSources expands pattern as a doublestar glob (so a multi-module
// project can be compiled with one invocation, e.g. "src/**/*.vx") and
// concatenates every matched file's content into a single source blob —
// ParseContext reads a sequence of top-level declarations until EOF, so
// several files' declarations simply appear one after another. A pattern
// with no glob metacharacters that matches nothing is read directly, so a
// plain single-file path still gives the original "file not found" error
// instead of doublestar's empty-match silence.
func readSources(pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return lexer.ReadSource(pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return lexer.ReadSource(pattern)
	}

	var b strings.Builder
	for _, m := range matches {
		source, err := lexer.ReadSource(m)
		if err != nil {
			return "", err
		}
		b.WriteString(source)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// resolveEntry returns the path named by entryFlag, or — when it's
// empty — the first exported (accessibility-0), zero-parameter
// function in ctx.Functions. ir.Build adds a module's nested modules'
// functions before its own, and a function's nested functions before
// the function itself, so this is not always declaration order.
func resolveEntry(ctx *ir.Context, entryFlag string) (ir.Path, error) {
	if entryFlag != "" {
		path := ir.Path(strings.Split(entryFlag, "."))
		if _, ok := ctx.LookupFunction(path); !ok {
			return nil, fmt.Errorf("vertex: no function at path %s", path)
		}
		return path, nil
	}

	for _, fn := range ctx.Functions {
		if fn.Accessibility == 0 && len(fn.Params) == 0 {
			return fn.Path, nil
		}
	}
	return nil, fmt.Errorf("vertex: no exported, zero-argument function found; pass --entry")
}

func firstOfMany(stage string, errs []error) error {
	if len(errs) == 1 {
		return fmt.Errorf("vertex: %s error: %w", stage, errs[0])
	}
	return fmt.Errorf("vertex: %s error: %w (and %d more)", stage, errs[0], len(errs)-1)
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
