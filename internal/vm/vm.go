// Package vm implements the concurrent graph virtual machine (C9): it
// turns one call into an internal function into a graph of scheduler
// jobs (one per external-call operation, two per internal call — the
// expansion and the result copy — and none for constants), so that independent
// subexpressions run on separate workers instead of a single
// interpreter loop stepping through them in order.
//
// Grounded on original_source/src/runtime/virtual_machine.rs. Unlike
// internal/stackcode's sequential stack machine (the on-disk format's
// interpreter), this package never walks a flat instruction stream —
// the Program's operation DAG is scheduled directly.
package vm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/scheduler"
	"github.com/vertexlang/vertex/internal/value"
)

// Machine runs internal functions out of a bytecode.Program on the job
// scheduler's graph of workers. A Machine does not itself run any job —
// callers are expected to have built a worker.Pool against the same
// scheduler before calling Execute, or Execute will simply block
// forever waiting for jobs nothing ever drains.
type Machine struct {
	scheduler *scheduler.AsyncScheduler
	program   *bytecode.Program
}

// New creates a Machine executing program's internal functions against
// sched.
func New(sched *scheduler.AsyncScheduler, program *bytecode.Program) *Machine {
	return &Machine{scheduler: sched, program: program}
}

// Execute runs the internal function at funcIdx with inputs, blocking
// the calling goroutine until it — and everything it transitively
// calls — has finished, then returns its result.
func (m *Machine) Execute(funcIdx int, inputs []value.Value) value.Value {
	argNodes := make([]*node, len(inputs))
	for i, v := range inputs {
		argNodes[i] = newConstantNode(v)
	}

	n := newInternalNode(m.scheduler, argNodes, m.program, funcIdx)
	m.scheduler.WaitForJob(*n.dependencyHandle())

	return n.valueOf()
}

// ErrArgumentCount is returned by ExecutePath when the supplied input
// count doesn't match the target function's parameter count.
type ErrArgumentCount struct {
	Path     ir.Path
	Expected int
	Got      int
}

func (e *ErrArgumentCount) Error() string {
	return fmt.Sprintf("vm: %s expects %d argument(s), got %d", e.Path, e.Expected, e.Got)
}

// ErrNoSuchFunction is returned by ExecutePath when path names no
// internal function in the Machine's program.
type ErrNoSuchFunction struct {
	Path ir.Path
}

func (e *ErrNoSuchFunction) Error() string {
	return fmt.Sprintf("vm: no function at path %s", e.Path)
}

// ExecutePath looks up path in the Machine's program and runs it,
// matching the dotted-path addressing the rest of the compiler uses —
// callers outside this package never see a raw table index.
func (m *Machine) ExecutePath(path ir.Path, inputs []value.Value) (value.Value, error) {
	fn, idx, ok := m.program.EntryFunction(path)
	if !ok {
		return value.Value{}, &ErrNoSuchFunction{Path: path}
	}
	if fn.NumParams != len(inputs) {
		return value.Value{}, &ErrArgumentCount{Path: path, Expected: fn.NumParams, Got: len(inputs)}
	}
	return m.Execute(idx, inputs), nil
}

// Call is one entry-function invocation to run as part of an
// ExecuteBatch: the path to call and the arguments to call it with.
type Call struct {
	Path   ir.Path
	Inputs []value.Value
}

// BatchResult pairs a Call's output with an id unique to that
// invocation, analogous to a request/trace id — useful for correlating
// a particular batch entry with whatever diagnostics its execution
// produced (e.g. a worker-loop fatal log line logged concurrently with
// other, unrelated invocations in the same batch).
type BatchResult struct {
	InvocationID uuid.UUID
	Value        value.Value
}

// ExecuteBatch runs every call concurrently — each is independent, so
// there's no reason to serialize them from the caller's side on top of
// the concurrency already happening inside each one's own call graph.
// It waits for every call to return, then reports the first error any
// of them returned. That error also cancels ctx, so a call whose
// goroutine has not started yet skips running; calls already in flight
// run to completion, since ExecutePath isn't context-aware.
func (m *Machine) ExecuteBatch(ctx context.Context, calls []Call) ([]BatchResult, error) {
	results := make([]BatchResult, len(calls))
	group, ctx := errgroup.WithContext(ctx)

	for i, call := range calls {
		i, call := i, call
		results[i].InvocationID = uuid.New()

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := m.ExecutePath(call.Path, call.Inputs)
			if err != nil {
				return err
			}
			results[i].Value = v
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
