package vertex

import (
	"context"

	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/scheduler"
	"github.com/vertexlang/vertex/internal/value"
	"github.com/vertexlang/vertex/internal/vm"
	"github.com/vertexlang/vertex/internal/worker"
)

// Machine is a running instance of the concurrent graph VM: a compiled
// Program, a job scheduler, and a pool of workers draining it. Call
// Close once done with it to reclaim the worker pool's goroutines.
type Machine struct {
	vm    *vm.Machine
	sched *scheduler.AsyncScheduler
	pool  *worker.Pool
}

// NewMachine starts a Machine for program with the given number of
// workers; workers <= 0 defaults to worker.DefaultWorkers() (the number
// of logical CPUs).
func NewMachine(program *bytecode.Program, workers int) (*Machine, error) {
	sched := scheduler.New().IntoAsync()
	pool, err := worker.Build(sched, workers)
	if err != nil {
		return nil, err
	}

	return &Machine{
		vm:    vm.New(sched, program),
		sched: sched,
		pool:  pool,
	}, nil
}

// Execute runs the internal function at path with inputs, blocking
// until it (and everything it transitively calls) has finished.
func (m *Machine) Execute(path ir.Path, inputs []value.Value) (value.Value, error) {
	return m.vm.ExecutePath(path, inputs)
}

// ExecuteBatch runs several independent top-level invocations
// concurrently; see vm.Machine.ExecuteBatch.
func (m *Machine) ExecuteBatch(ctx context.Context, calls []vm.Call) ([]vm.BatchResult, error) {
	return m.vm.ExecuteBatch(ctx, calls)
}

// Close terminates the worker pool and blocks until every worker loop
// has exited. Nothing should call Execute/ExecuteBatch after Close.
func (m *Machine) Close() {
	m.sched.TerminateWorkers()
	m.pool.Wait()
	m.pool.Release()
}
