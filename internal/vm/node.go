package vm

import (
	"sync"

	"github.com/vertexlang/vertex/internal/bytecode"
	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/registry"
	"github.com/vertexlang/vertex/internal/scheduler"
	"github.com/vertexlang/vertex/internal/value"
)

// node is one cell of the execution graph built for a single call
// (the original's VirtualNode): it carries the scheduler job that
// computes its value, if any, and the value itself once that job has
// run. A constant node has no job at all — its data is known up front.
type node struct {
	mu     sync.Mutex
	handle *scheduler.JobHandle
	data   *value.Value
}

// dependencyHandle returns the job other nodes must wait on before
// reading this node's data, or nil if it's already available (a
// constant).
func (n *node) dependencyHandle() *scheduler.JobHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.handle
}

func (n *node) setData(v value.Value) {
	n.mu.Lock()
	n.data = &v
	n.mu.Unlock()
}

// valueOf reads this node's resolved value. Callers must only call this
// after the node's dependencyHandle (if any) has finished.
func (n *node) valueOf() value.Value {
	n.mu.Lock()
	defer n.mu.Unlock()
	return *n.data
}

// dependencyHandles collects the non-nil dependencyHandle of every node
// in inputs, for use as a new job's dependency list.
func dependencyHandles(inputs []*node) []scheduler.JobHandle {
	var deps []scheduler.JobHandle
	for _, in := range inputs {
		if h := in.dependencyHandle(); h != nil {
			deps = append(deps, *h)
		}
	}
	return deps
}

func newConstantNode(v value.Value) *node {
	return &node{data: &v}
}

// newExternalNode schedules fn to run once every input node has
// resolved, and stores its result. The job finishes outright — an
// external call never spawns children of its own.
func newExternalNode(sched *scheduler.AsyncScheduler, inputs []*node, fn registry.Callback) *node {
	n := &node{}

	job := func() []scheduler.JobHandle {
		args := make([]value.Value, len(inputs))
		for i, in := range inputs {
			args[i] = in.valueOf()
		}
		n.setData(fn(args))
		return nil
	}

	handle := sched.NewJob(dependencyHandles(inputs), job)
	n.mu.Lock()
	n.handle = &handle
	n.mu.Unlock()
	return n
}

// newInternalNode schedules the internal function at funcIdx to run
// once every input node has resolved. Running it expands the function's
// operation list into one node per operation, then hibernates on a
// trailing copy job that waits for every result operation to finish and
// transfers its value (or, for a function declaring more than one
// return, the Tuple built over all of them) here — the call's own job
// is never itself the one holding the result, since that result may
// still be mid-flight when the call job's body returns.
func newInternalNode(sched *scheduler.AsyncScheduler, inputs []*node, prog *bytecode.Program, funcIdx int) *node {
	n := &node{}

	job := func() []scheduler.JobHandle {
		fn := prog.InternalFunctions[funcIdx]
		operations := make([]*node, 0, len(fn.Operations))

		for _, op := range fn.Operations {
			opInputs := make([]*node, len(op.Inputs))
			for i, in := range op.Inputs {
				switch in.Kind {
				case ir.InputParam:
					opInputs[i] = inputs[in.Index]
				case ir.InputHidden:
					opInputs[i] = operations[in.Index]
				}
			}

			var opNode *node
			switch op.Call.Kind {
			case bytecode.CallInternal:
				opNode = newInternalNode(sched, opInputs, prog, op.Call.Index)
			case bytecode.CallExternal:
				opNode = newExternalNode(sched, opInputs, prog.ExternalFunctions[op.Call.Index].Func)
			case bytecode.CallConstant:
				opNode = newConstantNode(prog.Constants[op.Call.Index])
			}
			operations = append(operations, opNode)
		}

		resultNodes := make([]*node, len(fn.Results))
		for i, result := range fn.Results {
			switch result.Kind {
			case ir.InputParam:
				resultNodes[i] = inputs[result.Index]
			case ir.InputHidden:
				resultNodes[i] = operations[result.Index]
			}
		}

		// A function declaring more than one return binds a single
		// Tuple result type (spec.md's "a single result type (a
		// tuple...)", internal/ir.Function.Result built by
		// ir.Build/internal/ir/builder.go) — so the copy job must
		// build the matching value.Tuple over every result node
		// rather than keeping only resultNodes[0].
		copyJob := func() []scheduler.JobHandle {
			if len(resultNodes) == 1 {
				n.setData(resultNodes[0].valueOf())
				return nil
			}
			elems := make([]value.Value, len(resultNodes))
			for i, rn := range resultNodes {
				elems[i] = rn.valueOf()
			}
			n.setData(value.NewTuple(elems))
			return nil
		}

		child := sched.NewJob(dependencyHandles(resultNodes), copyJob)
		return []scheduler.JobHandle{child}
	}

	handle := sched.NewJob(dependencyHandles(inputs), job)
	n.mu.Lock()
	n.handle = &handle
	n.mu.Unlock()
	return n
}
