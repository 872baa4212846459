package bytecode

import (
	"fmt"

	"github.com/vertexlang/vertex/internal/ir"
	"github.com/vertexlang/vertex/internal/stackcode"
	"github.com/vertexlang/vertex/internal/value"
)

// ErrNotLinearizable is returned by Linearize when some function reachable
// from the entry point can't be expressed in the closed §6 opcode set: an
// external call (there is no opcode for an arbitrary host callback), a
// non-Int/Float/String/Bool constant (the wire format has no Char slot),
// a multi-value return (no tuple-construction opcode), or parameters on
// the entry function itself (Exec has no way to seed argument values).
type ErrNotLinearizable struct {
	Path   ir.Path
	Reason string
}

func (e *ErrNotLinearizable) Error() string {
	return fmt.Sprintf("bytecode: %s cannot be linearized: %s", e.Path, e.Reason)
}

// Linearize walks every InternalFunction transitively reachable from
// entry (by internal call) and emits an equivalent stackcode.Program: the
// entry function's block comes first, so the caller can always execute
// it with stackcode.NewVM(prog).Exec(0).
func Linearize(p *Program, entry ir.Path) (*stackcode.Program, error) {
	entryFn, entryIdx, ok := p.EntryFunction(entry)
	if !ok {
		return nil, fmt.Errorf("bytecode: no function at path %s", entry)
	}
	if entryFn.NumParams != 0 {
		return nil, &ErrNotLinearizable{Path: entry, Reason: "entry function takes parameters, but Exec has no way to seed them"}
	}

	order, err := discoverReachable(p, entryIdx)
	if err != nil {
		return nil, err
	}
	blockOf := make(map[int]int, len(order))
	for pos, idx := range order {
		blockOf[idx] = pos
	}

	lz := &linearizer{prog: p, constIndex: make(map[int]int)}

	blocks := make([][]stackcode.Op, len(order))
	for pos, idx := range order {
		ops, err := lz.buildBlock(p.InternalFunctions[idx], idx == entryIdx)
		if err != nil {
			return nil, err
		}
		blocks[pos] = ops
	}

	starts := make([]int, len(order))
	total := 0
	for pos, ops := range blocks {
		starts[pos] = total
		total += len(ops)
	}

	finalOps := make([]stackcode.Op, 0, total)
	for _, ops := range blocks {
		for _, op := range ops {
			if op.Kind == stackcode.OpJump {
				op = stackcode.JumpOp(uint32(starts[blockOf[int(op.Operand)]]))
			}
			finalOps = append(finalOps, op)
		}
	}

	return &stackcode.Program{Ops: finalOps, Constants: lz.constants}, nil
}

// discoverReachable returns, in BFS order starting at entryIdx, the
// index of every InternalFunction reachable by internal call, failing
// fast on anything the wire format can't represent.
func discoverReachable(p *Program, entryIdx int) ([]int, error) {
	visited := map[int]bool{entryIdx: true}
	queue := []int{entryIdx}
	var order []int

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		order = append(order, idx)

		fn := p.InternalFunctions[idx]
		if len(fn.Results) != 1 {
			return nil, &ErrNotLinearizable{Path: fn.Path, Reason: "multiple return values have no tuple-construction opcode"}
		}
		for _, op := range fn.Operations {
			switch op.Call.Kind {
			case CallExternal:
				name := p.ExternalFunctions[op.Call.Index].Name
				return nil, &ErrNotLinearizable{Path: fn.Path, Reason: fmt.Sprintf("external call %q has no wire encoding", name)}
			case CallInternal:
				if !visited[op.Call.Index] {
					visited[op.Call.Index] = true
					queue = append(queue, op.Call.Index)
				}
			}
		}
	}
	return order, nil
}

// linearizer tracks the new, deduplicated constant pool as each block is
// built; it's shared across all blocks so a constant used by two
// different functions gets one slot.
type linearizer struct {
	prog       *Program
	constants  []value.Value
	constIndex map[int]int // prog.Constants index -> linearizer.constants index
}

func (lz *linearizer) internConstant(progIndex int, fnPath ir.Path) (uint32, error) {
	if i, ok := lz.constIndex[progIndex]; ok {
		return uint32(i), nil
	}
	v := lz.prog.Constants[progIndex]
	switch v.Kind() {
	case value.Int, value.Float, value.String, value.Bool:
	default:
		return 0, &ErrNotLinearizable{Path: fnPath, Reason: fmt.Sprintf("constant kind %s has no wire encoding", v.Kind())}
	}
	i := len(lz.constants)
	lz.constants = append(lz.constants, v)
	lz.constIndex[progIndex] = i
	return uint32(i), nil
}

// buildBlock linearizes one InternalFunction in isolation. Jump operands
// in the returned slice are placeholders holding the target's global
// InternalFunctions index, not yet an instruction offset — Linearize
// patches them once every block's length is known.
//
// Position bookkeeping: base is the stack depth at which this function's
// own code starts executing — its own parameters, plus one slot for the
// Jump-pushed return-address marker, unless this is the entry function
// (entered directly via VM.Exec, with no marker and, per the guard
// above, no parameters either). curLen tracks the live stack depth as
// each Node is lowered; resultPos[k] records the absolute depth at which
// Node k's result ends up, since an internal-call Node leaves its
// argument copies on the stack as after Return — unlike every other
// Node kind, it does not net exactly +1, so node k+1's result is not
// simply "one past" node k's.
func (lz *linearizer) buildBlock(fn InternalFunction, isEntry bool) ([]stackcode.Op, error) {
	base := fn.NumParams
	if !isEntry {
		base++
	}
	curLen := base
	resultPos := make([]int, len(fn.Operations))
	var ops []stackcode.Op

	fetch := func(in ir.Input) {
		var target int
		switch in.Kind {
		case ir.InputParam:
			target = int(in.Index)
		case ir.InputHidden:
			target = resultPos[in.Index]
		}
		ops = append(ops, stackcode.CopyOp(uint32(curLen-1-target)))
		curLen++
	}

	for k, op := range fn.Operations {
		for _, in := range op.Inputs {
			fetch(in)
		}

		switch op.Call.Kind {
		case CallConstant:
			idx, err := lz.internConstant(op.Call.Index, fn.Path)
			if err != nil {
				return nil, err
			}
			ops = append(ops, stackcode.ConstantOp(idx))
			curLen++

		case CallInternal:
			ops = append(ops, stackcode.JumpOp(uint32(op.Call.Index)))
			curLen++

		case CallExternal:
			name := lz.prog.ExternalFunctions[op.Call.Index].Name
			return nil, &ErrNotLinearizable{Path: fn.Path, Reason: fmt.Sprintf("external call %q has no wire encoding", name)}

		default:
			return nil, &ErrNotLinearizable{Path: fn.Path, Reason: fmt.Sprintf("call kind %s has no wire encoding", op.Call.Kind)}
		}

		resultPos[k] = curLen - 1
	}

	result := fn.Results[0]
	var target int
	switch result.Kind {
	case ir.InputParam:
		target = int(result.Index)
	case ir.InputHidden:
		target = resultPos[result.Index]
	}
	if target != curLen-1 {
		ops = append(ops, stackcode.CopyOp(uint32(curLen-1-target)))
	}
	ops = append(ops, stackcode.ReturnOp())

	return ops, nil
}
