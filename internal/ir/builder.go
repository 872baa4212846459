package ir

import (
	"github.com/vertexlang/vertex/internal/ast"
	"github.com/vertexlang/vertex/internal/datatype"
	"github.com/vertexlang/vertex/internal/registry"
)

// Build lowers a parsed ast.Context into IR, resolving every internal call
// and struct-typed reference against sibling declarations and reg.
//
// Building happens in three passes: load every struct and function header
// (so forward references work regardless of declaration order), resolve
// Unresolved types against declared structs, then resolve Unresolved calls
// against declared functions. Build returns every error it can find rather
// than stopping at the first one.
func Build(root *ast.Context, reg *registry.Registry) (*Context, []error) {
	b := &builder{ctx: NewContext(), reg: reg}
	for _, mod := range root.Modules {
		b.loadModule(nil, mod, 0, 0)
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.resolveTypes()
	b.resolveCalls()
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return b.ctx, nil
}

type builder struct {
	ctx  *Context
	reg  *registry.Registry
	errs []error
}

func (b *builder) errf(err error) { b.errs = append(b.errs, err) }

// loadModule walks a module's declarations, tracking the caller-visible
// path and accessibility depth (spec §3): an unexported module resets
// accessibility to the current depth, since nothing outside its parent can
// see past it.
func (b *builder) loadModule(path Path, mod *ast.ModuleNode, depth, accessibility int) {
	path = appendPath(path, mod.Name)
	depth++
	if !mod.Export {
		accessibility = depth
	}

	for _, nested := range mod.Modules {
		b.loadModule(path, nested, depth, accessibility)
	}
	for _, fn := range mod.Functions {
		b.loadFunction(path, fn, depth, accessibility)
	}
	for _, st := range mod.Structs {
		b.loadStruct(path, st, accessibility)
	}
}

func (b *builder) loadFunction(path Path, fn *ast.FunctionNode, depth, accessibility int) {
	path = appendPath(path, fn.Name)
	depth++
	if !fn.Export {
		accessibility = depth
	}

	for _, nested := range fn.Functions {
		b.loadFunction(path, nested, depth, accessibility)
	}
	for _, st := range fn.Structs {
		b.loadStruct(path, st, accessibility)
	}

	inputs := make([]datatype.Type, len(fn.Params))
	for i, p := range fn.Params {
		inputs[i] = datatype.FromName(p.Type)
	}

	var output datatype.Type
	switch len(fn.Returns) {
	case 0:
		output = datatype.PrimitiveNull()
	case 1:
		output = datatype.FromName(fn.Returns[0].Type)
	default:
		outs := make([]datatype.Type, len(fn.Returns))
		for i, r := range fn.Returns {
			outs[i] = datatype.FromName(r.Type)
		}
		output = datatype.NewTuple(outs)
	}

	nodes, results, ok := b.lowerFunctionBody(path, fn)
	if !ok {
		return
	}

	b.ctx.AddFunction(&Function{
		Path:          path,
		Accessibility: accessibility,
		Params:        inputs,
		Result:        output,
		Nodes:         nodes,
		Results:       results,
		Serial:        fn.Serial,
	})
}

func (b *builder) loadStruct(path Path, st *ast.StructNode, accessibility int) {
	path = appendPath(path, st.Name)

	fields := make([]datatype.Field, len(st.Fields))
	for i, f := range st.Fields {
		fields[i] = datatype.Field{Name: f.Name, Type: datatype.FromName(f.Type)}
	}

	b.ctx.AddStruct(&Struct{Path: path, Accessibility: accessibility, Fields: fields})
}

func appendPath(path Path, name string) Path {
	next := make(Path, len(path), len(path)+1)
	copy(next, path)
	return append(next, name)
}

// lowerFunctionBody dependency-orders fn's assignments (a writer always
// precedes its readers), lowers each into nodes in that order, then looks
// up the operand bound to each declared return name.
func (b *builder) lowerFunctionBody(path Path, fn *ast.FunctionNode) ([]Node, []Input, bool) {
	ordered, err := orderAssignments(path, fn.Assignments)
	if err != nil {
		b.errf(err)
		return nil, nil, false
	}

	lc := &lowerCtx{
		function:   fn,
		reg:        b.reg,
		paramIndex: make(map[string]int, len(fn.Params)),
		varInput:   make(map[string]Input, len(ordered)),
	}
	for i, p := range fn.Params {
		lc.paramIndex[p.Name] = i
	}

	ok := true
	for _, a := range ordered {
		in, good := lc.lower(a.Expression)
		if !good {
			ok = false
			continue
		}
		if a.Variable != nil {
			lc.varInput[a.Variable.Name] = in
		}
	}

	results := make([]Input, 0, len(fn.Returns))
	for _, r := range fn.Returns {
		if in, found := lc.varInput[r.Name]; found {
			results = append(results, in)
			continue
		}
		if i, found := lc.paramIndex[r.Name]; found {
			results = append(results, ParamInput(uint32(i)))
			continue
		}
		ok = false
		lc.errf(&ErrUnknownIdentifier{Name: r.Name, Pos: fn.Pos()})
	}

	for _, e := range lc.errs {
		b.errf(e)
	}
	if !ok {
		return nil, nil, false
	}
	return lc.nodes, results, true
}

// orderAssignments topologically sorts assignments so that a binding
// always comes after every assignment its expression reads from, using a
// depth-first post-order walk that reports a fatal error on any cycle
// rather than silently accepting one.
func orderAssignments(path Path, assignments []*ast.AssignmentNode) ([]*ast.AssignmentNode, error) {
	writerOf := make(map[string]*ast.AssignmentNode, len(assignments))
	for _, a := range assignments {
		if a.Variable != nil {
			writerOf[a.Variable.Name] = a
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[*ast.AssignmentNode]int, len(assignments))
	ordered := make([]*ast.AssignmentNode, 0, len(assignments))

	var visit func(a *ast.AssignmentNode) error
	visit = func(a *ast.AssignmentNode) error {
		state[a] = gray
		for _, dep := range referencedVariables(a.Expression) {
			writer, ok := writerOf[dep]
			if !ok {
				continue
			}
			switch state[writer] {
			case gray:
				return &ErrCircularDependency{Function: path, Variable: dep}
			case white:
				if err := visit(writer); err != nil {
					return err
				}
			}
		}
		state[a] = black
		ordered = append(ordered, a)
		return nil
	}

	for _, a := range assignments {
		if state[a] == white {
			if err := visit(a); err != nil {
				return nil, err
			}
		}
	}
	return ordered, nil
}

// referencedVariables returns every bare name expr reads, in the order it
// reads them. Struct-field projection (InnerVariable) only contributes its
// root name — the part that must already be bound.
func referencedVariables(e ast.Expr) []string {
	switch v := e.(type) {
	case *ast.Variable:
		return []string{v.Name}
	case *ast.InnerVariable:
		if len(v.Path) > 0 {
			return []string{v.Path[0]}
		}
		return nil
	case *ast.FunctionCall:
		var names []string
		for _, arg := range v.Args {
			names = append(names, referencedVariables(arg)...)
		}
		return names
	default:
		return nil
	}
}

// lowerCtx lowers one function body's assignments into a flat Node list,
// post-order: every sub-expression becomes its own Node before the call
// that consumes it.
type lowerCtx struct {
	function   *ast.FunctionNode
	reg        *registry.Registry
	paramIndex map[string]int
	varInput   map[string]Input
	nodes      []Node
	errs       []error
}

func (lc *lowerCtx) errf(err error) { lc.errs = append(lc.errs, err) }

func (lc *lowerCtx) push(n Node) Input {
	idx := len(lc.nodes)
	lc.nodes = append(lc.nodes, n)
	return HiddenInput(uint32(idx))
}

func (lc *lowerCtx) lower(e ast.Expr) (Input, bool) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return lc.push(Node{Call: newIntConstant(v.Value), Output: datatype.PrimitiveInt()}), true
	case *ast.FloatLiteral:
		return lc.push(Node{Call: newFloatConstant(v.Value), Output: datatype.PrimitiveFloat()}), true
	case *ast.StringLiteral:
		return lc.push(Node{Call: newStringConstant(v.Value), Output: datatype.PrimitiveString()}), true
	case *ast.CharLiteral:
		return lc.push(Node{Call: newCharConstant(v.Value), Output: datatype.PrimitiveChar()}), true
	case *ast.BoolLiteral:
		return lc.push(Node{Call: newBoolConstant(v.Value), Output: datatype.PrimitiveBool()}), true

	case *ast.Variable:
		if i, ok := lc.paramIndex[v.Name]; ok {
			return ParamInput(uint32(i)), true
		}
		if in, ok := lc.varInput[v.Name]; ok {
			return in, true
		}
		lc.errf(&ErrUnknownIdentifier{Name: v.Name, Pos: v.Pos()})
		return Input{}, false

	case *ast.InnerVariable:
		lc.errf(&ErrUnsupportedFeature{Feature: "struct field projection", Pos: v.Pos()})
		return Input{}, false

	case *ast.FunctionCall:
		inputs := make([]Input, 0, len(v.Args))
		ok := true
		for _, arg := range v.Args {
			in, good := lc.lower(arg)
			if !good {
				ok = false
				continue
			}
			inputs = append(inputs, in)
		}
		if !ok {
			return Input{}, false
		}

		serial := v.Serial || lc.function.Serial
		if v.External {
			meta, found := lc.reg.Lookup(v.Name)
			if !found {
				lc.errf(&ErrUnknownExternalFunction{Name: v.Name, Pos: v.Pos()})
				return Input{}, false
			}
			return lc.push(Node{Call: newExternalCall(v.Name), Inputs: inputs, Output: meta.Output, Serial: serial}), true
		}
		return lc.push(Node{Call: newUnresolvedCall(v.Name), Inputs: inputs, Output: datatype.NewUnknown(), Serial: serial}), true

	default:
		lc.errf(&ErrUnsupportedFeature{Feature: "unknown expression node", Pos: e.Pos()})
		return Input{}, false
	}
}

// resolveCalls rewrites every CallUnresolved node left by lowering into a
// CallInternal targeting a concrete Function, using the accessibility
// tie-break: the callee sharing the longest path prefix with the caller
// wins; ties go to whichever candidate is closer to the caller (shorter
// remaining suffix); a further tie is a build error.
func (b *builder) resolveCalls() {
	for _, fn := range b.ctx.Functions {
		for i := range fn.Nodes {
			node := &fn.Nodes[i]
			if node.Call.Kind() != CallUnresolved {
				continue
			}
			target, err := b.resolveCallTarget(fn.Path, node.Call.Name())
			if err != nil {
				b.errf(err)
				continue
			}
			node.Call = newInternalCall(target.Path)
			node.Output = target.Result
		}
	}
}

// resolveCallTarget finds the function name resolves to from caller. The
// match is scored against the path name *would* have if it were declared
// directly at the call site (caller's path plus the bare name), not
// against the caller's path alone: this is what lets a function call its
// own nested children, or recurse into itself, while still preferring a
// closer declaration over a more distant one sharing the same name.
func (b *builder) resolveCallTarget(caller Path, name string) (*Function, error) {
	hypothetical := appendPath(caller, name)

	var candidates []*Function
	bestPrefix := -1
	for _, f := range b.ctx.Functions {
		if len(f.Path) == 0 || f.Path[len(f.Path)-1] != name {
			continue
		}
		prefix := commonPrefixLen(hypothetical, f.Path)
		if prefix < f.Accessibility {
			continue // not visible from caller's path
		}
		switch {
		case prefix > bestPrefix:
			bestPrefix = prefix
			candidates = []*Function{f}
		case prefix == bestPrefix:
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return nil, &ErrUnresolvedCall{Caller: caller, Name: name}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	winner, ambiguous := closestBySuffix(candidates, bestPrefix, func(f *Function) Path { return f.Path })
	if ambiguous {
		paths := make([]Path, len(candidates))
		for i, c := range candidates {
			paths[i] = c.Path
		}
		return nil, &ErrAmbiguousCall{Caller: caller, Name: name, Candidates: paths}
	}
	return winner, nil
}

// resolveTypes rewrites every Unresolved type reachable from a function
// signature or struct field into a concrete Struct type, using the same
// accessibility tie-break resolveCalls uses for function names.
func (b *builder) resolveTypes() {
	for _, fn := range b.ctx.Functions {
		for i, p := range fn.Params {
			resolved, err := b.resolveType(fn.Path, p)
			if err != nil {
				b.errf(err)
				continue
			}
			fn.Params[i] = resolved
		}
		resolved, err := b.resolveType(fn.Path, fn.Result)
		if err != nil {
			b.errf(err)
			continue
		}
		fn.Result = resolved
	}

	for _, st := range b.ctx.Structs {
		for i, f := range st.Fields {
			resolved, err := b.resolveType(st.Path, f.Type)
			if err != nil {
				b.errf(err)
				continue
			}
			st.Fields[i].Type = resolved
		}
	}
}

func (b *builder) resolveType(path Path, t datatype.Type) (datatype.Type, error) {
	switch t.Kind() {
	case datatype.Unresolved:
		target, err := b.resolveTypeTarget(path, t.UnresolvedName())
		if err != nil {
			return datatype.Type{}, err
		}
		fields := make([]datatype.Field, len(target.Fields))
		copy(fields, target.Fields)
		return datatype.NewStruct(target.Path[len(target.Path)-1], fields), nil

	case datatype.List:
		elem, err := b.resolveType(path, t.Elem())
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.NewList(elem), nil

	case datatype.Array:
		elem, err := b.resolveType(path, t.Elem())
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.NewArray(elem, t.ArrayLen()), nil

	case datatype.Option:
		elem, err := b.resolveType(path, t.Elem())
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.NewOption(elem), nil

	case datatype.Result:
		elem, err := b.resolveType(path, t.Elem())
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.NewResult(elem), nil

	case datatype.Tuple:
		elems := make([]datatype.Type, len(t.TupleElems()))
		for i, e := range t.TupleElems() {
			resolved, err := b.resolveType(path, e)
			if err != nil {
				return datatype.Type{}, err
			}
			elems[i] = resolved
		}
		return datatype.NewTuple(elems), nil

	case datatype.Dictionary:
		key, err := b.resolveType(path, t.DictKey())
		if err != nil {
			return datatype.Type{}, err
		}
		val, err := b.resolveType(path, t.DictVal())
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.NewDictionary(key, val), nil

	default:
		return t, nil
	}
}

func (b *builder) resolveTypeTarget(path Path, name string) (*Struct, error) {
	hypothetical := appendPath(path, name)

	var candidates []*Struct
	bestPrefix := -1
	for _, s := range b.ctx.Structs {
		if len(s.Path) == 0 || s.Path[len(s.Path)-1] != name {
			continue
		}
		prefix := commonPrefixLen(hypothetical, s.Path)
		if prefix < s.Accessibility {
			continue
		}
		switch {
		case prefix > bestPrefix:
			bestPrefix = prefix
			candidates = []*Struct{s}
		case prefix == bestPrefix:
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return nil, &ErrUnresolvedType{Path: path, Name: name}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	winner, ambiguous := closestBySuffix(candidates, bestPrefix, func(s *Struct) Path { return s.Path })
	if ambiguous {
		paths := make([]Path, len(candidates))
		for i, c := range candidates {
			paths[i] = c.Path
		}
		return nil, &ErrAmbiguousType{Path: path, Name: name, Candidates: paths}
	}
	return winner, nil
}

// closestBySuffix breaks a common-prefix tie between candidates by
// shortest remaining path suffix beyond prefix; ambiguous is true if more
// than one candidate shares the shortest suffix.
func closestBySuffix[T any](candidates []T, prefix int, pathOf func(T) Path) (T, bool) {
	minSuffix := -1
	var winner T
	ambiguous := false
	for _, c := range candidates {
		suffix := len(pathOf(c)) - prefix
		switch {
		case minSuffix < 0 || suffix < minSuffix:
			minSuffix = suffix
			winner = c
			ambiguous = false
		case suffix == minSuffix:
			ambiguous = true
		}
	}
	return winner, ambiguous
}
