package program

import (
	"sort"
	"strings"
)

// FuncAssign is the function identifier emitted by Stage.Assign.
const FuncAssign = "FFP_Assign"

// Semantic is the data direction of an operand.
type Semantic int

const (
	SemanticIn Semantic = iota
	SemanticOut
	SemanticInOut
)

func (s Semantic) String() string {
	switch s {
	case SemanticOut:
		return "out"
	case SemanticInOut:
		return "inout"
	default:
		return "in"
	}
}

// Mask selects operand components. MaskAll passes the whole parameter.
type Mask uint8

const (
	MaskAll Mask = 0
	MaskX   Mask = 1 << 0
	MaskY   Mask = 1 << 1
	MaskZ   Mask = 1 << 2
	MaskW   Mask = 1 << 3

	MaskXYZ = MaskX | MaskY | MaskZ
)

func (m Mask) String() string {
	if m == MaskAll {
		return ""
	}
	var sb strings.Builder
	for i, c := range "xyzw" {
		if m&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Operand is one argument of an invocation.
type Operand struct {
	Param    *Parameter
	Semantic Semantic
	Mask     Mask
}

// In returns an input operand.
func In(p *Parameter) Operand { return Operand{Param: p, Semantic: SemanticIn} }

// Out returns an output operand.
func Out(p *Parameter) Operand { return Operand{Param: p, Semantic: SemanticOut} }

// InOut returns an operand that is read and written.
func InOut(p *Parameter) Operand { return Operand{Param: p, Semantic: SemanticInOut} }

// XYZ restricts the operand to its first three components.
func (o Operand) XYZ() Operand {
	o.Mask = MaskXYZ
	return o
}

// WithMask restricts the operand to the given components.
func (o Operand) WithMask(m Mask) Operand {
	o.Mask = m
	return o
}

func (o Operand) String() string {
	s := o.Semantic.String() + " " + o.Param.String()
	if o.Mask != MaskAll {
		s += "." + o.Mask.String()
	}
	return s
}

// Invocation is a call to a shader library function.
type Invocation struct {
	Function   string
	GroupOrder int
	Operands   []Operand
}

func (inv *Invocation) String() string {
	var sb strings.Builder
	sb.WriteString(inv.Function)
	sb.WriteByte('(')
	for i, op := range inv.Operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(op.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Function is a program entry point with its parameters and body.
type Function struct {
	name    string
	program *Program
	inputs  []*Parameter
	outputs []*Parameter
	locals  []*Parameter
	atoms   []*Invocation
}

func newFunction(name string, program *Program) *Function {
	return &Function{name: name, program: program}
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Inputs returns the resolved inputs.
func (f *Function) Inputs() []*Parameter { return f.inputs }

// Outputs returns the resolved outputs.
func (f *Function) Outputs() []*Parameter { return f.outputs }

// Locals returns the resolved locals.
func (f *Function) Locals() []*Parameter { return f.locals }

func findContent(params []*Parameter, c Content) *Parameter {
	for _, p := range params {
		if p.content == c {
			return p
		}
	}
	return nil
}

func (f *Function) add(list *[]*Parameter, limit int, p *Parameter) *Parameter {
	if len(*list) >= limit {
		return nil
	}
	*list = append(*list, p)
	return p
}

var scopePrefix = map[Scope]string{ScopeInput: "i", ScopeOutput: "o", ScopeLocal: "l"}

func (f *Function) newContentParameter(scope Scope, c Content) *Parameter {
	def, ok := contents[c]
	if !ok {
		return nil
	}
	return &Parameter{
		name:    scopePrefix[scope] + def.name,
		typ:     def.typ,
		scope:   scope,
		content: c,
	}
}

// InputParameter returns the input with the given content, or nil.
func (f *Function) InputParameter(c Content) *Parameter {
	return findContent(f.inputs, c)
}

// ResolveInputParameter returns the input with the given content,
// allocating it on first use.
func (f *Function) ResolveInputParameter(c Content) *Parameter {
	if p := findContent(f.inputs, c); p != nil {
		return p
	}
	p := f.newContentParameter(ScopeInput, c)
	if p == nil {
		return nil
	}
	return f.add(&f.inputs, f.program.limits.Inputs, p)
}

// ResolveInputFrom returns the input that receives a previous stage's output.
func (f *Function) ResolveInputFrom(out *Parameter) *Parameter {
	if out == nil || out.scope != ScopeOutput {
		return nil
	}
	return f.ResolveInputParameter(out.content)
}

// OutputParameter returns the output with the given content, or nil.
func (f *Function) OutputParameter(c Content) *Parameter {
	return findContent(f.outputs, c)
}

// ResolveOutputParameter returns the output with the given content,
// allocating it on first use.
func (f *Function) ResolveOutputParameter(c Content) *Parameter {
	if p := findContent(f.outputs, c); p != nil {
		return p
	}
	p := f.newContentParameter(ScopeOutput, c)
	if p == nil {
		return nil
	}
	return f.add(&f.outputs, f.program.limits.Outputs, p)
}

// LocalParameter returns the local with the given content, or nil.
func (f *Function) LocalParameter(c Content) *Parameter {
	return findContent(f.locals, c)
}

// ResolveLocalContent returns the local with the given content,
// allocating it on first use.
func (f *Function) ResolveLocalContent(c Content) *Parameter {
	if p := findContent(f.locals, c); p != nil {
		return p
	}
	p := f.newContentParameter(ScopeLocal, c)
	if p == nil {
		return nil
	}
	return f.add(&f.locals, f.program.limits.Locals, p)
}

// ResolveLocalParameter returns the named local, allocating it on first use.
// A type mismatch against an existing local yields nil.
func (f *Function) ResolveLocalParameter(name string, typ ConstantType) *Parameter {
	for _, p := range f.locals {
		if p.name == name {
			if p.typ != typ {
				return nil
			}
			return p
		}
	}
	return f.add(&f.locals, f.program.limits.Locals, &Parameter{
		name:  name,
		typ:   typ,
		scope: ScopeLocal,
	})
}

// AddInvocation appends an invocation to the function body.
func (f *Function) AddInvocation(inv *Invocation) {
	f.atoms = append(f.atoms, inv)
}

// Invocations returns the body ordered by group; invocations of the same
// group keep the order they were added in.
func (f *Function) Invocations() []*Invocation {
	out := make([]*Invocation, len(f.atoms))
	copy(out, f.atoms)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GroupOrder < out[j].GroupOrder
	})
	return out
}

// Stage returns an emitter for the given execution group.
func (f *Function) Stage(groupOrder int) Stage {
	return Stage{fn: f, order: groupOrder}
}

// Stage appends invocations to one execution group of a function.
type Stage struct {
	fn    *Function
	order int
}

// CallFunction appends a call to the named library function.
func (s Stage) CallFunction(name string, operands ...Operand) *Invocation {
	inv := &Invocation{
		Function:   name,
		GroupOrder: s.order,
		Operands:   operands,
	}
	s.fn.AddInvocation(inv)
	return inv
}

// Assign appends dst = src.
func (s Stage) Assign(src, dst Operand) *Invocation {
	src.Semantic = SemanticIn
	dst.Semantic = SemanticOut
	return s.CallFunction(FuncAssign, src, dst)
}
