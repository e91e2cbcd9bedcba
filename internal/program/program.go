package program

import (
	"fmt"
	"slices"
)

// Limits caps how many parameters a program may allocate. A resolution
// request beyond a limit fails by returning nil.
type Limits struct {
	Uniforms int
	Inputs   int
	Outputs  int
	Locals   int
}

// DefaultLimits returns limits that comfortably fit eight lights of every type.
func DefaultLimits() Limits {
	return Limits{
		Uniforms: 256,
		Inputs:   16,
		Outputs:  16,
		Locals:   64,
	}
}

// Program is the CPU-side description of one GPU program.
type Program struct {
	kind     Kind
	limits   Limits
	uniforms []*Parameter
	deps     []string
	main     *Function
}

// New creates an empty program with an entry point named "main".
func New(kind Kind, limits Limits) *Program {
	p := &Program{
		kind:   kind,
		limits: limits,
	}
	p.main = newFunction("main", p)
	return p
}

// Kind returns the program's pipeline stage.
func (p *Program) Kind() Kind { return p.kind }

// EntryPoint returns the program's main function.
func (p *Program) EntryPoint() *Function { return p.main }

// Parameters returns the program's uniforms in allocation order.
func (p *Program) Parameters() []*Parameter { return p.uniforms }

// ResolveAutoParameter returns the uniform bound to the auto constant,
// allocating it on first use. It returns nil for unknown auto constants
// or when the uniform budget is exhausted.
func (p *Program) ResolveAutoParameter(ac AutoConstant) *Parameter {
	if ac == AutoNone {
		return nil
	}
	for _, u := range p.uniforms {
		if u.auto == ac {
			return u
		}
	}
	def, ok := autoConstants[ac]
	if !ok {
		return nil
	}
	return p.addUniform(&Parameter{
		name:  def.name,
		typ:   def.typ,
		scope: ScopeUniform,
		auto:  ac,
	})
}

// ResolveParameter returns a named custom uniform. With index >= 0 the
// parameter is identified by (name, index) and repeated calls return the
// same handle; a type mismatch against an existing parameter yields nil.
// With index -1 a new parameter is allocated under the next free index.
func (p *Program) ResolveParameter(typ ConstantType, index int, variability Variability, name string) *Parameter {
	if name == "" {
		return nil
	}
	if index < 0 {
		index = 0
		for _, u := range p.uniforms {
			if u.auto == AutoNone && u.base == name && u.index >= index {
				index = u.index + 1
			}
		}
	} else {
		for _, u := range p.uniforms {
			if u.auto != AutoNone || u.index != index || u.base != name {
				continue
			}
			if u.typ != typ || u.variability != variability {
				return nil
			}
			return u
		}
	}
	return p.addUniform(&Parameter{
		name:        fmt.Sprintf("%s%d", name, index),
		base:        name,
		typ:         typ,
		scope:       ScopeUniform,
		variability: variability,
		index:       index,
	})
}

func (p *Program) addUniform(u *Parameter) *Parameter {
	if len(p.uniforms) >= p.limits.Uniforms {
		return nil
	}
	p.uniforms = append(p.uniforms, u)
	return u
}

// AddDependency registers a shader library source. Duplicates are ignored.
func (p *Program) AddDependency(lib string) {
	if !slices.Contains(p.deps, lib) {
		p.deps = append(p.deps, lib)
	}
}

// Dependencies returns the registered libraries in registration order.
func (p *Program) Dependencies() []string { return p.deps }

// Set pairs the vertex and fragment programs of one pass.
type Set struct {
	Vertex   *Program
	Fragment *Program
}

// NewSet creates an empty vertex/fragment pair sharing the same limits.
func NewSet(limits Limits) *Set {
	return &Set{
		Vertex:   New(Vertex, limits),
		Fragment: New(Fragment, limits),
	}
}

// Program returns the program of the given kind.
func (s *Set) Program(kind Kind) *Program {
	if kind == Fragment {
		return s.Fragment
	}
	return s.Vertex
}

// Validate checks that every invocation operand refers to a parameter.
func (s *Set) Validate() error {
	for _, prog := range []*Program{s.Vertex, s.Fragment} {
		for _, inv := range prog.main.atoms {
			for i, op := range inv.Operands {
				if op.Param == nil {
					return fmt.Errorf("%s program: %s operand %d has no parameter", prog.kind, inv.Function, i)
				}
			}
		}
	}
	return nil
}
