package program

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Scope tells where a parameter lives.
type Scope int

const (
	ScopeUniform Scope = iota
	ScopeInput
	ScopeOutput
	ScopeLocal
)

func (s Scope) String() string {
	switch s {
	case ScopeUniform:
		return "uniform"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	case ScopeLocal:
		return "local"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Parameter is a resolved shader parameter. Parameters are owned by the
// Program or Function that resolved them; callers keep the returned pointer
// as a handle and never construct parameters themselves.
type Parameter struct {
	name        string
	base        string
	typ         ConstantType
	scope       Scope
	auto        AutoConstant
	content     Content
	variability Variability
	index       int

	// Last value pushed by the runtime updater. Only the first
	// typ.Components() entries (at most four) are meaningful.
	value   mgl32.Vec4
	updates int
}

// Name returns the parameter's unique name within its owner.
func (p *Parameter) Name() string { return p.name }

// Type returns the parameter's GPU type.
func (p *Parameter) Type() ConstantType { return p.typ }

// Scope returns where the parameter lives.
func (p *Parameter) Scope() Scope { return p.scope }

// Auto returns the bound auto constant, or AutoNone for custom parameters.
func (p *Parameter) Auto() AutoConstant { return p.auto }

// Content returns the semantic content of an input, output or local.
func (p *Parameter) Content() Content { return p.content }

// Variability returns the variability mask of a named uniform.
func (p *Parameter) Variability() Variability { return p.variability }

// Index returns the per-name index of a named uniform.
func (p *Parameter) Index() int { return p.index }

// SetVec4 pushes a four component value.
func (p *Parameter) SetVec4(v mgl32.Vec4) {
	p.value = v
	p.updates++
}

// SetVec3 pushes a three component value; w is cleared.
func (p *Parameter) SetVec3(v mgl32.Vec3) {
	p.value = v.Vec4(0)
	p.updates++
}

// Value returns the last pushed value.
func (p *Parameter) Value() mgl32.Vec4 { return p.value }

// Updates returns how many times a value was pushed.
func (p *Parameter) Updates() int { return p.updates }

func (p *Parameter) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.name
}
