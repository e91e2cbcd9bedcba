package lighting

import (
	"go.uber.org/zap"

	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
)

// TypePerPixel identifies the per-pixel lighting model.
const TypePerPixel = "SGX_PerPixelLighting"

// Fragment locals holding the running light sums.
const (
	localPerPixelDiffuse  = "lPerPixelDiffuse"
	localPerPixelSpecular = "lPerPixelSpecular"
)

// PerPixel evaluates lighting per fragment. The vertex shader only passes the
// view-space normal (and position when a light needs it); the fragment shader
// sums every light into temporaries and commits them once at the end.
type PerPixel struct {
	base

	vsOutNormal    *program.Parameter
	vsOutViewPos   *program.Parameter
	psInNormal     *program.Parameter
	psInViewPos    *program.Parameter
	psDiffuse      *program.Parameter
	psSpecular     *program.Parameter
	psOutDiffuse   *program.Parameter
	psTempDiffuse  *program.Parameter
	psTempSpecular *program.Parameter
}

// NewPerPixel returns a per-pixel lighting model with no slots.
func NewPerPixel() *PerPixel {
	return &PerPixel{base: newBase(ModelPerPixel)}
}

func (p *PerPixel) Type() string { return TypePerPixel }

func (p *PerPixel) Model() Model { return ModelPerPixel }

// ResolveGlobalParameters resolves the normal pass-through, the fragment
// colour sources and accumulators, and the surface colours.
func (p *PerPixel) ResolveGlobalParameters(set *program.Set) error {
	p.beginGlobal()
	p.vsOutNormal, p.vsOutViewPos, p.psInNormal, p.psInViewPos = nil, nil, nil, nil
	p.psDiffuse, p.psSpecular, p.psOutDiffuse, p.psTempDiffuse, p.psTempSpecular = nil, nil, nil, nil, nil

	vs, ps := set.Vertex, set.Fragment
	vsMain, psMain := vs.EntryPoint(), ps.EntryPoint()
	r := newResolver("per-pixel global parameters")

	p.worldViewITMatrix = resolveAuto(vs, r, program.AutoInverseTransposeWorldViewMatrix)
	p.resolveSurfaceParameters(ps, r)

	p.vsInNormal = resolveInput(vsMain, r, program.ContentNormalObjectSpace)
	p.vsOutNormal = resolveOutput(vsMain, r, program.ContentNormalViewSpace)
	p.psInNormal = r.need("i"+program.ContentNormalViewSpace.String(), psMain.ResolveInputFrom(p.vsOutNormal))

	p.psDiffuse = colourSource(psMain, r, program.ContentColourDiffuse)
	p.psOutDiffuse = resolveOutput(psMain, r, program.ContentColourDiffuse)
	p.psTempDiffuse = resolveLocal(psMain, r, localPerPixelDiffuse, program.Float4)

	if p.specular {
		p.psSpecular = colourSource(psMain, r, program.ContentColourSpecular)
		p.psTempSpecular = resolveLocal(psMain, r, localPerPixelSpecular, program.Float4)
		p.resolveViewPosition(set, r)
	}

	if err := r.result(); err != nil {
		return p.report(err)
	}
	p.globalResolved = true
	return nil
}

// colourSource returns the fragment input carrying the colour when an earlier
// stage provides one, otherwise a local of the same content.
func colourSource(fn *program.Function, r *resolver, c program.Content) *program.Parameter {
	if in := fn.InputParameter(c); in != nil {
		return in
	}
	return r.need("l"+c.String(), fn.ResolveLocalContent(c))
}

// resolveViewPosition makes sure the view-space position is computed by the
// vertex shader and interpolated into the fragment shader. The output pair is
// created by whichever caller needs it first.
func (p *PerPixel) resolveViewPosition(set *program.Set, r *resolver) {
	vsMain, psMain := set.Vertex.EntryPoint(), set.Fragment.EntryPoint()

	p.worldViewMatrix = resolveAuto(set.Vertex, r, program.AutoWorldViewMatrix)
	p.vsInPosition = resolveInput(vsMain, r, program.ContentPositionObjectSpace)
	if p.vsOutViewPos == nil {
		p.vsOutViewPos = resolveOutput(vsMain, r, program.ContentPositionViewSpace)
	}
	if p.psInViewPos == nil {
		p.psInViewPos = r.need("i"+program.ContentPositionViewSpace.String(), psMain.ResolveInputFrom(p.vsOutViewPos))
	}
}

// ResolvePerLightParameters resolves the fragment uniforms of every slot.
func (p *PerPixel) ResolvePerLightParameters(set *program.Set) error {
	p.perLightResolved = false
	ps := set.Fragment
	r := newResolver("per-pixel per-light parameters")

	for i := range p.slots {
		slot := &p.slots[i]
		if slot.Type != light.Directional {
			p.resolveViewPosition(set, r)
		}
		p.resolveSlotParameters(ps, r, i, slot)
	}

	if err := r.result(); err != nil {
		return p.report(err)
	}
	p.perLightResolved = true
	return nil
}

// ResolveDependencies registers the shader libraries on both programs.
func (p *PerPixel) ResolveDependencies(set *program.Set) {
	for _, prog := range []*program.Program{set.Vertex, set.Fragment} {
		prog.AddDependency(LibCommon)
		prog.AddDependency(LibPerPixelLighting)
	}
}

// AddFunctionInvocations emits the vertex transforms, then the fragment
// global illumination, one illumination call per slot and the final
// write-back of the accumulators.
func (p *PerPixel) AddFunctionInvocations(set *program.Set) error {
	if !p.globalResolved || !p.perLightResolved {
		return errNotResolved
	}

	p.addVertexInvocations(set.Vertex.EntryPoint().Stage(program.GroupVSLighting))

	stage := set.Fragment.EntryPoint().Stage(GroupPerPixelLighting)

	p.addGlobalIllumination(stage, accumulation{
		vertexColour: p.psDiffuse,
		diffuse:      p.psTempDiffuse,
		specularSrc:  p.psSpecular,
		specular:     p.psTempSpecular,
		ambientMask:  program.MaskXYZ,
	})

	for i := range p.slots {
		slot := &p.slots[i]
		p.addVertexColourModulation(stage, p.psDiffuse, slot)
		perPixelIllumination.lookup(slot.Type, p.specular).emit(stage, func(ref operandRef) *program.Parameter {
			return p.operand(slot, ref)
		})
	}

	p.addFinalAssignment(stage)

	p.log.Debug("per-pixel invocations added", zap.Int("slots", len(p.slots)))
	return nil
}

func (p *PerPixel) addVertexInvocations(stage program.Stage) {
	stage.CallFunction(FuncTransformNormal,
		program.In(p.worldViewITMatrix), program.In(p.vsInNormal), program.Out(p.vsOutNormal))

	if p.vsOutViewPos != nil {
		stage.CallFunction(FuncTransformPosition,
			program.In(p.worldViewMatrix), program.In(p.vsInPosition), program.Out(p.vsOutViewPos))
	}
}

func (p *PerPixel) addFinalAssignment(stage program.Stage) {
	stage.Assign(program.In(p.psTempDiffuse), program.Out(p.psDiffuse))
	stage.Assign(program.In(p.psDiffuse), program.Out(p.psOutDiffuse))
	if p.specular {
		stage.Assign(program.In(p.psTempSpecular), program.Out(p.psSpecular))
	}
}

func (p *PerPixel) operand(slot *LightSlot, ref operandRef) *program.Parameter {
	switch ref {
	case refNormal:
		return p.psInNormal
	case refViewPosition:
		return p.psInViewPos
	case refShininess:
		return p.surfaceShininess
	case refDiffuseAcc:
		return p.psTempDiffuse
	case refSpecularAcc:
		return p.psTempSpecular
	}
	return slotOperand(slot, ref)
}

// CreateCPUSubPrograms runs every resolution phase and emits the invocations.
// Nothing is emitted when a phase fails.
func (p *PerPixel) CreateCPUSubPrograms(set *program.Set) error {
	return createCPUSubPrograms(p, set)
}
