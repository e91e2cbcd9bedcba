package lighting

import (
	"go.uber.org/zap"

	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

// TypeFFP identifies the per-vertex lighting model.
const TypeFFP = "FFP_Lighting"

// FFP evaluates fixed-function lighting per vertex. Every light accumulates
// straight into the vertex shader's colour outputs.
type FFP struct {
	base

	vsDiffuse     *program.Parameter // vertex colour, only when a channel is tracked
	vsInSpecular  *program.Parameter
	vsOutDiffuse  *program.Parameter
	vsOutSpecular *program.Parameter
}

// NewFFP returns a per-vertex lighting model with no slots.
func NewFFP() *FFP {
	return &FFP{base: newBase(ModelFFP)}
}

func (f *FFP) Type() string { return TypeFFP }

func (f *FFP) Model() Model { return ModelFFP }

// ResolveGlobalParameters resolves the vertex program parameters shared by
// all lights.
func (f *FFP) ResolveGlobalParameters(set *program.Set) error {
	f.beginGlobal()
	f.vsDiffuse, f.vsInSpecular, f.vsOutDiffuse, f.vsOutSpecular = nil, nil, nil, nil

	vs := set.Vertex
	vsMain := vs.EntryPoint()
	r := newResolver("ffp global parameters")

	f.worldViewITMatrix = resolveAuto(vs, r, program.AutoInverseTransposeWorldViewMatrix)
	f.resolveSurfaceParameters(vs, r)

	f.vsInNormal = resolveInput(vsMain, r, program.ContentNormalObjectSpace)
	if f.track != material.TrackNone {
		f.vsDiffuse = resolveInput(vsMain, r, program.ContentColourDiffuse)
	}
	f.vsOutDiffuse = resolveOutput(vsMain, r, program.ContentColourDiffuse)

	if f.specular {
		f.vsInSpecular = resolveInput(vsMain, r, program.ContentColourSpecular)
		f.vsOutSpecular = resolveOutput(vsMain, r, program.ContentColourSpecular)
		f.resolvePosition(vs, r)
	}

	if err := r.result(); err != nil {
		return f.report(err)
	}
	f.globalResolved = true
	return nil
}

// resolvePosition resolves the world-view matrix and object-space position
// the vertex shader derives the view-space position from.
func (f *FFP) resolvePosition(vs *program.Program, r *resolver) {
	f.worldViewMatrix = resolveAuto(vs, r, program.AutoWorldViewMatrix)
	f.vsInPosition = resolveInput(vs.EntryPoint(), r, program.ContentPositionObjectSpace)
}

// ResolvePerLightParameters resolves the uniforms of every slot.
func (f *FFP) ResolvePerLightParameters(set *program.Set) error {
	f.perLightResolved = false
	vs := set.Vertex
	r := newResolver("ffp per-light parameters")

	for i := range f.slots {
		slot := &f.slots[i]
		if slot.Type != light.Directional {
			f.resolvePosition(vs, r)
		}
		f.resolveSlotParameters(vs, r, i, slot)
	}

	if err := r.result(); err != nil {
		return f.report(err)
	}
	f.perLightResolved = true
	return nil
}

// ResolveDependencies registers the shader libraries on both programs.
func (f *FFP) ResolveDependencies(set *program.Set) {
	for _, prog := range []*program.Program{set.Vertex, set.Fragment} {
		prog.AddDependency(LibCommon)
		prog.AddDependency(LibLighting)
	}
}

// AddFunctionInvocations emits the global illumination followed by one
// illumination call per slot into the vertex lighting group.
func (f *FFP) AddFunctionInvocations(set *program.Set) error {
	if !f.globalResolved || !f.perLightResolved {
		return errNotResolved
	}

	stage := set.Vertex.EntryPoint().Stage(program.GroupVSLighting)

	f.addGlobalIllumination(stage, accumulation{
		vertexColour: f.vsDiffuse,
		diffuse:      f.vsOutDiffuse,
		specularSrc:  f.vsInSpecular,
		specular:     f.vsOutSpecular,
		ambientMask:  program.MaskAll,
	})

	for i := range f.slots {
		slot := &f.slots[i]
		f.addVertexColourModulation(stage, f.vsDiffuse, slot)
		ffpIllumination.lookup(slot.Type, f.specular).emit(stage, func(ref operandRef) *program.Parameter {
			return f.operand(slot, ref)
		})
	}

	f.log.Debug("ffp invocations added", zap.Int("slots", len(f.slots)))
	return nil
}

func (f *FFP) operand(slot *LightSlot, ref operandRef) *program.Parameter {
	switch ref {
	case refWorldView:
		return f.worldViewMatrix
	case refWorldViewIT:
		return f.worldViewITMatrix
	case refPosition:
		return f.vsInPosition
	case refNormal:
		return f.vsInNormal
	case refShininess:
		return f.surfaceShininess
	case refDiffuseAcc:
		return f.vsOutDiffuse
	case refSpecularAcc:
		return f.vsOutSpecular
	}
	return slotOperand(slot, ref)
}

// CreateCPUSubPrograms runs every resolution phase and emits the invocations.
// Nothing is emitted when a phase fails.
func (f *FFP) CreateCPUSubPrograms(set *program.Set) error {
	return createCPUSubPrograms(f, set)
}
