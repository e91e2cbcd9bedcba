// Package lighting composes fixed-function style lighting into shader
// programs. A model resolves the parameters its light slots need, registers
// the shader libraries it calls and emits the illumination invocations; at
// render time it pushes the active lights into the resolved parameters.
//
// Two models exist: FFP lights per vertex, PerPixel lights per fragment.
package lighting

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/rtshader/internal/logger"
	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

// ExecutionOrder is the position of the lighting stage among the
// sub-render states of a pass.
const ExecutionOrder = 300

// GroupPerPixelLighting is the fragment execution group of per-pixel lighting.
const GroupPerPixelLighting = program.GroupPSColourBegin + 1

// Named per-light uniforms. Each slot resolves them under its own index.
const (
	paramLightPosition    = "light_position_view_space"
	paramLightDirection   = "light_direction_view_space"
	paramLightAttenuation = "light_attenuation"
	paramSpotParams       = "spotlight_params"
	paramDerivedDiffuse   = "derived_light_diffuse"
	paramLightDiffuse     = "light_diffuse"
	paramDerivedSpecular  = "derived_light_specular"
	paramLightSpecular    = "light_specular"
)

// AutoParamSource supplies the engine-tracked matrices of the current frame.
type AutoParamSource interface {
	ViewMatrix() mgl32.Mat4
	InverseTransposeViewMatrix() mgl32.Mat4
}

// Lighting is a lighting model bound to one material pass. Resolution runs
// once per compilation; UpdateGPUProgramsParams runs every frame afterwards.
type Lighting interface {
	Type() string
	Model() Model
	ExecutionOrder() int

	PreAddToRenderState(counts light.Counts, pass *material.Pass) (bool, error)
	SetLightCount(counts light.Counts)
	LightCount() light.Counts
	Slots() SlotList
	TrackVertexColour() material.TrackVertexColour
	SpecularEnabled() bool

	ResolveGlobalParameters(set *program.Set) error
	ResolvePerLightParameters(set *program.Set) error
	ResolveDependencies(set *program.Set)
	AddFunctionInvocations(set *program.Set) error
	CreateCPUSubPrograms(set *program.Set) error

	UpdateGPUProgramsParams(pass *material.Pass, src AutoParamSource, lights []light.Light)
	CopyFrom(other Lighting)
}

// globals holds the program-wide handles both models share.
type globals struct {
	worldViewMatrix           *program.Parameter
	worldViewITMatrix         *program.Parameter
	derivedSceneColour        *program.Parameter
	lightAmbientColour        *program.Parameter
	derivedAmbientLightColour *program.Parameter
	surfaceAmbientColour      *program.Parameter
	surfaceDiffuseColour      *program.Parameter
	surfaceSpecularColour     *program.Parameter
	surfaceEmissiveColour     *program.Parameter
	surfaceShininess          *program.Parameter
	vsInNormal                *program.Parameter
	vsInPosition              *program.Parameter
}

type base struct {
	globals

	log      *zap.Logger
	slots    SlotList
	track    material.TrackVertexColour
	specular bool
	blank    light.Light

	globalResolved   bool
	perLightResolved bool
}

func newBase(m Model) base {
	return base{
		log:   logger.Named("lighting").With(zap.String("model", string(m))),
		blank: light.Blank(),
	}
}

func (b *base) ExecutionOrder() int { return ExecutionOrder }

func (b *base) Slots() SlotList { return b.slots }

func (b *base) LightCount() light.Counts { return b.slots.LightCount() }

func (b *base) TrackVertexColour() material.TrackVertexColour { return b.track }

func (b *base) SpecularEnabled() bool { return b.specular }

// SetLightCount rebuilds the slot list. Previously resolved handles are dropped.
func (b *base) SetLightCount(counts light.Counts) {
	b.slots = BuildSlots(counts)
	b.globalResolved = false
	b.perLightResolved = false
}

// CopyFrom takes over the light counts of other.
func (b *base) CopyFrom(other Lighting) {
	b.SetLightCount(other.LightCount())
}

// PreAddToRenderState applies the pass policy and builds the slot list.
// It reports false when the pass is unlit and the stage should be skipped.
func (b *base) PreAddToRenderState(counts light.Counts, pass *material.Pass) (bool, error) {
	policy, ok, err := ResolvePolicy(pass, counts)
	if err != nil {
		b.log.Warn("lighting policy rejected", zap.Error(err))
		return false, err
	}
	if !ok {
		return false, nil
	}

	b.track = policy.TrackVertexColour
	b.specular = policy.SpecularEnable
	b.SetLightCount(policy.Counts)

	b.log.Debug("lighting policy resolved",
		zap.String("pass", pass.Name),
		zap.Ints("counts", policy.Counts[:]),
		zap.Stringer("track", policy.TrackVertexColour),
		zap.Bool("specular", policy.SpecularEnable))
	return true, nil
}

func (b *base) beginGlobal() {
	b.globals = globals{}
	b.slots.reset()
	b.globalResolved = false
	b.perLightResolved = false
}

func (b *base) report(err error) error {
	var re *ResolveError
	if errors.As(err, &re) {
		b.log.Warn("parameter resolution failed",
			zap.String("phase", re.Phase),
			zap.Strings("missing", re.Missing()))
	}
	return err
}

func resolveAuto(prog *program.Program, r *resolver, ac program.AutoConstant) *program.Parameter {
	return r.need(ac.String(), prog.ResolveAutoParameter(ac))
}

func resolveInput(fn *program.Function, r *resolver, c program.Content) *program.Parameter {
	return r.need("i"+c.String(), fn.ResolveInputParameter(c))
}

func resolveOutput(fn *program.Function, r *resolver, c program.Content) *program.Parameter {
	return r.need("o"+c.String(), fn.ResolveOutputParameter(c))
}

func resolveLocal(fn *program.Function, r *resolver, name string, typ program.ConstantType) *program.Parameter {
	return r.need(name, fn.ResolveLocalParameter(name, typ))
}

func resolveLightParameter(prog *program.Program, r *resolver, typ program.ConstantType, index int,
	variability program.Variability, name string) *program.Parameter {
	return r.need(fmt.Sprintf("%s%d", name, index), prog.ResolveParameter(typ, index, variability, name))
}

// resolveSurfaceParameters resolves the surface and scene colours on prog.
// Colours supplied by the vertex are skipped.
func (b *base) resolveSurfaceParameters(prog *program.Program, r *resolver) {
	if !b.track.Has(material.TrackAmbient) {
		b.derivedAmbientLightColour = resolveAuto(prog, r, program.AutoDerivedAmbientLightColour)
	} else {
		b.lightAmbientColour = resolveAuto(prog, r, program.AutoAmbientLightColour)
		b.surfaceAmbientColour = resolveAuto(prog, r, program.AutoSurfaceAmbientColour)
	}
	if !b.track.Has(material.TrackDiffuse) {
		b.surfaceDiffuseColour = resolveAuto(prog, r, program.AutoSurfaceDiffuseColour)
	}
	if !b.track.Has(material.TrackSpecular) {
		b.surfaceSpecularColour = resolveAuto(prog, r, program.AutoSurfaceSpecularColour)
	}
	if !b.track.Has(material.TrackEmissive) {
		b.surfaceEmissiveColour = resolveAuto(prog, r, program.AutoSurfaceEmissiveColour)
	}
	b.derivedSceneColour = resolveAuto(prog, r, program.AutoDerivedSceneColour)
	b.surfaceShininess = resolveAuto(prog, r, program.AutoSurfaceShininess)
}

// resolveSlotParameters resolves the per-light uniforms of slot i on prog.
func (b *base) resolveSlotParameters(prog *program.Program, r *resolver, i int, slot *LightSlot) {
	lights := program.VariabilityLights
	switch slot.Type {
	case light.Directional:
		slot.Direction = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightDirection)
	case light.Point:
		slot.Position = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightPosition)
		slot.Attenuation = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightAttenuation)
	case light.Spot:
		slot.Position = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightPosition)
		slot.Direction = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightDirection)
		slot.Attenuation = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightAttenuation)
		slot.SpotParams = resolveLightParameter(prog, r, program.Float3, i, lights, paramSpotParams)
	}

	if !b.track.Has(material.TrackDiffuse) {
		slot.Diffuse = resolveLightParameter(prog, r, program.Float4, i,
			program.VariabilityGlobal|lights, paramDerivedDiffuse)
	} else {
		slot.Diffuse = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightDiffuse)
	}

	if b.specular {
		if !b.track.Has(material.TrackSpecular) {
			slot.Specular = resolveLightParameter(prog, r, program.Float4, i,
				program.VariabilityGlobal|lights, paramDerivedSpecular)
		} else {
			slot.Specular = resolveLightParameter(prog, r, program.Float4, i, lights, paramLightSpecular)
		}
	}
}

// accumulation names the handles the global illumination step reads and writes.
type accumulation struct {
	vertexColour *program.Parameter
	diffuse      *program.Parameter
	specularSrc  *program.Parameter
	specular     *program.Parameter
	ambientMask  program.Mask
}

// addGlobalIllumination seeds the accumulators with the ambient, emissive and
// scene contributions.
func (b *base) addGlobalIllumination(stage program.Stage, acc accumulation) {
	ambient := b.track.Has(material.TrackAmbient)
	emissive := b.track.Has(material.TrackEmissive)

	if !ambient && !emissive {
		stage.Assign(program.In(b.derivedSceneColour), program.Out(acc.diffuse))
	} else {
		if ambient {
			stage.CallFunction(FuncModulate,
				program.In(b.lightAmbientColour), program.In(acc.vertexColour), program.Out(acc.diffuse))
		} else {
			stage.Assign(program.In(b.derivedAmbientLightColour).WithMask(acc.ambientMask),
				program.Out(acc.diffuse).WithMask(acc.ambientMask))
		}

		if emissive {
			stage.CallFunction(FuncAdd,
				program.In(acc.vertexColour), program.In(acc.diffuse), program.Out(acc.diffuse))
		} else {
			stage.CallFunction(FuncAdd,
				program.In(b.surfaceEmissiveColour), program.In(acc.diffuse), program.Out(acc.diffuse))
		}
	}

	if b.specular {
		stage.Assign(program.In(acc.specularSrc), program.Out(acc.specular))
	}
}

// addVertexColourModulation folds the vertex colour into the slot colours it
// replaces.
func (b *base) addVertexColourModulation(stage program.Stage, vertexColour *program.Parameter, slot *LightSlot) {
	if b.track.Has(material.TrackDiffuse) {
		stage.CallFunction(FuncModulate,
			program.In(vertexColour).XYZ(), program.In(slot.Diffuse).XYZ(), program.Out(slot.Diffuse).XYZ())
	}
	if b.specular && b.track.Has(material.TrackSpecular) {
		stage.CallFunction(FuncModulate,
			program.In(vertexColour).XYZ(), program.In(slot.Specular).XYZ(), program.Out(slot.Specular).XYZ())
	}
}

// slotOperand binds the per-light operand roles of a template.
func slotOperand(slot *LightSlot, ref operandRef) *program.Parameter {
	switch ref {
	case refLightPosition:
		return slot.Position
	case refLightDirection:
		return slot.Direction
	case refLightAttenuation:
		return slot.Attenuation
	case refLightSpot:
		return slot.SpotParams
	case refLightDiffuse:
		return slot.Diffuse
	case refLightSpecular:
		return slot.Specular
	}
	return nil
}

func createCPUSubPrograms(l Lighting, set *program.Set) error {
	if err := l.ResolveGlobalParameters(set); err != nil {
		return err
	}
	if err := l.ResolvePerLightParameters(set); err != nil {
		return err
	}
	l.ResolveDependencies(set)
	return l.AddFunctionInvocations(set)
}

// UpdateGPUProgramsParams writes the active lights into the slot parameters.
//
// Slots are matched in order against lights of the same type: the search
// cursor restarts whenever the slot type changes and moves past every light
// it hands out, so no light feeds two slots. Slots left without a light get
// the blank light. Nothing happens before per-light resolution succeeded.
func (b *base) UpdateGPUProgramsParams(pass *material.Pass, src AutoParamSource, lights []light.Light) {
	if len(b.slots) == 0 || !b.perLightResolved {
		return
	}

	view, invTranspose := mgl32.Ident4(), mgl32.Ident4()
	if src != nil {
		view = src.ViewMatrix()
		invTranspose = src.InverseTransposeViewMatrix()
	}
	surfaceDiffuse, surfaceSpecular := mgl32.Vec4{1, 1, 1, 1}, mgl32.Vec4{1, 1, 1, 1}
	if pass != nil {
		surfaceDiffuse, surfaceSpecular = pass.Diffuse, pass.Specular
	}

	curType := light.Type(-1)
	cursor := 0
	for i := range b.slots {
		slot := &b.slots[i]
		if slot.Type != curType {
			curType = slot.Type
			cursor = 0
		}

		b.blank.Type = curType
		l := &b.blank
		for j := cursor; j < len(lights); j++ {
			if lights[j].Type == curType {
				l = &lights[j]
				cursor = j + 1
				break
			}
		}

		updateSlotGeometry(slot, l, view, invTranspose.Mat3())

		if !b.track.Has(material.TrackDiffuse) {
			slot.Diffuse.SetVec4(modulate(l.Diffuse, surfaceDiffuse).Mul(l.PowerScale))
		} else {
			slot.Diffuse.SetVec4(l.Diffuse.Mul(l.PowerScale))
		}

		if b.specular {
			if !b.track.Has(material.TrackSpecular) {
				slot.Specular.SetVec4(modulate(l.Specular, surfaceSpecular).Mul(l.PowerScale))
			} else {
				slot.Specular.SetVec4(l.Specular.Mul(l.PowerScale))
			}
		}
	}
}

func updateSlotGeometry(slot *LightSlot, l *light.Light, view mgl32.Mat4, invTransposeView mgl32.Mat3) {
	switch slot.Type {
	case light.Directional:
		slot.Direction.SetVec4(view.Mul4x1(l.As4DVector()))

	case light.Point:
		slot.Position.SetVec4(view.Mul4x1(l.As4DVector()))
		slot.Attenuation.SetVec4(l.Attenuation())

	case light.Spot:
		slot.Position.SetVec4(view.Mul4x1(l.As4DVector()))

		dir := invTransposeView.Mul3x1(l.Direction)
		if dir.Len() > 0 {
			dir = dir.Normalize()
		}
		slot.Direction.SetVec4(dir.Mul(-1).Vec4(0))

		slot.Attenuation.SetVec4(l.Attenuation())
		slot.SpotParams.SetVec3(mgl32.Vec3{
			math32.Cos(l.SpotInner * 0.5),
			math32.Cos(l.SpotOuter * 0.5),
			l.SpotFalloff,
		})
	}
}

// modulate multiplies two colours component-wise.
func modulate(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
