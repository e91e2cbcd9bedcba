package lighting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

func litPass() *material.Pass {
	p := material.NewPass("test")
	return &p
}

func specularPass() *material.Pass {
	p := litPass()
	p.Specular = [4]float32{0.5, 0.5, 0.5, 1}
	p.Shininess = 32
	return p
}

func compile(t *testing.T, l Lighting, counts light.Counts, pass *material.Pass) *program.Set {
	t.Helper()
	ok, err := l.PreAddToRenderState(counts, pass)
	require.NoError(t, err)
	require.True(t, ok)

	set := program.NewSet(program.DefaultLimits())
	require.NoError(t, l.CreateCPUSubPrograms(set))
	require.NoError(t, set.Validate())
	return set
}

func functions(fn *program.Function) []string {
	var names []string
	for _, inv := range fn.Invocations() {
		names = append(names, inv.Function)
	}
	return names
}

func allModels() []Lighting {
	return []Lighting{NewFFP(), NewPerPixel()}
}

func TestBuildSlots(t *testing.T) {
	tests := []light.Counts{
		{0, 0, 0},
		{1, 0, 0},
		{0, 3, 0},
		{2, 1, 0},
		{0, 0, 4},
		{3, 2, 5},
	}
	for _, counts := range tests {
		slots := BuildSlots(counts)
		require.Len(t, slots, counts.Total())

		var order []light.Type
		for _, s := range slots {
			if len(order) == 0 || order[len(order)-1] != s.Type {
				order = append(order, s.Type)
			}
			assert.Nil(t, s.Position)
			assert.Nil(t, s.Diffuse)
		}
		// Each type forms one contiguous run, in Point, Directional, Spot order.
		for i := 1; i < len(order); i++ {
			assert.Less(t, order[i-1], order[i], "counts %v", counts)
		}
		assert.Equal(t, counts, slots.LightCount())
	}

	assert.Empty(t, BuildSlots(light.Counts{-1, 0, 0}))
}

func TestResolvePolicy(t *testing.T) {
	counts := light.Counts{2, 1, 0}

	t.Run("unlit", func(t *testing.T) {
		pass := litPass()
		pass.LightingEnabled = false
		_, ok, err := ResolvePolicy(pass, counts)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("flags", func(t *testing.T) {
		pass := specularPass()
		pass.VertexColourTracking = material.TrackAmbient | material.TrackEmissive
		p, ok, err := ResolvePolicy(pass, counts)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, counts, p.Counts)
		assert.True(t, p.SpecularEnable)
		assert.Equal(t, material.TrackAmbient|material.TrackEmissive, p.TrackVertexColour)
	})

	t.Run("black specular disables highlights", func(t *testing.T) {
		pass := litPass()
		pass.Shininess = 64
		p, _, err := ResolvePolicy(pass, counts)
		require.NoError(t, err)
		assert.False(t, p.SpecularEnable)
	})

	t.Run("iterate per spot light", func(t *testing.T) {
		pass := litPass()
		pass.IteratePerLight = true
		pass.RunOnlyForOneLightType = true
		pass.OnlyLightType = light.Spot
		pass.LightCountPerIteration = 4
		p, ok, err := ResolvePolicy(pass, counts)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, light.Counts{0, 0, 4}, p.Counts)
	})

	t.Run("iterate per light without type", func(t *testing.T) {
		pass := litPass()
		pass.IteratePerLight = true
		_, ok, err := ResolvePolicy(pass, counts)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
	})
}

func TestPreAddToRenderState(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			pass := litPass()
			ok, err := l.PreAddToRenderState(light.Counts{1, 1, 1}, pass)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Len(t, l.Slots(), 3)

			unsupported := litPass()
			unsupported.IteratePerLight = true
			fresh, err := New(l.Model())
			require.NoError(t, err)
			ok, err = fresh.PreAddToRenderState(light.Counts{1, 1, 1}, unsupported)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
			assert.Empty(t, fresh.Slots(), "no slots are built for an unsupported configuration")

			pass.LightingEnabled = false
			ok, err = fresh.PreAddToRenderState(light.Counts{1, 1, 1}, pass)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestIdentity(t *testing.T) {
	ffp, pp := NewFFP(), NewPerPixel()
	assert.Equal(t, TypeFFP, ffp.Type())
	assert.Equal(t, TypePerPixel, pp.Type())
	assert.Equal(t, ExecutionOrder, ffp.ExecutionOrder())
	assert.Equal(t, ExecutionOrder, pp.ExecutionOrder())
	assert.Equal(t, 101, GroupPerPixelLighting)
}

func TestCopyFrom(t *testing.T) {
	src := NewFFP()
	src.SetLightCount(light.Counts{1, 2, 3})

	dst := NewPerPixel()
	dst.SetLightCount(light.Counts{5, 0, 0})
	dst.CopyFrom(src)
	assert.Equal(t, light.Counts{1, 2, 3}, dst.LightCount())
	assert.Equal(t, light.Spot, dst.Slots()[5].Type)
}

func TestResolutionIsIdempotent(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			pass := specularPass()
			ok, err := l.PreAddToRenderState(light.Counts{1, 1, 1}, pass)
			require.NoError(t, err)
			require.True(t, ok)

			set := program.NewSet(program.DefaultLimits())
			require.NoError(t, l.ResolveGlobalParameters(set))
			require.NoError(t, l.ResolvePerLightParameters(set))
			first := append(SlotList(nil), l.Slots()...)
			nv, nf := len(set.Vertex.Parameters()), len(set.Fragment.Parameters())

			require.NoError(t, l.ResolveGlobalParameters(set))
			require.NoError(t, l.ResolvePerLightParameters(set))
			assert.Equal(t, first, l.Slots())
			assert.Len(t, set.Vertex.Parameters(), nv)
			assert.Len(t, set.Fragment.Parameters(), nf)
		})
	}
}

func TestSlotParametersPerType(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			set := compile(t, l, light.Counts{1, 1, 1}, specularPass())
			slots := l.Slots()

			point, dir, spot := slots[0], slots[1], slots[2]
			assert.NotNil(t, point.Position)
			assert.NotNil(t, point.Attenuation)
			assert.Nil(t, point.Direction)
			assert.Nil(t, point.SpotParams)

			assert.NotNil(t, dir.Direction)
			assert.Nil(t, dir.Position)
			assert.Nil(t, dir.Attenuation)

			assert.NotNil(t, spot.Position)
			assert.NotNil(t, spot.Direction)
			assert.NotNil(t, spot.Attenuation)
			assert.NotNil(t, spot.SpotParams)
			assert.Equal(t, program.Float3, spot.SpotParams.Type())

			for _, s := range slots {
				assert.Equal(t, "derived_light_diffuse", s.Diffuse.Name()[:len("derived_light_diffuse")])
				assert.NotNil(t, s.Specular)
			}

			owner := set.Vertex
			if l.Model() == ModelPerPixel {
				owner = set.Fragment
			}
			assert.Contains(t, owner.Parameters(), spot.SpotParams)
		})
	}
}

func TestTrackedColoursUseLightOnlyParameters(t *testing.T) {
	pass := specularPass()
	pass.VertexColourTracking = material.TrackDiffuse | material.TrackSpecular
	l := NewFFP()
	compile(t, l, light.Counts{0, 1, 0}, pass)

	slot := l.Slots()[0]
	assert.Equal(t, "light_diffuse0", slot.Diffuse.Name())
	assert.Equal(t, "light_specular0", slot.Specular.Name())
	assert.Equal(t, program.VariabilityLights, slot.Diffuse.Variability())
}

func TestDependencies(t *testing.T) {
	ffpSet := compile(t, NewFFP(), light.Counts{1, 0, 0}, litPass())
	for _, prog := range []*program.Program{ffpSet.Vertex, ffpSet.Fragment} {
		assert.Equal(t, []string{LibCommon, LibLighting}, prog.Dependencies())
	}

	pp := NewPerPixel()
	ppSet := compile(t, pp, light.Counts{1, 0, 0}, litPass())
	pp.ResolveDependencies(ppSet)
	for _, prog := range []*program.Program{ppSet.Vertex, ppSet.Fragment} {
		assert.Equal(t, []string{LibCommon, LibPerPixelLighting}, prog.Dependencies())
	}
}

func TestResolutionFailureIsAggregated(t *testing.T) {
	limits := program.DefaultLimits()
	limits.Uniforms = 2

	l := NewFFP()
	ok, err := l.PreAddToRenderState(light.Counts{1, 0, 0}, litPass())
	require.NoError(t, err)
	require.True(t, ok)

	set := program.NewSet(limits)
	err = l.CreateCPUSubPrograms(set)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParametersNotConstructed)

	var re *ResolveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "ffp global parameters", re.Phase)
	assert.Equal(t, []string{
		"surface_diffuse_colour",
		"surface_specular_colour",
		"surface_emissive_colour",
		"derived_scene_colour",
		"surface_shininess",
	}, re.Missing())

	assert.Empty(t, set.Vertex.EntryPoint().Invocations())
	assert.Empty(t, set.Vertex.Dependencies())
	assert.ErrorIs(t, l.AddFunctionInvocations(set), errNotResolved)
}

func TestPerLightFailureNamesPhase(t *testing.T) {
	limits := program.DefaultLimits()
	limits.Outputs = 1 // the view-space normal leaves no room for the view-space position

	l := NewPerPixel()
	ok, err := l.PreAddToRenderState(light.Counts{2, 0, 0}, litPass())
	require.NoError(t, err)
	require.True(t, ok)

	set := program.NewSet(limits)
	err = l.CreateCPUSubPrograms(set)
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "per-pixel per-light parameters", re.Phase)
	assert.Equal(t, []string{"oPosition_ViewSpace", "iPosition_ViewSpace"}, re.Missing())
	assert.Empty(t, set.Vertex.EntryPoint().Invocations())
	assert.Empty(t, set.Fragment.EntryPoint().Invocations())
}

func TestNoDanglingParameters(t *testing.T) {
	for _, model := range Models {
		for track := material.TrackNone; track <= 0xF; track++ {
			for _, specular := range []bool{false, true} {
				l, err := New(model)
				require.NoError(t, err)
				pass := litPass()
				if specular {
					pass = specularPass()
				}
				pass.VertexColourTracking = track

				ok, err := l.PreAddToRenderState(light.Counts{2, 1, 2}, pass)
				require.NoError(t, err)
				require.True(t, ok)

				set := program.NewSet(program.DefaultLimits())
				require.NoError(t, l.CreateCPUSubPrograms(set), "%s track=%s specular=%t", model, track, specular)
				assert.NoError(t, set.Validate(), "%s track=%s specular=%t", model, track, specular)
			}
		}
	}
}

func TestFFPInvocationOrder(t *testing.T) {
	l := NewFFP()
	set := compile(t, l, light.Counts{2, 1, 0}, litPass())

	vs := set.Vertex.EntryPoint()
	assert.Equal(t, []string{
		program.FuncAssign,
		FuncLightPointDiffuse,
		FuncLightPointDiffuse,
		FuncLightDirectionalDiffuse,
	}, functions(vs))
	for _, inv := range vs.Invocations() {
		assert.Equal(t, program.GroupVSLighting, inv.GroupOrder)
	}
	assert.Empty(t, set.Fragment.EntryPoint().Invocations())

	invs := vs.Invocations()
	assert.Equal(t, "FFP_Assign(in derived_scene_colour, out oColor_Diffuse)", invs[0].String())
	assert.Equal(t, "FFP_Light_Point_Diffuse(in worldview_matrix, in iPosition, in inverse_transpose_worldview_matrix, "+
		"in iNormal, in light_position_view_space0.xyz, in light_attenuation0, in derived_light_diffuse0.xyz, "+
		"in oColor_Diffuse.xyz, out oColor_Diffuse.xyz)", invs[1].String())
	assert.Equal(t, "FFP_Light_Directional_Diffuse(in inverse_transpose_worldview_matrix, in iNormal, "+
		"in light_direction_view_space2.xyz, in derived_light_diffuse2.xyz, "+
		"in oColor_Diffuse.xyz, out oColor_Diffuse.xyz)", invs[3].String())
}

func TestFFPVertexColourTracking(t *testing.T) {
	pass := litPass()
	pass.VertexColourTracking = material.TrackAmbient | material.TrackDiffuse
	l := NewFFP()
	set := compile(t, l, light.Counts{1, 0, 0}, pass)

	invs := set.Vertex.EntryPoint().Invocations()
	require.Len(t, invs, 4)
	assert.Equal(t, "FFP_Modulate(in ambient_light_colour, in iColor_Diffuse, out oColor_Diffuse)", invs[0].String())
	assert.Equal(t, "FFP_Add(in surface_emissive_colour, in oColor_Diffuse, out oColor_Diffuse)", invs[1].String())
	assert.Equal(t, "FFP_Modulate(in iColor_Diffuse.xyz, in light_diffuse0.xyz, out light_diffuse0.xyz)", invs[2].String())
	assert.Equal(t, FuncLightPointDiffuse, invs[3].Function)
}

func TestFFPSpecular(t *testing.T) {
	pass := specularPass()
	pass.VertexColourTracking = material.TrackEmissive | material.TrackSpecular
	l := NewFFP()
	set := compile(t, l, light.Counts{0, 1, 0}, pass)

	invs := set.Vertex.EntryPoint().Invocations()
	assert.Equal(t, []string{
		program.FuncAssign,
		FuncAdd,
		program.FuncAssign,
		FuncModulate,
		FuncLightDirectionalDiffuseSpecular,
	}, functions(set.Vertex.EntryPoint()))

	assert.Equal(t, "FFP_Assign(in derived_ambient_light_colour, out oColor_Diffuse)", invs[0].String())
	assert.Equal(t, "FFP_Add(in iColor_Diffuse, in oColor_Diffuse, out oColor_Diffuse)", invs[1].String())
	assert.Equal(t, "FFP_Assign(in iColor_Specular, out oColor_Specular)", invs[2].String())
	assert.Equal(t, "FFP_Modulate(in iColor_Diffuse.xyz, in light_specular0.xyz, out light_specular0.xyz)", invs[3].String())

	call := invs[4]
	require.Len(t, call.Operands, 12)
	assert.Equal(t, "in worldview_matrix", call.Operands[0].String())
	assert.Equal(t, "in surface_shininess", call.Operands[7].String())
	assert.Equal(t, "out oColor_Specular.xyz", call.Operands[11].String())
}

func TestPerPixelInvocationOrder(t *testing.T) {
	l := NewPerPixel()
	set := compile(t, l, light.Counts{2, 1, 0}, litPass())

	assert.Equal(t, []string{FuncTransformNormal, FuncTransformPosition}, functions(set.Vertex.EntryPoint()))
	assert.Equal(t, []string{
		program.FuncAssign,
		FuncPixelLightPointDiffuse,
		FuncPixelLightPointDiffuse,
		FuncPixelLightDirectionalDiffuse,
		program.FuncAssign,
		program.FuncAssign,
	}, functions(set.Fragment.EntryPoint()))

	invs := set.Fragment.EntryPoint().Invocations()
	for _, inv := range invs {
		assert.Equal(t, GroupPerPixelLighting, inv.GroupOrder)
	}
	assert.Equal(t, "FFP_Assign(in derived_scene_colour, out lPerPixelDiffuse)", invs[0].String())
	assert.Equal(t, "SGX_Light_Point_Diffuse(in iNormal_ViewSpace, in iPosition_ViewSpace, "+
		"in light_position_view_space1.xyz, in light_attenuation1, in derived_light_diffuse1.xyz, "+
		"in lPerPixelDiffuse.xyz, out lPerPixelDiffuse.xyz)", invs[2].String())
	assert.Equal(t, "FFP_Assign(in lPerPixelDiffuse, out lColor_Diffuse)", invs[4].String())
	assert.Equal(t, "FFP_Assign(in lColor_Diffuse, out oColor_Diffuse)", invs[5].String())

	vinvs := set.Vertex.EntryPoint().Invocations()
	assert.Equal(t, "SGX_TransformNormal(in inverse_transpose_worldview_matrix, in iNormal, out oNormal_ViewSpace)",
		vinvs[0].String())
	assert.Equal(t, "SGX_TransformPosition(in worldview_matrix, in iPosition, out oPosition_ViewSpace)",
		vinvs[1].String())
}

func TestPerPixelDirectionalOnly(t *testing.T) {
	l := NewPerPixel()
	set := compile(t, l, light.Counts{0, 2, 0}, litPass())

	assert.Equal(t, []string{FuncTransformNormal}, functions(set.Vertex.EntryPoint()))
	assert.Nil(t, set.Vertex.EntryPoint().OutputParameter(program.ContentPositionViewSpace))
	assert.Nil(t, set.Vertex.EntryPoint().InputParameter(program.ContentPositionObjectSpace))
}

func TestPerPixelSpecular(t *testing.T) {
	pass := specularPass()
	pass.VertexColourTracking = material.TrackEmissive
	l := NewPerPixel()
	set := compile(t, l, light.Counts{0, 1, 0}, pass)

	assert.Equal(t, []string{FuncTransformNormal, FuncTransformPosition}, functions(set.Vertex.EntryPoint()))

	invs := set.Fragment.EntryPoint().Invocations()
	require.Len(t, invs, 7)
	assert.Equal(t, "FFP_Assign(in derived_ambient_light_colour.xyz, out lPerPixelDiffuse.xyz)", invs[0].String())
	assert.Equal(t, "FFP_Add(in lColor_Diffuse, in lPerPixelDiffuse, out lPerPixelDiffuse)", invs[1].String())
	assert.Equal(t, "FFP_Assign(in lColor_Specular, out lPerPixelSpecular)", invs[2].String())
	assert.Equal(t, FuncPixelLightDirectionalDiffuseSpecular, invs[3].Function)
	assert.Equal(t, "in iPosition_ViewSpace", invs[3].Operands[1].String())
	assert.Equal(t, "FFP_Assign(in lPerPixelDiffuse, out lColor_Diffuse)", invs[4].String())
	assert.Equal(t, "FFP_Assign(in lColor_Diffuse, out oColor_Diffuse)", invs[5].String())
	assert.Equal(t, "FFP_Assign(in lPerPixelSpecular, out lColor_Specular)", invs[6].String())
}

func TestPerPixelPrefersIncomingColour(t *testing.T) {
	l := NewPerPixel()
	ok, err := l.PreAddToRenderState(light.Counts{1, 0, 0}, litPass())
	require.NoError(t, err)
	require.True(t, ok)

	set := program.NewSet(program.DefaultLimits())
	in := set.Fragment.EntryPoint().ResolveInputParameter(program.ContentColourDiffuse)
	require.NoError(t, l.CreateCPUSubPrograms(set))

	invs := set.Fragment.EntryPoint().Invocations()
	last := invs[len(invs)-1]
	assert.Same(t, in, last.Operands[0].Param)
	assert.Empty(t, set.Fragment.EntryPoint().Locals()[1:], "only the diffuse accumulator is local")
}

func TestTemplateTables(t *testing.T) {
	for _, table := range []illuminationTable{ffpIllumination, perPixelIllumination} {
		assert.Len(t, table, 6)
		for _, typ := range light.Types {
			for _, specular := range []bool{false, true} {
				tmpl := table.lookup(typ, specular)
				assert.NotEmpty(t, tmpl.function)
				last := tmpl.operands[len(tmpl.operands)-1]
				assert.Equal(t, program.SemanticOut, last.semantic)
			}
		}
	}
	assert.Panics(t, func() { ffpIllumination.lookup(light.Type(7), false) })
}
