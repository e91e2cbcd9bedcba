package lighting

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

func assertVec4(t *testing.T, want, got mgl32.Vec4, msgAndArgs ...interface{}) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, msgAndArgs...)
	}
}

func pointLight(x, y, z float32) light.Light {
	l := light.New(light.Point)
	l.Position = mgl32.Vec3{x, y, z}
	return l
}

func TestUpdateScenario(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			pass := litPass()
			compile(t, l, light.Counts{2, 1, 0}, pass)

			p1 := pointLight(1, 0, 0)
			p1.AttenuationRange = 50
			p1.AttenuationLinear = 0.5
			d1 := light.New(light.Directional)
			d1.Direction = mgl32.Vec3{0, -1, 0}
			p2 := pointLight(0, 5, 0)
			p2.Diffuse = mgl32.Vec4{0.5, 0.5, 0.5, 1}
			p2.PowerScale = 2

			src := program.NewAutoParams(mgl32.Translate3D(1, 2, 3))
			l.UpdateGPUProgramsParams(pass, src, []light.Light{p1, d1, p2})

			slots := l.Slots()
			assertVec4(t, mgl32.Vec4{2, 2, 3, 1}, slots[0].Position.Value())
			assertVec4(t, mgl32.Vec4{50, 1, 0.5, 0}, slots[0].Attenuation.Value())
			assertVec4(t, mgl32.Vec4{1, 1, 1, 1}, slots[0].Diffuse.Value())

			assertVec4(t, mgl32.Vec4{1, 7, 3, 1}, slots[1].Position.Value())
			assertVec4(t, mgl32.Vec4{100000, 1, 0, 0}, slots[1].Attenuation.Value())
			assertVec4(t, mgl32.Vec4{1, 1, 1, 2}, slots[1].Diffuse.Value())

			// Directions ignore the view translation.
			assert.Nil(t, slots[2].Position)
			assert.Nil(t, slots[2].Attenuation)
			assertVec4(t, mgl32.Vec4{0, 1, 0, 0}, slots[2].Direction.Value())
			assertVec4(t, mgl32.Vec4{1, 1, 1, 1}, slots[2].Diffuse.Value())

			for i, s := range slots {
				geometry := []*program.Parameter{s.Position, s.Direction, s.Attenuation}
				written := 0
				for _, p := range geometry {
					if p != nil {
						assert.Equal(t, 1, p.Updates(), "slot %d %s", i, p.Name())
						written++
					}
				}
				if s.Type == light.Directional {
					assert.Equal(t, 1, written, "slot %d", i)
				} else {
					assert.Equal(t, 2, written, "slot %d", i)
				}
				assert.Equal(t, 1, s.Diffuse.Updates())
				assert.Nil(t, s.Specular)
			}
		})
	}
}

func TestUpdateUsesBlankLightForUnmatchedSlots(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			pass := specularPass()
			compile(t, l, light.Counts{2, 1, 1}, pass)

			lit := pointLight(0, 0, 0)
			lit.Specular = mgl32.Vec4{1, 1, 1, 1}
			l.UpdateGPUProgramsParams(pass, program.NewAutoParams(mgl32.Ident4()), []light.Light{lit})

			black := mgl32.Vec4{0, 0, 0, 1}
			slots := l.Slots()
			assertVec4(t, mgl32.Vec4{0.5, 0.5, 0.5, 1}, slots[0].Specular.Value())
			for _, s := range slots[1:] {
				assertVec4(t, black, s.Diffuse.Value(), "diffuse of %s slot", s.Type)
				assertVec4(t, black, s.Specular.Value(), "specular of %s slot", s.Type)
				if s.Attenuation != nil {
					assertVec4(t, mgl32.Vec4{0, 1, 0, 0}, s.Attenuation.Value())
				}
			}
		})
	}
}

func TestUpdateBlankLightHasNoDirection(t *testing.T) {
	for _, l := range allModels() {
		t.Run(l.Type(), func(t *testing.T) {
			pass := litPass()
			compile(t, l, light.Counts{1, 1, 1}, pass)

			src := program.NewAutoParams(mgl32.Translate3D(1, 2, 3))
			l.UpdateGPUProgramsParams(pass, src, []light.Light{pointLight(0, 0, 0)})

			slots := l.Slots()
			require.Equal(t, light.Directional, slots[1].Type)
			assertVec4(t, mgl32.Vec4{}, slots[1].Direction.Value())
			assertVec4(t, mgl32.Vec4{0, 0, 0, 1}, slots[1].Diffuse.Value())

			require.Equal(t, light.Spot, slots[2].Type)
			assertVec4(t, mgl32.Vec4{}, slots[2].Direction.Value())
			assertVec4(t, mgl32.Vec4{1, 2, 3, 1}, slots[2].Position.Value())
		})
	}
}

func TestUpdateNeverReusesALight(t *testing.T) {
	l := NewFFP()
	pass := litPass()
	compile(t, l, light.Counts{2, 1, 0}, pass)

	lights := []light.Light{
		pointLight(1, 0, 0),
		pointLight(2, 0, 0),
		pointLight(3, 0, 0),
	}
	l.UpdateGPUProgramsParams(pass, nil, lights)
	slots := l.Slots()
	assertVec4(t, mgl32.Vec4{1, 0, 0, 1}, slots[0].Position.Value())
	assertVec4(t, mgl32.Vec4{2, 0, 0, 1}, slots[1].Position.Value())

	// A single point light feeds only the first point slot.
	l.UpdateGPUProgramsParams(pass, nil, lights[:1])
	assertVec4(t, mgl32.Vec4{1, 0, 0, 1}, slots[0].Position.Value())
	assertVec4(t, mgl32.Vec4{0, 0, 0, 1}, slots[1].Position.Value())
	assertVec4(t, mgl32.Vec4{0, 0, 0, 1}, slots[1].Diffuse.Value())
}

func TestUpdateCursorRestartsPerType(t *testing.T) {
	l := NewPerPixel()
	pass := litPass()
	compile(t, l, light.Counts{1, 1, 0}, pass)

	d := light.New(light.Directional)
	d.Direction = mgl32.Vec3{1, 0, 0}
	// The directional light precedes the point light; the point slot's
	// search must not hide it from the directional slot.
	l.UpdateGPUProgramsParams(pass, nil, []light.Light{d, pointLight(4, 0, 0)})

	slots := l.Slots()
	assertVec4(t, mgl32.Vec4{4, 0, 0, 1}, slots[0].Position.Value())
	assertVec4(t, mgl32.Vec4{-1, 0, 0, 0}, slots[1].Direction.Value())
}

func TestUpdateSpotLight(t *testing.T) {
	l := NewFFP()
	pass := litPass()
	compile(t, l, light.Counts{0, 0, 1}, pass)

	s := light.New(light.Spot)
	s.Position = mgl32.Vec3{0, 1, 0}
	s.Direction = mgl32.Vec3{0, 0, 2}
	s.SpotInner = math32.Pi / 3
	s.SpotOuter = math32.Pi / 2
	s.SpotFalloff = 2

	l.UpdateGPUProgramsParams(pass, program.NewAutoParams(mgl32.Ident4()), []light.Light{s})

	slot := l.Slots()[0]
	assertVec4(t, mgl32.Vec4{0, 1, 0, 1}, slot.Position.Value())
	assertVec4(t, mgl32.Vec4{0, 0, -1, 0}, slot.Direction.Value())
	assertVec4(t, mgl32.Vec4{math32.Cos(math32.Pi / 6), math32.Cos(math32.Pi / 4), 2, 0}, slot.SpotParams.Value())
}

func TestUpdateColourTracking(t *testing.T) {
	tests := []struct {
		name         string
		track        material.TrackVertexColour
		wantDiffuse  mgl32.Vec4
		wantSpecular mgl32.Vec4
	}{
		{"untracked", material.TrackNone, mgl32.Vec4{0.5, 0.25, 0.5, 1}, mgl32.Vec4{0.5, 0.5, 0.5, 1}},
		{"diffuse", material.TrackDiffuse, mgl32.Vec4{1, 0.5, 1, 1}, mgl32.Vec4{0.5, 0.5, 0.5, 1}},
		{"specular", material.TrackSpecular, mgl32.Vec4{0.5, 0.25, 0.5, 1}, mgl32.Vec4{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := specularPass()
			pass.Diffuse = mgl32.Vec4{0.5, 0.5, 0.5, 1}
			pass.VertexColourTracking = tt.track

			l := NewPerPixel()
			compile(t, l, light.Counts{0, 1, 0}, pass)

			d := light.New(light.Directional)
			d.Diffuse = mgl32.Vec4{1, 0.5, 1, 1}
			d.Specular = mgl32.Vec4{1, 1, 1, 1}
			l.UpdateGPUProgramsParams(pass, nil, []light.Light{d})

			slot := l.Slots()[0]
			assertVec4(t, tt.wantDiffuse, slot.Diffuse.Value())
			assertVec4(t, tt.wantSpecular, slot.Specular.Value())
		})
	}
}

func TestUpdateWithoutSlots(t *testing.T) {
	for _, l := range allModels() {
		assert.NotPanics(t, func() {
			l.UpdateGPUProgramsParams(nil, nil, nil)
		})

		// Slots exist but were never resolved.
		l.SetLightCount(light.Counts{1, 1, 1})
		assert.NotPanics(t, func() {
			l.UpdateGPUProgramsParams(litPass(), nil, []light.Light{pointLight(0, 0, 0)})
		})
	}
}

func TestBlankLightIsPerInstance(t *testing.T) {
	a, b := NewFFP(), NewFFP()
	a.blank.Diffuse = mgl32.Vec4{1, 1, 1, 1}
	assert.Equal(t, light.Blank(), b.blank)
	require.NotEqual(t, a.blank, b.blank)
}
