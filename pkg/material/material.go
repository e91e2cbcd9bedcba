// Package material provides the read-only material pass model queried by
// shader generation.
package material

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rtshader/pkg/light"
)

// TrackVertexColour is a bitmask of surface colour channels replaced by the
// mesh's own vertex colour.
type TrackVertexColour uint8

const (
	TrackNone     TrackVertexColour = 0
	TrackAmbient  TrackVertexColour = 1 << 0
	TrackDiffuse  TrackVertexColour = 1 << 1
	TrackSpecular TrackVertexColour = 1 << 2
	TrackEmissive TrackVertexColour = 1 << 3
)

var trackNames = []struct {
	bit  TrackVertexColour
	name string
}{
	{TrackAmbient, "ambient"},
	{TrackDiffuse, "diffuse"},
	{TrackSpecular, "specular"},
	{TrackEmissive, "emissive"},
}

// Has reports whether every channel in c is tracked.
func (t TrackVertexColour) Has(c TrackVertexColour) bool {
	return t&c == c
}

func (t TrackVertexColour) String() string {
	if t == TrackNone {
		return "none"
	}
	var parts []string
	for _, tn := range trackNames {
		if t&tn.bit != 0 {
			parts = append(parts, tn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (t TrackVertexColour) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "none" or channel names joined by '|', e.g. "ambient|diffuse".
func (t *TrackVertexColour) UnmarshalText(text []byte) error {
	var v TrackVertexColour
	s := strings.TrimSpace(string(text))
	if s == "" || s == "none" {
		*t = TrackNone
		return nil
	}
NEXT:
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		for _, tn := range trackNames {
			if part == tn.name {
				v |= tn.bit
				continue NEXT
			}
		}
		return fmt.Errorf("unknown vertex colour channel %q", part)
	}
	*t = v
	return nil
}

// Black is the opaque black colour.
var Black = mgl32.Vec4{0, 0, 0, 1}

// Pass holds the fixed-function lighting settings of one material pass.
type Pass struct {
	Name            string `yaml:"name" toml:"name"`
	LightingEnabled bool   `yaml:"lighting" toml:"lighting"`

	Ambient   mgl32.Vec4 `yaml:"ambient" toml:"ambient"`
	Diffuse   mgl32.Vec4 `yaml:"diffuse" toml:"diffuse"`
	Specular  mgl32.Vec4 `yaml:"specular" toml:"specular"`
	Emissive  mgl32.Vec4 `yaml:"emissive" toml:"emissive"`
	Shininess float32    `yaml:"shininess" toml:"shininess"`

	VertexColourTracking TrackVertexColour `yaml:"vertex_colour_tracking" toml:"vertex_colour_tracking"`

	IteratePerLight        bool       `yaml:"iterate_per_light" toml:"iterate_per_light"`
	RunOnlyForOneLightType bool       `yaml:"run_only_for_one_light_type" toml:"run_only_for_one_light_type"`
	OnlyLightType          light.Type `yaml:"only_light_type" toml:"only_light_type"`
	LightCountPerIteration int        `yaml:"light_count_per_iteration" toml:"light_count_per_iteration"`

	// LightingStage is the lighting_stage directive value ("ffp" or "per_pixel").
	// Empty selects the configured default.
	LightingStage string `yaml:"lighting_stage,omitempty" toml:"lighting_stage,omitempty"`
}

// NewPass returns a lit pass with white ambient/diffuse, no specular and no emission.
func NewPass(name string) Pass {
	return Pass{
		Name:                   name,
		LightingEnabled:        true,
		Ambient:                mgl32.Vec4{1, 1, 1, 1},
		Diffuse:                mgl32.Vec4{1, 1, 1, 1},
		Specular:               Black,
		Emissive:               Black,
		OnlyLightType:          light.Point,
		LightCountPerIteration: 1,
	}
}

// SpecularEnabled reports whether the pass produces a specular highlight:
// positive shininess and a non-black specular colour.
func (p *Pass) SpecularEnabled() bool {
	return p.Shininess > 0 && p.Specular != Black
}

// Material is a named list of passes.
type Material struct {
	Name   string `yaml:"name" toml:"name"`
	Passes []Pass `yaml:"passes" toml:"passes"`

	// Lights is an optional preview light set used by tooling to fill in
	// per-light parameters of compiled programs.
	Lights []light.Light `yaml:"lights,omitempty" toml:"lights,omitempty"`
}

func (m *Material) normalize() {
	for i := range m.Passes {
		if m.Passes[i].LightCountPerIteration <= 0 {
			m.Passes[i].LightCountPerIteration = 1
		}
	}
	for i := range m.Lights {
		m.Lights[i].Normalize()
	}
}
