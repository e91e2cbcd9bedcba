// Package light provides the scene light model consumed by shader generation.
package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies the kind of light source.
// The numeric values double as indices into Counts.
type Type int

const (
	// Point emits in all directions from a position and attenuates with distance.
	Point Type = iota
	// Directional has no position, only a direction (sun, moon).
	Directional
	// Spot emits in a cone from a position along a direction.
	Spot
)

// NumTypes is the number of light types.
const NumTypes = 3

// Types lists all light types in slot order.
var Types = [NumTypes]Type{Point, Directional, Spot}

func (t Type) String() string {
	switch t {
	case Point:
		return "point"
	case Directional:
		return "directional"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < Point || t > Spot {
		return nil, fmt.Errorf("invalid light type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "point":
		*t = Point
	case "directional":
		*t = Directional
	case "spot", "spotlight":
		*t = Spot
	default:
		return fmt.Errorf("unknown light type %q", text)
	}
	return nil
}

// Counts holds a number of lights per type, indexed by Type.
type Counts [NumTypes]int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c[Point] + c[Directional] + c[Spot]
}

// Light is a light source as seen by the renderer for one frame.
// Angles are in radians.
type Light struct {
	Type      Type       `yaml:"type" toml:"type"`
	Position  mgl32.Vec3 `yaml:"position" toml:"position"`
	Direction mgl32.Vec3 `yaml:"direction" toml:"direction"`
	Diffuse   mgl32.Vec4 `yaml:"diffuse" toml:"diffuse"`
	Specular  mgl32.Vec4 `yaml:"specular" toml:"specular"`

	AttenuationRange     float32 `yaml:"attenuation_range" toml:"attenuation_range"`
	AttenuationConstant  float32 `yaml:"attenuation_constant" toml:"attenuation_constant"`
	AttenuationLinear    float32 `yaml:"attenuation_linear" toml:"attenuation_linear"`
	AttenuationQuadratic float32 `yaml:"attenuation_quadratic" toml:"attenuation_quadratic"`

	SpotInner   float32 `yaml:"spot_inner" toml:"spot_inner"`
	SpotOuter   float32 `yaml:"spot_outer" toml:"spot_outer"`
	SpotFalloff float32 `yaml:"spot_falloff" toml:"spot_falloff"`

	PowerScale float32 `yaml:"power_scale" toml:"power_scale"`
}

// Default spot cone, in radians (30 and 40 degrees).
const (
	DefaultSpotInner = 0.5235988
	DefaultSpotOuter = 0.6981317
)

// New returns a white light of the given type with default attenuation and cone.
func New(t Type) Light {
	return Light{
		Type:                t,
		Direction:           mgl32.Vec3{0, 0, 1},
		Diffuse:             mgl32.Vec4{1, 1, 1, 1},
		AttenuationRange:    100000,
		AttenuationConstant: 1,
		SpotInner:           DefaultSpotInner,
		SpotOuter:           DefaultSpotOuter,
		SpotFalloff:         1,
		PowerScale:          1,
	}
}

// Blank returns the zero-intensity light substituted for slots that have no
// matching active light. Its position and direction are zero, so it has no
// geometry whatever type of slot it fills. Each call returns a fresh copy.
func Blank() Light {
	l := New(Point)
	l.Direction = mgl32.Vec3{}
	l.Diffuse = mgl32.Vec4{0, 0, 0, 1}
	l.Specular = mgl32.Vec4{0, 0, 0, 1}
	l.AttenuationRange = 0
	l.AttenuationConstant = 1
	l.AttenuationLinear = 0
	l.AttenuationQuadratic = 0
	return l
}

// As4DVector returns the light as a homogeneous vector: the reversed direction
// with w=0 for directional lights, the position with w=1 otherwise.
func (l *Light) As4DVector() mgl32.Vec4 {
	if l.Type == Directional {
		return l.Direction.Mul(-1).Vec4(0)
	}
	return l.Position.Vec4(1)
}

// Attenuation returns (range, constant, linear, quadratic).
func (l *Light) Attenuation() mgl32.Vec4 {
	return mgl32.Vec4{l.AttenuationRange, l.AttenuationConstant, l.AttenuationLinear, l.AttenuationQuadratic}
}
