// Package program provides an in-memory model of CPU-side shader programs:
// a parameter table per program, entry-point functions with typed inputs,
// outputs and locals, and ordered function invocations grouped by execution
// order. A shading-language writer turns a Set into GLSL or HLSL text.
package program

import "fmt"

// Kind identifies the pipeline stage a program runs in.
type Kind int

const (
	Vertex Kind = iota
	Fragment
)

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ConstantType is the GPU data type of a parameter.
type ConstantType int

const (
	Float1 ConstantType = iota
	Float2
	Float3
	Float4
	Matrix3x3
	Matrix4x4
)

var constantTypeNames = [...]string{
	Float1:    "float",
	Float2:    "float2",
	Float3:    "float3",
	Float4:    "float4",
	Matrix3x3: "float3x3",
	Matrix4x4: "float4x4",
}

func (c ConstantType) String() string {
	if c < 0 || int(c) >= len(constantTypeNames) {
		return fmt.Sprintf("ConstantType(%d)", int(c))
	}
	return constantTypeNames[c]
}

// Components returns the number of float components of the type.
func (c ConstantType) Components() int {
	switch c {
	case Float1:
		return 1
	case Float2:
		return 2
	case Float3:
		return 3
	case Float4:
		return 4
	case Matrix3x3:
		return 9
	case Matrix4x4:
		return 16
	}
	return 0
}

// Variability is a bitmask describing how often a named uniform changes.
type Variability uint16

const (
	VariabilityGlobal Variability = 1 << 0
	VariabilityLights Variability = 1 << 2
)

// AutoConstant is an engine-tracked value that the host keeps up to date
// without per-frame help from the resolving sub-render state.
type AutoConstant int

const (
	AutoNone AutoConstant = iota
	AutoWorldViewMatrix
	AutoInverseTransposeWorldViewMatrix
	AutoAmbientLightColour
	AutoDerivedAmbientLightColour
	AutoDerivedSceneColour
	AutoSurfaceAmbientColour
	AutoSurfaceDiffuseColour
	AutoSurfaceSpecularColour
	AutoSurfaceEmissiveColour
	AutoSurfaceShininess
)

type autoConstantDef struct {
	name string
	typ  ConstantType
}

var autoConstants = map[AutoConstant]autoConstantDef{
	AutoWorldViewMatrix:                 {"worldview_matrix", Matrix4x4},
	AutoInverseTransposeWorldViewMatrix: {"inverse_transpose_worldview_matrix", Matrix3x3},
	AutoAmbientLightColour:              {"ambient_light_colour", Float4},
	AutoDerivedAmbientLightColour:       {"derived_ambient_light_colour", Float4},
	AutoDerivedSceneColour:              {"derived_scene_colour", Float4},
	AutoSurfaceAmbientColour:            {"surface_ambient_colour", Float4},
	AutoSurfaceDiffuseColour:            {"surface_diffuse_colour", Float4},
	AutoSurfaceSpecularColour:           {"surface_specular_colour", Float4},
	AutoSurfaceEmissiveColour:           {"surface_emissive_colour", Float4},
	AutoSurfaceShininess:                {"surface_shininess", Float1},
}

func (a AutoConstant) String() string {
	if def, ok := autoConstants[a]; ok {
		return def.name
	}
	return fmt.Sprintf("AutoConstant(%d)", int(a))
}

// Content is the semantic meaning of a function input, output or local.
type Content int

const (
	ContentUnknown Content = iota
	ContentNormalObjectSpace
	ContentNormalViewSpace
	ContentPositionObjectSpace
	ContentPositionViewSpace
	ContentColourDiffuse
	ContentColourSpecular
)

type contentDef struct {
	name string
	typ  ConstantType
}

var contents = map[Content]contentDef{
	ContentNormalObjectSpace:   {"Normal", Float3},
	ContentNormalViewSpace:     {"Normal_ViewSpace", Float3},
	ContentPositionObjectSpace: {"Position", Float4},
	ContentPositionViewSpace:   {"Position_ViewSpace", Float3},
	ContentColourDiffuse:       {"Color_Diffuse", Float4},
	ContentColourSpecular:      {"Color_Specular", Float4},
}

func (c Content) String() string {
	if def, ok := contents[c]; ok {
		return def.name
	}
	return fmt.Sprintf("Content(%d)", int(c))
}

// Execution groups. Invocations run in ascending group order; within a group,
// in the order they were added.
const (
	GroupVSLighting    = 300
	GroupPSColourBegin = 100
)
