package lighting

import (
	"fmt"

	"github.com/Faultbox/rtshader/internal/program"
	"github.com/Faultbox/rtshader/pkg/light"
)

// Shader library sources.
const (
	LibCommon           = "FFPLib_Common"
	LibLighting         = "FFPLib_Lighting"
	LibPerPixelLighting = "SGXLib_PerPixelLighting"
)

// Shader library functions.
const (
	FuncModulate          = "FFP_Modulate"
	FuncAdd               = "FFP_Add"
	FuncTransformNormal   = "SGX_TransformNormal"
	FuncTransformPosition = "SGX_TransformPosition"

	FuncLightDirectionalDiffuse         = "FFP_Light_Directional_Diffuse"
	FuncLightDirectionalDiffuseSpecular = "FFP_Light_Directional_DiffuseSpecular"
	FuncLightPointDiffuse               = "FFP_Light_Point_Diffuse"
	FuncLightPointDiffuseSpecular       = "FFP_Light_Point_DiffuseSpecular"
	FuncLightSpotDiffuse                = "FFP_Light_Spot_Diffuse"
	FuncLightSpotDiffuseSpecular        = "FFP_Light_Spot_DiffuseSpecular"

	FuncPixelLightDirectionalDiffuse         = "SGX_Light_Directional_Diffuse"
	FuncPixelLightDirectionalDiffuseSpecular = "SGX_Light_Directional_DiffuseSpecular"
	FuncPixelLightPointDiffuse               = "SGX_Light_Point_Diffuse"
	FuncPixelLightPointDiffuseSpecular       = "SGX_Light_Point_DiffuseSpecular"
	FuncPixelLightSpotDiffuse                = "SGX_Light_Spot_Diffuse"
	FuncPixelLightSpotDiffuseSpecular        = "SGX_Light_Spot_DiffuseSpecular"
)

// operandRef names a parameter role; each model binds roles to its own handles.
type operandRef int

const (
	refWorldView operandRef = iota
	refWorldViewIT
	refPosition // object-space vertex position
	refNormal
	refViewPosition // interpolated view-space position
	refShininess
	refDiffuseAcc
	refSpecularAcc

	refLightPosition
	refLightDirection
	refLightAttenuation
	refLightSpot
	refLightDiffuse
	refLightSpecular
)

type operandTemplate struct {
	ref      operandRef
	semantic program.Semantic
	mask     program.Mask
}

func in(ref operandRef) operandTemplate {
	return operandTemplate{ref: ref, semantic: program.SemanticIn}
}

func inXYZ(ref operandRef) operandTemplate {
	return operandTemplate{ref: ref, semantic: program.SemanticIn, mask: program.MaskXYZ}
}

func outXYZ(ref operandRef) operandTemplate {
	return operandTemplate{ref: ref, semantic: program.SemanticOut, mask: program.MaskXYZ}
}

type illuminationKey struct {
	typ      light.Type
	specular bool
}

type illuminationTemplate struct {
	function string
	operands []operandTemplate
}

type illuminationTable map[illuminationKey]illuminationTemplate

var ffpIllumination = illuminationTable{
	{light.Directional, false}: {FuncLightDirectionalDiffuse, []operandTemplate{
		in(refWorldViewIT), in(refNormal),
		inXYZ(refLightDirection), inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Directional, true}: {FuncLightDirectionalDiffuseSpecular, []operandTemplate{
		in(refWorldView), in(refPosition), in(refWorldViewIT), in(refNormal),
		inXYZ(refLightDirection), inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
	{light.Point, false}: {FuncLightPointDiffuse, []operandTemplate{
		in(refWorldView), in(refPosition), in(refWorldViewIT), in(refNormal),
		inXYZ(refLightPosition), in(refLightAttenuation), inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Point, true}: {FuncLightPointDiffuseSpecular, []operandTemplate{
		in(refWorldView), in(refPosition), in(refWorldViewIT), in(refNormal),
		inXYZ(refLightPosition), in(refLightAttenuation),
		inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
	{light.Spot, false}: {FuncLightSpotDiffuse, []operandTemplate{
		in(refWorldView), in(refPosition), in(refWorldViewIT), in(refNormal),
		inXYZ(refLightPosition), inXYZ(refLightDirection), in(refLightAttenuation), in(refLightSpot),
		inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Spot, true}: {FuncLightSpotDiffuseSpecular, []operandTemplate{
		in(refWorldView), in(refPosition), in(refWorldViewIT), in(refNormal),
		inXYZ(refLightPosition), inXYZ(refLightDirection), in(refLightAttenuation), in(refLightSpot),
		inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
}

var perPixelIllumination = illuminationTable{
	{light.Directional, false}: {FuncPixelLightDirectionalDiffuse, []operandTemplate{
		in(refNormal),
		inXYZ(refLightDirection), inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Directional, true}: {FuncPixelLightDirectionalDiffuseSpecular, []operandTemplate{
		in(refNormal), in(refViewPosition),
		inXYZ(refLightDirection), inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
	{light.Point, false}: {FuncPixelLightPointDiffuse, []operandTemplate{
		in(refNormal), in(refViewPosition),
		inXYZ(refLightPosition), in(refLightAttenuation), inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Point, true}: {FuncPixelLightPointDiffuseSpecular, []operandTemplate{
		in(refNormal), in(refViewPosition),
		inXYZ(refLightPosition), in(refLightAttenuation),
		inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
	{light.Spot, false}: {FuncPixelLightSpotDiffuse, []operandTemplate{
		in(refNormal), in(refViewPosition),
		inXYZ(refLightPosition), inXYZ(refLightDirection), in(refLightAttenuation), in(refLightSpot),
		inXYZ(refLightDiffuse),
		inXYZ(refDiffuseAcc), outXYZ(refDiffuseAcc),
	}},
	{light.Spot, true}: {FuncPixelLightSpotDiffuseSpecular, []operandTemplate{
		in(refNormal), in(refViewPosition),
		inXYZ(refLightPosition), inXYZ(refLightDirection), in(refLightAttenuation), in(refLightSpot),
		inXYZ(refLightDiffuse), inXYZ(refLightSpecular), in(refShininess),
		inXYZ(refDiffuseAcc), inXYZ(refSpecularAcc), outXYZ(refDiffuseAcc), outXYZ(refSpecularAcc),
	}},
}

// lookup returns the template for a (type, specular) pair. A missing entry is
// a programming error.
func (t illuminationTable) lookup(typ light.Type, specular bool) illuminationTemplate {
	tmpl, ok := t[illuminationKey{typ, specular}]
	if !ok {
		panic(fmt.Sprintf("lighting: no illumination template for %s light (specular=%t)", typ, specular))
	}
	return tmpl
}

// emit appends the call to stage, binding every operand role through bind.
func (tmpl illuminationTemplate) emit(stage program.Stage, bind func(operandRef) *program.Parameter) *program.Invocation {
	ops := make([]program.Operand, len(tmpl.operands))
	for i, o := range tmpl.operands {
		ops[i] = program.Operand{Param: bind(o.ref), Semantic: o.semantic, Mask: o.mask}
	}
	return stage.CallFunction(tmpl.function, ops...)
}
