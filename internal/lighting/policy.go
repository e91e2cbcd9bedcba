package lighting

import (
	"fmt"

	"github.com/Faultbox/rtshader/pkg/light"
	"github.com/Faultbox/rtshader/pkg/material"
)

// Policy is the lighting configuration derived from a pass.
type Policy struct {
	Counts            light.Counts
	TrackVertexColour material.TrackVertexColour
	SpecularEnable    bool
}

// ResolvePolicy derives the slot counts and flags for pass from the counts
// accumulated by the render state. It reports false when the pass is unlit.
//
// A pass that iterates per light must name the single light type it runs for;
// that type then gets LightCountPerIteration slots and the others none.
func ResolvePolicy(pass *material.Pass, counts light.Counts) (Policy, bool, error) {
	if pass == nil || !pass.LightingEnabled {
		return Policy{}, false, nil
	}

	p := Policy{
		Counts:            counts,
		TrackVertexColour: pass.VertexColourTracking,
		SpecularEnable:    pass.SpecularEnabled(),
	}

	if pass.IteratePerLight {
		if !pass.RunOnlyForOneLightType {
			return Policy{}, false, fmt.Errorf("pass %q: iterating per light requires an explicit light type: %w",
				pass.Name, ErrUnsupportedConfiguration)
		}
		t := pass.OnlyLightType
		if t < light.Point || t > light.Spot {
			return Policy{}, false, fmt.Errorf("pass %q: invalid light type %d: %w",
				pass.Name, int(t), ErrUnsupportedConfiguration)
		}
		p.Counts = light.Counts{}
		p.Counts[t] = pass.LightCountPerIteration
	}

	return p, true, nil
}
