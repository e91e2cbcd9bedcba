package light

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultRange replaces non-positive attenuation ranges of loaded lights.
const DefaultRange = 100000

// Sun returns a white directional light shining from the given sky position.
// Longitude rotates around the Y axis (0-360 degrees), latitude is the
// elevation above the horizon (0-90 degrees).
func Sun(longitude, latitude float32) Light {
	lon := mgl32.DegToRad(longitude)
	lat := mgl32.DegToRad(latitude)

	towardsSun := mgl32.Vec3{
		math32.Cos(lat) * math32.Sin(lon),
		math32.Sin(lat),
		math32.Cos(lat) * math32.Cos(lon),
	}

	l := New(Directional)
	l.Direction = towardsSun.Mul(-1)
	return l
}

// Normalize fixes up a light read from a file: the direction is made unit
// length (zero becomes +Z) and a missing range gets DefaultRange.
func (l *Light) Normalize() {
	if l.Direction.LenSqr() == 0 {
		l.Direction = mgl32.Vec3{0, 0, 1}
	} else {
		l.Direction = l.Direction.Normalize()
	}
	if l.Type != Directional && l.AttenuationRange <= 0 {
		l.AttenuationRange = DefaultRange
	}
}

// Count returns how many lights of each type are in lights.
func Count(lights []Light) Counts {
	var c Counts
	for _, l := range lights {
		if l.Type >= Point && l.Type <= Spot {
			c[l.Type]++
		}
	}
	return c
}

// SortByDistance orders lights nearest first as seen from eye. Directional
// lights count as distance zero. Equal distances keep their order.
func SortByDistance(lights []Light, eye mgl32.Vec3) {
	slices.SortStableFunc(lights, func(a, b Light) int {
		da, db := distanceSqr(&a, eye), distanceSqr(&b, eye)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
}

func distanceSqr(l *Light, eye mgl32.Vec3) float32 {
	if l.Type == Directional {
		return 0
	}
	return l.Position.Sub(eye).LenSqr()
}
