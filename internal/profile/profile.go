// Package profile defines the 2D cross-section curve that is revolved into
// the artifact mesh, and the defensive parsing of externally supplied curves.
package profile

import (
	"encoding/json"

	"github.com/openrelic/artifactview/internal/logger"
	"github.com/openrelic/artifactview/pkg/math"
	"go.uber.org/zap"
)

// Point is one (radius, height) sample of the cross-section, in
// normalized [0,1]x[0,1] space.
type Point struct {
	Radius float32
	Height float32
}

// Profile is an ordered cross-section curve. It always contains at least
// one point; constructors substitute the default curve otherwise.
type Profile []Point

// RadiusScale is the fixed factor applied to normalized radii before
// revolving, so a full-width profile overhangs the unit cylinder slightly.
const RadiusScale = 1.2

// Default returns the built-in 6-point vase curve used whenever no valid
// profile is supplied.
func Default() Profile {
	return Profile{
		{Radius: 0.05, Height: 0.0},
		{Radius: 0.45, Height: 0.12},
		{Radius: 0.5, Height: 0.45},
		{Radius: 0.35, Height: 0.75},
		{Radius: 0.22, Height: 0.9},
		{Radius: 0.3, Height: 1.0},
	}
}

// Parse decodes a profile from its text encoding, a JSON array of
// [radius, height] pairs. Any decode error or empty result falls back to
// the default curve; Parse never fails.
func Parse(text string) Profile {
	var pairs [][2]float64
	if err := json.Unmarshal([]byte(text), &pairs); err != nil {
		logger.Warn("unparsable profile text, using default curve", zap.Error(err))
		return Default()
	}
	return FromPairs(pairs)
}

// FromPairs builds a profile from already-decoded pairs. An empty slice
// falls back to the default curve.
func FromPairs(pairs [][2]float64) Profile {
	if len(pairs) == 0 {
		return Default()
	}
	p := make(Profile, len(pairs))
	for i, pair := range pairs {
		p[i] = Point{Radius: float32(pair[0]), Height: float32(pair[1])}
	}
	return p
}

// LathePoints returns the scaled polyline handed to the lathe generator:
// radius scaled by RadiusScale, height remapped from [0,1] to [-1,1] so
// the artifact is centered on the axis origin.
func (p Profile) LathePoints() []math.Vec2 {
	pts := make([]math.Vec2, len(p))
	for i, pt := range p {
		pts[i] = math.Vec2{
			X: pt.Radius * RadiusScale,
			Y: pt.Height*2 - 1,
		}
	}
	return pts
}
