// Package splat holds the splat data model and the lazy streams that
// walk it in ID order. The streams in this package are backed by
// in-memory slices.
package splat

import (
	"math"

	"github.com/seqsense/splatmesh/mat"
)

// Splat is one oriented disk sample: a centre, radius, normal and
// quality. Only finite splats (all seven scalar values finite, radius
// positive) participate in meshing.
type Splat struct {
	Position mat.Vec3
	Radius   float32
	Normal   mat.Vec3
	Quality  float32
}

// Finite reports whether the seven position, normal and radius values
// are finite and the radius is strictly positive. Quality is not
// checked.
func (s Splat) Finite() bool {
	return s.Position.Finite() && s.Normal.Finite() &&
		isFinite(s.Radius) && s.Radius > 0
}

// Bounds returns the splat's footprint: its centre grown by its radius
// on every axis.
func (s Splat) Bounds() mat.AABB {
	return mat.AABB{Lo: s.Position, Hi: s.Position}.Grow(s.Radius)
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
