package mat

import "math"

// AABB is an axis-aligned bounding box in world (float) space.
// It is empty (contains no points) when Lo[i] > Hi[i] for some axis;
// NewEmptyAABB constructs that sentinel.
type AABB struct {
	Lo, Hi Vec3
}

func NewEmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Lo: Vec3{inf, inf, inf},
		Hi: Vec3{-inf, -inf, -inf},
	}
}

// Union grows the box to also cover p.
func (b AABB) Union(p Vec3) AABB {
	return AABB{Lo: b.Lo.Min(p), Hi: b.Hi.Max(p)}
}

// Merge grows the box to also cover another box.
func (b AABB) Merge(o AABB) AABB {
	return AABB{Lo: b.Lo.Min(o.Lo), Hi: b.Hi.Max(o.Hi)}
}

// Grow expands the box on every side by r (used for splat radius footprints).
func (b AABB) Grow(r float32) AABB {
	d := Vec3{r, r, r}
	return AABB{Lo: b.Lo.Sub(d), Hi: b.Hi.Add(d)}
}

// PointBoxDist2 returns the squared L-infinity distance from p to the box,
// zero if p is inside. Matches §4.E pointBoxDist2.
func PointBoxDist2(p, lo, hi Vec3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		var axis float32
		if p[i] < lo[i] {
			axis = lo[i] - p[i]
		} else if p[i] > hi[i] {
			axis = p[i] - hi[i]
		}
		if axis > d {
			d = axis
		}
	}
	return d * d
}

// Box3i is an axis-aligned box in integer voxel space, half-open: it
// covers [Lo, Hi).
type Box3i struct {
	Lo, Hi Vec3i
}

// Intersects reports whether two half-open integer boxes overlap.
func (b Box3i) Intersects(o Box3i) bool {
	for i := 0; i < 3; i++ {
		if b.Lo[i] >= o.Hi[i] || o.Lo[i] >= b.Hi[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o is entirely within b.
func (b Box3i) Contains(o Box3i) bool {
	return b.Lo.Le(o.Lo) && o.Hi.Le(b.Hi)
}

// Dims returns the per-axis extents of the box.
func (b Box3i) Dims() Vec3i {
	return b.Hi.Sub(b.Lo)
}
