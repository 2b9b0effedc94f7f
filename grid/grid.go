// Package grid implements the world-aligned integer voxel lattice (§3
// Grid/Cell) and the Morton-code helpers the splat-tree and bucketer
// build on (§4.E).
package grid

import (
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/mat"
)

// Grid is a world-aligned integer voxel lattice: Reference is the
// world-space origin of voxel (0,0,0), Spacing is the world-space size
// of one voxel, and Lo/Hi (in voxel units) are the per-axis extents
// [Lo,Hi). It is computed once from the input bounding box and is
// immutable afterwards.
type Grid struct {
	Reference mat.Vec3
	Spacing   float32
	Lo, Hi    mat.Vec3i
}

// Dims returns the per-axis extents in voxels.
func (g Grid) Dims() mat.Vec3i {
	return g.Hi.Sub(g.Lo)
}

// VoxelToWorld maps a voxel-space coordinate to world space (the
// lower corner of that voxel).
func (g Grid) VoxelToWorld(v mat.Vec3i) mat.Vec3 {
	return mat.Vec3{
		g.Reference[0] + float32(v[0])*g.Spacing,
		g.Reference[1] + float32(v[1])*g.Spacing,
		g.Reference[2] + float32(v[2])*g.Spacing,
	}
}

// WorldToVoxel maps a world-space point down to its containing voxel.
func (g Grid) WorldToVoxel(p mat.Vec3) mat.Vec3i {
	inv := 1 / g.Spacing
	return mat.Vec3i{
		int64(floor((p[0] - g.Reference[0]) * inv)),
		int64(floor((p[1] - g.Reference[1]) * inv)),
		int64(floor((p[2] - g.Reference[2]) * inv)),
	}
}

func floor(f float32) float32 {
	i := float32(int64(f))
	if f < 0 && i != f {
		return i - 1
	}
	return i
}

// AlignLoToBucketSize validates the bucket-alignment invariant: lo %
// bucketSize == 0 on every axis, once a bucket size has been chosen.
// It returns an Invalid error if bucketSize is not a positive power of
// two, and otherwise snaps g.Lo down to the nearest multiple, returning
// the aligned grid.
func (g Grid) AlignLoToBucketSize(bucketSize int64) (Grid, error) {
	if bucketSize <= 0 || bucketSize&(bucketSize-1) != 0 {
		return Grid{}, errs.Newf(errs.Invalid, "bucket size %d is not a positive power of two", bucketSize)
	}
	out := g
	for i := 0; i < 3; i++ {
		out.Lo[i] = floorDiv(g.Lo[i], bucketSize) * bucketSize
	}
	return out, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}
