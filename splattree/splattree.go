// Package splattree implements the per-tile GPU octree over splats of
// §4.E: a fixed eight-level octree whose leaves are addressed by Morton
// code, built once per tile from the splats assigned to it.
package splattree

import (
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat"
)

// Levels is the fixed octree depth (§4.E "eight-level (fixed) octree").
const Levels = 8

// codeBits is the number of bits MakeCode uses per axis's contribution
// (9 low bits, per grid.MakeCode's doc comment); the top-level cell
// spans the remaining range.
const codeBits = 9

// Tree is a per-tile splat-tree: SplatIDs/SplatPositions hold every
// splat of the tile, reordered level by level (all of level 0's splats,
// then all of level 1's, ...), each level internally ordered by Morton
// code. StartOffsets[level] is the prefix sum of splat counts over that
// level's Morton-coded sub-cells, offset by LevelBase[level] so it
// indexes directly into the combined array: a level's cell code names
// the slice [prev, StartOffsets[level][code]), where prev is
// StartOffsets[level][code-1] or, for code 0, LevelBase[level].
type Tree struct {
	Origin         mat.Vec3i // tile-local voxel origin subtracted before code assignment
	LevelBase      [Levels + 1]uint32
	StartOffsets   [Levels + 1][]uint32
	SplatIDs       []splat.ID
	SplatPositions []mat.Vec3
}

// cellLevel returns the octree level a splat's bounding box is assigned
// to: the smallest cell that wholly contains it, found via LevelShift on
// each axis and taking the maximum (the coarsest axis dominates).
func cellLevel(lo, hi mat.Vec3i) int {
	level := 0
	for i := 0; i < 3; i++ {
		shift := grid.LevelShift(uint32(lo[i]), uint32(hi[i]))
		if shift > level {
			level = shift
		}
	}
	if level > Levels {
		level = Levels
	}
	return level
}

// cellCode returns the Morton code of the cell at the given level that
// contains voxel coordinate v (relative to the tree's Origin).
func cellCode(v mat.Vec3i, level int) uint32 {
	shift := uint(level)
	return grid.MakeCode(
		uint32(v[0])>>shift,
		uint32(v[1])>>shift,
		uint32(v[2])>>shift,
	)
}

// Build assigns every splat in g to its octree level and cell code, then
// computes the per-level prefix-sum offsets and a splat ordering grouped
// by (level, code). g maps world space to the tile-local voxel lattice;
// dims is the tile's voxel extent, used both to size the per-level
// offset tables to the tile's actual cell count (§4.E: a tile's cells
// are bounded by its extent, not the full Morton address space) and to
// reject tiles too large for the fixed eight-level octree to address.
func Build(g grid.Grid, origin, dims mat.Vec3i, s splat.SplatStream) (*Tree, error) {
	if err := validateLevels(dims); err != nil {
		return nil, err
	}

	type entry struct {
		id    splat.ID
		pos   mat.Vec3
		level int
		code  uint32
	}
	var entries []entry
	for !s.Empty() {
		sp, err := s.Current()
		if err != nil {
			return nil, err
		}
		id, err := s.CurrentID()
		if err != nil {
			return nil, err
		}
		box := sp.Bounds()
		lo := g.WorldToVoxel(box.Lo).Sub(origin)
		hi := g.WorldToVoxel(box.Hi).Sub(origin)
		level := cellLevel(lo, hi)
		entries = append(entries, entry{id: id, pos: sp.Position, level: level, code: cellCode(lo, level)})
		s.Next()
	}

	t := &Tree{Origin: origin}
	t.SplatIDs = make([]splat.ID, len(entries))
	t.SplatPositions = make([]mat.Vec3, len(entries))

	// StartOffsets is built as a *global* prefix sum: base carries the
	// cumulative splat count of every level already processed, so that
	// StartOffsets[level][code] indexes directly into the combined
	// SplatIDs/SplatPositions array below rather than into a
	// level-local sub-range.
	var base uint32
	for level := 0; level <= Levels; level++ {
		n := numCodesAtLevel(dims, level)
		counts := make([]uint32, n)
		for _, e := range entries {
			if e.level == level {
				counts[e.code]++
			}
		}
		t.LevelBase[level] = base
		offsets := make([]uint32, n)
		running := base
		for i, c := range counts {
			running += c
			offsets[i] = running
		}
		t.StartOffsets[level] = offsets
		base = running
	}

	// Group entries by level, then by code, writing into a single
	// contiguous SplatIDs/SplatPositions array whose slice boundaries are
	// exactly the (now global) StartOffsets computed above.
	pos := 0
	for level := 0; level <= Levels; level++ {
		n := numCodesAtLevel(dims, level)
		buckets := make([][]entry, n)
		for _, e := range entries {
			if e.level == level {
				buckets[e.code] = append(buckets[e.code], e)
			}
		}
		for _, b := range buckets {
			for _, e := range b {
				t.SplatIDs[pos] = e.id
				t.SplatPositions[pos] = e.pos
				pos++
			}
		}
	}
	return t, nil
}

// numCodesAtLevel sizes a level's offset table to the number of Morton
// codes the tile's extent can actually produce at that level, rather
// than the full codeBits-wide address space: a tile C voxels wide has
// at most ceil(C/2^level) cells per axis at that level.
func numCodesAtLevel(dims mat.Vec3i, level int) int {
	cellSide := int64(1) << uint(level)
	var maxCells int64
	for i := 0; i < 3; i++ {
		cells := (dims[i] + cellSide - 1) / cellSide
		if cells > maxCells {
			maxCells = cells
		}
	}
	bits := bitLength(maxCells)
	if max := codeBits - level; bits > max {
		bits = max
	}
	return 1 << uint(3*bits)
}

// bitLength returns the number of bits needed to represent the values
// 0..n-1 (0 if n <= 1).
func bitLength(n int64) int {
	bits := 0
	for v := n - 1; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

// PointBoxDist2 returns the squared L-infinity distance from p to the
// axis-aligned box [lo,hi], zero if p is inside.
func PointBoxDist2(p, lo, hi mat.Vec3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		var axisD float32
		if p[i] < lo[i] {
			axisD = lo[i] - p[i]
		} else if p[i] > hi[i] {
			axisD = p[i] - hi[i]
		}
		if axisD > d {
			d = axisD
		}
	}
	return d * d
}

// Field accumulates a weighted value over splats near a query point,
// used by ProcessCorner to evaluate the (externally supplied) MLS
// kernel contribution of every splat whose support reaches the corner.
type Field struct {
	Weight float32
	Value  float32
}

// Add folds in one splat's contribution, weighted by w.
func (f *Field) Add(w, v float32) {
	f.Weight += w
	f.Value += w * v
}

// ProcessCorner scans every level from Levels down to 0 and, within a
// level, every cell in code order, skipping cells whose bounds lie
// farther than maxDist from p; each splat of a remaining cell that lies
// within maxDist of p is accumulated via contrib (the caller's MLS
// kernel, an external collaborator per §1's scope). It does not descend
// or ascend the tree: every populated cell is tested once.
func (t *Tree) ProcessCorner(g grid.Grid, p mat.Vec3, maxDist float32, contrib func(id splat.ID, pos mat.Vec3, dist2 float32) (weight, value float32)) (Field, error) {
	var field Field
	maxDist2 := maxDist * maxDist
	for level := Levels; level >= 0; level-- {
		offsets := t.StartOffsets[level]
		if len(offsets) == 0 {
			continue
		}
		start := t.LevelBase[level]
		for code := 0; code < len(offsets); code++ {
			end := offsets[code]
			if start == end {
				start = end
				continue
			}
			lo, hi := cellWorldBounds(g, t.Origin, uint32(code), level)
			if PointBoxDist2(p, lo, hi) > maxDist2 {
				start = end
				continue
			}
			for i := start; i < end; i++ {
				d2 := sub(t.SplatPositions[i], p).NormSq()
				if d2 > maxDist2 {
					continue
				}
				w, v := contrib(t.SplatIDs[i], t.SplatPositions[i], d2)
				field.Add(w, v)
			}
			start = end
		}
	}
	return field, nil
}

func sub(a, b mat.Vec3) mat.Vec3 { return a.Sub(b) }

func cellWorldBounds(g grid.Grid, origin mat.Vec3i, code uint32, level int) (lo, hi mat.Vec3) {
	side := codeBits - level
	if side < 0 {
		side = 0
	}
	var x, y, z uint32
	for i := uint(0); i < uint(side); i++ {
		x |= ((code >> (3*i + 0)) & 1) << i
		y |= ((code >> (3*i + 1)) & 1) << i
		z |= ((code >> (3*i + 2)) & 1) << i
	}
	cellSide := int64(1) << uint(level)
	base := mat.Vec3i{int64(x) << uint(level), int64(y) << uint(level), int64(z) << uint(level)}.Add(origin)
	lo = g.VoxelToWorld(base)
	hi = g.VoxelToWorld(base.Add(mat.Vec3i{cellSide, cellSide, cellSide}))
	return lo, hi
}

// validateLevels rejects a tile whose voxel extent exceeds what the
// fixed eight-level, 9-bit-per-axis octree can address; Build calls it
// before assigning any splat to a cell.
func validateLevels(dims mat.Vec3i) error {
	max := int64(1) << uint(codeBits)
	for i := 0; i < 3; i++ {
		if dims[i] > max {
			return errs.Newf(errs.Invalid, "tile dimension %d exceeds splat-tree capacity %d", dims[i], max)
		}
	}
	return nil
}
