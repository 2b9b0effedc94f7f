// Package bucket implements the recursive octree tile decomposition of
// §4.C: forEachCell's top-down traversal, the Bucketer that turns it into
// a splat-budgeted sequence of bins, ChunkId/chunk boundary alignment, and
// the chunk namer of §4.H.
package bucket

import (
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
)

// ForEachCell traverses the implicit top-down octree over the region
// [0,dims), rooted at the smallest power-of-two cube that contains dims,
// calling f(cell) at every visited node. Descent past a cell whose side
// exceeds maxCellSide is forced regardless of f's result (a cell that
// large can never be emitted as a leaf tile); once side <= maxCellSide,
// f's return value controls whether its children are visited at all.
// Children entirely outside [0,dims) on any axis are skipped without
// calling f. Children are visited in fixed Morton order so traversal is
// reproducible.
//
// maxCellSide must be a positive power of two that does not exceed any
// dims[i]; otherwise ForEachCell returns an Invalid error without calling
// f at all.
func ForEachCell(dims mat.Vec3i, maxCellSide int64, f func(grid.Cell) bool) error {
	if !grid.IsPowerOfTwo(maxCellSide) {
		return errs.Newf(errs.Invalid, "maxCellSide %d is not a positive power of two", maxCellSide)
	}
	for i := 0; i < 3; i++ {
		if maxCellSide > dims[i] {
			return errs.Newf(errs.Invalid, "maxCellSide %d exceeds dims[%d]=%d", maxCellSide, i, dims[i])
		}
	}

	rootLevel := 0
	maxDim := dims[0]
	if dims[1] > maxDim {
		maxDim = dims[1]
	}
	if dims[2] > maxDim {
		maxDim = dims[2]
	}
	for (int64(1) << uint(rootLevel)) < maxDim {
		rootLevel++
	}

	root := grid.Cell{Base: mat.Vec3i{0, 0, 0}, Level: rootLevel}
	walkCell(root, dims, maxCellSide, f)
	return nil
}

func walkCell(c grid.Cell, dims mat.Vec3i, maxCellSide int64, f func(grid.Cell) bool) {
	descend := c.Side() > maxCellSide
	if !descend {
		descend = f(c)
	} else {
		f(c)
	}
	if !descend || c.Level == 0 {
		return
	}
	for idx := 0; idx < 8; idx++ {
		child := c.Child(idx)
		if outsideDims(child, dims) {
			continue
		}
		walkCell(child, dims, maxCellSide, f)
	}
}

// outsideDims reports whether a cell's base corner already lies outside
// [0,dims) on some axis, meaning the cell has no overlap with the region
// at all (it is padding introduced purely to keep cell sides powers of
// two) and should not be visited.
func outsideDims(c grid.Cell, dims mat.Vec3i) bool {
	for i := 0; i < 3; i++ {
		if c.Base[i] >= dims[i] {
			return true
		}
	}
	return false
}
