package grid

import "github.com/seqsense/splatmesh/mat"

// Cell is an axis-aligned cubic block of the voxel grid, identified by
// (Base, Level): it covers the half-open voxel range
// [Base, Base+2^Level) on every axis. At every level > 0 a cell's side
// length is a power of two; all eight children of a non-leaf cell are
// themselves valid cells.
type Cell struct {
	Base  mat.Vec3i
	Level int
}

// Side returns the cell's side length in voxels (2^Level).
func (c Cell) Side() int64 {
	return int64(1) << uint(c.Level)
}

// Bounds returns the half-open voxel-space box covered by the cell.
func (c Cell) Bounds() mat.Box3i {
	s := c.Side()
	return mat.Box3i{Lo: c.Base, Hi: c.Base.Add(mat.Vec3i{s, s, s})}
}

// Child returns one of the cell's eight children, in fixed Morton
// order: (x0,y0,z0), (x1,y0,z0), (x0,y1,z0), (x1,y1,z0), (x0,y0,z1), ...
// idx must be in [0,8). Calling Child on a level-0 cell is a programmer
// error (level 0 cells are leaves with no children).
func (c Cell) Child(idx int) Cell {
	half := c.Side() / 2
	off := mat.Vec3i{
		int64(idx & 1), int64((idx >> 1) & 1), int64((idx >> 2) & 1),
	}.Mul(half)
	return Cell{Base: c.Base.Add(off), Level: c.Level - 1}
}
