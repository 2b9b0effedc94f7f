// Package marching implements the per-tile marching-tetrahedra isosurface
// extractor of §4.F: a fixed 256-entry lookup table (tables.go) over cube
// sign-masks, driving a per-z-slice-pair sweep that evaluates a field,
// compacts occupied cells and emits an indexed triangle mesh.
package marching

import (
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/hostmesh"
	"github.com/seqsense/splatmesh/mat"
)

// corner returns the unit-cube offset of cube-corner index c (0-7): bit0
// selects +x, bit1 +y, bit2 +z, matching edgeIndices' corner numbering.
func corner(c int) mat.Vec3i {
	return mat.Vec3i{int64(c & 1), int64((c >> 1) & 1), int64((c >> 2) & 1)}
}

// Field samples the implicit surface at one grid corner: Value is the
// signed field (the external MLS kernel's output, §1); a corner is
// outside the surface iff Value > 0. Present is false where the kernel's
// weight was zero (no splat in range) — such corners never contribute an
// edge to the mesh, and any cell touching one is skipped.
type Field struct {
	Value   float32
	Present bool
}

// Sampler evaluates the field at one grid corner (x,y,z), 0 <= x < dims[0]
// etc; it is the CPU-side stand-in for marching.cpp's per-slice functor,
// which in turn calls the (out of scope, §1) MLS kernel.
type Sampler func(x, y, z int) Field

// VertexKey derives the 64-bit key an interpolated edge vertex carries
// when it lies on the tile's shared boundary; it is called with the
// edge's two tile-local grid corners each time a cell emits a vertex on
// a boundary edge (so an edge shared by several cells is keyed once per
// cell). Interior edges never call this.
type VertexKey func(a, b mat.Vec3i) uint64

// Boundary reports whether grid corner (x,y,z) lies within the tile's
// shared boundary shell; an edge vertex is external iff both of its
// corners do.
type Boundary func(x, y, z int) bool

// WorldPos maps a grid corner to its world-space position.
type WorldPos func(x, y, z int) mat.Vec3

// slot names a not-yet-finalised mesh vertex: internal slots carry their
// final index directly (internals are emitted and numbered 0..n-1 in the
// order first seen, which is exactly hostmesh's required layout);
// external slots carry their index into ExternalVertices, to be offset
// by the internal count only once the sweep is done and that count is
// final.
type slot struct {
	index      uint32
	isExternal bool
}

// Extract sweeps the dims[0] x dims[1] x dims[2] corner grid (so
// (dims[0]-1) x (dims[1]-1) x (dims[2]-1) cells), evaluating sample once
// per corner and emitting one triangle per occupied cell's table entry.
// It mirrors marching.cpp's enqueue loop (evaluate a slice, diff against
// the previous one, compact occupied cells, generate vertices and
// indices) without needing the GPU version's persistent cross-slice
// offset buffer, since this CPU path builds the output mesh directly.
//
// A field with no sign changes anywhere yields a mesh with zero vertices
// and zero triangles (§8's boundary case); the caller should skip
// writing such a mesh.
func Extract(dims mat.Vec3i, sample Sampler, world WorldPos, boundary Boundary, key VertexKey) (*hostmesh.Mesh, error) {
	if dims[0] < 2 || dims[1] < 2 || dims[2] < 2 {
		return nil, errs.Newf(errs.Invalid, "marching: dims %v too small, need >= 2 per axis", dims)
	}

	m := &hostmesh.Mesh{}
	// edgeKey identifies an edge by its two corners in a canonical
	// (sorted) order, so a vertex shared by several cells within this
	// tile (any interior edge) is emitted once.
	type edgeKey struct{ ax, ay, az, bx, by, bz int }
	internalOf := map[edgeKey]uint32{}
	externalOf := map[uint64]uint32{}

	emit := func(a, b mat.Vec3i, t float32, isExternal bool) slot {
		ax, ay, az := int(a[0]), int(a[1]), int(a[2])
		bx, by, bz := int(b[0]), int(b[1]), int(b[2])
		pos := world(ax, ay, az).Mul(1 - t).Add(world(bx, by, bz).Mul(t))

		if isExternal {
			k := key(a, b)
			if idx, ok := externalOf[k]; ok {
				return slot{index: idx, isExternal: true}
			}
			idx := uint32(len(m.ExternalVertices))
			m.ExternalVertices = append(m.ExternalVertices, pos)
			m.ExternalKeys = append(m.ExternalKeys, k)
			externalOf[k] = idx
			return slot{index: idx, isExternal: true}
		}

		ek := edgeKey{ax, ay, az, bx, by, bz}
		if ek.ax > ek.bx || (ek.ax == ek.bx && (ek.ay > ek.by || (ek.ay == ek.by && ek.az > ek.bz))) {
			ek = edgeKey{bx, by, bz, ax, ay, az}
		}
		if idx, ok := internalOf[ek]; ok {
			return slot{index: idx}
		}
		idx := uint32(len(m.InternalVertices))
		m.InternalVertices = append(m.InternalVertices, pos)
		internalOf[ek] = idx
		return slot{index: idx}
	}

	var triSlots [][3]slot

	for x := 0; x < int(dims[0])-1; x++ {
		for y := 0; y < int(dims[1])-1; y++ {
			for z := 0; z < int(dims[2])-1; z++ {
				var f [NumCubeCorners]Field
				var g [NumCubeCorners]mat.Vec3i
				complete := true
				for c := 0; c < NumCubeCorners; c++ {
					off := corner(c)
					cx, cy, cz := x+int(off[0]), y+int(off[1]), z+int(off[2])
					f[c] = sample(cx, cy, cz)
					g[c] = mat.Vec3i{int64(cx), int64(cy), int64(cz)}
					if !f[c].Present {
						complete = false
					}
				}
				if !complete {
					continue
				}
				mask := 0
				for c := 0; c < NumCubeCorners; c++ {
					if f[c].Value > 0 {
						mask |= 1 << c
					}
				}
				count := Global.Count[mask]
				if count.Vertices == 0 {
					continue
				}
				start := Global.Start[mask]
				localVertex := make([]slot, count.Vertices)
				for i := 0; i < int(count.Vertices); i++ {
					e := Global.Data[int(start.Vertex)+i]
					c0, c1 := edgeIndices[e][0], edgeIndices[e][1]
					a, b := g[c0], g[c1]
					va, vb := f[c0].Value, f[c1].Value
					t := va / (va - vb)
					ext := boundary(int(a[0]), int(a[1]), int(a[2])) && boundary(int(b[0]), int(b[1]), int(b[2]))
					localVertex[i] = emit(a, b, t, ext)
				}
				for i := 0; i < int(count.Indices); i += 3 {
					idx0 := Global.Data[int(start.Index)+i]
					idx1 := Global.Data[int(start.Index)+i+1]
					idx2 := Global.Data[int(start.Index)+i+2]
					triSlots = append(triSlots, [3]slot{localVertex[idx0], localVertex[idx1], localVertex[idx2]})
				}
			}
		}
	}

	nInternal := uint32(len(m.InternalVertices))
	finalIndex := func(s slot) uint32 {
		if s.isExternal {
			return nInternal + s.index
		}
		return s.index
	}
	m.Triangles = make([]hostmesh.Triangle, len(triSlots))
	for i, s := range triSlots {
		m.Triangles[i] = hostmesh.Triangle{finalIndex(s[0]), finalIndex(s[1]), finalIndex(s[2])}
	}

	return m, nil
}
