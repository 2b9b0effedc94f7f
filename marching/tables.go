package marching

// NumCubeCorners is the number of corners of the unit cube each cell
// spans; the 8 corners are numbered so that bit0/1/2 of the corner index
// select the +x/+y/+z corner respectively.
const NumCubeCorners = 8

// NumEdges is the number of distinct edges among the 6 tetrahedra that
// decompose a cube along its main diagonal (0-7): the 12 cube edges plus
// the 7 face/interior diagonals the decomposition introduces.
const NumEdges = 19

// NumTetrahedra is the number of tetrahedra a cube is split into.
const NumTetrahedra = 6

// NumCubes is the number of distinct inside/outside corner masks.
const NumCubes = 1 << NumCubeCorners

// edgeIndices lists, for each edge id, its two cube-corner endpoints in
// ascending order.
var edgeIndices = [NumEdges][2]uint8{
	{0, 1}, {0, 2}, {0, 3}, {1, 3}, {2, 3},
	{0, 4}, {0, 5}, {1, 5}, {4, 5},
	{0, 6}, {2, 6}, {4, 6},
	{0, 7}, {1, 7}, {2, 7}, {3, 7}, {4, 7}, {5, 7}, {6, 7},
}

// tetrahedronIndices lists, for each of the 6 tetrahedra, its 4
// cube-corner vertices; every tetrahedron shares the cube's main
// diagonal (corners 0 and 7).
var tetrahedronIndices = [NumTetrahedra][4]uint8{
	{0, 7, 1, 3},
	{0, 7, 3, 2},
	{0, 7, 2, 6},
	{0, 7, 6, 4},
	{0, 7, 4, 5},
	{0, 7, 5, 1},
}

func findEdgeByVertexIDs(v0, v1 uint8) uint8 {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	for i, e := range edgeIndices {
		if e[0] == v0 && e[1] == v1 {
			return uint8(i)
		}
	}
	panic("marching: no such edge")
}

// tvtx pairs a cube-corner vertex id with whether the corner is outside
// the surface under the cube's current mask.
type tvtx struct {
	v       uint8
	outside bool
}

// permutationParity returns the parity (0 even, 1 odd) of a, ordered by
// vertex id, relative to ascending order.
func permutationParity(a []tvtx) int {
	parity := 0
	for i := range a {
		for j := i + 1; j < len(a); j++ {
			if a[i].v > a[j].v {
				parity ^= 1
			}
		}
	}
	return parity
}

// nextPermutation advances a to its next lexicographic permutation by
// vertex id, mirroring std::next_permutation; it returns false once a is
// the last (descending) permutation.
func nextPermutation(a []tvtx) bool {
	n := len(a)
	i := n - 2
	for i >= 0 && a[i].v >= a[i+1].v {
		i--
	}
	if i < 0 {
		return false
	}
	j := n - 1
	for a[j].v <= a[i].v {
		j--
	}
	a[i], a[j] = a[j], a[i]
	for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
		a[l], a[r] = a[r], a[l]
	}
	return true
}

// cellCount records, per cube mask, how many compacted edge ids and how
// many triangle-index entries the mask contributes.
type cellCount struct {
	Vertices uint8
	Indices  uint8
}

// cellStart records, per cube mask, the starting offset into Data for
// its compacted edge ids and its triangle indices.
type cellStart struct {
	Vertex uint32
	Index  uint32
}

// Tables is the fixed lookup table of §4.F, generated once: for each of
// the 256 cube sign-masks, which edges carry an output vertex and how
// those (per-cube-compacted) vertices form triangles.
type Tables struct {
	Count [NumCubes]cellCount
	Start [NumCubes + 1]cellStart
	// Data concatenates, for every mask in order, its compacted edge-id
	// list followed (after all masks' edge lists) by its triangle index
	// list; Start[i].Vertex/.Index name the respective sub-slice bounds
	// within Data, so Start[NumCubes] is valid past-the-end for both.
	Data []uint8
}

// Global is the package's single Tables instance; table generation is a
// pure function of the fixed tetrahedron/edge geometry, so one instance
// suffices for the process lifetime.
var Global = buildTables()

func buildTables() *Tables {
	var t Tables
	var vertexTable, indexTable []uint8

	for mask := 0; mask < NumCubes; mask++ {
		t.Start[mask].Vertex = uint32(len(vertexTable))
		// Start[mask].Index is finalised below once vertexTable's final
		// length is known; store the indexTable-relative offset for now.
		indexStart := uint32(len(indexTable))

		var triangles []uint8
	tetLoop:
		for j := 0; j < NumTetrahedra; j++ {
			var tv [4]tvtx
			outside := 0
			for k, v := range tetrahedronIndices[j] {
				o := mask&(1<<v) != 0
				if o {
					outside++
				}
				tv[k] = tvtx{v: v, outside: o}
			}
			baseParity := permutationParity(tv[:])

			if outside > 2 {
				baseParity ^= 1
				for k := range tv {
					tv[k].outside = !tv[k].outside
				}
			}

			sorted := tv
			// sort ascending by vertex id (4 elements, a plain insertion sort)
			for i := 1; i < len(sorted); i++ {
				for k := i; k > 0 && sorted[k-1].v > sorted[k].v; k-- {
					sorted[k-1], sorted[k] = sorted[k], sorted[k-1]
				}
			}

			perm := sorted
			for {
				if permutationParity(perm[:]) == baseParity {
					t0, t1, t2, t3 := perm[0].v, perm[1].v, perm[2].v, perm[3].v
					m := 0
					for k, e := range perm {
						if e.outside {
							m |= 1 << k
						}
					}
					switch m {
					case 0:
						continue tetLoop
					case 1:
						triangles = append(triangles,
							findEdgeByVertexIDs(t0, t1),
							findEdgeByVertexIDs(t0, t3),
							findEdgeByVertexIDs(t0, t2),
						)
						continue tetLoop
					case 3:
						triangles = append(triangles,
							findEdgeByVertexIDs(t0, t2),
							findEdgeByVertexIDs(t1, t2),
							findEdgeByVertexIDs(t1, t3),
							findEdgeByVertexIDs(t1, t3),
							findEdgeByVertexIDs(t0, t3),
							findEdgeByVertexIDs(t0, t2),
						)
						continue tetLoop
					}
				}
				if !nextPermutation(perm[:]) {
					break
				}
			}
		}

		var compact [NumEdges]int
		for e := range compact {
			compact[e] = -1
		}
		var used int
		for _, e := range triangles {
			if compact[e] == -1 {
				compact[e] = used
				vertexTable = append(vertexTable, e)
				used++
			}
		}
		for _, e := range triangles {
			indexTable = append(indexTable, uint8(compact[e]))
		}

		t.Count[mask] = cellCount{
			Vertices: uint8(len(vertexTable) - int(t.Start[mask].Vertex)),
			Indices:  uint8(len(indexTable) - int(indexStart)),
		}
		t.Start[mask].Index = indexStart // rebased below
	}
	t.Start[NumCubes].Vertex = uint32(len(vertexTable))
	t.Start[NumCubes].Index = uint32(len(indexTable))

	// Rebase every Index offset (currently relative to indexTable) to
	// point into the concatenated Data slice, where indexTable follows
	// vertexTable.
	for i := range t.Start {
		t.Start[i].Index += uint32(len(vertexTable))
	}

	t.Data = append(vertexTable, indexTable...)
	return &t
}
