package mesher

import "github.com/seqsense/splatmesh/hostmesh"

// localGroup is one ephemeral, tile-local connected component discovered
// while re-processing a mesh in pass 2. anchor is the frozen mesh-wide
// clump root this group resolves to, or -1 if the group never touches an
// external vertex (a component wholly contained in one tile).
type localGroup struct {
	members []int32 // combined vertex indices (internal first, then external) belonging to this mesh
	anchor  int32
}

// localDSU is a throwaway union-find scoped to a single mesh's combined
// vertex indices, used by pass 2 purely to rediscover which of a mesh's
// vertices travel together — it never touches the persistent weldState
// arena, so repeatedly re-deriving it for the same tile across runs
// cannot corrupt the frozen component sizes pass 1 computed.
type localDSU struct {
	parent []int32
}

func newLocalDSU(n int) *localDSU {
	p := make([]int32, n)
	for i := range p {
		p[i] = int32(i)
	}
	return &localDSU{parent: p}
}

func (d *localDSU) find(i int32) int32 {
	for d.parent[i] != i {
		i = d.parent[i]
	}
	return i
}

func (d *localDSU) union(a, b int32) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}

// groupMesh partitions m's combined vertex indices into their ephemeral
// local connected components and, for each, resolves the frozen
// mesh-wide root any external member anchors it to. If a malformed
// input ever unions two externals that pass 1 had placed in different
// components (which a well-formed tile stream never does, since pass 1
// and pass 2 see identical topology), the first anchor encountered by
// ascending local index wins, deterministically.
func groupMesh(m *hostmesh.Mesh, w *weldState) []localGroup {
	n := m.NumInternal() + m.NumExternal()
	dsu := newLocalDSU(n)
	for _, t := range m.Triangles {
		dsu.union(int32(t[0]), int32(t[1]))
		dsu.union(int32(t[1]), int32(t[2]))
	}
	byRoot := make(map[int32]*localGroup)
	order := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		r := dsu.find(int32(i))
		g, ok := byRoot[r]
		if !ok {
			g = &localGroup{anchor: -1}
			byRoot[r] = g
			order = append(order, r)
		}
		g.members = append(g.members, int32(i))
		if m.IsExternal(uint32(i)) {
			key := m.ExternalKeys[i-m.NumInternal()]
			anchor := w.rootOfKey(key)
			if g.anchor == -1 {
				g.anchor = anchor
			}
		}
	}
	groups := make([]localGroup, 0, len(order))
	for _, r := range order {
		groups = append(groups, *byRoot[r])
	}
	return groups
}

// size returns a group's global component size: the frozen componentSize
// of its anchor if it has one, or else its own internal-member count
// (which, since pass 1 gave this exact set of internals no external
// union partners, equals what pass 1 would have computed for it too).
func (g localGroup) size(m *hostmesh.Mesh, w *weldState) uint64 {
	if g.anchor >= 0 {
		return w.componentSize(g.anchor)
	}
	var n uint64
	for _, idx := range g.members {
		if !m.IsExternal(uint32(idx)) {
			n++
		}
	}
	return n
}
