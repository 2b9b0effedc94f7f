package mesher

import (
	"github.com/seqsense/splatmesh/hostmesh"
)

// weldState is the mesh-wide union-find shared by both passes: newly
// seen external keys allocate a singleton clump the first time they are
// encountered (by any tile, in any order) and every later sighting of
// the same key resolves to that clump, giving the dedup required by §3's
// "every key appearing in two different meshes denotes the same
// world-space vertex" invariant. Internal vertices always allocate a
// fresh singleton, since §3 guarantees they appear in exactly one mesh.
type weldState struct {
	uf         unionFind
	keyToClump map[uint64]int32
}

func newWeldState() *weldState {
	return &weldState{keyToClump: make(map[uint64]int32)}
}

// clumpForKey returns the clump index for an external key, allocating a
// new singleton on first sight.
func (w *weldState) clumpForKey(key uint64) int32 {
	if c, ok := w.keyToClump[key]; ok {
		return c
	}
	c := w.uf.newSingleton()
	w.keyToClump[key] = c
	return c
}

// addMesh folds one tile's mesh into the union-find: every internal
// vertex gets a fresh singleton, every external vertex resolves (or
// creates) its key's clump, and every triangle edge unions its three
// corners together. It returns the per-combined-index clump assignment
// (the mesher's own callers discard it); pass 2 does not call this —
// see groupMesh.
func (w *weldState) addMesh(m *hostmesh.Mesh) []int32 {
	n := m.NumInternal() + m.NumExternal()
	local := make([]int32, n)
	for i := 0; i < m.NumInternal(); i++ {
		local[i] = w.uf.newSingleton()
	}
	for i, key := range m.ExternalKeys {
		local[m.NumInternal()+i] = w.clumpForKey(key)
	}
	for _, t := range m.Triangles {
		w.uf.union(local[t[0]], local[t[1]])
		w.uf.union(local[t[1]], local[t[2]])
	}
	return local
}

// nTotal returns the total distinct-vertex count accumulated so far:
// valid once pass 1 has consumed every tile.
func (w *weldState) nTotal() uint64 { return uint64(w.uf.len()) }

// componentSize returns the final size of the component rooted wherever
// clump c currently resolves to. Safe to call after pass 1 has
// finished; pass 2 only ever reads, never mutates, the arena through
// this path.
func (w *weldState) componentSize(c int32) uint64 { return w.uf.sizeOf(c) }

// rootOfKey resolves an external key to its frozen component root.
// Called only from pass 2; the key is assumed to have already been seen
// during pass 1 (every tile is fed to both passes with identical
// content).
func (w *weldState) rootOfKey(key uint64) int32 { return w.uf.find(w.clumpForKey(key)) }
