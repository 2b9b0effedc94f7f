// Package mesher implements the OOC welder+pruner of §4.G: a union-find
// over vertex keys combined with per-clump vertex counts, run as a
// two-pass (or, with pruning disabled, single-pass) pipeline stage that
// stitches per-tile HostKeyMeshes into a global, duplicate-free,
// component-filtered mesh under bounded memory.
package mesher

// clump is one arena entry of the union-find: clumps are stored in a
// dense arena and referenced by index (§9 design notes: "avoid aliased
// references; use indices"). A root clump's size is the number of
// distinct vertices (internal, plus deduplicated external keys) in its
// component so far; non-root entries' size fields are stale and must not
// be read directly — always go through find.
type clump struct {
	parent int32
	size   uint64
}

// unionFind is an acyclic-by-construction forest of clumps: every clump
// points to at most one parent. It backs both the mesh-wide weld state
// (§4.G) and is reused, read-only, by pass 2 once pass 1 has finished.
type unionFind struct {
	arena []clump
}

// newSingleton allocates a fresh size-1 clump and returns its index.
func (u *unionFind) newSingleton() int32 {
	idx := int32(len(u.arena))
	u.arena = append(u.arena, clump{parent: idx, size: 1})
	return idx
}

// find returns the root of i's component, compressing the path as it
// goes.
func (u *unionFind) find(i int32) int32 {
	root := i
	for u.arena[root].parent != root {
		root = u.arena[root].parent
	}
	for u.arena[i].parent != root {
		next := u.arena[i].parent
		u.arena[i].parent = root
		i = next
	}
	return root
}

// union merges the components containing a and b, summing their sizes.
// It is a no-op if they are already the same component.
func (u *unionFind) union(a, b int32) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.arena[ra].size < u.arena[rb].size {
		ra, rb = rb, ra
	}
	u.arena[rb].parent = ra
	u.arena[ra].size += u.arena[rb].size
}

// sizeOf returns the current (possibly not yet final, if called mid
// pass 1) size of i's component.
func (u *unionFind) sizeOf(i int32) uint64 {
	return u.arena[u.find(i)].size
}

// len returns the number of clumps ever allocated — equivalently, since
// every clump starts at size 1 and union only redistributes size, the
// total distinct-vertex count N_total once pass 1 (or the single
// no-pruning pass) has finished adding clumps.
func (u *unionFind) len() int { return len(u.arena) }
