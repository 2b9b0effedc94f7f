package marching

import (
	"testing"

	"github.com/seqsense/splatmesh/mat"
)

func identityWorld(x, y, z int) mat.Vec3 {
	return mat.Vec3{float32(x), float32(y), float32(z)}
}

func noBoundary(x, y, z int) bool { return false }

func TestExtractZeroSignChangesProducesEmptyMesh(t *testing.T) {
	dims := mat.Vec3i{3, 3, 3}
	sample := func(x, y, z int) Field { return Field{Value: -1, Present: true} }
	m, err := Extract(dims, sample, identityWorld, noBoundary, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumInternal() != 0 || m.NumExternal() != 0 || len(m.Triangles) != 0 {
		t.Fatalf("got %d internal, %d external, %d triangles; want all zero", m.NumInternal(), m.NumExternal(), len(m.Triangles))
	}
}

func TestExtractSingleCellProducesTriangles(t *testing.T) {
	dims := mat.Vec3i{2, 2, 2}
	// Corner 0 (0,0,0) is the only one inside (value<=0); every other
	// corner is outside.
	sample := func(x, y, z int) Field {
		if x == 0 && y == 0 && z == 0 {
			return Field{Value: -1, Present: true}
		}
		return Field{Value: 1, Present: true}
	}
	m, err := Extract(dims, sample, identityWorld, noBoundary, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) == 0 {
		t.Fatal("expected at least one triangle for a single inside corner")
	}
	if m.NumExternal() != 0 {
		t.Errorf("got %d external vertices, want 0 (no boundary)", m.NumExternal())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("mesh failed validation: %v", err)
	}
}

func TestExtractSharesKeyedVertexAcrossTilesOnBoundary(t *testing.T) {
	dims := mat.Vec3i{2, 2, 2}
	sample := func(x, y, z int) Field {
		if x == 0 && y == 0 && z == 0 {
			return Field{Value: -1, Present: true}
		}
		return Field{Value: 1, Present: true}
	}
	allBoundary := func(x, y, z int) bool { return true }
	key := func(a, b mat.Vec3i) uint64 {
		lo, hi := a, b
		if hi[0] < lo[0] || (hi[0] == lo[0] && (hi[1] < lo[1] || (hi[1] == lo[1] && hi[2] < lo[2]))) {
			lo, hi = hi, lo
		}
		return uint64(lo[0])<<40 | uint64(lo[1])<<20 | uint64(lo[2])
	}

	m1, err := Extract(dims, sample, identityWorld, allBoundary, key)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := Extract(dims, sample, identityWorld, allBoundary, key)
	if err != nil {
		t.Fatal(err)
	}
	if m1.NumInternal() != 0 {
		t.Errorf("got %d internal vertices, want 0 (all on boundary)", m1.NumInternal())
	}
	if m1.NumExternal() == 0 {
		t.Fatal("expected external vertices when every corner is on the boundary")
	}
	for i, k := range m1.ExternalKeys {
		found := false
		for _, k2 := range m2.ExternalKeys {
			if k == k2 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("key %d (%d) from first extraction not reproduced by second", i, k)
		}
	}
}

func TestExtractRejectsTooSmallDims(t *testing.T) {
	_, err := Extract(mat.Vec3i{1, 2, 2}, nil, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for a too-small dims axis")
	}
}
