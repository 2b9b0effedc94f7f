package bucket

import (
	"testing"

	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
)

func TestForEachCellSimple(t *testing.T) {
	dims := mat.NewVec3i(4, 4, 6)
	var cells []grid.Cell
	// Selects the cell containing world point (2,1,4), matching the
	// reference traversal order for this region/cap combination.
	err := ForEachCell(dims, 4, func(c grid.Cell) bool {
		cells = append(cells, c)
		b := c.Bounds()
		return b.Lo[0] <= 2 && 2 < b.Hi[0] &&
			b.Lo[1] <= 1 && 1 < b.Hi[1] &&
			b.Lo[2] <= 4 && 4 < b.Hi[2]
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []grid.Cell{
		{Base: mat.NewVec3i(0, 0, 0), Level: 3},
		{Base: mat.NewVec3i(0, 0, 0), Level: 2},
		{Base: mat.NewVec3i(0, 0, 4), Level: 2},
		{Base: mat.NewVec3i(0, 0, 4), Level: 1},
		{Base: mat.NewVec3i(2, 0, 4), Level: 1},
		{Base: mat.NewVec3i(2, 0, 4), Level: 0},
		{Base: mat.NewVec3i(3, 0, 4), Level: 0},
		{Base: mat.NewVec3i(2, 1, 4), Level: 0},
		{Base: mat.NewVec3i(3, 1, 4), Level: 0},
		{Base: mat.NewVec3i(2, 0, 5), Level: 0},
		{Base: mat.NewVec3i(3, 0, 5), Level: 0},
		{Base: mat.NewVec3i(2, 1, 5), Level: 0},
		{Base: mat.NewVec3i(3, 1, 5), Level: 0},
		{Base: mat.NewVec3i(0, 2, 4), Level: 1},
		{Base: mat.NewVec3i(2, 2, 4), Level: 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("visited %d cells, want %d: %v", len(cells), len(want), cells)
	}
	for i, c := range cells {
		if c != want[i] {
			t.Errorf("cells[%d] = %v, want %v", i, c, want[i])
		}
	}
}

func TestForEachCellRejectsNonPowerOfTwo(t *testing.T) {
	dims := mat.NewVec3i(4, 4, 6)
	for _, cap := range []int64{100, 0, 3} {
		err := ForEachCell(dims, cap, func(grid.Cell) bool { return false })
		if !errs.Is(err, errs.Invalid) {
			t.Errorf("maxCellSide=%d: expected Invalid error, got %v", cap, err)
		}
	}
}

func TestForEachCellCoversRegionWithTruePredicate(t *testing.T) {
	dims := mat.NewVec3i(4, 4, 6)
	var leaves []grid.Cell
	err := ForEachCell(dims, 4, func(c grid.Cell) bool {
		if c.Level == 0 {
			leaves = append(leaves, c)
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	covered := map[mat.Vec3i]bool{}
	for _, c := range leaves {
		covered[c.Base] = true
	}
	for x := int64(0); x < dims[0]; x++ {
		for y := int64(0); y < dims[1]; y++ {
			for z := int64(0); z < dims[2]; z++ {
				if !covered[mat.NewVec3i(x, y, z)] {
					t.Fatalf("voxel (%d,%d,%d) not covered by any leaf", x, y, z)
				}
			}
		}
	}
}
