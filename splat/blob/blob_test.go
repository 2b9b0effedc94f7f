package blob

import (
	"testing"

	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat"
)

func mkSplat(x, y, z float32) splat.Splat {
	return splat.Splat{Position: mat.Vec3{x, y, z}, Radius: 0.01, Normal: mat.Vec3{0, 0, 1}, Quality: 1}
}

func TestBuildGenericGroupsConsecutiveSameFootprint(t *testing.T) {
	g := grid.Grid{Spacing: 1}
	ids := []splat.ID{
		splat.NewID(0, 0), splat.NewID(0, 1), splat.NewID(0, 2), splat.NewID(0, 3),
	}
	splats := []splat.Splat{
		mkSplat(0.5, 0.5, 0.5),
		mkSplat(0.6, 0.5, 0.5), // same bucket as above (bucketSize=4 voxels)
		mkSplat(10, 10, 10),    // different bucket
		mkSplat(10.1, 10, 10),  // same bucket as previous
	}
	s := splat.NewSliceStream(ids, splats)
	bs, err := BuildGeneric(s, g, 4)
	if err != nil {
		t.Fatal(err)
	}
	var got []Blob
	for !bs.Empty() {
		b, err := bs.Current()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, b)
		bs.Next()
	}
	if len(got) != 2 {
		t.Fatalf("got %d blobs, want 2: %+v", len(got), got)
	}
	if got[0].FirstSplat != ids[0] || got[0].LastSplat != ids[2] {
		t.Errorf("blob 0 = %+v", got[0])
	}
	if got[1].FirstSplat != ids[2] || got[1].LastSplat != ids[3]+1 {
		t.Errorf("blob 1 = %+v", got[1])
	}
}

func TestComputeBlobsAlignsGridAndGroups(t *testing.T) {
	ids := []splat.ID{splat.NewID(0, 0), splat.NewID(0, 1), splat.NewID(0, 2)}
	splats := []splat.Splat{
		mkSplat(1, 1, 1),
		mkSplat(1.1, 1, 1),
		mkSplat(-5, -5, -5),
	}
	s := splat.NewSliceStream(ids, splats)
	g, bs, err := ComputeBlobs(s, 1, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.Reference != (mat.Vec3{}) {
		t.Errorf("Reference = %v, want origin", g.Reference)
	}
	for i := 0; i < 3; i++ {
		if g.Lo[i]%4 != 0 {
			t.Errorf("Lo[%d]=%d not aligned to bucket size 4", i, g.Lo[i])
		}
	}
	if bs.Empty() {
		t.Fatal("expected at least one blob")
	}
}

func TestComputeBlobsBoundingBoxIndependentOfWorkerCount(t *testing.T) {
	// The bounding-box reduction is sharded across numWorkers goroutines;
	// regardless of how many workers run it, the final grid must cover
	// the same extent (here a splat far outside any one chunk if the
	// reduction dropped work would misalign g.Lo).
	var ids []splat.ID
	var splats []splat.Splat
	for i := 0; i < 50; i++ {
		ids = append(ids, splat.NewID(0, uint64(i)))
		splats = append(splats, mkSplat(float32(i), 0, 0))
	}
	ids = append(ids, splat.NewID(0, 50))
	splats = append(splats, mkSplat(-100, -100, -100))

	var results []grid.Grid
	for _, workers := range []int{1, 4, 64} {
		s := splat.NewSliceStream(ids, splats)
		g, _, err := ComputeBlobs(s, 1, 4, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		results = append(results, g)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Lo != results[0].Lo || results[i].Hi != results[0].Hi {
			t.Errorf("grid %+v differs from %+v across worker counts", results[i], results[0])
		}
	}
}

func TestComputeBlobsRejectsEmptyStream(t *testing.T) {
	s := splat.NewSliceStream(nil, nil)
	if _, _, err := ComputeBlobs(s, 1, 4, 1); err == nil {
		t.Error("expected error for empty stream")
	}
}

func TestFastPathEligible(t *testing.T) {
	g := grid.Grid{Reference: mat.Vec3{}, Lo: mat.Vec3i{0, 8, 16}}
	if !FastPathEligible(g, 4) {
		t.Error("expected eligible grid to pass")
	}
	g.Lo[1] = 5
	if FastPathEligible(g, 4) {
		t.Error("expected misaligned Lo to fail")
	}
}
