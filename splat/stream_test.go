package splat

import (
	"testing"

	"github.com/seqsense/splatmesh/mat"
)

func mkSplat(x float32) Splat {
	return Splat{Position: mat.NewVec3(x, 0, 0), Radius: 1, Normal: mat.NewVec3(0, 0, 1), Quality: 1}
}

func TestSliceStreamSkipsNonFinite(t *testing.T) {
	ids := []ID{0, 1, 2, 3}
	splats := []Splat{mkSplat(0), {}, mkSplat(2), mkSplat(3)}
	s := NewSliceStream(ids, splats)

	var got []ID
	for !s.Empty() {
		id, err := s.CurrentID()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, id)
		s.Next()
	}
	want := []ID{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSliceStreamEmptyCurrentIsOutOfRange(t *testing.T) {
	s := NewSliceStream(nil, nil)
	if !s.Empty() {
		t.Fatal("expected empty stream")
	}
	if _, err := s.Current(); err == nil {
		t.Error("expected error from Current on empty stream")
	}
}

func TestRangeFilteredStream(t *testing.T) {
	var ids []ID
	var splats []Splat
	for i := ID(0); i < 10; i++ {
		ids = append(ids, i)
		splats = append(splats, mkSplat(float32(i)))
	}
	base := NewSliceStream(ids, splats)
	filtered := NewRangeFilteredStream(base, []IDRange{
		{Start: 2, End: 4},
		{Start: 7, End: 9},
	})

	var got []ID
	for !filtered.Empty() {
		id, err := filtered.CurrentID()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, id)
		filtered.Next()
	}
	want := []ID{2, 3, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
