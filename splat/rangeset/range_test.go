package rangeset

import (
	"reflect"
	"testing"
)

func TestEncoderBucketRangeBasic(t *testing.T) {
	// End-to-end scenario 1 from the spec: four ranges expected. The
	// repeated (3,6) append is a duplicate of an index already covered by
	// the open {3,5,2} range, so it merges without growing it — the
	// ranges cover 6 distinct splats even though 7 pairs were appended.
	var got []Range
	e := NewEncoder(SinkFunc(func(r Range) { got = append(got, r) }))

	appends := []struct{ scan, index uint64 }{
		{3, 5}, {3, 6}, {3, 6},
		{4, 0x123456781234},
		{5, 2}, {5, 4}, {5, 5},
	}
	for _, a := range appends {
		e.Append(a.scan, a.index)
	}
	e.Flush()

	want := []Range{
		{Scan: 3, Start: 5, Size: 2},
		{Scan: 4, Start: 0x123456781234, Size: 1},
		{Scan: 5, Start: 2, Size: 1},
		{Scan: 5, Start: 4, Size: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	var total uint64
	for _, r := range got {
		total += r.Size
	}
	if total != 6 {
		t.Errorf("total splats = %d, want 6", total)
	}
}

func TestEncoderMergesRepeatedIndex(t *testing.T) {
	// (1,0) appended twice in a row: the second append repeats an index
	// already covered by the open {1,0,1} range (0 is in [0,0+1]), so it
	// must merge silently rather than opening a spurious second range.
	var got []Range
	e := NewEncoder(SinkFunc(func(r Range) { got = append(got, r) }))
	e.Append(1, 0)
	e.Append(1, 0)
	e.Flush()
	want := []Range{{Scan: 1, Start: 0, Size: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEncoderRejectsRegression(t *testing.T) {
	// An index before the open range's Start is a genuine regression (not
	// a repeat within [Start, End]) and must open a new range.
	var got []Range
	e := NewEncoder(SinkFunc(func(r Range) { got = append(got, r) }))
	e.Append(1, 5)
	e.Append(1, 2)
	e.Flush()
	want := []Range{{Scan: 1, Start: 5, Size: 1}, {Scan: 1, Start: 2, Size: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEncoderOverflowAt2_32(t *testing.T) {
	// Fabricate an open range one below the overflow boundary by driving
	// the state directly through repeated appends would be too slow
	// (2^32 iterations); instead verify the boundary condition via
	// Merge, which shares the same size check.
	a := Range{Scan: 0, Start: 0, Size: maxSize - 1}
	b := Range{Scan: 0, Start: maxSize - 1, Size: 1}
	merged, ok := Merge(a, b)
	if !ok || merged.Size != maxSize {
		t.Fatalf("expected merge up to exactly 2^32, got %+v ok=%v", merged, ok)
	}
	c := Range{Scan: 0, Start: maxSize, Size: 1}
	if _, ok := Merge(merged, c); ok {
		t.Error("merging past 2^32 must fail")
	}
}

func TestCounterManyRanges(t *testing.T) {
	// 2^32 + k distinct single-element ranges would be too slow to
	// construct literally; verify the counting machine against a
	// smaller but structurally identical scenario: every append uses a
	// non-adjacent index, so every append opens (and, except the last,
	// closes) its own range.
	var c Counter
	const k = 1000
	for i := 0; i < k; i++ {
		c.Append(0, uint64(i)*2) // stride 2: never adjacent to previous end
	}
	c.Flush()
	if got := c.CountRanges(); got != k {
		t.Errorf("CountRanges() = %d, want %d", got, k)
	}
	if got := c.CountSplats(); got != k {
		t.Errorf("CountSplats() = %d, want %d", got, k)
	}
}

func TestMergeRequiresSameScanAndAdjacency(t *testing.T) {
	a := Range{Scan: 1, Start: 0, Size: 5}
	if _, ok := Merge(a, Range{Scan: 2, Start: 5, Size: 1}); ok {
		t.Error("different scan must not merge")
	}
	if _, ok := Merge(a, Range{Scan: 1, Start: 6, Size: 1}); ok {
		t.Error("non-adjacent start must not merge")
	}
	merged, ok := Merge(a, Range{Scan: 1, Start: 5, Size: 1})
	if !ok || merged.Size != 6 {
		t.Errorf("expected merge to size 6, got %+v ok=%v", merged, ok)
	}
}

func TestValidateAppend(t *testing.T) {
	if err := ValidateAppend(Range{Scan: 0, Start: 0, Size: 0}); err == nil {
		t.Error("zero size should be invalid")
	}
	if err := ValidateAppend(Range{Scan: 0, Start: ^uint64(0), Size: 2}); err == nil {
		t.Error("overflowing start+size should be invalid")
	}
	if err := ValidateAppend(Range{Scan: 0, Start: 0, Size: 5}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
