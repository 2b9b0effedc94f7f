package grid

import "testing"

func TestMakeCodeZero(t *testing.T) {
	if got := MakeCode(0, 0, 0); got != 0 {
		t.Errorf("MakeCode(0,0,0) = %d, want 0", got)
	}
}

func TestMakeCode777(t *testing.T) {
	if got := MakeCode(7, 7, 7); got != 511 {
		t.Errorf("MakeCode(7,7,7) = %d, want 511", got)
	}
}

func TestMakeCodeMonotonicPerAxis(t *testing.T) {
	var prev uint32
	for x := uint32(0); x < 16; x++ {
		code := MakeCode(x, 0, 0)
		if x > 0 && code <= prev {
			t.Errorf("MakeCode not monotonic on x at %d: %d <= %d", x, code, prev)
		}
		prev = code
	}
}

func TestMakeCodeOnlyZeroAtOrigin(t *testing.T) {
	cases := []struct{ x, y, z uint32 }{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	for _, c := range cases {
		if got := MakeCode(c.x, c.y, c.z); got == 0 {
			t.Errorf("MakeCode(%d,%d,%d) = 0, expected nonzero", c.x, c.y, c.z)
		}
	}
}

func TestLevelShift(t *testing.T) {
	cases := []struct {
		lo, hi uint32
		want   int
	}{
		{4, 4, 0},
		{4, 5, 1},
		{0, 7, 3},
		{8, 9, 1},
	}
	for _, c := range cases {
		got := LevelShift(c.lo, c.hi)
		if got != c.want {
			t.Errorf("LevelShift(%d,%d) = %d, want %d", c.lo, c.hi, got, c.want)
		}
		if (c.lo>>uint(got)) != (c.hi >> uint(got)) {
			t.Errorf("LevelShift(%d,%d)=%d does not equalize endpoints", c.lo, c.hi, got)
		}
	}
}
