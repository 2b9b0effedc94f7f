package mat

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := x.Cross(y)
	if z != NewVec3(0, 0, 1) {
		t.Errorf("expected (0,0,1), got %v", z)
	}
}

func TestNormalized(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalized()
	if diff := v.Norm() - 1; diff < -1e-5 || diff > 1e-5 {
		t.Errorf("expected unit length, got %v", v.Norm())
	}
}

func TestFinite(t *testing.T) {
	cases := map[string]struct {
		v  Vec3
		ok bool
	}{
		"finite":  {NewVec3(1, 2, 3), true},
		"nan":     {NewVec3(float32(math.NaN()), 0, 0), false},
		"inf":     {NewVec3(0, float32(math.Inf(1)), 0), false},
		"neginf":  {NewVec3(0, 0, float32(math.Inf(-1))), false},
		"allzero": {Vec3{}, true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := c.v.Finite(); got != c.ok {
				t.Errorf("Finite() = %v, want %v", got, c.ok)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	a := NewVec3(1, 5, -2)
	b := NewVec3(3, -1, 4)
	if got := a.Min(b); got != NewVec3(1, -1, -2) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); got != NewVec3(3, 5, 4) {
		t.Errorf("Max = %v", got)
	}
}
