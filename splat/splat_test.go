package splat

import (
	"math"
	"testing"

	"github.com/seqsense/splatmesh/mat"
)

func TestSplatFinite(t *testing.T) {
	good := Splat{Position: mat.NewVec3(1, 2, 3), Radius: 0.5, Normal: mat.NewVec3(0, 0, 1), Quality: 1}
	if !good.Finite() {
		t.Error("expected good splat to be finite")
	}

	zeroRadius := good
	zeroRadius.Radius = 0
	if zeroRadius.Finite() {
		t.Error("zero radius must not be finite")
	}

	negRadius := good
	negRadius.Radius = -1
	if negRadius.Finite() {
		t.Error("negative radius must not be finite")
	}

	nanPos := good
	nanPos.Position[0] = float32(math.NaN())
	if nanPos.Finite() {
		t.Error("NaN position must not be finite")
	}
}

func TestSplatBounds(t *testing.T) {
	s := Splat{Position: mat.NewVec3(0, 0, 0), Radius: 2}
	b := s.Bounds()
	if b.Lo != mat.NewVec3(-2, -2, -2) || b.Hi != mat.NewVec3(2, 2, 2) {
		t.Errorf("unexpected bounds: %+v", b)
	}
}
