package main

import (
	"testing"

	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat"
)

func TestVertexKeyIsOrderIndependent(t *testing.T) {
	a := mat.Vec3i{1, 2, 3}
	b := mat.Vec3i{4, 5, 6}
	if vertexKey(a, b) != vertexKey(b, a) {
		t.Error("vertexKey should not depend on argument order")
	}
}

func TestVertexKeyDiffersForDifferentEdges(t *testing.T) {
	a := mat.Vec3i{0, 0, 0}
	b := mat.Vec3i{1, 0, 0}
	c := mat.Vec3i{0, 1, 0}
	if vertexKey(a, b) == vertexKey(a, c) {
		t.Error("distinct edges should hash differently")
	}
}

func TestPlaneKernelContribOutsideSupportIsZeroWeight(t *testing.T) {
	id := splat.NewID(0, 0)
	normals := map[splat.ID]mat.Vec3{id: {0, 0, 1}}
	k := newPlaneKernel(normals, 1)
	w, _ := k.contrib(id, mat.Vec3{0, 0, 0}, mat.Vec3{0, 0, 0}, 4)
	if w != 0 {
		t.Errorf("contrib weight = %v, want 0 beyond support radius", w)
	}
}

func TestPlaneKernelContribSignsAlongNormal(t *testing.T) {
	id := splat.NewID(0, 0)
	normals := map[splat.ID]mat.Vec3{id: {0, 0, 1}}
	k := newPlaneKernel(normals, 2)
	_, v := k.contrib(id, mat.Vec3{0, 0, 0}, mat.Vec3{0, 0, 1}, 1)
	if v <= 0 {
		t.Errorf("contrib value = %v, want positive for a corner above the tangent plane", v)
	}
}

func TestLargestPowerOfTwoLE(t *testing.T) {
	cases := map[int64]int64{1: 1, 2: 2, 3: 2, 7: 4, 8: 8, 9: 8}
	for n, want := range cases {
		if got := largestPowerOfTwoLE(n); got != want {
			t.Errorf("largestPowerOfTwoLE(%d) = %d, want %d", n, got, want)
		}
	}
}
