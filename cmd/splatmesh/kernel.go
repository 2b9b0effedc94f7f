package main

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat"
)

// planeKernel is a minimal stand-in for the out-of-scope MLS density
// evaluator (§1): a splat contributes a signed point-to-plane distance
// along its own normal, weighted by (supportRadius² - dist²)², so that
// the field's sign change near a splat's surface approximates its
// tangent plane. supportRadius bounds how far a splat's contribution
// reaches.
type planeKernel struct {
	normals       map[splat.ID]mat.Vec3
	supportRadius float32
}

func newPlaneKernel(normals map[splat.ID]mat.Vec3, supportRadius float32) *planeKernel {
	return &planeKernel{normals: normals, supportRadius: supportRadius}
}

func (k *planeKernel) contrib(id splat.ID, pos mat.Vec3, corner mat.Vec3, dist2 float32) (weight, value float32) {
	n, ok := k.normals[id]
	if !ok {
		return 0, 0
	}
	d := k.supportRadius*k.supportRadius - dist2
	if d <= 0 {
		return 0, 0
	}
	weight = d * d
	value = n.Dot(corner.Sub(pos))
	return weight, value
}

// vertexKey hashes two global voxel corners, canonically ordered, into
// the stable 64-bit key an edge vertex carries across tiles when it
// lies on a shared boundary.
func vertexKey(a, b mat.Vec3i) uint64 {
	if less(b, a) {
		a, b = b, a
	}
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range [6]int64{a[0], a[1], a[2], b[0], b[1], b[2]} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func less(a, b mat.Vec3i) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}
