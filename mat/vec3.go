package mat

import (
	"math"
)

// Vec3 is a float32 3-vector used for splat positions and normals.
type Vec3 [3]float32

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) NormSq() float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func (v Vec3) Norm() float32 {
	return float32(math.Sqrt(float64(v.NormSq())))
}

func (v Vec3) Normalized() Vec3 {
	return v.Mul(1.0 / v.Norm())
}

func (v Vec3) Mul(a float32) Vec3 {
	return Vec3{v[0] * a, v[1] * a, v[2] * a}
}

func (v Vec3) Sub(a Vec3) Vec3 {
	return Vec3{v[0] - a[0], v[1] - a[1], v[2] - a[2]}
}

func (v Vec3) Add(a Vec3) Vec3 {
	return Vec3{v[0] + a[0], v[1] + a[1], v[2] + a[2]}
}

func (v Vec3) Dot(a Vec3) float32 {
	return v[0]*a[0] + v[1]*a[1] + v[2]*a[2]
}

func (v Vec3) Cross(a Vec3) Vec3 {
	return Vec3{
		v[1]*a[2] - v[2]*a[1],
		v[2]*a[0] - v[0]*a[2],
		v[0]*a[1] - v[1]*a[0],
	}
}

func (v Vec3) CrossNormSq(a Vec3) float32 {
	d := v.Dot(a)
	return v.NormSq()*a.NormSq() - d*d
}

// Min returns the component-wise minimum.
func (v Vec3) Min(a Vec3) Vec3 {
	return Vec3{minF(v[0], a[0]), minF(v[1], a[1]), minF(v[2], a[2])}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(a Vec3) Vec3 {
	return Vec3{maxF(v[0], a[0]), maxF(v[1], a[1]), maxF(v[2], a[2])}
}

// Finite reports whether every component is finite (not NaN, not +-Inf).
func (v Vec3) Finite() bool {
	return isFiniteF(v[0]) && isFiniteF(v[1]) && isFiniteF(v[2])
}

func isFiniteF(a float32) bool {
	return !math.IsNaN(float64(a)) && !math.IsInf(float64(a), 0)
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
