package mat

// Vec3i is an integer 3-vector used for voxel/cell coordinates.
type Vec3i [3]int64

func NewVec3i(x, y, z int64) Vec3i {
	return Vec3i{x, y, z}
}

func (v Vec3i) Add(a Vec3i) Vec3i {
	return Vec3i{v[0] + a[0], v[1] + a[1], v[2] + a[2]}
}

func (v Vec3i) Sub(a Vec3i) Vec3i {
	return Vec3i{v[0] - a[0], v[1] - a[1], v[2] - a[2]}
}

func (v Vec3i) Mul(a int64) Vec3i {
	return Vec3i{v[0] * a, v[1] * a, v[2] * a}
}

// Min returns the component-wise minimum.
func (v Vec3i) Min(a Vec3i) Vec3i {
	return Vec3i{minI(v[0], a[0]), minI(v[1], a[1]), minI(v[2], a[2])}
}

// Max returns the component-wise maximum.
func (v Vec3i) Max(a Vec3i) Vec3i {
	return Vec3i{maxI(v[0], a[0]), maxI(v[1], a[1]), maxI(v[2], a[2])}
}

// Le reports whether v is component-wise <= a.
func (v Vec3i) Le(a Vec3i) bool {
	return v[0] <= a[0] && v[1] <= a[1] && v[2] <= a[2]
}

func minI(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
