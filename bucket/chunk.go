package bucket

import "github.com/seqsense/splatmesh/mat"

// ChunkId identifies one output file: different mesh tiles that write
// into the same output file share the same ChunkId.
type ChunkId struct {
	Gen    uint32
	Coords mat.Vec3i
}

// ChunkOf derives the ChunkId a tile with the given base voxel coordinate
// belongs to: coordinates are aligned to chunkCells-many bucketSize-sized
// cells per axis, so the mapping is stable across runs regardless of tile
// boundaries, and depends only on chunkCells and bucketSize (not on
// maxCellSide), per §4.C "chunk boundaries are derived by aligning to a
// user-supplied chunkCells multiple of the top-level grid".
func ChunkOf(gen uint32, base mat.Vec3i, bucketSize, chunkCells int64) ChunkId {
	chunkSide := bucketSize * chunkCells
	var c mat.Vec3i
	for i := 0; i < 3; i++ {
		c[i] = floorDiv(base[i], chunkSide)
	}
	return ChunkId{Gen: gen, Coords: c}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
