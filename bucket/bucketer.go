package bucket

import (
	"sort"

	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat/blob"
	"github.com/seqsense/splatmesh/splat/rangeset"
)

// Bin pairs one tile (an output region of the grid plus a desired inner
// chunkId) with the set of ranges covering the splats that intersect it.
type Bin struct {
	Region  grid.Cell
	ChunkID ChunkId
	Ranges  []rangeset.Range
}

// SplatCount returns the total number of splats named by the bin's ranges.
func (b Bin) SplatCount() uint64 {
	var n uint64
	for _, r := range b.Ranges {
		n += r.Size
	}
	return n
}

// Bucketer recursively decomposes a grid region into tiles of bounded
// splat count and side, per §4.C. It operates over a pre-computed set of
// blobs (§3) rather than the raw splat stream, so that per-cell splat
// counts and ID ranges can be derived without rescanning the input.
type Bucketer struct {
	Blobs       []blob.Blob
	BucketSize  int64 // voxel units; matches the blobs' bucket-unit footprints
	MaxCellSide int64 // power of two, ≤ min(dims)
	Budget      uint64
	ChunkCells  int64
	Gen         uint32
}

// Run decomposes the region [0,dims) (in voxel units) into leaf tiles,
// returning them in the traversal order of ForEachCell: a subregion is
// emitted as a leaf iff its splat count is ≤ Budget, otherwise it is
// split into its eight Morton-ordered children and each is processed
// recursively.
func (bk Bucketer) Run(dims mat.Vec3i) ([]Bin, error) {
	if bk.BucketSize <= 0 || !grid.IsPowerOfTwo(bk.BucketSize) {
		return nil, errs.Newf(errs.Invalid, "bucket size %d is not a positive power of two", bk.BucketSize)
	}
	var bins []Bin
	err := ForEachCell(dims, bk.MaxCellSide, func(c grid.Cell) bool {
		if c.Side() > bk.MaxCellSide {
			return true // too large to be a tile; ForEachCell descends anyway
		}
		ranges, count := bk.rangesFor(c)
		if count <= bk.Budget {
			if count > 0 {
				bins = append(bins, Bin{
					Region:  c,
					ChunkID: ChunkOf(bk.Gen, c.Base, bk.BucketSize, bk.ChunkCells),
					Ranges:  ranges,
				})
			}
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return bins, nil
}

// rangesFor collects the compact ranges and total splat count of every
// blob whose bucket-unit footprint overlaps cell c.
func (bk Bucketer) rangesFor(c grid.Cell) ([]rangeset.Range, uint64) {
	lo, hi := cellBucketBounds(c, bk.BucketSize)

	var enc []rangeset.Range
	var count uint64
	for _, bl := range bk.Blobs {
		if !boxOverlap(bl.Lower, bl.Upper, lo, hi) {
			continue
		}
		count += uint64(bl.LastSplat) - uint64(bl.FirstSplat)
		r := rangeset.Range{
			Scan:  bl.FirstSplat.FileIndex(),
			Start: bl.FirstSplat.Index(),
			Size:  uint64(bl.LastSplat) - uint64(bl.FirstSplat),
		}
		if len(enc) > 0 {
			if merged, ok := rangeset.Merge(enc[len(enc)-1], r); ok {
				enc[len(enc)-1] = merged
				continue
			}
		}
		enc = append(enc, r)
	}
	return enc, count
}

// cellBucketBounds maps a cell's voxel-space extent down to the closed
// [lo,hi] bucket-unit interval it intersects, matching the convention
// used by blob footprints (§4.B).
func cellBucketBounds(c grid.Cell, bucketSize int64) (lo, hi mat.Vec3i) {
	b := c.Bounds()
	for i := 0; i < 3; i++ {
		lo[i] = floorDiv(b.Lo[i], bucketSize)
		hi[i] = floorDiv(b.Hi[i]-1, bucketSize)
	}
	return
}

func boxOverlap(aLo, aHi, bLo, bHi mat.Vec3i) bool {
	for i := 0; i < 3; i++ {
		if aHi[i] < bLo[i] || bHi[i] < aLo[i] {
			return false
		}
	}
	return true
}

// SortBlobs sorts blobs by FirstSplat, the order Bucketer expects.
func SortBlobs(blobs []blob.Blob) {
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].FirstSplat < blobs[j].FirstSplat })
}
