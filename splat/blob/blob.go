// Package blob implements the maximal-run bucket-footprint streams of §3
// (Blob) and §4.B (computeBlobs): a single pass over a splat stream that
// amortises per-splat bucket lookups by grouping consecutive splats whose
// axis-aligned bounding boxes land in the same closed bucket interval.
package blob

import (
	"sync"

	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat"
)

// Blob is a maximal run of consecutive splat IDs whose bounding boxes map to
// the same closed bucket interval [Lower,Upper] (inclusive on both ends, per
// axis, in bucket units).
type Blob struct {
	FirstSplat, LastSplat splat.ID // half-open [FirstSplat, LastSplat)
	Lower, Upper          mat.Vec3i
}

// Stream yields Blobs in increasing FirstSplat order.
type Stream interface {
	splat.Stream
	Current() (Blob, error)
}

// footprint computes the closed bucket interval hit by a splat's bounding
// box under grid g with the given bucketSize (in voxels).
func footprint(g grid.Grid, bucketSize int64, s splat.Splat) (lower, upper mat.Vec3i) {
	box := s.Bounds()
	lo := g.WorldToVoxel(box.Lo)
	hi := g.WorldToVoxel(box.Hi)
	for i := 0; i < 3; i++ {
		lower[i] = floorDivI(lo[i], bucketSize)
		upper[i] = floorDivI(hi[i], bucketSize)
	}
	return
}

func floorDivI(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// SliceStream builds Blobs eagerly from an underlying SplatStream by
// grouping consecutive same-footprint splats. It is the generic (non-fast)
// path of §4.B: used whenever the grid/bucketSize combination does not
// satisfy the fast-path alignment conditions.
type SliceStream struct {
	blobs []Blob
	pos   int
}

// BuildGeneric walks base (which must already be restricted to the desired
// splat subset) to completion, grouping consecutive splats with identical
// bucket footprint into Blobs.
func BuildGeneric(base splat.SplatStream, g grid.Grid, bucketSize int64) (*SliceStream, error) {
	var blobs []Blob
	var cur *Blob
	var curLower, curUpper mat.Vec3i

	for !base.Empty() {
		s, err := base.Current()
		if err != nil {
			return nil, err
		}
		id, err := base.CurrentID()
		if err != nil {
			return nil, err
		}
		lower, upper := footprint(g, bucketSize, s)
		if cur != nil && lower == curLower && upper == curUpper && id == cur.LastSplat {
			cur.LastSplat = id + 1
		} else {
			if cur != nil {
				blobs = append(blobs, *cur)
			}
			cur = &Blob{FirstSplat: id, LastSplat: id + 1}
			curLower, curUpper = lower, upper
			cur.Lower, cur.Upper = lower, upper
		}
		base.Next()
	}
	if cur != nil {
		blobs = append(blobs, *cur)
	}
	return &SliceStream{blobs: blobs}, nil
}

func (s *SliceStream) Empty() bool { return s.pos >= len(s.blobs) }

func (s *SliceStream) Next() { s.pos++ }

func (s *SliceStream) Current() (Blob, error) {
	if s.Empty() {
		return Blob{}, errs.New(errs.OutOfRange, "Current on empty blob stream")
	}
	return s.blobs[s.pos], nil
}

// FastPathEligible reports whether the grid's reference is the origin
// and its lower extents are multiples of internalBucketSize (which must
// be positive). It does not examine the grid's spacing.
func FastPathEligible(g grid.Grid, internalBucketSize int64) bool {
	if g.Reference != (mat.Vec3{}) {
		return false
	}
	if internalBucketSize <= 0 {
		return false
	}
	for i := 0; i < 3; i++ {
		if g.Lo[i]%internalBucketSize != 0 {
			return false
		}
	}
	return true
}

// partialBounds is one worker's running world-space bounding box
// reduction, kept separate per worker so the reduction takes no lock;
// merged once all workers finish in ComputeBlobs.
type partialBounds struct {
	box mat.AABB
}

// ComputeBlobs is the single-pass §4.B accelerator: it streams every finite
// splat of base, accumulates a world-space bounding box via per-worker
// partial reductions merged under a barrier, groups splats into Blobs, and
// returns a grid whose reference has been snapped to the world origin and
// whose lower extents are snapped down to a multiple of internalBucketSize.
//
// numWorkers partitions the bounding-box reduction only; the grouping pass
// itself is inherently sequential (it depends on stream order) and runs on
// the calling goroutine. base itself is a stateful splat.SplatStream, so it
// can only be drained on one goroutine; the materialized splats are handed
// to numWorkers goroutines afterward, each reducing a contiguous chunk into
// its own partialBounds, joined by a sync.WaitGroup before the merge.
func ComputeBlobs(base splat.SplatStream, spacing float32, internalBucketSize int64, numWorkers int) (grid.Grid, *SliceStream, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}

	type idSplat struct {
		id splat.ID
		s  splat.Splat
	}
	var all []idSplat
	for !base.Empty() {
		s, err := base.Current()
		if err != nil {
			return grid.Grid{}, nil, err
		}
		id, err := base.CurrentID()
		if err != nil {
			return grid.Grid{}, nil, err
		}
		all = append(all, idSplat{id: id, s: s})
		base.Next()
	}
	if len(all) == 0 {
		return grid.Grid{}, nil, errs.New(errs.State, "must be at least one splat")
	}

	if numWorkers > len(all) {
		numWorkers = len(all)
	}
	partials := make([]partialBounds, numWorkers)
	chunkSize := (len(all) + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(all) {
			end = len(all)
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			box := mat.NewEmptyAABB()
			for _, e := range all[start:end] {
				box = box.Union(e.s.Bounds().Lo).Union(e.s.Bounds().Hi)
			}
			partials[w].box = box
		}(w, start, end)
	}
	wg.Wait()

	box := mat.NewEmptyAABB()
	for _, p := range partials {
		box = box.Merge(p.box)
	}

	g := grid.Grid{
		Reference: mat.Vec3{},
		Spacing:   spacing,
	}
	for i := 0; i < 3; i++ {
		g.Lo[i] = int64(floorF(box.Lo[i] / spacing)) // snapped down by AlignLoToBucketSize below
		g.Hi[i] = int64(ceilF(box.Hi[i]/spacing)) + 1
	}
	aligned, err := g.AlignLoToBucketSize(internalBucketSize)
	if err != nil {
		return grid.Grid{}, nil, err
	}
	g = aligned

	var blobs []Blob
	var cur *Blob
	var curLower, curUpper mat.Vec3i
	for _, e := range all {
		lower, upper := footprint(g, internalBucketSize, e.s)
		if cur != nil && lower == curLower && upper == curUpper && e.id == cur.LastSplat {
			cur.LastSplat = e.id + 1
		} else {
			if cur != nil {
				blobs = append(blobs, *cur)
			}
			cur = &Blob{FirstSplat: e.id, LastSplat: e.id + 1, Lower: lower, Upper: upper}
			curLower, curUpper = lower, upper
		}
	}
	if cur != nil {
		blobs = append(blobs, *cur)
	}
	return g, &SliceStream{blobs: blobs}, nil
}

func floorF(f float32) float32 {
	i := float32(int64(f))
	if f < 0 && i != f {
		return i - 1
	}
	return i
}

func ceilF(f float32) float32 {
	i := float32(int64(f))
	if f > 0 && i != f {
		return i + 1
	}
	return i
}
