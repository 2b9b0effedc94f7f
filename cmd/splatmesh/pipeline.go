package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/seqsense/splatmesh/bucket"
	"github.com/seqsense/splatmesh/config"
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/grid"
	"github.com/seqsense/splatmesh/hostmesh"
	"github.com/seqsense/splatmesh/marching"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/mesher"
	"github.com/seqsense/splatmesh/splat"
	"github.com/seqsense/splatmesh/splat/blob"
	"github.com/seqsense/splatmesh/splat/ply"
	"github.com/seqsense/splatmesh/splattree"
	"github.com/seqsense/splatmesh/stats"
)

// run drives the full pipeline B->D->E->(F->G)->H->I->J of the package
// layout over cfg.Inputs, writing one PLY file per surviving chunk, named
// with cfg.Out as prefix.
func run(cfg config.Config, logger *slog.Logger) error {
	events := stats.NewEventQueue(256)
	defer writeTimeplot(cfg.Timeplot, events, logger)

	ids, splats, normals, err := loadInputs(cfg.Inputs)
	if err != nil {
		return err
	}
	logger.Info("loaded splats", "count", len(splats), "inputs", len(cfg.Inputs))
	stats.AddSplats("load", uint64(len(splats)))

	newStream := func() splat.SplatStream { return splat.NewSliceStream(ids, splats) }

	done := events.Time("computeBlobs")
	g, blobStream, err := blob.ComputeBlobs(newStream(), float32(cfg.Spacing), cfg.BucketSize, runtime.NumCPU())
	done()
	if err != nil {
		return errs.Wrap(errs.State, err, "compute blobs")
	}

	var blobs []blob.Blob
	for !blobStream.Empty() {
		b, err := blobStream.Current()
		if err != nil {
			return err
		}
		blobs = append(blobs, b)
		blobStream.Next()
	}
	bucket.SortBlobs(blobs)
	logger.Info("computed grid", "dims", g.Dims(), "blobs", len(blobs))

	dims := g.Dims()
	bk := bucket.Bucketer{
		Blobs:       blobs,
		BucketSize:  cfg.BucketSize,
		MaxCellSide: largestPowerOfTwoLE(minI3(dims)),
		Budget:      cfg.MaxLoadSplats,
		ChunkCells:  cfg.Split,
		Gen:         0,
	}

	done = events.Time("bucket")
	bins, err := bk.Run(dims)
	done()
	if err != nil {
		return errs.Wrap(errs.State, err, "bucket splats")
	}
	logger.Info("bucketed splats", "tiles", len(bins))

	kernel := newPlaneKernel(normals, float32(cfg.Spacing)*3)

	done = events.Time("extract")
	meshes := make([]*hostmesh.Mesh, 0, len(bins))
	for _, bin := range bins {
		m, err := extractTile(g, bin, newStream, kernel)
		if err != nil {
			return errs.Wrap(errs.State, err, "extract tile")
		}
		if m == nil {
			continue
		}
		meshes = append(meshes, m)
	}
	done()
	logger.Info("extracted tile meshes", "nonEmpty", len(meshes))

	mh := mesher.NewOOCMesher(cfg.Prune, bk.Gen)
	done = events.Time("weld")
	for pass := 0; pass < mh.NumPasses(); pass++ {
		sink := mh.Functor(pass)
		for _, m := range meshes {
			if err := sink.Accept(m); err != nil {
				return errs.Wrap(errs.State, err, "accept tile mesh")
			}
		}
		if pass == 0 && mh.NumPasses() == 2 {
			mh.FinishCounting()
		}
	}
	done()

	namer := bucket.ChunkedNamer{Basename: cfg.Out}
	done = events.Time("write")
	if err := mh.Write(namer); err != nil {
		return errs.Wrap(errs.IO, err, "write output chunks")
	}
	done()

	var totalV, totalT uint64
	seen := map[bucket.ChunkId]bool{}
	for _, bin := range bins {
		if seen[bin.ChunkID] {
			continue
		}
		seen[bin.ChunkID] = true
		if mh.Has(bin.ChunkID) {
			stats.IncChunksWritten()
			v, t := mh.Counts(bin.ChunkID)
			totalV += uint64(v)
			totalT += uint64(t)
		} else {
			stats.IncChunksSkipped()
		}
	}
	stats.SetRetained(totalV, totalT)
	logger.Info("done", "chunks", len(seen), "vertices", totalV, "triangles", totalT)
	return nil
}

// loadInputs reads every PLY input file, packing splat.ID as
// (fileIndex, in-file index) per §6, and returns the parallel
// id/splat slices plus a normal lookup for the (out-of-scope) MLS
// kernel stand-in.
func loadInputs(paths []string) ([]splat.ID, []splat.Splat, map[splat.ID]mat.Vec3, error) {
	var ids []splat.ID
	var splats []splat.Splat
	normals := map[splat.ID]mat.Vec3{}
	for fi, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, nil, errs.Wrap(errs.IO, err, "open input")
		}
		recs, err := ply.ReadSplats(f)
		f.Close()
		if err != nil {
			return nil, nil, nil, errs.Wrap(errs.Invalid, err, "read input")
		}
		for i, r := range recs {
			s := splat.Splat{Position: r.Position, Radius: r.Radius, Normal: r.Normal, Quality: 1}
			if !s.Finite() {
				stats.AddNonFinite(1)
				continue
			}
			id := splat.NewID(uint64(fi), uint64(i))
			ids = append(ids, id)
			splats = append(splats, s)
			normals[id] = r.Normal
		}
	}
	if len(splats) == 0 {
		return nil, nil, nil, errs.New(errs.State, "no finite splats in any input")
	}
	return ids, splats, normals, nil
}

// extractTile builds the bin's splat-tree and runs marching-tetrahedra
// extraction over its tile, tagging the result with the bin's chunk id.
// It returns (nil, nil) for a tile with zero sign changes (§8's
// zero-triangle boundary case), which the caller should not feed to the
// mesher.
func extractTile(g grid.Grid, bin bucket.Bin, newStream func() splat.SplatStream, kernel *planeKernel) (*hostmesh.Mesh, error) {
	idRanges := make([]splat.IDRange, len(bin.Ranges))
	for i, r := range bin.Ranges {
		idRanges[i] = splat.IDRange{
			Start: splat.NewID(r.Scan, r.Start),
			End:   splat.NewID(r.Scan, r.Start+r.Size),
		}
	}
	filtered := splat.NewRangeFilteredStream(newStream(), idRanges)

	// bin.Region.Base is in the bucketer's local [0,dims) frame; the grid's
	// own voxel frame (what WorldToVoxel/VoxelToWorld and blob footprints
	// use) is offset by g.Lo, so that offset has to be added back in here.
	origin := bin.Region.Base.Add(g.Lo)
	side := bin.Region.Side()
	tileExtent := mat.Vec3i{side, side, side}
	tree, err := splattree.Build(g, origin, tileExtent, filtered)
	if err != nil {
		return nil, err
	}

	dims := mat.Vec3i{side + 1, side + 1, side + 1}
	maxDist := kernel.supportRadius

	worldPos := func(x, y, z int) mat.Vec3 {
		v := origin.Add(mat.Vec3i{int64(x), int64(y), int64(z)})
		return g.VoxelToWorld(v)
	}
	sample := func(x, y, z int) marching.Field {
		p := worldPos(x, y, z)
		field, err := tree.ProcessCorner(g, p, maxDist, func(id splat.ID, pos mat.Vec3, dist2 float32) (float32, float32) {
			return kernel.contrib(id, pos, p, dist2)
		})
		if err != nil || field.Weight == 0 {
			return marching.Field{}
		}
		return marching.Field{Value: field.Value / field.Weight, Present: true}
	}
	boundary := func(x, y, z int) bool {
		return x == 0 || int64(x) == side || y == 0 || int64(y) == side || z == 0 || int64(z) == side
	}

	// Extract hands the key function tile-local corners; shift them into
	// the grid's voxel frame so neighbouring tiles derive the same key for
	// a shared edge.
	key := func(a, b mat.Vec3i) uint64 { return vertexKey(a.Add(origin), b.Add(origin)) }

	m, err := marching.Extract(dims, sample, worldPos, boundary, key)
	if err != nil {
		return nil, err
	}
	if len(m.Triangles) == 0 {
		return nil, nil
	}
	m.ChunkID = bin.ChunkID
	return m, nil
}

func largestPowerOfTwoLE(n int64) int64 {
	if n < 1 {
		return 1
	}
	p := int64(1)
	for p*2 <= n {
		p *= 2
	}
	return p
}

func minI3(v mat.Vec3i) int64 {
	m := v[0]
	if v[1] < m {
		m = v[1]
	}
	if v[2] < m {
		m = v[2]
	}
	return m
}
