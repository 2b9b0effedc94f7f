package mesher

import (
	"math"
	"os"

	"github.com/seqsense/splatmesh/bucket"
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/hostmesh"
	"github.com/seqsense/splatmesh/mat"
	"github.com/seqsense/splatmesh/splat/ply"
)

// state tracks the OOCMesher's lifecycle, rejecting calls made out of
// order (§4.G "Empty -> Counting -> Counted -> Emitting -> Written").
type state int

const (
	stateEmpty state = iota
	stateCounting
	stateCounted
	stateEmitting
	stateWritten
)

// Sink accepts one tile's mesh during a pass.
type Sink interface {
	Accept(*hostmesh.Mesh) error
}

type sinkFunc func(*hostmesh.Mesh) error

func (f sinkFunc) Accept(m *hostmesh.Mesh) error { return f(m) }

// OOCMesher is the out-of-core welder+pruner of §4.G. It runs pruning
// disabled as a single pass (weld-and-emit together, since without
// pruning no decision needs the whole component to have been seen
// first) or, with pruning enabled, as two passes: pass 0 only grows the
// union-find and counts component sizes, pass 1 re-derives each tile's
// component membership against the now-frozen sizes and streams
// surviving geometry out.
type OOCMesher struct {
	weld           *weldState
	pruneThreshold float64
	chunkCells     int64
	bucketSize     int64
	gen            uint32
	st             state

	nTotal         uint64
	thresholdCount uint64

	chunks map[bucket.ChunkId]*chunkState
}

// chunkState is the per-output-file bookkeeping kept in RAM during
// emission: a dedup map from external vertex key to the chunk-local
// output vertex index already assigned to it, plus the streamed spill
// files backing the vertex/triangle data itself.
type chunkState struct {
	spill       *chunkSpill
	emittedKey  map[uint64]uint32 // external key -> chunk-local output vertex index
}

// NewOOCMesher constructs a mesher. pruneThreshold is τ from §4.G: the
// fraction of total global vertices, relative to which a component
// smaller than floor(τ*N_total) vertices is discarded; 0 disables
// pruning.
func NewOOCMesher(pruneThreshold float64, gen uint32) *OOCMesher {
	return &OOCMesher{
		weld:           newWeldState(),
		pruneThreshold: pruneThreshold,
		gen:            gen,
		chunks:         make(map[bucket.ChunkId]*chunkState),
	}
}

// NumPasses reports how many functor passes this mesher needs: 1 when
// pruning is disabled (weld and emit happen together), 2 otherwise.
func (m *OOCMesher) NumPasses() int {
	if m.pruneThreshold <= 0 {
		return 1
	}
	return 2
}

// Functor returns the Sink that should receive every tile's mesh during
// the given pass (0-based). Passes must be driven to completion in
// order; Functor panics if called out of sequence.
func (m *OOCMesher) Functor(pass int) Sink {
	switch {
	case pass == 0 && m.NumPasses() == 1:
		if m.st != stateEmpty {
			panic("mesher: Functor(0) called more than once in single-pass mode")
		}
		m.st = stateEmitting
		return sinkFunc(m.acceptWeldAndEmit)
	case pass == 0:
		if m.st != stateEmpty {
			panic("mesher: Functor(0) called more than once")
		}
		m.st = stateCounting
		return sinkFunc(m.acceptCount)
	case pass == 1:
		if m.st != stateCounted {
			panic("mesher: Functor(1) called before pass 0 finished")
		}
		m.st = stateEmitting
		return sinkFunc(m.acceptEmit)
	default:
		panic("mesher: invalid pass index")
	}
}

// FinishCounting closes pass 0 of the two-pass mode, freezing N_total
// and the prune threshold count. It must be called once pass 0 has
// consumed every tile, before Functor(1) is used.
func (m *OOCMesher) FinishCounting() {
	if m.st != stateCounting {
		panic("mesher: FinishCounting called outside counting pass")
	}
	m.nTotal = m.weld.nTotal()
	m.thresholdCount = uint64(math.Floor(m.pruneThreshold * float64(m.nTotal)))
	m.st = stateCounted
}

func (m *OOCMesher) acceptCount(mesh *hostmesh.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	m.weld.addMesh(mesh)
	return nil
}

// acceptWeldAndEmit is the single-pass (no pruning) path: weld and emit
// in the same sweep, since with τ==0 every component is retained
// regardless of its final size.
func (m *OOCMesher) acceptWeldAndEmit(mesh *hostmesh.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	m.weld.addMesh(mesh)
	return m.emitMesh(mesh, true)
}

func (m *OOCMesher) acceptEmit(mesh *hostmesh.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}
	return m.emitMesh(mesh, false)
}

// emitMesh groups mesh's vertices into their local connected components,
// decides retention (always-retain in single-pass mode, threshold-based
// otherwise), and streams surviving vertices/triangles into the right
// chunk's spill files. Retention is decided per component (via each
// group's frozen anchor), but vertex identity for dedup purposes is per
// external key, not per component: a single surviving component can
// contain several distinct external vertices (e.g. §8 scenario 3's
// six-vertex welded component spans five distinct keys plus one
// internal), each of which is its own output vertex, deduplicated only
// against another tile emitting that same key into this same chunk.
func (m *OOCMesher) emitMesh(mesh *hostmesh.Mesh, alwaysRetain bool) error {
	groups := groupMesh(mesh, m.weld)
	cs, err := m.chunkFor(mesh.ChunkID)
	if err != nil {
		return err
	}

	// localOut[i] is the chunk-local output vertex index for combined
	// index i, or -1 if its component was pruned.
	localOut := make([]int32, mesh.NumInternal()+mesh.NumExternal())
	for i := range localOut {
		localOut[i] = -1
	}
	for _, g := range groups {
		retained := alwaysRetain || g.size(mesh, m.weld) >= m.thresholdCount
		if !retained {
			continue
		}
		for _, member := range g.members {
			if mesh.IsExternal(uint32(member)) {
				key := mesh.ExternalKeys[int(member)-mesh.NumInternal()]
				if idx, ok := cs.emittedKey[key]; ok {
					localOut[member] = int32(idx)
					continue
				}
				idx, err := cs.spill.appendVertex(mesh.Vertex(uint32(member)))
				if err != nil {
					return err
				}
				cs.emittedKey[key] = idx
				localOut[member] = int32(idx)
				continue
			}
			idx, err := cs.spill.appendVertex(mesh.Vertex(uint32(member)))
			if err != nil {
				return err
			}
			localOut[member] = int32(idx)
		}
	}
	for _, t := range mesh.Triangles {
		a, b, c := localOut[t[0]], localOut[t[1]], localOut[t[2]]
		if a < 0 || b < 0 || c < 0 {
			continue // component was pruned; all three corners share one decision
		}
		if err := cs.spill.appendTriangle(hostmesh.Triangle{uint32(a), uint32(b), uint32(c)}); err != nil {
			return err
		}
	}
	return nil
}

func (m *OOCMesher) chunkFor(id bucket.ChunkId) (*chunkState, error) {
	if cs, ok := m.chunks[id]; ok {
		return cs, nil
	}
	spill, err := newChunkSpill()
	if err != nil {
		return nil, err
	}
	cs := &chunkState{spill: spill, emittedKey: make(map[uint64]uint32)}
	m.chunks[id] = cs
	return cs, nil
}

// Write finalises every chunk with at least one retained triangle into
// its named PLY output file (§4.G "Output finalisation"). Chunks with
// zero retained triangles are never opened, matching §4.H's "asking the
// writer for such a chunk's output reports not found".
func (m *OOCMesher) Write(namer bucket.Namer) error {
	if m.st != stateEmitting {
		panic("mesher: Write called before emission pass finished")
	}
	for id, cs := range m.chunks {
		if cs.spill.nTriangle == 0 {
			cs.spill.close()
			continue
		}
		if err := writeChunk(namer.Name(id), cs.spill); err != nil {
			return err
		}
		cs.spill.close()
	}
	m.st = stateWritten
	return nil
}

// Has reports whether a chunk has at least one retained triangle, i.e.
// whether Write would have produced a file for it.
func (m *OOCMesher) Has(id bucket.ChunkId) bool {
	cs, ok := m.chunks[id]
	return ok && cs.spill.nTriangle > 0
}

// Counts returns the retained vertex and triangle counts accumulated so
// far for a chunk.
func (m *OOCMesher) Counts(id bucket.ChunkId) (vertices, triangles int) {
	cs, ok := m.chunks[id]
	if !ok {
		return 0, 0
	}
	return int(cs.spill.nVertex), int(cs.spill.nTriangle)
}

func writeChunk(path string, spill *chunkSpill) error {
	if err := spill.rewind(); err != nil {
		return err
	}
	vertices := make([]mat.Vec3, spill.nVertex)
	for i := range vertices {
		v, err := readVertex(spill.vertices)
		if err != nil {
			return errs.Wrap(errs.IO, err, "read back spilled vertex")
		}
		vertices[i] = v
	}
	triangles := make([]hostmesh.Triangle, spill.nTriangle)
	for i := range triangles {
		t, err := readTriangle(spill.triangles)
		if err != nil {
			return errs.Wrap(errs.IO, err, "read back spilled triangle")
		}
		triangles[i] = t
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IO, err, "create chunk output file")
	}
	defer f.Close()
	if err := ply.WriteMesh(f, vertices, triangles); err != nil {
		return err
	}
	return nil
}
