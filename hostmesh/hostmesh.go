// Package hostmesh implements the per-tile triangle mesh container of §3
// (HostKeyMesh): internal vertices private to one tile, external vertices
// carrying stable 64-bit keys shared across tile boundaries, and
// triangles indexing internals first, externals after.
package hostmesh

import (
	"encoding/binary"
	"io"

	"github.com/seqsense/splatmesh/bucket"
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/mat"
)

// Triangle is a triple of vertex indices into a mesh's combined
// internal+external vertex array (internals first).
type Triangle [3]uint32

// Mesh is a per-tile triangle mesh: InternalVertices/ExternalVertices are
// float triples; externals carry ExternalKeys (64-bit, stable across
// tiles); Triangles reference indices into the combined array, internals
// first. ChunkID names the output file this tile contributes to.
//
// Invariants (§3): 0 <= Triangles[i][j] < NumInternal()+NumExternal();
// every key appearing in two different meshes denotes the same
// world-space vertex; internals appear in exactly one mesh.
type Mesh struct {
	InternalVertices []mat.Vec3
	ExternalVertices []mat.Vec3
	ExternalKeys     []uint64
	Triangles        []Triangle
	ChunkID          bucket.ChunkId
}

// NumInternal returns the number of internal vertices.
func (m *Mesh) NumInternal() int { return len(m.InternalVertices) }

// NumExternal returns the number of external vertices.
func (m *Mesh) NumExternal() int { return len(m.ExternalVertices) }

// Validate checks the index-range invariant: every triangle's indices
// fall within [0, NumInternal()+NumExternal()) and ExternalKeys has
// exactly one entry per external vertex.
func (m *Mesh) Validate() error {
	if len(m.ExternalKeys) != len(m.ExternalVertices) {
		return errs.Newf(errs.Invalid, "mesh has %d external vertices but %d keys", len(m.ExternalVertices), len(m.ExternalKeys))
	}
	n := uint32(m.NumInternal() + m.NumExternal())
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx >= n {
				return errs.Newf(errs.Invalid, "triangle %d references out-of-range index %d (n=%d)", i, idx, n)
			}
		}
	}
	return nil
}

// IsExternal reports whether a combined vertex index refers to an
// external vertex.
func (m *Mesh) IsExternal(idx uint32) bool { return int(idx) >= m.NumInternal() }

// Vertex returns the world-space position of a combined vertex index.
func (m *Mesh) Vertex(idx uint32) mat.Vec3 {
	if int(idx) < m.NumInternal() {
		return m.InternalVertices[idx]
	}
	return m.ExternalVertices[int(idx)-m.NumInternal()]
}

// magic identifies the on-wire encoding used by Encode/Decode, a small
// binary framing used to round-trip a Mesh exactly (§8 round-trip
// property) independent of the PLY output codec.
const magic = uint32(0x484b4d31) // "HKM1"

// Encode writes m to w in a compact binary form: a header of counts
// followed by the four flat arrays. It is not the final PLY output
// format, and the OOC mesher's spill files do not use it (they hold raw
// vertex and triangle records of their own).
func Encode(w io.Writer, m *Mesh) error {
	var hdr [4]uint32
	hdr[0] = magic
	hdr[1] = uint32(len(m.InternalVertices))
	hdr[2] = uint32(len(m.ExternalVertices))
	hdr[3] = uint32(len(m.Triangles))
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return errs.Wrap(errs.IO, err, "encode header")
	}
	if err := binary.Write(w, binary.LittleEndian, m.InternalVertices); err != nil {
		return errs.Wrap(errs.IO, err, "encode internal vertices")
	}
	if err := binary.Write(w, binary.LittleEndian, m.ExternalVertices); err != nil {
		return errs.Wrap(errs.IO, err, "encode external vertices")
	}
	if err := binary.Write(w, binary.LittleEndian, m.ExternalKeys); err != nil {
		return errs.Wrap(errs.IO, err, "encode external keys")
	}
	if err := binary.Write(w, binary.LittleEndian, m.Triangles); err != nil {
		return errs.Wrap(errs.IO, err, "encode triangles")
	}
	return nil
}

// Decode reads a Mesh previously written by Encode. ChunkID is not part
// of the wire encoding and must be set by the caller.
func Decode(r io.Reader) (*Mesh, error) {
	var hdr [4]uint32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errs.Wrap(errs.IO, err, "decode header")
	}
	if hdr[0] != magic {
		return nil, errs.New(errs.IO, "bad host-key mesh magic")
	}
	m := &Mesh{
		InternalVertices: make([]mat.Vec3, hdr[1]),
		ExternalVertices: make([]mat.Vec3, hdr[2]),
		ExternalKeys:     make([]uint64, hdr[2]),
		Triangles:        make([]Triangle, hdr[3]),
	}
	if err := binary.Read(r, binary.LittleEndian, m.InternalVertices); err != nil {
		return nil, errs.Wrap(errs.IO, err, "decode internal vertices")
	}
	if err := binary.Read(r, binary.LittleEndian, m.ExternalVertices); err != nil {
		return nil, errs.Wrap(errs.IO, err, "decode external vertices")
	}
	if err := binary.Read(r, binary.LittleEndian, m.ExternalKeys); err != nil {
		return nil, errs.Wrap(errs.IO, err, "decode external keys")
	}
	if err := binary.Read(r, binary.LittleEndian, m.Triangles); err != nil {
		return nil, errs.Wrap(errs.IO, err, "decode triangles")
	}
	return m, nil
}
