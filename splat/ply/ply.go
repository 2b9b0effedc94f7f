// Package ply is the reference PLY codec the pipeline treats as an
// external collaborator (§6): a minimal binary_little_endian reader for
// splat input files and writer for mesh output files. Only the subset
// of the format the pipeline actually produces/consumes is supported —
// ascii and big-endian PLY are rejected.
package ply

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/hostmesh"
	"github.com/seqsense/splatmesh/mat"
)

// Splat is the on-disk input record: x,y,z,nx,ny,nz,radius (§6 "each
// carrying vertex properties x,y,z,nx,ny,nz,radius (float32).
// Additional properties are tolerated and ignored").
type Splat struct {
	Position mat.Vec3
	Normal   mat.Vec3
	Radius   float32
}

// property describes one "property <type> <name>" header line we know
// how to skip or read.
type property struct {
	name string
	size int // bytes; 0 means unsupported/list, which ReadSplats refuses
}

var splatFields = []string{"x", "y", "z", "nx", "ny", "nz", "radius"}

// ReadSplats parses a binary_little_endian PLY vertex element into
// Splat records, tolerating and ignoring any additional vertex
// properties beyond x,y,z,nx,ny,nz,radius.
func ReadSplats(r io.Reader) ([]Splat, error) {
	br := bufio.NewReader(r)
	count, props, err := parseHeader(br)
	if err != nil {
		return nil, err
	}
	offsets := make(map[string]int, len(splatFields))
	stride := 0
	for _, p := range props {
		if p.size == 0 {
			return nil, errs.New(errs.Invalid, "ply: list properties in vertex element are not supported")
		}
		offsets[p.name] = stride
		stride += p.size
	}
	for _, f := range splatFields {
		if _, ok := offsets[f]; !ok {
			return nil, errs.Newf(errs.Invalid, "ply: vertex element missing required property %q", f)
		}
	}
	buf := make([]byte, stride)
	out := make([]Splat, count)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errs.Wrap(errs.IO, err, "ply: read vertex record")
		}
		out[i] = Splat{
			Position: mat.Vec3{
				readF32(buf, offsets["x"]),
				readF32(buf, offsets["y"]),
				readF32(buf, offsets["z"]),
			},
			Normal: mat.Vec3{
				readF32(buf, offsets["nx"]),
				readF32(buf, offsets["ny"]),
				readF32(buf, offsets["nz"]),
			},
			Radius: readF32(buf, offsets["radius"]),
		}
	}
	return out, nil
}

func readF32(buf []byte, off int) float32 {
	bits := binary.LittleEndian.Uint32(buf[off : off+4])
	return math.Float32frombits(bits)
}

// parseHeader reads up to "end_header" and returns the vertex element's
// count and properties, matching the header-parsing idiom of a PCD
// reader: read a line, split on whitespace, switch on the first field.
func parseHeader(r *bufio.Reader) (vertexCount int, props []property, err error) {
	line, err := readLine(r)
	if err != nil {
		return 0, nil, err
	}
	if line != "ply" {
		return 0, nil, errs.New(errs.Invalid, "ply: missing magic header")
	}
	var inVertex bool
	var sawBinaryLE bool
	for {
		line, err := readLine(r)
		if err != nil {
			return 0, nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "binary_little_endian" {
				return 0, nil, errs.New(errs.Invalid, "ply: only binary_little_endian is supported")
			}
			sawBinaryLE = true
		case "comment":
			continue
		case "element":
			if len(fields) < 3 {
				return 0, nil, errs.New(errs.Invalid, "ply: malformed element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return 0, nil, errs.Wrap(errs.Invalid, err, "ply: element count")
			}
			inVertex = fields[1] == "vertex"
			if inVertex {
				vertexCount = n
			}
			// only the vertex element's properties are collected
		case "property":
			if !inVertex {
				continue
			}
			if fields[1] == "list" {
				props = append(props, property{name: fields[len(fields)-1], size: 0})
				continue
			}
			size, err := typeSize(fields[1])
			if err != nil {
				return 0, nil, err
			}
			props = append(props, property{name: fields[len(fields)-1], size: size})
		case "end_header":
			if !sawBinaryLE {
				return 0, nil, errs.New(errs.Invalid, "ply: missing binary_little_endian format line")
			}
			return vertexCount, props, nil
		}
	}
}

func typeSize(t string) (int, error) {
	switch t {
	case "char", "uchar", "int8", "uint8":
		return 1, nil
	case "short", "ushort", "int16", "uint16":
		return 2, nil
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4, nil
	case "double", "float64", "int64", "uint64":
		return 8, nil
	default:
		return 0, errs.Newf(errs.Invalid, "ply: unknown property type %q", t)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, _, err := r.ReadLine()
	if err != nil {
		return "", errs.Wrap(errs.IO, err, "ply: read header line")
	}
	return strings.TrimSpace(string(line)), nil
}

// WriteMesh writes a minimal binary_little_endian PLY with a vertex
// element (x,y,z float32) and a face element (a single uchar-prefixed
// int32 vertex_indices list per face), matching §6's "vertices and
// triangles are little-endian; vertex record contains only x,y,z;
// triangle list uses 32-bit indices; a standard file header is written".
func WriteMesh(w io.Writer, vertices []mat.Vec3, triangles []hostmesh.Triangle) error {
	header := "ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex " + strconv.Itoa(len(vertices)) + "\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"element face " + strconv.Itoa(len(triangles)) + "\n" +
		"property list uchar int vertex_indices\n" +
		"end_header\n"
	if _, err := io.WriteString(w, header); err != nil {
		return errs.Wrap(errs.IO, err, "ply: write header")
	}
	for _, v := range vertices {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return errs.Wrap(errs.IO, err, "ply: write vertex")
		}
	}
	for _, t := range triangles {
		if err := binary.Write(w, binary.LittleEndian, uint8(3)); err != nil {
			return errs.Wrap(errs.IO, err, "ply: write face count")
		}
		var idx [3]int32
		for i, v := range t {
			idx[i] = int32(v)
		}
		if err := binary.Write(w, binary.LittleEndian, idx); err != nil {
			return errs.Wrap(errs.IO, err, "ply: write face indices")
		}
	}
	return nil
}
