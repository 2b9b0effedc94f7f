package bucket

import (
	"fmt"
	"strconv"
)

// Namer maps a ChunkId to an output file path (§4.H).
type Namer interface {
	Name(ChunkId) string
}

// TrivialNamer returns the configured filename verbatim, regardless of
// chunk identity. Used when the pipeline writes a single output file.
type TrivialNamer struct {
	Path string
}

func (n TrivialNamer) Name(ChunkId) string { return n.Path }

// ChunkedNamer formats "<Basename>_%04d_%04d_%04d.ply" per coordinate,
// widening (rather than truncating) a field whose value would not fit in
// four digits.
type ChunkedNamer struct {
	Basename string
}

func (n ChunkedNamer) Name(id ChunkId) string {
	return fmt.Sprintf("%s_%s_%s_%s.ply", n.Basename,
		widen(id.Coords[0]), widen(id.Coords[1]), widen(id.Coords[2]))
}

// widen formats v zero-padded to at least 4 digits, growing the field
// width instead of truncating when v needs more than 4 digits. Negative
// values widen to fit the sign plus digits.
func widen(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := v < 0
	digits := s
	if neg {
		digits = s[1:]
	}
	for len(digits) < 4 {
		digits = "0" + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}
