package splat

import "github.com/seqsense/splatmesh/errs"

// Stream is the minimal capability set shared by every splat/blob
// stream variant in this module: advance and test for exhaustion. Each
// variant adds its own Current (and SplatStream its CurrentID) on top
// of it. Keeping the set closed
// and small avoids a deep stream-kind hierarchy (see design notes on
// dynamic dispatch over stream kinds).
type Stream interface {
	// Empty reports whether the stream has no more items.
	Empty() bool
	// Next advances the stream by one item. Calling Next on an empty
	// stream is a programmer error.
	Next()
}

// SplatStream yields finite splats in ID order, optionally restricted to
// a sorted sequence of ID ranges. Advancing past a non-finite splat
// happens automatically — callers never observe one.
type SplatStream interface {
	Stream
	// Current returns the splat under the cursor. Calling Current on an
	// empty stream returns the zero Splat and an OutOfRange error.
	Current() (Splat, error)
	// CurrentID returns the ID of the splat under the cursor.
	CurrentID() (ID, error)
}

// SliceStream is a SplatStream over an in-memory slice of (ID, Splat)
// pairs, filtering out non-finite splats as it advances. It is the
// reference implementation used by tests and by small inputs; a real
// deployment backs SplatStream with a chunked file reader (see
// splat/ply) instead.
type SliceStream struct {
	ids    []ID
	splats []Splat
	pos    int
}

// NewSliceStream builds a SplatStream over parallel ids/splats slices,
// skipping any leading non-finite splats so Current/CurrentID always
// see a finite splat once Empty() is false.
func NewSliceStream(ids []ID, splats []Splat) *SliceStream {
	s := &SliceStream{ids: ids, splats: splats}
	s.skipNonFinite()
	return s
}

func (s *SliceStream) skipNonFinite() {
	for s.pos < len(s.splats) && !s.splats[s.pos].Finite() {
		s.pos++
	}
}

func (s *SliceStream) Empty() bool { return s.pos >= len(s.splats) }

func (s *SliceStream) Next() {
	s.pos++
	s.skipNonFinite()
}

func (s *SliceStream) Current() (Splat, error) {
	if s.Empty() {
		return Splat{}, errs.New(errs.OutOfRange, "Current on empty splat stream")
	}
	return s.splats[s.pos], nil
}

func (s *SliceStream) CurrentID() (ID, error) {
	if s.Empty() {
		return 0, errs.New(errs.OutOfRange, "CurrentID on empty splat stream")
	}
	return s.ids[s.pos], nil
}

// RangeFilteredStream restricts an underlying SplatStream to a sorted,
// non-overlapping sequence of ID ranges (as produced by the bucketer's
// Bin subsets), skipping everything outside of them.
type RangeFilteredStream struct {
	base   SplatStream
	ranges []IDRange
	ri     int
}

// IDRange is a half-open [Start, End) range of splat IDs, used to name
// the subset of splats a RangeFilteredStream should visit. It is
// distinct from rangeset.Range (the compact (scan,start,size) encoding
// used on the wire); this is the in-memory, already-decoded form.
type IDRange struct {
	Start, End ID
}

// NewRangeFilteredStream wraps base, restricting it to ranges (which
// must be sorted and non-overlapping).
func NewRangeFilteredStream(base SplatStream, ranges []IDRange) *RangeFilteredStream {
	s := &RangeFilteredStream{base: base, ranges: ranges}
	s.seekToRange()
	return s
}

func (s *RangeFilteredStream) seekToRange() {
	for {
		if s.ri >= len(s.ranges) {
			return
		}
		for !s.base.Empty() {
			id, err := s.base.CurrentID()
			if err != nil {
				return
			}
			if id < s.ranges[s.ri].Start {
				s.base.Next()
				continue
			}
			break
		}
		if s.base.Empty() {
			return
		}
		id, err := s.base.CurrentID()
		if err != nil {
			return
		}
		if id < s.ranges[s.ri].End {
			return
		}
		s.ri++
	}
}

func (s *RangeFilteredStream) Empty() bool {
	return s.ri >= len(s.ranges) || s.base.Empty()
}

func (s *RangeFilteredStream) Next() {
	s.base.Next()
	s.seekToRange()
}

func (s *RangeFilteredStream) Current() (Splat, error) {
	if s.Empty() {
		return Splat{}, errs.New(errs.OutOfRange, "Current on empty range-filtered stream")
	}
	return s.base.Current()
}

func (s *RangeFilteredStream) CurrentID() (ID, error) {
	if s.Empty() {
		return 0, errs.New(errs.OutOfRange, "CurrentID on empty range-filtered stream")
	}
	return s.base.CurrentID()
}
