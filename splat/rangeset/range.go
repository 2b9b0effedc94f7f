// Package rangeset implements the compact (scan,start,size) run-length
// encoding of splat ID lists described in §4.A: a contiguous run of
// splat IDs belonging to one input file ("scan").
package rangeset

import "github.com/seqsense/splatmesh/errs"

// maxSize is the overflow point (2^32): a range may grow to exactly this
// size; an append that would extend it further flushes it and opens a
// new one instead. This is a size-discipline invariant, not an error.
const maxSize = uint64(1) << 32

// Range is a compact triple (Scan, Start, Size) encoding a contiguous
// run of splat IDs belonging to one input file.
type Range struct {
	Scan  uint64
	Start uint64
	Size  uint64
}

// End returns Start+Size.
func (r Range) End() uint64 { return r.Start + r.Size }

// Sink receives flushed ranges, in increasing order of emission.
type Sink interface {
	Emit(Range)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Range)

func (f SinkFunc) Emit(r Range) { f(r) }

// Encoder maintains one open range, extending it when an appended
// (scan,index) pair falls within or immediately after the open range,
// and emits it to a Sink whenever a new scan or an index outside
// [Start, Start+Size] arrives (or the open range would overflow 2^32).
// Encoder holds no other state: it never fails.
type Encoder struct {
	sink  Sink
	open  Range
	valid bool
}

// NewEncoder creates an Encoder flushing completed ranges to sink.
func NewEncoder(sink Sink) *Encoder {
	return &Encoder{sink: sink}
}

// Append records one (scan,index) pair. An index anywhere in the closed
// interval [Start, Start+Size] merges into the open range: strictly
// inside, it repeats an index already covered and Size is left
// unchanged; exactly at Start+Size, it extends the run and Size grows
// by one. Anything else opens a new range.
func (e *Encoder) Append(scan, index uint64) {
	if e.valid && e.open.Scan == scan && index >= e.open.Start && index <= e.open.End() {
		if index < e.open.End() {
			return
		}
		if e.open.Size < maxSize {
			e.open.Size++
			return
		}
	}
	e.flushOpen()
	e.open = Range{Scan: scan, Start: index, Size: 1}
	e.valid = true
}

func (e *Encoder) flushOpen() {
	if e.valid {
		e.sink.Emit(e.open)
		e.valid = false
	}
}

// Flush emits the currently open range, if any. After Flush, the next
// Append starts a fresh range regardless of adjacency.
func (e *Encoder) Flush() {
	e.flushOpen()
}

// Counter is the same (scan,index) run-merging state machine as
// Encoder, but without a sink: it only tracks aggregate counts. It is
// useful when only numRanges/numSplats are needed and materializing the
// ranges themselves would be wasted allocation.
type Counter struct {
	open   Range
	valid  bool
	ranges uint64
	splats uint64
}

// Append records one (scan,index) pair, with the same merge rule as
// Encoder.Append: an index inside [Start, Start+Size] merges into the
// open range; anything else opens a new range. Every call adds one to
// the splat count, a repeated index included.
func (c *Counter) Append(scan, index uint64) {
	c.splats++
	if c.valid && c.open.Scan == scan && index >= c.open.Start && index <= c.open.End() {
		if index < c.open.End() {
			return
		}
		if c.open.Size < maxSize {
			c.open.Size++
			return
		}
	}
	c.closeOpen()
	c.open = Range{Scan: scan, Start: index, Size: 1}
	c.valid = true
}

func (c *Counter) closeOpen() {
	if c.valid {
		c.ranges++
		c.valid = false
	}
}

// Flush closes the currently open range so it is reflected in
// CountRanges.
func (c *Counter) Flush() {
	c.closeOpen()
}

// CountRanges returns the number of distinct ranges seen so far
// (including the currently open one, if any — call Flush first to make
// that explicit).
func (c *Counter) CountRanges() uint64 {
	n := c.ranges
	if c.valid {
		n++
	}
	return n
}

// CountSplats returns the total number of (scan,index) pairs appended.
func (c *Counter) CountSplats() uint64 {
	return c.splats
}

// ValidateAppend reports an Invalid error if r.Size is zero or
// r.Start+r.Size overflows 64 bits; this is exposed purely so callers that build Range
// values by hand (e.g. deserializing a resume sidecar) can check the
// size > 0 and no-overflow invariants from §3 explicitly.
func ValidateAppend(r Range) error {
	if r.Size == 0 {
		return errs.New(errs.Invalid, "range size must be > 0")
	}
	if r.Start+r.Size < r.Start {
		return errs.New(errs.Invalid, "range start+size overflows 64-bit index space")
	}
	return nil
}

// Merge merges b into a if they are mergeable (same scan, b starts
// exactly where a ends), returning the merged range and true; otherwise
// it returns a unchanged and false.
func Merge(a, b Range) (Range, bool) {
	if a.Scan != b.Scan || b.Start != a.End() {
		return a, false
	}
	if a.Size+b.Size > maxSize {
		return a, false
	}
	return Range{Scan: a.Scan, Start: a.Start, Size: a.Size + b.Size}, true
}
