// Package pipeline implements the bounded-memory pipelining primitives of
// §4.I and §5: a single-producer/single-consumer circular byte buffer,
// bounded work queues, and worker groups that join in forward order on
// shutdown or error, grounded on the teacher's/gogpu-gg's worker-pool
// idiom (per-goroutine loops coordinated with channels and sync
// primitives rather than raw locking).
package pipeline

import (
	"sync"

	"github.com/seqsense/splatmesh/errs"
)

// CircularBuffer is a single-producer, single-consumer, byte-addressable
// ring that hands out allocations of up to half its capacity. An
// allocation is not always contiguous: one that reaches the end of the
// ring continues at its start (see Allocation.Wrapped).
// Allocate and Free may race with each other but must never race with
// themselves: Allocate is called only from the producer goroutine, Free
// only from the consumer.
type CircularBuffer struct {
	mu    sync.Mutex
	cond  *sync.Cond
	buf   []byte
	head  int // first occupied byte
	tail  int // first free byte
	count int // occupied bytes; head==tail with count==0 means empty
}

// NewCircularBuffer reserves size bytes of backing storage. size must be
// at least 2.
func NewCircularBuffer(size int) *CircularBuffer {
	if size < 2 {
		panic(errs.Newf(errs.Invalid, "circular buffer size %d must be >= 2", size))
	}
	b := &CircularBuffer{buf: make([]byte, size)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Size returns the number of bytes reserved for the buffer.
func (b *CircularBuffer) Size() int { return len(b.buf) }

// Allocation describes a granted region of the buffer. It may wrap: if
// Wrapped is true, the allocation occupies [Offset,len(buf)) followed by
// [0,WrapLen).
type Allocation struct {
	Offset  int
	Len     int
	Wrapped bool
	WrapLen int
}

// Allocate blocks until at least one element of elementSize bytes fits in
// the buffer, then returns a contiguous or wrapped allocation of up to
// maxElements elements, never exceeding half the buffer's capacity in
// bytes. maxElements must be > 0.
func (b *CircularBuffer) Allocate(elementSize int, maxElements int) Allocation {
	if maxElements <= 0 {
		panic(errs.New(errs.Invalid, "maxElements must be > 0"))
	}
	half := len(b.buf) / 2

	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		free := len(b.buf) - b.count
		avail := free
		if avail > half {
			avail = half
		}
		if avail >= elementSize {
			granted := avail / elementSize
			if granted > maxElements {
				granted = maxElements
			}
			bytes := granted * elementSize
			alloc := b.reserve(bytes)
			return alloc
		}
		b.cond.Wait()
	}
}

func (b *CircularBuffer) reserve(bytes int) Allocation {
	off := b.tail
	b.count += bytes
	tillEnd := len(b.buf) - off
	if bytes <= tillEnd {
		b.tail = (off + bytes) % len(b.buf)
		return Allocation{Offset: off, Len: bytes}
	}
	wrapLen := bytes - tillEnd
	b.tail = wrapLen
	return Allocation{Offset: off, Len: tillEnd, Wrapped: true, WrapLen: wrapLen}
}

// Free releases the region returned by a preceding Allocate. Frees must
// occur in allocation order.
func (b *CircularBuffer) Free(a Allocation) {
	bytes := a.Len
	if a.Wrapped {
		bytes += a.WrapLen
	}
	b.mu.Lock()
	b.head = (a.Offset + a.Len) % len(b.buf)
	if a.Wrapped {
		b.head = a.WrapLen
	}
	b.count -= bytes
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Bytes returns the two (or one, if unwrapped) slices backing an
// allocation, for the caller to write into or read from directly.
func (b *CircularBuffer) Bytes(a Allocation) (first, second []byte) {
	first = b.buf[a.Offset : a.Offset+a.Len]
	if a.Wrapped {
		second = b.buf[0:a.WrapLen]
	}
	return
}
