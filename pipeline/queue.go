package pipeline

// Queue is a bounded producer/consumer channel of work items: producers
// block on Push when full, consumers block on Pop when empty. It is the
// generic building block every pipeline stage boundary uses (bucket
// loader -> GPU workers -> gather -> mesher -> writer, §5).
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push enqueues an item, blocking while the queue is full or until stop
// is closed (in which case it returns false without pushing).
func (q *Queue[T]) Push(item T, stop <-chan struct{}) bool {
	select {
	case q.ch <- item:
		return true
	case <-stop:
		return false
	}
}

// Pop dequeues an item, blocking while the queue is empty. ok is false if
// the queue has been closed and drained.
func (q *Queue[T]) Pop() (item T, ok bool) {
	item, ok = <-q.ch
	return
}

// Close signals no more items will be pushed; queued items remain
// poppable until drained.
func (q *Queue[T]) Close() { close(q.ch) }

// Len reports the number of items currently buffered (approximate under
// concurrent access, but exact for a single-producer/single-consumer use
// once the producer has stopped).
func (q *Queue[T]) Len() int { return len(q.ch) }

// StopToken is the cooperative cancellation flag described in §5: bucket
// loader and gather threads poll it at every queue operation, and on
// cancellation drain their inputs and shut down downstream before
// rethrowing.
type StopToken struct {
	ch chan struct{}
}

// NewStopToken creates an unfired stop token.
func NewStopToken() *StopToken {
	return &StopToken{ch: make(chan struct{})}
}

// Stop fires the token. Safe to call more than once.
func (s *StopToken) Stop() {
	select {
	case <-s.ch:
	default:
		close(s.ch)
	}
}

// Stopped reports whether the token has fired, without blocking.
func (s *StopToken) Stopped() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// C returns the channel that closes when the token fires, for use in a
// select alongside queue operations.
func (s *StopToken) C() <-chan struct{} { return s.ch }
