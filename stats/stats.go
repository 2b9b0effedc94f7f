// Package stats implements the progress/statistics registry of §4.L:
// prometheus-exported counters and gauges for pipeline progress, plus a
// bounded FIFO of named timing spans for the --timeplot CLI surface
// (SUPPLEMENTED FEATURES, grounded on original_source/src/statistics.cpp's
// per-event timing queue).
package stats

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const stageLabel = "stage"

var (
	splatsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "splatmesh_splats_processed_total",
		Help: "Number of splats handed to each pipeline stage.",
	}, []string{stageLabel})

	nonFiniteSplats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splatmesh_non_finite_splats_total",
		Help: "Number of non-finite splats skipped while loading the input files.",
	})

	chunksWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splatmesh_chunks_written_total",
		Help: "Number of output chunk files written.",
	})

	chunksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splatmesh_chunks_skipped_total",
		Help: "Number of chunks with zero retained triangles, skipped by OOCMesher.Write.",
	})

	verticesRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "splatmesh_vertices_retained",
		Help: "Total output vertex count after welding and pruning.",
	})

	trianglesRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "splatmesh_triangles_retained",
		Help: "Total output triangle count after welding and pruning.",
	})

	componentsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splatmesh_components_pruned_total",
		Help: "Number of connected components discarded by the prune threshold.",
	})
)

// AddSplats records n splats handed to the named pipeline stage (e.g.
// "bucket", "gather", "mesh").
func AddSplats(stage string, n uint64) {
	splatsProcessed.With(prometheus.Labels{stageLabel: stage}).Add(float64(n))
}

// AddNonFinite records n splats filtered out for being non-finite.
func AddNonFinite(n uint64) { nonFiniteSplats.Add(float64(n)) }

// IncChunksWritten records one output chunk file written.
func IncChunksWritten() { chunksWritten.Inc() }

// IncChunksSkipped records one chunk skipped for having zero retained
// triangles.
func IncChunksSkipped() { chunksSkipped.Inc() }

// AddComponentsPruned records n connected components discarded by the
// prune threshold.
func AddComponentsPruned(n uint64) { componentsPruned.Add(float64(n)) }

// SetRetained sets the final retained vertex/triangle gauges, reported
// once meshing finishes.
func SetRetained(vertices, triangles uint64) {
	verticesRetained.Set(float64(vertices))
	trianglesRetained.Set(float64(triangles))
}

// Span is one named timing event, as recorded for the --timeplot
// surface: a stage name and the wall-clock interval it occupied.
type Span struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Duration returns the span's elapsed time.
func (s Span) Duration() time.Duration { return s.End.Sub(s.Start) }

// EventQueue is a bounded, single-mutex-protected FIFO of timing spans,
// grounded on statistics.cpp's savedEvents queue: rather than
// aggregating into a single counter, every span is retained (up to
// Capacity, oldest evicted first) so a --timeplot report can reconstruct
// a per-event timeline.
type EventQueue struct {
	mu       sync.Mutex
	capacity int
	events   []Span
}

// NewEventQueue creates a queue retaining at most capacity spans.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{capacity: capacity}
}

// Record appends a span, evicting the oldest entry if the queue is at
// capacity.
func (q *EventQueue) Record(name string, start, end time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) >= q.capacity {
		q.events = q.events[1:]
	}
	q.events = append(q.events, Span{Name: name, Start: start, End: end})
}

// Time starts a span and returns a function that records it when
// called; the idiomatic use is `defer q.Time("weld")()`.
func (q *EventQueue) Time(name string) func() {
	start := time.Now()
	return func() { q.Record(name, start, time.Now()) }
}

// Events returns a snapshot of the currently retained spans, oldest
// first.
func (q *EventQueue) Events() []Span {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Span, len(q.events))
	copy(out, q.events)
	return out
}

// Len reports the number of spans currently retained.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
