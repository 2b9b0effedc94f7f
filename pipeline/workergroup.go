package pipeline

import (
	"sync"

	"github.com/seqsense/splatmesh/errs"
)

// WorkerGroup runs a fixed number of named workers and joins them in
// forward order (worker 0 first, then 1, ...) on Wait, matching the
// collector's shutdown protocol in §4.D: "joins all downstream workers in
// forward order, then rethrows." Each worker's function receives its
// index and the group's stop token, and returns the first error it
// encounters (or nil).
type WorkerGroup struct {
	stop    *StopToken
	errOnce sync.Once
	err     error
	done    []chan struct{}
	fns     []func(id int, stop *StopToken) error
	errs    []error
}

// NewWorkerGroup creates a group of n workers, each running fn(id, stop).
func NewWorkerGroup(n int, fn func(id int, stop *StopToken) error) *WorkerGroup {
	g := &WorkerGroup{
		stop: NewStopToken(),
		done: make([]chan struct{}, n),
		errs: make([]error, n),
	}
	for i := 0; i < n; i++ {
		g.done[i] = make(chan struct{})
	}
	g.fns = make([]func(id int, stop *StopToken) error, n)
	for i := 0; i < n; i++ {
		g.fns[i] = fn
	}
	return g
}

// Start launches all workers.
func (g *WorkerGroup) Start() {
	for i := range g.done {
		go func(id int) {
			defer close(g.done[id])
			if err := g.fns[id](id, g.stop); err != nil {
				g.errs[id] = err
				g.stop.Stop()
			}
		}(i)
	}
}

// Abort fires the group's stop token, asking every worker to drain and
// shut down without waiting for them.
func (g *WorkerGroup) Abort() { g.stop.Stop() }

// Wait joins every worker in forward order (index 0 first) and returns
// the error of the lowest-index worker that failed; an error that
// carries no errs kind is wrapped as IO, a kinded one is returned as
// is. Per §7, an error here means the caller must
// flush downstream queues before this returns to the stage boundary —
// Wait itself only performs the join, it does not touch queues.
func (g *WorkerGroup) Wait() error {
	for i, done := range g.done {
		<-done
		if g.errs[i] != nil && g.err == nil {
			g.err = g.errs[i]
		}
	}
	if g.err != nil {
		if _, ok := errs.KindOf(g.err); ok {
			return g.err
		}
		return errs.Wrap(errs.IO, g.err, "worker group failed")
	}
	return nil
}

// Stop returns the group's shared stop token.
func (g *WorkerGroup) Stop() *StopToken { return g.stop }
