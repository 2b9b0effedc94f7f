// Package loader implements the bounded-memory bucket loader/collector
// of §4.D: batching bins into groups bounded by a splat budget, scattering
// each batch to one of a fixed pool of GPU workers, and running the
// flush-then-shutdown-then-rethrow protocol on producer failure.
package loader

import (
	"github.com/seqsense/splatmesh/bucket"
	"github.com/seqsense/splatmesh/pipeline"
)

// Batch is a group of bins handed to one GPU worker in a single unit. A
// zero-sized Batch (no Bins) is the shutdown sentinel workers watch for.
type Batch struct {
	Bins []bucket.Bin
}

// Empty reports whether b is the shutdown sentinel.
func (b Batch) Empty() bool { return len(b.Bins) == 0 }

// Collector batches bins into groups that together carry at most
// MaxLoadSplats splats, then scatters each batch round-robin across a
// fixed set of worker queues.
type Collector struct {
	MaxLoadSplats uint64
	Queues        []*pipeline.Queue[Batch]
	Stop          *pipeline.StopToken

	next int
	cur  Batch
	n    uint64
}

// NewCollector creates a collector scattering across the given worker
// queues, one per GPU worker.
func NewCollector(maxLoadSplats uint64, queues []*pipeline.Queue[Batch], stop *pipeline.StopToken) *Collector {
	return &Collector{MaxLoadSplats: maxLoadSplats, Queues: queues, Stop: stop}
}

func (c *Collector) scatter(b Batch) bool {
	q := c.Queues[c.next]
	c.next = (c.next + 1) % len(c.Queues)
	return q.Push(b, c.Stop.C())
}

func (c *Collector) flush() {
	if len(c.cur.Bins) == 0 {
		return
	}
	c.scatter(c.cur)
	c.cur = Batch{}
	c.n = 0
}

// shutdown sends the zero-sized sentinel to every worker and closes its
// queue, per §4.D's "zero-sized batch sent to each worker".
func (c *Collector) shutdown() {
	for _, q := range c.Queues {
		q.Push(Batch{}, c.Stop.C())
		q.Close()
	}
}

// Next yields the next bin to collect, or ok=false at end of input, or a
// non-nil error if production failed.
type Next func() (bin bucket.Bin, ok bool, err error)

// Run drains next, batching bins up to MaxLoadSplats and scattering each
// full batch, until next reports ok=false (normal end) or a non-nil
// error. On normal end it flushes any partial batch and signals shutdown
// to every worker, then returns nil — joining the workers is the
// caller's responsibility via the WorkerGroup it started them with. On
// error it flushes, signals shutdown, joins workers itself (so a caller
// that propagates the error immediately still leaves every worker
// drained), and rethrows the original error regardless of what the join
// returns.
func (c *Collector) Run(next Next, workers *pipeline.WorkerGroup) error {
	for {
		bin, ok, err := next()
		if err != nil {
			c.flush()
			c.shutdown()
			_ = workers.Wait()
			return err
		}
		if !ok {
			break
		}
		count := bin.SplatCount()
		if c.n+count > c.MaxLoadSplats && len(c.cur.Bins) > 0 {
			c.flush()
		}
		c.cur.Bins = append(c.cur.Bins, bin)
		c.n += count
	}
	c.flush()
	c.shutdown()
	return nil
}
