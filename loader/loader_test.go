package loader

import (
	"testing"

	"github.com/seqsense/splatmesh/bucket"
	"github.com/seqsense/splatmesh/errs"
	"github.com/seqsense/splatmesh/pipeline"
	"github.com/seqsense/splatmesh/splat/rangeset"
)

func bin(n uint64) bucket.Bin {
	return bucket.Bin{Ranges: []rangeset.Range{{Size: n}}}
}

func drain(q *pipeline.Queue[Batch]) []Batch {
	var out []Batch
	for {
		b, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
		if b.Empty() {
			return out
		}
	}
}

func TestCollectorBatchesUpToBudget(t *testing.T) {
	queues := []*pipeline.Queue[Batch]{pipeline.NewQueue[Batch](8)}
	c := NewCollector(10, queues, pipeline.NewStopToken())

	bins := []bucket.Bin{bin(4), bin(4), bin(4), bin(1)}
	i := 0
	next := func() (bucket.Bin, bool, error) {
		if i >= len(bins) {
			return bucket.Bin{}, false, nil
		}
		b := bins[i]
		i++
		return b, true, nil
	}
	workers := pipeline.NewWorkerGroup(1, func(id int, stop *pipeline.StopToken) error { return nil })

	if err := c.Run(next, workers); err != nil {
		t.Fatal(err)
	}
	got := drain(queues[0])
	if len(got) != 3 {
		t.Fatalf("got %d batches (incl. shutdown sentinel), want 3", len(got))
	}
	if len(got[0].Bins) != 2 || len(got[1].Bins) != 2 || !got[2].Empty() {
		t.Errorf("batches = %+v", got)
	}
}

func TestCollectorScattersRoundRobin(t *testing.T) {
	queues := []*pipeline.Queue[Batch]{
		pipeline.NewQueue[Batch](4),
		pipeline.NewQueue[Batch](4),
	}
	c := NewCollector(1, queues, pipeline.NewStopToken())
	bins := []bucket.Bin{bin(1), bin(1), bin(1)}
	i := 0
	next := func() (bucket.Bin, bool, error) {
		if i >= len(bins) {
			return bucket.Bin{}, false, nil
		}
		b := bins[i]
		i++
		return b, true, nil
	}
	workers := pipeline.NewWorkerGroup(2, func(id int, stop *pipeline.StopToken) error { return nil })
	if err := c.Run(next, workers); err != nil {
		t.Fatal(err)
	}
	got0 := drain(queues[0])
	got1 := drain(queues[1])
	nonEmpty0 := len(got0) - 1
	nonEmpty1 := len(got1) - 1
	if nonEmpty0 != 2 || nonEmpty1 != 1 {
		t.Errorf("worker0 got %d batches, worker1 got %d, want 2 and 1", nonEmpty0, nonEmpty1)
	}
}

func TestCollectorFlushesAndRethrowsOnProducerError(t *testing.T) {
	queues := []*pipeline.Queue[Batch]{pipeline.NewQueue[Batch](4)}
	c := NewCollector(100, queues, pipeline.NewStopToken())
	wantErr := errs.New(errs.IO, "producer failed")
	called := 0
	next := func() (bucket.Bin, bool, error) {
		called++
		if called == 1 {
			return bin(3), true, nil
		}
		return bucket.Bin{}, false, wantErr
	}
	workers := pipeline.NewWorkerGroup(1, func(id int, stop *pipeline.StopToken) error {
		drain(queues[0])
		return nil
	})
	workers.Start()

	err := c.Run(next, workers)
	if err != wantErr {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
}
