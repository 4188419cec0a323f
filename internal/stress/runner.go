package stress

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/xyhelper/condqueue"
)

// queue is the part of condqueue.Queue and condqueue.BoundedQueue a run uses.
type queue interface {
	Push(int)
	Pop() int
	Len() int
}

func newQueue(cfg Config, opts []condqueue.Option) (queue, error) {
	if cfg.Capacity == 0 {
		return condqueue.New[int](opts...), nil
	}
	q, err := condqueue.NewBounded[int](cfg.Capacity, opts...)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Run pushes cfg.Total() distinct values through one queue and checks that
// every value comes out exactly once. Producer p pushes p*Items ... p*Items +
// Items-1 in order; consumers pop fixed shares that add up to the total, so
// the run ends without any close or cancellation.
//
// A non-nil error means the run could not start. Property violations are
// reported in the Report; see Report.Err.
func Run(cfg Config, log logr.Logger, opts ...condqueue.Option) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	q, err := newQueue(cfg, opts)
	if err != nil {
		return Report{}, err
	}

	total := cfg.Total()
	log.Info("run started",
		"capacity", cfg.Capacity,
		"producers", cfg.Producers,
		"consumers", cfg.Consumers,
		"items", total)

	var (
		pushed atomic.Int64
		popped atomic.Int64
		depth  atomic.Int64
	)
	done := make(chan struct{})
	sampled := make(chan struct{})
	go func() {
		defer close(sampled)
		sample(q, cfg.SampleEvery, &depth, done)
	}()

	results := make([][]int, cfg.Consumers)
	start := time.Now()

	var g errgroup.Group
	for c := range cfg.Consumers {
		share := total / cfg.Consumers
		if c < total%cfg.Consumers {
			share++
		}
		g.Go(func() error {
			got := make([]int, 0, share)
			for range share {
				got = append(got, q.Pop())
				popped.Add(1)
			}
			results[c] = got
			log.V(1).Info("consumer done", "consumer", c, "popped", share)
			return nil
		})
	}
	for p := range cfg.Producers {
		g.Go(func() error {
			base := p * cfg.Items
			for i := range cfg.Items {
				q.Push(base + i)
				pushed.Add(1)
			}
			log.V(1).Info("producer done", "producer", p, "pushed", cfg.Items)
			return nil
		})
	}
	err = g.Wait()
	elapsed := time.Since(start)
	close(done)
	<-sampled
	if err != nil {
		return Report{}, err
	}

	r := check(cfg, results)
	r.Pushed = int(pushed.Load())
	r.Popped = int(popped.Load())
	r.MaxDepth = int(depth.Load())
	r.Elapsed = elapsed
	log.Info("run finished",
		"elapsed", elapsed,
		"maxDepth", r.MaxDepth,
		"ok", r.Err() == nil)
	return r, nil
}

// sample records the largest observed queue length in peak until done closes.
func sample(q queue, every time.Duration, peak *atomic.Int64, done <-chan struct{}) {
	var tick <-chan time.Time
	if every > 0 {
		t := time.NewTicker(every)
		defer t.Stop()
		tick = t.C
	}
	for {
		if n := int64(q.Len()); n > peak.Load() {
			peak.Store(n)
		}
		if tick == nil {
			select {
			case <-done:
				return
			default:
				runtime.Gosched()
			}
			continue
		}
		select {
		case <-done:
			return
		case <-tick:
		}
	}
}

// check compares what the consumers received against what was pushed.
func check(cfg Config, results [][]int) Report {
	r := Report{Config: cfg}
	counts := make([]int, cfg.Total())
	for _, got := range results {
		last := make(map[int]int, cfg.Producers)
		for _, v := range got {
			if v < 0 || v >= len(counts) {
				r.Unexpected++
				continue
			}
			counts[v]++
			p := v / cfg.Items
			if prev, ok := last[p]; ok && v <= prev {
				r.OutOfOrder++
			}
			last[p] = v
		}
	}
	for _, n := range counts {
		switch {
		case n == 0:
			r.Missing++
		case n > 1:
			r.Duplicates += n - 1
		}
	}
	return r
}
