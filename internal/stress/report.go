package stress

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Report summarizes a Run.
type Report struct {
	Config Config

	Pushed int
	Popped int

	// Missing counts values pushed but never popped, Duplicates values popped
	// more than once, and Unexpected values that were never pushed.
	Missing    int
	Duplicates int
	Unexpected int

	// OutOfOrder counts pops where a consumer saw a producer's value after a
	// later value from the same producer.
	OutOfOrder int

	// MaxDepth is the largest sampled queue length.
	MaxDepth int

	Elapsed time.Duration
}

// Err returns nil when the run delivered every value exactly once, in order
// per producer and consumer, without exceeding the queue capacity.
func (r Report) Err() error {
	var errs []error
	if r.Pushed != r.Popped {
		errs = append(errs, fmt.Errorf("pushed %d values but popped %d", r.Pushed, r.Popped))
	}
	if r.Missing > 0 {
		errs = append(errs, fmt.Errorf("%d values lost", r.Missing))
	}
	if r.Duplicates > 0 {
		errs = append(errs, fmt.Errorf("%d values delivered more than once", r.Duplicates))
	}
	if r.Unexpected > 0 {
		errs = append(errs, fmt.Errorf("%d values never pushed", r.Unexpected))
	}
	if r.OutOfOrder > 0 {
		errs = append(errs, fmt.Errorf("%d values out of order", r.OutOfOrder))
	}
	if c := r.Config.Capacity; c > 0 && r.MaxDepth > c {
		errs = append(errs, fmt.Errorf("queue held %d values, capacity is %d", r.MaxDepth, c))
	}
	return errors.Join(errs...)
}

// Throughput is values moved per second.
func (r Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Popped) / r.Elapsed.Seconds()
}

// WriteTo prints a human readable summary.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	capacity := "unbounded"
	if r.Config.Capacity > 0 {
		capacity = fmt.Sprint(r.Config.Capacity)
	}
	status := "ok"
	if err := r.Err(); err != nil {
		status = "FAILED: " + err.Error()
	}
	n, err := fmt.Fprintf(w,
		"capacity:    %s\nproducers:   %d\nconsumers:   %d\npushed:      %d\npopped:      %d\nmax depth:   %d\nelapsed:     %s\nthroughput:  %.0f/s\nstatus:      %s\n",
		capacity, r.Config.Producers, r.Config.Consumers,
		r.Pushed, r.Popped, r.MaxDepth,
		r.Elapsed.Round(time.Microsecond), r.Throughput(), status)
	return int64(n), err
}
