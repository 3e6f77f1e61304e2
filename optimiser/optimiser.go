package optimiser

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/ops"
)

// CostFn scores a single operation. Circuit cost is the sum over all
// non-boundary nodes; the search minimises it.
type CostFn func(ops.Op) uint

// DefaultCost counts two-qubit gates, the usual target on hardware
// where entangling gates dominate error rates.
func DefaultCost(op ops.Op) uint {
	if op.NumQubits() == 2 {
		return 1
	}
	return 0
}

// GateCountCost counts every gate equally.
func GateCountCost(ops.Op) uint { return 1 }

// Options control a single optimisation run.
type Options struct {
	// Timeout bounds the search wall time. Zero means no timeout.
	Timeout time.Duration
	// NWorkers is the number of workers popping from the shared
	// frontier. Values below 1 mean a single worker.
	NWorkers int
	// SplitCircuit partitions the circuit into per-worker qubit
	// chunks optimised independently and recombined.
	SplitCircuit bool
}

// Optimiser explores the space of circuits reachable by rewriting,
// keeping the cheapest one seen.
type Optimiser struct {
	rewriter Rewriter
	cost     CostFn
	log      *zap.Logger
}

// New builds an optimiser over the given rewriter and cost function.
// A nil cost defaults to DefaultCost.
func New(rw Rewriter, cost CostFn) *Optimiser {
	if cost == nil {
		cost = DefaultCost
	}
	return &Optimiser{rewriter: rw, cost: cost, log: zap.NewNop()}
}

// WithLogger returns a copy of the optimiser reporting incumbent
// improvements and run summaries to l. Logging never affects the
// search outcome.
func (o *Optimiser) WithLogger(l *zap.Logger) *Optimiser {
	out := *o
	out.log = l
	return &out
}

// entry is a frontier element.
type entry struct {
	circ *circuit.Circuit
	cost uint
	hash uint64
}

// frontier is a min-cost heap of unexplored circuits.
type frontier []*entry

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*entry)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}

// search is the state shared by all workers of one run.
type search struct {
	mu       sync.Mutex
	cond     *sync.Cond
	frontier frontier
	seen     map[uint64]struct{}
	best     *circuit.Circuit
	bestCost uint
	waiting  int
	nWorkers int
	closed   bool
	explored int
	err      error
	start    time.Time
	log      *zap.Logger
}

func (s *search) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// fail aborts the search, keeping the first error reported.
func (s *search) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// next pops the cheapest unexplored circuit, blocking while the
// frontier is empty and other workers may still refill it. The second
// return is false once the search is over.
func (s *search) next() (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.frontier) == 0 {
		if s.closed {
			return nil, false
		}
		s.waiting++
		if s.waiting == s.nWorkers {
			s.closed = true
			s.cond.Broadcast()
			s.waiting--
			return nil, false
		}
		s.cond.Wait()
		s.waiting--
	}
	if s.closed {
		return nil, false
	}
	e := heap.Pop(&s.frontier).(*entry)
	s.explored++
	return e, true
}

// offer inserts a successor unless its hash was already seen, and
// advances the incumbent when it improves.
func (s *search) offer(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[e.hash]; ok {
		return
	}
	s.seen[e.hash] = struct{}{}
	heap.Push(&s.frontier, e)
	if e.cost < s.bestCost {
		s.best = e.circ
		s.bestCost = e.cost
		s.log.Info("new best circuit",
			zap.Uint("cost", e.cost),
			zap.Duration("elapsed", time.Since(s.start)))
	}
	s.cond.Signal()
}

// Optimise searches for the cheapest circuit equivalent to c. It
// returns the best circuit found and whether it improves on the
// input. The input circuit is never mutated. A rewrite that fails to
// apply aborts the run with an error: past that point the explored
// space is unsound.
func (o *Optimiser) Optimise(ctx context.Context, c *circuit.Circuit, opts Options) (*circuit.Circuit, bool, error) {
	nWorkers := opts.NWorkers
	if nWorkers < 1 {
		nWorkers = 1
	}
	if opts.SplitCircuit && nWorkers > 1 {
		return o.optimiseSplit(ctx, c, opts, nWorkers)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	initialCost := c.CircuitCost(o.cost)
	root := &entry{circ: c.Clone(), cost: initialCost, hash: c.Hash()}

	s := &search{
		seen:     map[uint64]struct{}{root.hash: {}},
		best:     root.circ,
		bestCost: root.cost,
		nWorkers: nWorkers,
		start:    time.Now(),
		log:      o.log,
	}
	s.cond = sync.NewCond(&s.mu)
	heap.Push(&s.frontier, root)

	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-stopWatch:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.worker(ctx, s)
		}()
	}
	wg.Wait()
	close(stopWatch)

	s.mu.Lock()
	best, bestCost, explored, sErr := s.best, s.bestCost, s.explored, s.err
	s.mu.Unlock()
	if sErr != nil {
		o.log.Error("search aborted", zap.Error(sErr))
		return nil, false, sErr
	}

	o.log.Info("search finished",
		zap.Int("explored", explored),
		zap.Uint("cost", bestCost),
		zap.Duration("elapsed", time.Since(s.start)),
		zap.Bool("timed_out", ctx.Err() != nil))
	return best, bestCost < initialCost, nil
}

func (o *Optimiser) worker(ctx context.Context, s *search) {
	for {
		if ctx.Err() != nil {
			s.close()
			return
		}
		e, ok := s.next()
		if !ok {
			return
		}
		for _, rw := range o.rewriter.GetRewrites(e.circ) {
			succ := e.circ.Clone()
			if err := rw.Apply(succ); err != nil {
				// Applying a match-validated rewrite only fails on a
				// corrupted graph; the whole run is unsound past this
				// point, so abort instead of recovering.
				s.fail(errors.Wrap(err, "applying validated rewrite"))
				return
			}
			s.offer(&entry{
				circ: succ,
				cost: succ.CircuitCost(o.cost),
				hash: succ.Hash(),
			})
		}
	}
}
