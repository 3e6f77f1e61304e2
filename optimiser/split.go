package optimiser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dlyongemallo/tket2/circuit"
)

// ErrSplitBoundary reports a gate whose qubits span more than one
// chunk. Splitting is only valid when the caller's circuit keeps
// entangling gates within chunk boundaries.
var ErrSplitBoundary = errors.New("optimiser: gate crosses chunk boundary")

// chunk is a contiguous qubit range optimised in isolation.
type chunk struct {
	start int
	circ  *circuit.Circuit
}

// optimiseSplit partitions the circuit into one contiguous qubit
// chunk per worker, optimises each chunk independently, and recombines
// the results positionally.
func (o *Optimiser) optimiseSplit(ctx context.Context, c *circuit.Circuit, opts Options, nWorkers int) (*circuit.Circuit, bool, error) {
	initialCost := c.CircuitCost(o.cost)

	chunks, err := splitQubits(c, nWorkers)
	if err != nil {
		return nil, false, err
	}
	o.log.Info("split circuit", zap.Int("chunks", len(chunks)))

	results := make([]*circuit.Circuit, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, ch := range chunks {
		wg.Add(1)
		go func(i int, ch chunk) {
			defer wg.Done()
			sub := Options{Timeout: opts.Timeout, NWorkers: 1}
			results[i], _, errs[i] = o.Optimise(ctx, ch.circ, sub)
		}(i, ch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, false, err
		}
	}

	out, err := recombine(c.QubitCount(), chunks, results)
	if err != nil {
		return nil, false, err
	}
	outCost := out.CircuitCost(o.cost)
	if outCost >= initialCost {
		return c.Clone(), false, nil
	}
	return out, true, nil
}

// splitQubits cuts the circuit into at most n contiguous qubit ranges
// of near-equal width.
func splitQubits(c *circuit.Circuit, n int) ([]chunk, error) {
	total := c.QubitCount()
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}

	starts := make([]int, n+1)
	for k := 0; k <= n; k++ {
		starts[k] = k * total / n
	}
	chunkOf := func(q int) int {
		for k := 0; k < n; k++ {
			if q < starts[k+1] {
				return k
			}
		}
		return n - 1
	}

	chunks := make([]chunk, n)
	for k := 0; k < n; k++ {
		cc, err := circuit.Build(starts[k+1]-starts[k], func(*circuit.Circuit) error { return nil })
		if err != nil {
			return nil, err
		}
		chunks[k] = chunk{start: starts[k], circ: cc}
	}
	chunks[0].circ.AddPhase(c.GlobalPhase())

	for _, cmd := range c.Commands() {
		qubits := cmd.Qubits()
		if len(qubits) != len(cmd.Units) {
			return nil, fmt.Errorf("%w: node %d uses non-qubit wires", ErrSplitBoundary, cmd.Node)
		}
		k := chunkOf(qubits[0])
		local := make([]int, len(qubits))
		for i, q := range qubits {
			if chunkOf(q) != k {
				return nil, fmt.Errorf("%w: node %d spans chunks %d and %d", ErrSplitBoundary, cmd.Node, k, chunkOf(q))
			}
			local[i] = q - starts[k]
		}
		if err := chunks[k].circ.Append(cmd.Op, local...); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// recombine replays each optimised chunk onto a fresh circuit at its
// original qubit offset.
func recombine(total int, chunks []chunk, results []*circuit.Circuit) (*circuit.Circuit, error) {
	return circuit.Build(total, func(out *circuit.Circuit) error {
		for i, res := range results {
			out.AddPhase(res.GlobalPhase())
			for _, cmd := range res.Commands() {
				global := make([]int, 0, len(cmd.Units))
				for _, q := range cmd.Qubits() {
					global = append(global, q+chunks[i].start)
				}
				if err := out.Append(cmd.Op, global...); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
