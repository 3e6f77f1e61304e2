// Package circuit represents quantum circuits as dataflow graphs with
// designated input and output boundary nodes and a global phase
// accumulator.
package circuit

import (
	"errors"
	"fmt"
	"math"

	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// Structural errors surfaced to callers.
var (
	ErrMissingBoundary   = errors.New("circuit: boundary node missing from graph")
	ErrNotBoundary       = errors.New("circuit: node is not an Input/Output marker")
	ErrArityMismatch     = errors.New("circuit: operation arity does not match arguments")
	ErrInvalidQubit      = errors.New("circuit: qubit index out of range")
	ErrDeleteNonEmpty    = errors.New("circuit: wire is not empty")
	ErrInvalidPortOffset = errors.New("circuit: invalid port offset")
)

// Circuit is a dataflow graph with exactly one Input and one Output
// boundary node, plus a scalar global phase in half-turns.
//
// The boundary nodes' identity must not change after construction;
// mutations go through the circuit's own methods or through the rewrite
// package, both of which preserve it.
type Circuit struct {
	g       *graph.Graph
	input   graph.NodeIndex
	output  graph.NodeIndex
	phase   float64
	nqubits int
}

// New returns an empty circuit on n qubits: Input wired straight to
// Output on every qubit.
func New(n int) *Circuit {
	g := graph.New(n + 2)
	in := g.AddNode(ops.InputNode(n))
	out := g.AddNode(ops.OutputNode(n))
	for i := 0; i < n; i++ {
		if err := g.Connect(in, i, out, i); err != nil {
			panic(fmt.Sprintf("circuit: wiring empty circuit: %v", err))
		}
	}
	return &Circuit{g: g, input: in, output: out, nqubits: n}
}

// FromGraph wraps an existing graph as a circuit. The designated
// boundary nodes must exist and carry Input/Output operations.
func FromGraph(g *graph.Graph, input, output graph.NodeIndex, phase float64) (*Circuit, error) {
	if !g.Contains(input) || !g.Contains(output) {
		return nil, ErrMissingBoundary
	}
	if g.Op(input).Type != ops.Input || g.Op(output).Type != ops.Output {
		return nil, fmt.Errorf("%w: got %s/%s", ErrNotBoundary,
			g.Op(input).DisplayName(), g.Op(output).DisplayName())
	}
	return &Circuit{
		g:       g,
		input:   input,
		output:  output,
		phase:   normPhase(phase),
		nqubits: g.Op(input).NumQubits(),
	}, nil
}

// Graph exposes the underlying graph for traversal and rewriting.
//
// Mutations must not invalidate the boundary nodes.
func (c *Circuit) Graph() *graph.Graph { return c.g }

// InputNode returns the input boundary node.
func (c *Circuit) InputNode() graph.NodeIndex { return c.input }

// OutputNode returns the output boundary node.
func (c *Circuit) OutputNode() graph.NodeIndex { return c.output }

// QubitCount returns the number of qubits in the circuit signature.
func (c *Circuit) QubitCount() int { return c.nqubits }

// NumGates returns the number of non-boundary nodes.
func (c *Circuit) NumGates() int { return c.g.NodeCount() - 2 }

// Signature returns the wire kinds of the circuit boundary.
func (c *Circuit) Signature() (in, out []ops.WireKind) {
	_, inSig := c.g.Op(c.input).Signature()
	outSig, _ := c.g.Op(c.output).Signature()
	return inSig, outSig
}

// GlobalPhase returns the accumulated global phase in half-turns,
// normalized to [0, 2).
func (c *Circuit) GlobalPhase() float64 { return c.phase }

// AddPhase adds a scalar correction to the global phase.
func (c *Circuit) AddPhase(delta float64) {
	c.phase = normPhase(c.phase + delta)
}

func normPhase(p float64) float64 {
	p = math.Mod(p, 2)
	if p < 0 {
		p += 2
	}
	return p
}

// Append adds an operation acting on the given qubits at the end of the
// circuit, splicing it in before the output boundary.
func (c *Circuit) Append(op ops.Op, qubits ...int) error {
	if op.IsBoundary() {
		return fmt.Errorf("%w: cannot append %s", ErrNotBoundary, op.DisplayName())
	}
	if op.NumQubits() != len(qubits) {
		return fmt.Errorf("%w: %s wants %d qubits, got %d",
			ErrArityMismatch, op.DisplayName(), op.NumQubits(), len(qubits))
	}
	for _, q := range qubits {
		if q < 0 || q >= c.nqubits {
			return fmt.Errorf("%w: %d", ErrInvalidQubit, q)
		}
	}
	n := c.g.AddNode(op)
	for port, q := range qubits {
		src, ok := c.g.SingleLinked(c.output, graph.IncomingPort(q))
		if !ok {
			return fmt.Errorf("circuit: output port %d has no feeding wire", q)
		}
		if err := c.g.Disconnect(c.output, graph.IncomingPort(q)); err != nil {
			return err
		}
		if err := c.g.Connect(src.Node, src.Port.Offset, n, port); err != nil {
			return err
		}
		if err := c.g.Connect(n, port, c.output, q); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	return &Circuit{
		g:       c.g.Clone(),
		input:   c.input,
		output:  c.output,
		phase:   c.phase,
		nqubits: c.nqubits,
	}
}

// CircuitCost folds a per-operation cost over all commands.
func (c *Circuit) CircuitCost(opCost func(ops.Op) uint) uint {
	var total uint
	for _, cmd := range c.Commands() {
		total += opCost(cmd.Op)
	}
	return total
}

// NodesCost folds a per-operation cost over a group of nodes.
func (c *Circuit) NodesCost(nodes []graph.NodeIndex, opCost func(ops.Op) uint) uint {
	var total uint
	for _, n := range nodes {
		total += opCost(c.g.Op(n))
	}
	return total
}

// Build constructs a circuit on n qubits by applying fn to an empty
// circuit. Intended for tests and fixtures.
func Build(n int, fn func(c *Circuit) error) (*Circuit, error) {
	c := New(n)
	if err := fn(c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveEmptyWire deletes a qubit wire that runs straight from the
// input boundary to the output boundary, narrowing the circuit
// signature. The wire is identified by the outgoing port offset at the
// input node. Returns ErrDeleteNonEmpty if any gate acts on the wire.
func (c *Circuit) RemoveEmptyWire(inputOffset int) error {
	if inputOffset < 0 || inputOffset >= c.nqubits {
		return fmt.Errorf("%w: %d", ErrInvalidPortOffset, inputOffset)
	}
	link, ok := c.g.SingleLinked(c.input, graph.OutgoingPort(inputOffset))
	if !ok || link.Node != c.output {
		return fmt.Errorf("%w: input port %d", ErrDeleteNonEmpty, inputOffset)
	}
	outputOffset := link.Port.Offset

	// Rebuild the boundary nodes one qubit narrower, re-homing every
	// other wire with shifted offsets. Passthrough wires keep their
	// input/output pairing.
	type saved struct {
		ep     graph.Endpoint
		offset int
	}
	type passthrough struct {
		in, out int
	}
	var inWires, outWires []saved
	var throughs []passthrough
	oldOutput := c.output
	for off := 0; off < c.nqubits; off++ {
		if off == inputOffset {
			continue
		}
		ep, ok := c.g.SingleLinked(c.input, graph.OutgoingPort(off))
		if !ok {
			continue
		}
		if ep.Node == oldOutput {
			throughs = append(throughs, passthrough{
				shiftedOffset(off, inputOffset),
				shiftedOffset(ep.Port.Offset, outputOffset),
			})
		} else {
			inWires = append(inWires, saved{ep, shiftedOffset(off, inputOffset)})
		}
	}
	for off := 0; off < c.nqubits; off++ {
		if off == outputOffset {
			continue
		}
		ep, ok := c.g.SingleLinked(c.output, graph.IncomingPort(off))
		if !ok || ep.Node == c.input {
			continue
		}
		outWires = append(outWires, saved{ep, shiftedOffset(off, outputOffset)})
	}
	if err := c.g.RemoveNode(c.input); err != nil {
		return err
	}
	if err := c.g.RemoveNode(c.output); err != nil {
		return err
	}
	c.nqubits--
	c.input = c.g.AddNode(ops.InputNode(c.nqubits))
	c.output = c.g.AddNode(ops.OutputNode(c.nqubits))
	for _, w := range inWires {
		if err := c.g.Connect(c.input, w.offset, w.ep.Node, w.ep.Port.Offset); err != nil {
			return err
		}
	}
	for _, w := range outWires {
		if err := c.g.Connect(w.ep.Node, w.ep.Port.Offset, c.output, w.offset); err != nil {
			return err
		}
	}
	for _, pt := range throughs {
		if err := c.g.Connect(c.input, pt.in, c.output, pt.out); err != nil {
			return err
		}
	}
	return nil
}

func shiftedOffset(off, removed int) int {
	if off > removed {
		return off - 1
	}
	return off
}
