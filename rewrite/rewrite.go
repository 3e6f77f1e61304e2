package rewrite

import (
	"errors"
	"fmt"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
)

// ErrSignatureMismatch is returned when a replacement circuit's
// boundary does not line up with the subgraph's boundary.
var ErrSignatureMismatch = errors.New("rewrite: replacement signature does not match subgraph boundary")

// Rewrite replaces a convex subgraph of a circuit with an equivalent
// replacement fragment, adding a scalar phase correction. A rewrite is
// applied exactly once; application is all-or-nothing.
type Rewrite struct {
	sub         *Subgraph
	replacement *circuit.Circuit
	phaseDelta  float64
	applied     bool
}

// New validates that the replacement circuit's boundary matches the
// subgraph positionally and returns the rewrite.
func New(sub *Subgraph, replacement *circuit.Circuit, phaseDelta float64) (*Rewrite, error) {
	if sub.NumInputs() != replacement.QubitCount() || sub.NumOutputs() != replacement.QubitCount() {
		return nil, fmt.Errorf("%w: boundary %d/%d vs replacement %d qubits",
			ErrSignatureMismatch, sub.NumInputs(), sub.NumOutputs(), replacement.QubitCount())
	}
	return &Rewrite{sub: sub, replacement: replacement, phaseDelta: phaseDelta}, nil
}

// Subgraph returns the region the rewrite removes.
func (r *Rewrite) Subgraph() *Subgraph { return r.sub }

// PhaseDelta returns the scalar phase correction of the rewrite.
func (r *Rewrite) PhaseDelta() float64 { return r.phaseDelta }

// NodeCountDelta returns the change in gate count the rewrite causes.
func (r *Rewrite) NodeCountDelta() int {
	return r.replacement.NumGates() - len(r.sub.nodes)
}

// Apply performs the substitution on c:
//
//  1. disconnect every boundary wire of the target subgraph,
//  2. remove the subgraph's nodes,
//  3. splice in the replacement's nodes, wiring its boundary to the
//     saved external endpoints in positional order,
//  4. add the phase delta to the circuit's global phase.
//
// A rewrite built from a validated match never fails here; an error
// from Apply indicates graph corruption and the caller should abort.
func (r *Rewrite) Apply(c *circuit.Circuit) error {
	if r.applied {
		return errors.New("rewrite: already applied")
	}
	g := c.Graph()

	// Save the external endpoints before touching any wire.
	extSrc := make([]graph.Endpoint, len(r.sub.incoming))
	for i, group := range r.sub.incoming {
		if len(group) == 0 {
			return fmt.Errorf("%w: empty incoming group %d", ErrInvalidBoundary, i)
		}
		src, ok := g.SingleLinked(group[0].Node, group[0].Port)
		if !ok {
			return fmt.Errorf("%w: incoming endpoint %v has no source", ErrInvalidBoundary, group[0])
		}
		extSrc[i] = src
	}
	extDst := make([][]graph.Endpoint, len(r.sub.outgoing))
	for j, ep := range r.sub.outgoing {
		for _, dst := range g.LinkedPorts(ep.Node, ep.Port) {
			if !r.sub.Contains(dst.Node) {
				extDst[j] = append(extDst[j], dst)
			}
		}
		if len(extDst[j]) == 0 {
			return fmt.Errorf("%w: outgoing endpoint %v has no target", ErrInvalidBoundary, ep)
		}
	}

	// Disconnect the boundary, then drop the region.
	for _, group := range r.sub.incoming {
		for _, ep := range group {
			if err := g.Disconnect(ep.Node, ep.Port); err != nil {
				return err
			}
		}
	}
	for _, ep := range r.sub.outgoing {
		if err := g.Disconnect(ep.Node, ep.Port); err != nil {
			return err
		}
	}
	for _, n := range r.sub.nodes {
		if err := g.RemoveNode(n); err != nil {
			return err
		}
	}

	// Splice in the replacement.
	rg := r.replacement.Graph()
	rin, rout := r.replacement.InputNode(), r.replacement.OutputNode()
	mapped := make(map[graph.NodeIndex]graph.NodeIndex)
	for _, n := range rg.Nodes() {
		if n == rin || n == rout {
			continue
		}
		mapped[n] = g.AddNode(rg.Op(n))
	}
	for _, n := range rg.Nodes() {
		if n == rout {
			continue
		}
		for off := 0; off < rg.NumOutputs(n); off++ {
			for _, dst := range rg.LinkedPorts(n, graph.OutgoingPort(off)) {
				if err := r.spliceWire(g, mapped, rin, rout, n, off, dst, extSrc, extDst); err != nil {
					return err
				}
			}
		}
	}

	c.AddPhase(r.phaseDelta)
	r.applied = true
	return nil
}

// spliceWire recreates one replacement wire inside the host graph,
// substituting the replacement boundary with the saved external
// endpoints.
func (r *Rewrite) spliceWire(g *graph.Graph, mapped map[graph.NodeIndex]graph.NodeIndex,
	rin, rout graph.NodeIndex, src graph.NodeIndex, srcOffset int, dst graph.Endpoint,
	extSrc []graph.Endpoint, extDst [][]graph.Endpoint,
) error {
	switch {
	case src == rin && dst.Node == rout:
		// Passthrough wire: connect the external source directly to the
		// external targets.
		for _, t := range extDst[dst.Port.Offset] {
			if err := g.Connect(extSrc[srcOffset].Node, extSrc[srcOffset].Port.Offset, t.Node, t.Port.Offset); err != nil {
				return err
			}
		}
	case src == rin:
		if err := g.Connect(extSrc[srcOffset].Node, extSrc[srcOffset].Port.Offset, mapped[dst.Node], dst.Port.Offset); err != nil {
			return err
		}
	case dst.Node == rout:
		for _, t := range extDst[dst.Port.Offset] {
			if err := g.Connect(mapped[src], srcOffset, t.Node, t.Port.Offset); err != nil {
				return err
			}
		}
	default:
		if err := g.Connect(mapped[src], srcOffset, mapped[dst.Node], dst.Port.Offset); err != nil {
			return err
		}
	}
	return nil
}
