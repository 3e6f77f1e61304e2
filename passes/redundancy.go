package passes

import (
	"fmt"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
)

// RemoveRedundancies drops operations that are identities up to a
// global phase (accumulating the phase on the circuit) and adjacent
// dagger pairs, repeating until a fixed point. Returns the number of
// nodes removed.
func RemoveRedundancies(c *circuit.Circuit) int {
	g := c.Graph()
	candidates := make(map[graph.NodeIndex]struct{})
	for _, cmd := range c.Commands() {
		candidates[cmd.Node] = struct{}{}
	}

	removed := 0
	for len(candidates) > 0 {
		var n graph.NodeIndex
		for k := range candidates {
			n = k
			break
		}
		delete(candidates, n)
		if !g.Contains(n) {
			continue
		}
		op := g.Op(n)
		if op.IsBoundary() {
			continue
		}

		if phase, ok := op.IdentityPhase(); ok {
			requeueNeighbours(g, candidates, n)
			bypassNode(c, n)
			c.AddPhase(phase)
			removed++
			continue
		}

		// A dagger pair: every output wire of n runs port-to-port into
		// the same successor, and that successor is n's adjoint.
		succ, ok := soleAlignedSuccessor(g, n)
		if !ok {
			continue
		}
		dagger, ok := g.Op(succ).Dagger()
		if !ok || !op.Equal(dagger) {
			continue
		}
		requeueNeighbours(g, candidates, n)
		requeueNeighbours(g, candidates, succ)
		bypassPair(c, n, succ)
		removed += 2
	}
	return removed
}

// soleAlignedSuccessor returns the unique node receiving all of n's
// output wires with matching port offsets.
func soleAlignedSuccessor(g *graph.Graph, n graph.NodeIndex) (graph.NodeIndex, bool) {
	var succ graph.NodeIndex = graph.InvalidNode
	for off := 0; off < g.NumOutputs(n); off++ {
		ep, ok := g.SingleLinked(n, graph.OutgoingPort(off))
		if !ok || ep.Port.Offset != off {
			return graph.InvalidNode, false
		}
		if succ == graph.InvalidNode {
			succ = ep.Node
		} else if succ != ep.Node {
			return graph.InvalidNode, false
		}
	}
	if succ == graph.InvalidNode || g.Op(succ).IsBoundary() {
		return graph.InvalidNode, false
	}
	return succ, true
}

func requeueNeighbours(g *graph.Graph, set map[graph.NodeIndex]struct{}, n graph.NodeIndex) {
	for _, m := range g.Neighbours(n, graph.Incoming) {
		set[m] = struct{}{}
	}
	for _, m := range g.Neighbours(n, graph.Outgoing) {
		set[m] = struct{}{}
	}
}

// bypassNode removes n, wiring each predecessor straight to the
// successor on the same port offset.
func bypassNode(c *circuit.Circuit, n graph.NodeIndex) {
	g := c.Graph()
	type hop struct{ src, dst graph.Endpoint }
	var hops []hop
	for off := 0; off < g.NumInputs(n); off++ {
		src, okIn := g.SingleLinked(n, graph.IncomingPort(off))
		dst, okOut := g.SingleLinked(n, graph.OutgoingPort(off))
		if !okIn || !okOut {
			panic(fmt.Sprintf("passes: bypassing partially wired node %d", n))
		}
		hops = append(hops, hop{src, dst})
	}
	if err := g.RemoveNode(n); err != nil {
		panic(fmt.Sprintf("passes: removing node %d: %v", n, err))
	}
	for _, h := range hops {
		if err := g.Connect(h.src.Node, h.src.Port.Offset, h.dst.Node, h.dst.Port.Offset); err != nil {
			panic(fmt.Sprintf("passes: reconnecting around node %d: %v", n, err))
		}
	}
}

// bypassPair removes the adjacent pair (a, b), wiring a's predecessors
// to b's successors positionally.
func bypassPair(c *circuit.Circuit, a, b graph.NodeIndex) {
	g := c.Graph()
	type hop struct{ src, dst graph.Endpoint }
	var hops []hop
	for off := 0; off < g.NumInputs(a); off++ {
		src, okIn := g.SingleLinked(a, graph.IncomingPort(off))
		dst, okOut := g.SingleLinked(b, graph.OutgoingPort(off))
		if !okIn || !okOut {
			panic(fmt.Sprintf("passes: bypassing partially wired pair (%d, %d)", a, b))
		}
		hops = append(hops, hop{src, dst})
	}
	if err := g.RemoveNode(a); err != nil {
		panic(fmt.Sprintf("passes: removing node %d: %v", a, err))
	}
	if err := g.RemoveNode(b); err != nil {
		panic(fmt.Sprintf("passes: removing node %d: %v", b, err))
	}
	for _, h := range hops {
		if err := g.Connect(h.src.Node, h.src.Port.Offset, h.dst.Node, h.dst.Port.Offset); err != nil {
			panic(fmt.Sprintf("passes: reconnecting around pair (%d, %d): %v", a, b, err))
		}
	}
}
