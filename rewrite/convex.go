// Package rewrite identifies boundary-consistent regions of a circuit
// and replaces them atomically with equivalent fragments, tracking the
// global phase correction.
package rewrite

import (
	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
)

// ConvexChecker amortizes an O(graph size) precomputation across
// repeated convexity checks on the same circuit. It must not be reused
// after the circuit is mutated.
type ConvexChecker struct {
	c       *circuit.Circuit
	topoPos map[graph.NodeIndex]int
}

// NewConvexChecker precomputes topological positions for the circuit.
func NewConvexChecker(c *circuit.Circuit) *ConvexChecker {
	order, err := c.Graph().TopoOrder()
	if err != nil {
		panic("rewrite: convexity checking on a cyclic graph")
	}
	pos := make(map[graph.NodeIndex]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	return &ConvexChecker{c: c, topoPos: pos}
}

// IsConvex reports whether no path leaves the node set and re-enters
// it. It walks forward from the set's external successors, pruned by
// topological position: a path can only re-enter through a node that
// precedes the set's last member.
func (cc *ConvexChecker) IsConvex(nodes map[graph.NodeIndex]struct{}) bool {
	if len(nodes) == 0 {
		return false
	}
	maxPos := -1
	for n := range nodes {
		if p := cc.topoPos[n]; p > maxPos {
			maxPos = p
		}
	}

	var frontier []graph.NodeIndex
	visited := make(map[graph.NodeIndex]struct{})
	for n := range nodes {
		for _, succ := range cc.c.Graph().Neighbours(n, graph.Outgoing) {
			if _, in := nodes[succ]; in {
				continue
			}
			if _, seen := visited[succ]; !seen && cc.topoPos[succ] < maxPos {
				visited[succ] = struct{}{}
				frontier = append(frontier, succ)
			}
		}
	}
	for len(frontier) > 0 {
		n := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, succ := range cc.c.Graph().Neighbours(n, graph.Outgoing) {
			if _, in := nodes[succ]; in {
				return false
			}
			if _, seen := visited[succ]; !seen && cc.topoPos[succ] < maxPos {
				visited[succ] = struct{}{}
				frontier = append(frontier, succ)
			}
		}
	}
	return true
}
