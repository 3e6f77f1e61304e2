package rewrite

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
)

// Structural errors returned during subgraph construction.
var (
	ErrNotConvex       = errors.New("rewrite: subgraph is not convex")
	ErrEmptySubgraph   = errors.New("rewrite: empty subgraph")
	ErrInvalidBoundary = errors.New("rewrite: boundary does not cover the crossing wires")
	ErrBoundaryNode    = errors.New("rewrite: subgraph contains a boundary node")
)

// Subgraph is a set of circuit nodes together with ordered incoming and
// outgoing boundary lists covering every wire that crosses the set.
//
// Each incoming boundary position groups the internal incoming ports
// fed by one external source; linear positions hold exactly one port.
type Subgraph struct {
	nodes    []graph.NodeIndex
	nodeSet  map[graph.NodeIndex]struct{}
	incoming [][]graph.Endpoint
	outgoing []graph.Endpoint
}

// Nodes returns the nodes of the subgraph.
func (s *Subgraph) Nodes() []graph.NodeIndex { return s.nodes }

// Contains reports whether the node belongs to the subgraph.
func (s *Subgraph) Contains(n graph.NodeIndex) bool {
	_, ok := s.nodeSet[n]
	return ok
}

// NumInputs returns the incoming boundary width.
func (s *Subgraph) NumInputs() int { return len(s.incoming) }

// NumOutputs returns the outgoing boundary width.
func (s *Subgraph) NumOutputs() int { return len(s.outgoing) }

// TryFromNodes builds a subgraph from a node set, deriving a canonical
// boundary order (incoming before outgoing, by node then port offset),
// and verifies convexity.
func TryFromNodes(c *circuit.Circuit, checker *ConvexChecker, nodes []graph.NodeIndex) (*Subgraph, error) {
	set, err := toSet(c, nodes)
	if err != nil {
		return nil, err
	}
	sorted := append([]graph.NodeIndex(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var incoming [][]graph.Endpoint
	var outgoing []graph.Endpoint
	g := c.Graph()
	for _, n := range sorted {
		for off := 0; off < g.NumInputs(n); off++ {
			src, ok := g.SingleLinked(n, graph.IncomingPort(off))
			if ok {
				if _, inside := set[src.Node]; !inside {
					incoming = append(incoming, []graph.Endpoint{{Node: n, Port: graph.IncomingPort(off)}})
				}
			}
		}
		for off := 0; off < g.NumOutputs(n); off++ {
			for _, dst := range g.LinkedPorts(n, graph.OutgoingPort(off)) {
				if _, inside := set[dst.Node]; !inside {
					outgoing = append(outgoing, graph.Endpoint{Node: n, Port: graph.OutgoingPort(off)})
					break
				}
			}
		}
	}
	return tryNew(c, checker, sorted, set, incoming, outgoing)
}

// TryFromBoundary builds a subgraph from explicit ordered boundary
// lists, deriving the node set, and verifies convexity. The incoming
// list groups internal ports by external source position; the outgoing
// list holds internal outgoing ports.
func TryFromBoundary(c *circuit.Circuit, checker *ConvexChecker,
	nodes []graph.NodeIndex, incoming [][]graph.Endpoint, outgoing []graph.Endpoint,
) (*Subgraph, error) {
	set, err := toSet(c, nodes)
	if err != nil {
		return nil, err
	}
	return tryNew(c, checker, nodes, set, incoming, outgoing)
}

func toSet(c *circuit.Circuit, nodes []graph.NodeIndex) (map[graph.NodeIndex]struct{}, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptySubgraph
	}
	set := make(map[graph.NodeIndex]struct{}, len(nodes))
	for _, n := range nodes {
		if n == c.InputNode() || n == c.OutputNode() {
			return nil, ErrBoundaryNode
		}
		if !c.Graph().Contains(n) {
			return nil, fmt.Errorf("%w: node %d", ErrInvalidBoundary, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

func tryNew(c *circuit.Circuit, checker *ConvexChecker,
	nodes []graph.NodeIndex, set map[graph.NodeIndex]struct{},
	incoming [][]graph.Endpoint, outgoing []graph.Endpoint,
) (*Subgraph, error) {
	if err := checkBoundary(c, set, incoming, outgoing); err != nil {
		return nil, err
	}
	if !checker.IsConvex(set) {
		return nil, ErrNotConvex
	}
	return &Subgraph{nodes: nodes, nodeSet: set, incoming: incoming, outgoing: outgoing}, nil
}

// checkBoundary verifies that the boundary lists cover every wire
// crossing the node set exactly once.
func checkBoundary(c *circuit.Circuit, set map[graph.NodeIndex]struct{},
	incoming [][]graph.Endpoint, outgoing []graph.Endpoint,
) error {
	g := c.Graph()
	listedIn := make(map[graph.Endpoint]struct{})
	for _, group := range incoming {
		for _, ep := range group {
			if _, inside := set[ep.Node]; !inside || ep.Port.Dir != graph.Incoming {
				return fmt.Errorf("%w: incoming endpoint %v", ErrInvalidBoundary, ep)
			}
			if _, dup := listedIn[ep]; dup {
				return fmt.Errorf("%w: duplicate incoming endpoint %v", ErrInvalidBoundary, ep)
			}
			listedIn[ep] = struct{}{}
		}
	}
	listedOut := make(map[graph.Endpoint]struct{})
	for _, ep := range outgoing {
		if _, inside := set[ep.Node]; !inside || ep.Port.Dir != graph.Outgoing {
			return fmt.Errorf("%w: outgoing endpoint %v", ErrInvalidBoundary, ep)
		}
		if _, dup := listedOut[ep]; dup {
			return fmt.Errorf("%w: duplicate outgoing endpoint %v", ErrInvalidBoundary, ep)
		}
		listedOut[ep] = struct{}{}
	}

	for n := range set {
		for off := 0; off < g.NumInputs(n); off++ {
			src, ok := g.SingleLinked(n, graph.IncomingPort(off))
			if !ok {
				continue
			}
			ep := graph.Endpoint{Node: n, Port: graph.IncomingPort(off)}
			_, inside := set[src.Node]
			crossing := !inside
			if _, listed := listedIn[ep]; listed != crossing {
				return fmt.Errorf("%w: incoming wire at %v", ErrInvalidBoundary, ep)
			}
		}
		for off := 0; off < g.NumOutputs(n); off++ {
			crossing := false
			for _, dst := range g.LinkedPorts(n, graph.OutgoingPort(off)) {
				if _, inside := set[dst.Node]; !inside {
					crossing = true
					break
				}
			}
			ep := graph.Endpoint{Node: n, Port: graph.OutgoingPort(off)}
			if _, listed := listedOut[ep]; listed != crossing {
				return fmt.Errorf("%w: outgoing wire at %v", ErrInvalidBoundary, ep)
			}
		}
	}
	return nil
}
