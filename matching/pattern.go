// Package matching compiles circuit patterns into a shared automaton
// and finds convex matches of all patterns rooted at every node of a
// target circuit.
package matching

import (
	"errors"
	"fmt"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// Pattern construction errors.
var (
	ErrEmptyPattern        = errors.New("matching: pattern circuit has no gates")
	ErrDisconnectedPattern = errors.New("matching: pattern circuit is not connected")
	ErrEmptyWire           = errors.New("matching: pattern circuit has an empty wire")
)

// PatternID identifies a pattern within a matcher.
type PatternID int

// EdgeKind distinguishes the two constraint forms a pattern edge can
// carry.
type EdgeKind int

const (
	// EdgeInternal requires the wire to arrive at a specific port of a
	// specific pattern node.
	EdgeInternal EdgeKind = iota
	// EdgeInput follows a copyable wire from an external source; the
	// arrival port is not constrained.
	EdgeInput
)

// Constraint is one step of a line pattern: follow the wire at SrcPort
// of the node bound to SrcVar, check it arrives at DstPort, and bind or
// verify DstVar.
type Constraint struct {
	Kind    EdgeKind
	SrcVar  int
	SrcPort graph.Port
	DstPort graph.Port
	DstVar  int
	// DstNew marks the constraint that first binds DstVar; DstOp is the
	// operation check applied at that moment.
	DstNew bool
	DstOp  ops.MatchOp
}

func (c Constraint) key() string {
	return fmt.Sprintf("%d:%v>%v:%d:%d:%v:%s/%s",
		c.SrcVar, c.SrcPort, c.DstPort, c.DstVar, c.Kind, c.DstNew, c.DstOp.Name, c.DstOp.Encoded)
}

// VarPort is a port on a symbolic pattern node.
type VarPort struct {
	Var  int
	Port graph.Port
}

// Pattern is a subgraph template compiled to a line form: a root
// operation check followed by a deterministic sequence of edge
// constraints that covers every node and wire of the template.
type Pattern struct {
	Root    ops.MatchOp
	Line    []Constraint
	NVars   int
	Inputs  [][]VarPort
	Outputs []VarPort
}

type edgeKey struct {
	a, b graph.Endpoint
}

func normEdge(a, b graph.Endpoint) edgeKey {
	if a.Node > b.Node || (a.Node == b.Node && a.Port.Offset > b.Port.Offset) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// FromCircuit compiles a circuit into a pattern. The circuit's
// non-boundary nodes become symbolic variables; its boundary wires
// become the pattern's declared inputs and outputs.
func FromCircuit(c *circuit.Circuit) (*Pattern, error) {
	cmds := c.Commands()
	if len(cmds) == 0 {
		return nil, ErrEmptyPattern
	}
	g := c.Graph()
	root := cmds[0].Node

	p := &Pattern{Root: ops.NewMatchOp(c.Graph().Op(root))}
	varOf := map[graph.NodeIndex]int{root: 0}
	p.NVars = 1
	seen := make(map[edgeKey]struct{})

	stack := []graph.NodeIndex{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dir := range []graph.Direction{graph.Outgoing, graph.Incoming} {
			nports := g.NumOutputs(n)
			if dir == graph.Incoming {
				nports = g.NumInputs(n)
			}
			for off := 0; off < nports; off++ {
				port := graph.Port{Dir: dir, Offset: off}
				for _, ep := range g.LinkedPorts(n, port) {
					if ep.Node == c.InputNode() || ep.Node == c.OutputNode() {
						continue
					}
					key := normEdge(graph.Endpoint{Node: n, Port: port}, ep)
					if _, ok := seen[key]; ok {
						continue
					}
					seen[key] = struct{}{}

					con := Constraint{
						Kind:    EdgeInternal,
						SrcVar:  varOf[n],
						SrcPort: port,
						DstPort: ep.Port,
					}
					if kind, err := g.PortKind(n, port); err == nil && !kind.IsLinear() {
						con.Kind = EdgeInput
					}
					if v, bound := varOf[ep.Node]; bound {
						con.DstVar = v
					} else {
						con.DstVar = p.NVars
						con.DstNew = true
						con.DstOp = ops.NewMatchOp(g.Op(ep.Node))
						varOf[ep.Node] = p.NVars
						p.NVars++
						stack = append(stack, ep.Node)
					}
					p.Line = append(p.Line, con)
				}
			}
		}
	}

	if len(varOf) != c.NumGates() {
		return nil, ErrDisconnectedPattern
	}

	// Declared boundary, in qubit order.
	for q := 0; q < c.QubitCount(); q++ {
		var group []VarPort
		for _, ep := range g.LinkedPorts(c.InputNode(), graph.OutgoingPort(q)) {
			if ep.Node == c.OutputNode() {
				return nil, fmt.Errorf("%w: qubit %d", ErrEmptyWire, q)
			}
			group = append(group, VarPort{varOf[ep.Node], ep.Port})
		}
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: qubit %d unconnected", ErrEmptyWire, q)
		}
		p.Inputs = append(p.Inputs, group)

		src, ok := g.SingleLinked(c.OutputNode(), graph.IncomingPort(q))
		if !ok {
			return nil, fmt.Errorf("%w: qubit %d unconnected at output", ErrEmptyWire, q)
		}
		p.Outputs = append(p.Outputs, VarPort{varOf[src.Node], src.Port})
	}
	return p, nil
}

// NEdges returns the number of edge constraints in the line pattern.
func (p *Pattern) NEdges() int { return len(p.Line) }
