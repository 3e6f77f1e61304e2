/*
Package graph implements an arena-backed dataflow graph with typed
ports.

Nodes live in a contiguous arena and are referenced by a dense opaque
index rather than by pointer. Removed slots are recycled through a free
list, so indices stay small and iteration stays cache-friendly. Wires
connect exactly one outgoing port to one incoming port; ports carrying
linear wire kinds (qubits, bits) admit at most one link each.
*/
package graph

import (
	"errors"
	"fmt"

	"github.com/dlyongemallo/tket2/ops"
)

// NodeIndex is an opaque handle to a node in the graph arena.
type NodeIndex int32

// InvalidNode is the zero-value handle pointing at no node.
const InvalidNode NodeIndex = -1

// Direction tags a port as incoming or outgoing.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) Reverse() Direction {
	if d == Incoming {
		return Outgoing
	}
	return Incoming
}

func (d Direction) String() string {
	if d == Incoming {
		return "in"
	}
	return "out"
}

// Port is a direction-tagged offset on a node.
type Port struct {
	Dir    Direction
	Offset int
}

func IncomingPort(offset int) Port { return Port{Incoming, offset} }
func OutgoingPort(offset int) Port { return Port{Outgoing, offset} }

func (p Port) String() string {
	return fmt.Sprintf("%s%d", p.Dir, p.Offset)
}

// Endpoint is a (node, port) pair, one end of a wire.
type Endpoint struct {
	Node NodeIndex
	Port Port
}

type halfWire struct {
	node   NodeIndex
	offset int
}

type node struct {
	op   ops.Op
	live bool
	// per-port link lists; linear ports hold at most one entry.
	in  [][]halfWire
	out [][]halfWire
	// cached port kinds derived from the op signature.
	inKinds  []ops.WireKind
	outKinds []ops.WireKind
}

// Graph is a mutable dataflow graph.
type Graph struct {
	nodes     []node
	free      []NodeIndex
	nodeCount int
	wireCount int
}

// Structural errors returned to callers. These are expected conditions,
// never panics.
var (
	ErrNodeNotFound   = errors.New("graph: node not found")
	ErrInvalidPort    = errors.New("graph: invalid port offset")
	ErrKindMismatch   = errors.New("graph: wire kinds do not match")
	ErrPortOccupied   = errors.New("graph: linear port already linked")
	ErrCyclicGraph    = errors.New("graph: cycle through linear wires")
	ErrSelfConnection = errors.New("graph: cannot wire a node to itself")
)

// New returns an empty graph with capacity for n nodes.
func New(n int) *Graph {
	return &Graph{nodes: make([]node, 0, n)}
}

// AddNode places an operation in the graph and returns its handle.
func (g *Graph) AddNode(op ops.Op) NodeIndex {
	inKinds, outKinds := op.Signature()
	n := node{
		op:       op,
		live:     true,
		in:       make([][]halfWire, len(inKinds)),
		out:      make([][]halfWire, len(outKinds)),
		inKinds:  inKinds,
		outKinds: outKinds,
	}
	if len(g.free) > 0 {
		idx := g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.nodes[idx] = n
		g.nodeCount++
		return idx
	}
	g.nodes = append(g.nodes, n)
	g.nodeCount++
	return NodeIndex(len(g.nodes) - 1)
}

// RemoveNode disconnects all ports of the node and recycles its slot.
func (g *Graph) RemoveNode(idx NodeIndex) error {
	n, err := g.node(idx)
	if err != nil {
		return err
	}
	for off := range n.in {
		if err := g.Disconnect(idx, IncomingPort(off)); err != nil {
			return err
		}
	}
	for off := range n.out {
		if err := g.Disconnect(idx, OutgoingPort(off)); err != nil {
			return err
		}
	}
	g.nodes[idx] = node{}
	g.free = append(g.free, idx)
	g.nodeCount--
	return nil
}

// Contains reports whether idx refers to a live node.
func (g *Graph) Contains(idx NodeIndex) bool {
	return idx >= 0 && int(idx) < len(g.nodes) && g.nodes[idx].live
}

// Op returns the operation placed at the node.
func (g *Graph) Op(idx NodeIndex) ops.Op {
	n, err := g.node(idx)
	if err != nil {
		panic(err)
	}
	return n.op
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return g.nodeCount }

// WireCount returns the number of wires.
func (g *Graph) WireCount() int { return g.wireCount }

// NumInputs returns the number of incoming ports of the node.
func (g *Graph) NumInputs(idx NodeIndex) int {
	n, err := g.node(idx)
	if err != nil {
		return 0
	}
	return len(n.in)
}

// NumOutputs returns the number of outgoing ports of the node.
func (g *Graph) NumOutputs(idx NodeIndex) int {
	n, err := g.node(idx)
	if err != nil {
		return 0
	}
	return len(n.out)
}

// PortKind returns the wire kind of a port.
func (g *Graph) PortKind(idx NodeIndex, p Port) (ops.WireKind, error) {
	n, err := g.node(idx)
	if err != nil {
		return 0, err
	}
	kinds := n.inKinds
	if p.Dir == Outgoing {
		kinds = n.outKinds
	}
	if p.Offset < 0 || p.Offset >= len(kinds) {
		return 0, fmt.Errorf("%w: %v on node %d", ErrInvalidPort, p, idx)
	}
	return kinds[p.Offset], nil
}

// Connect wires an outgoing port of src to an incoming port of dst.
// The wire kinds must agree, and linear ports must be free. A node
// cannot be wired to itself: that is a length-one cycle.
func (g *Graph) Connect(src NodeIndex, srcOffset int, dst NodeIndex, dstOffset int) error {
	if src == dst {
		return fmt.Errorf("%w: node %d", ErrSelfConnection, src)
	}
	srcKind, err := g.PortKind(src, OutgoingPort(srcOffset))
	if err != nil {
		return err
	}
	dstKind, err := g.PortKind(dst, IncomingPort(dstOffset))
	if err != nil {
		return err
	}
	if srcKind != dstKind {
		return fmt.Errorf("%w: %v -> %v", ErrKindMismatch, srcKind, dstKind)
	}
	if srcKind.IsLinear() {
		if len(g.nodes[src].out[srcOffset]) > 0 || len(g.nodes[dst].in[dstOffset]) > 0 {
			return fmt.Errorf("%w: %d:out%d -> %d:in%d", ErrPortOccupied, src, srcOffset, dst, dstOffset)
		}
	}
	g.nodes[src].out[srcOffset] = append(g.nodes[src].out[srcOffset], halfWire{dst, dstOffset})
	g.nodes[dst].in[dstOffset] = append(g.nodes[dst].in[dstOffset], halfWire{src, srcOffset})
	g.wireCount++
	return nil
}

// Disconnect removes every wire attached to the given port.
func (g *Graph) Disconnect(idx NodeIndex, p Port) error {
	n, err := g.node(idx)
	if err != nil {
		return err
	}
	lists := n.in
	if p.Dir == Outgoing {
		lists = n.out
	}
	if p.Offset < 0 || p.Offset >= len(lists) {
		return fmt.Errorf("%w: %v on node %d", ErrInvalidPort, p, idx)
	}
	for _, hw := range lists[p.Offset] {
		g.removeHalf(hw.node, Port{p.Dir.Reverse(), hw.offset}, idx, p.Offset)
		g.wireCount--
	}
	lists[p.Offset] = nil
	return nil
}

func (g *Graph) removeHalf(idx NodeIndex, p Port, other NodeIndex, otherOffset int) {
	lists := g.nodes[idx].in
	if p.Dir == Outgoing {
		lists = g.nodes[idx].out
	}
	links := lists[p.Offset]
	for i, hw := range links {
		if hw.node == other && hw.offset == otherOffset {
			lists[p.Offset] = append(links[:i], links[i+1:]...)
			return
		}
	}
}

// LinkedPorts returns the endpoints wired to the given port.
func (g *Graph) LinkedPorts(idx NodeIndex, p Port) []Endpoint {
	n, err := g.node(idx)
	if err != nil {
		return nil
	}
	lists := n.in
	if p.Dir == Outgoing {
		lists = n.out
	}
	if p.Offset < 0 || p.Offset >= len(lists) {
		return nil
	}
	eps := make([]Endpoint, 0, len(lists[p.Offset]))
	for _, hw := range lists[p.Offset] {
		eps = append(eps, Endpoint{hw.node, Port{p.Dir.Reverse(), hw.offset}})
	}
	return eps
}

// SingleLinked returns the unique endpoint wired to the port, if there
// is exactly one. This fails closed: zero links and multiple links both
// report false.
func (g *Graph) SingleLinked(idx NodeIndex, p Port) (Endpoint, bool) {
	eps := g.LinkedPorts(idx, p)
	if len(eps) != 1 {
		return Endpoint{}, false
	}
	return eps[0], true
}

// Nodes returns the handles of all live nodes in arena order.
func (g *Graph) Nodes() []NodeIndex {
	out := make([]NodeIndex, 0, g.nodeCount)
	for i := range g.nodes {
		if g.nodes[i].live {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// Neighbours returns the distinct nodes wired to idx in the given
// direction, in port order.
func (g *Graph) Neighbours(idx NodeIndex, dir Direction) []NodeIndex {
	n, err := g.node(idx)
	if err != nil {
		return nil
	}
	lists := n.in
	if dir == Outgoing {
		lists = n.out
	}
	var out []NodeIndex
	seen := make(map[NodeIndex]struct{})
	for _, links := range lists {
		for _, hw := range links {
			if _, ok := seen[hw.node]; !ok {
				seen[hw.node] = struct{}{}
				out = append(out, hw.node)
			}
		}
	}
	return out
}

// TopoOrder returns all live nodes in a topological order of the wire
// relation. Returns ErrCyclicGraph if the graph has a directed cycle.
func (g *Graph) TopoOrder() ([]NodeIndex, error) {
	indegree := make(map[NodeIndex]int, g.nodeCount)
	for _, idx := range g.Nodes() {
		count := 0
		for _, links := range g.nodes[idx].in {
			count += len(links)
		}
		indegree[idx] = count
	}
	queue := make([]NodeIndex, 0, g.nodeCount)
	for _, idx := range g.Nodes() {
		if indegree[idx] == 0 {
			queue = append(queue, idx)
		}
	}
	order := make([]NodeIndex, 0, g.nodeCount)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		order = append(order, idx)
		for _, links := range g.nodes[idx].out {
			for _, hw := range links {
				indegree[hw.node]--
				if indegree[hw.node] == 0 {
					queue = append(queue, hw.node)
				}
			}
		}
	}
	if len(order) != g.nodeCount {
		return nil, ErrCyclicGraph
	}
	return order, nil
}

// Clone returns a deep copy of the graph. Node handles remain valid in
// the copy.
func (g *Graph) Clone() *Graph {
	nodes := make([]node, len(g.nodes))
	for i, n := range g.nodes {
		c := n
		c.in = cloneLinks(n.in)
		c.out = cloneLinks(n.out)
		nodes[i] = c
	}
	return &Graph{
		nodes:     nodes,
		free:      append([]NodeIndex(nil), g.free...),
		nodeCount: g.nodeCount,
		wireCount: g.wireCount,
	}
}

func cloneLinks(lists [][]halfWire) [][]halfWire {
	out := make([][]halfWire, len(lists))
	for i, links := range lists {
		out[i] = append([]halfWire(nil), links...)
	}
	return out
}

func (g *Graph) node(idx NodeIndex) (*node, error) {
	if !g.Contains(idx) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, idx)
	}
	return &g.nodes[idx], nil
}
