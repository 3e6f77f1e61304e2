package circuit

import (
	"fmt"

	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// Command is an operation instance in a circuit together with the
// linear units (qubits) assigned to its ports. Units[i] is the qubit
// flowing through port i, or -1 for a non-linear port.
type Command struct {
	Node  graph.NodeIndex
	Op    ops.Op
	Units []int
}

// Qubits returns the qubit indices the command acts on, in port order.
func (cmd Command) Qubits() []int {
	qs := make([]int, 0, len(cmd.Units))
	for _, u := range cmd.Units {
		if u >= 0 {
			qs = append(qs, u)
		}
	}
	return qs
}

// PortOfQubit returns the port offset carrying the given qubit, if any.
func (cmd Command) PortOfQubit(q int) (int, bool) {
	for i, u := range cmd.Units {
		if u == q {
			return i, true
		}
	}
	return 0, false
}

// Commands returns all non-boundary operations of the circuit in a
// topological order, with their linear unit assignments. Qubit identity
// follows ports positionally: the unit entering a node's i-th linear
// port leaves on its i-th output port.
func (c *Circuit) Commands() []Command {
	order, err := c.g.TopoOrder()
	if err != nil {
		// The linear-wire acyclicity invariant is enforced at every
		// mutation; a cycle here means the graph is corrupted.
		panic(fmt.Sprintf("circuit: %v", err))
	}

	// unit carried by each outgoing endpoint.
	type outPort struct {
		node   graph.NodeIndex
		offset int
	}
	units := make(map[outPort]int)
	for q := 0; q < c.nqubits; q++ {
		units[outPort{c.input, q}] = q
	}

	cmds := make([]Command, 0, len(order))
	for _, n := range order {
		if n == c.input || n == c.output {
			continue
		}
		op := c.g.Op(n)
		inKinds, outKinds := op.Signature()
		assigned := make([]int, len(inKinds))
		for i := range assigned {
			assigned[i] = -1
		}
		for i, kind := range inKinds {
			if !kind.IsLinear() {
				continue
			}
			src, ok := c.g.SingleLinked(n, graph.IncomingPort(i))
			if !ok {
				continue
			}
			if u, ok := units[outPort{src.Node, src.Port.Offset}]; ok {
				assigned[i] = u
				if i < len(outKinds) && outKinds[i].IsLinear() {
					units[outPort{n, i}] = u
				}
			}
		}
		cmds = append(cmds, Command{Node: n, Op: op, Units: assigned})
	}
	return cmds
}
