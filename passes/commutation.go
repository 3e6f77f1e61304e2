// Package passes contains rewrite strategies that operate directly on
// the circuit graph: a commutation-based depth scheduler and a
// redundancy-removal pass.
package passes

import (
	"errors"
	"fmt"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// Pull-forward failures. These indicate an inconsistency between the
// slice schedule and the graph, not an expected runtime condition.
var (
	ErrNoQubitInCommand  = errors.New("passes: qubit not found in command")
	ErrNoCommandForQubit = errors.New("passes: no destination command for qubit")
)

// comCommand is a scheduled operation with its linear unit assignment.
// Commands live in an arena and are referenced by index; slices hold
// arena indices rather than shared pointers.
type comCommand struct {
	node  graph.NodeIndex
	op    ops.Op
	units []int
}

func (c *comCommand) qubits() []int {
	qs := make([]int, 0, len(c.units))
	for _, u := range c.units {
		if u >= 0 {
			qs = append(qs, u)
		}
	}
	return qs
}

func (c *comCommand) portOfQubit(q int) (int, bool) {
	for i, u := range c.units {
		if u == q {
			return i, true
		}
	}
	return 0, false
}

const emptySlot = int32(-1)

// slice is one layer of the depth schedule: per qubit, the arena index
// of the command occupying it, or emptySlot.
type slice []int32

type schedule struct {
	arena  []comCommand
	slices []slice
}

// isSliceOp reports whether the operation participates in scheduling.
// Operations outside the known instruction set act as unscheduled
// barriers.
func isSliceOp(op ops.Op) bool {
	return !op.IsBoundary() && op.Type != ops.Opaque
}

// loadSlices assigns each schedulable command to the earliest layer
// after its qubits' previous occupants.
func loadSlices(c *circuit.Circuit) *schedule {
	nqb := c.QubitCount()
	qubitFree := make([]int, nqb)
	s := &schedule{}

	for _, cmd := range c.Commands() {
		if !isSliceOp(cmd.Op) {
			continue
		}
		com := comCommand{node: cmd.Node, op: cmd.Op, units: cmd.Units}
		free := 0
		for _, q := range com.qubits() {
			if qubitFree[q] > free {
				free = qubitFree[q]
			}
		}
		for _, q := range com.qubits() {
			qubitFree[q] = free + 1
		}
		for free >= len(s.slices) {
			empty := make(slice, nqb)
			for i := range empty {
				empty[i] = emptySlot
			}
			s.slices = append(s.slices, empty)
		}
		idx := int32(len(s.arena))
		s.arena = append(s.arena, com)
		for _, q := range com.qubits() {
			s.slices[free][q] = idx
		}
	}
	return s
}

// Depth returns the number of slices in the circuit's schedule.
func Depth(c *circuit.Circuit) int {
	return len(loadSlices(c).slices)
}

// pauliAtPort returns the commutation class of the op at a qubit port.
func pauliAtPort(op ops.Op, port int) ops.Pauli {
	comms := op.QubitCommutation()
	if port < 0 || port >= len(comms) {
		return ops.PauliNone
	}
	return comms[port]
}

// commutesAtSlice checks whether the command commutes back through the
// given slice; if so it returns, per qubit, the occupant the command
// would now precede.
func (s *schedule) commutesAtSlice(cmdIdx int32, sl slice) (map[int]int32, bool) {
	com := &s.arena[cmdIdx]
	prev := make(map[int]int32)
	for _, q := range com.qubits() {
		prev[q] = cmdIdx
	}
	for _, q := range com.qubits() {
		other := sl[q]
		if other == emptySlot {
			continue
		}
		port, ok := com.portOfQubit(q)
		if !ok {
			return nil, false
		}
		otherPort, ok := s.arena[other].portOfQubit(q)
		if !ok {
			return nil, false
		}
		pauli := pauliAtPort(com.op, port)
		otherPauli := pauliAtPort(s.arena[other].op, otherPort)
		if !pauli.CommutesWith(otherPauli) {
			return nil, false
		}
		prev[q] = other
	}
	return prev, true
}

// availableSlice scans earlier slices from startIndex backward for the
// earliest layer whose relevant qubit slots are all empty, passing only
// through slices the command commutes with.
func (s *schedule) availableSlice(startIndex int, cmdIdx int32) (int, map[int]int32, bool) {
	com := &s.arena[cmdIdx]
	dest := -1
	var destNexts map[int]int32
	prevNodes := make(map[int]int32)

	for sliceIndex := startIndex; sliceIndex >= 0; sliceIndex-- {
		allEmpty := true
		for _, q := range com.qubits() {
			if s.slices[sliceIndex][q] != emptySlot {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			dest = sliceIndex
			destNexts = copyNexts(prevNodes)
			continue
		}
		if sliceIndex == 0 {
			break
		}
		next, ok := s.commutesAtSlice(cmdIdx, s.slices[sliceIndex])
		if !ok {
			break
		}
		for q, idx := range next {
			prevNodes[q] = idx
		}
	}
	if dest < 0 {
		return 0, nil, false
	}
	return dest, destNexts, true
}

func copyNexts(m map[int]int32) map[int]int32 {
	out := make(map[int]int32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// pullForward moves the command before its new successor on every qubit
// it shares with one: disconnect, close the gap, splice back in.
func (s *schedule) pullForward(c *circuit.Circuit, cmdIdx int32, newNexts map[int]int32) error {
	g := c.Graph()
	com := &s.arena[cmdIdx]
	for _, q := range com.qubits() {
		port, ok := com.portOfQubit(q)
		if !ok {
			return fmt.Errorf("%w: qubit %d", ErrNoQubitInCommand, q)
		}
		nextIdx, ok := newNexts[q]
		if !ok {
			return fmt.Errorf("%w: qubit %d", ErrNoCommandForQubit, q)
		}
		if nextIdx == cmdIdx {
			// No movement along this qubit.
			continue
		}
		next := &s.arena[nextIdx]
		nextPort, ok := next.portOfQubit(q)
		if !ok {
			return fmt.Errorf("%w: qubit %d on destination", ErrNoQubitInCommand, q)
		}

		src, ok := g.SingleLinked(com.node, graph.IncomingPort(port))
		if !ok {
			return fmt.Errorf("%w: qubit %d has no predecessor", ErrNoCommandForQubit, q)
		}
		dst, ok := g.SingleLinked(com.node, graph.OutgoingPort(port))
		if !ok {
			return fmt.Errorf("%w: qubit %d has no successor", ErrNoCommandForQubit, q)
		}
		if err := g.Disconnect(com.node, graph.IncomingPort(port)); err != nil {
			return err
		}
		if err := g.Disconnect(com.node, graph.OutgoingPort(port)); err != nil {
			return err
		}
		if err := g.Connect(src.Node, src.Port.Offset, dst.Node, dst.Port.Offset); err != nil {
			return err
		}

		newSrc, ok := g.SingleLinked(next.node, graph.IncomingPort(nextPort))
		if !ok {
			return fmt.Errorf("%w: qubit %d at destination", ErrNoCommandForQubit, q)
		}
		if err := g.Disconnect(next.node, graph.IncomingPort(nextPort)); err != nil {
			return err
		}
		if err := g.Connect(newSrc.Node, newSrc.Port.Offset, com.node, port); err != nil {
			return err
		}
		if err := g.Connect(com.node, port, next.node, nextPort); err != nil {
			return err
		}
	}
	return nil
}

// ApplyGreedyCommutation greedily moves operations into earlier slices
// through commuting neighbours to reduce circuit depth. It returns the
// number of successful moves. Node count never changes; only wire
// topology and layering do.
func ApplyGreedyCommutation(c *circuit.Circuit) (int, error) {
	s := loadSlices(c)
	count := 0
	for sliceIndex := range s.slices {
		for _, cmdIdx := range uniqueCommands(s.slices[sliceIndex]) {
			dest, newNexts, ok := s.availableSlice(sliceIndex, cmdIdx)
			if !ok {
				continue
			}
			for _, q := range s.arena[cmdIdx].qubits() {
				s.slices[sliceIndex][q] = emptySlot
				s.slices[dest][q] = cmdIdx
			}
			if err := s.pullForward(c, cmdIdx, newNexts); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func uniqueCommands(sl slice) []int32 {
	var out []int32
	seen := make(map[int32]struct{})
	for _, idx := range sl {
		if idx == emptySlot {
			continue
		}
		if _, ok := seen[idx]; !ok {
			seen[idx] = struct{}{}
			out = append(out, idx)
		}
	}
	return out
}
