package circuit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// Hash returns a structural hash of the circuit that is stable across
// topological-sort orderings of independent commands.
//
// Each node's hash depends only on its operation and the multiset of
// (source hash, source port, destination port) triples of its incoming
// wires, so two circuits with the same dataflow hash identically no
// matter the order their commands were inserted in.
func (c *Circuit) Hash() uint64 {
	order, err := c.g.TopoOrder()
	if err != nil {
		panic(fmt.Sprintf("circuit: hashing cyclic graph: %v", err))
	}
	hashes := make(map[graph.NodeIndex]uint64, len(order))
	for _, n := range order {
		hashes[n] = c.nodeHash(n, hashes)
	}
	h := fnv.New64a()
	writeUint64(h, hashes[c.output])
	writeUint64(h, math.Float64bits(c.phase))
	return h.Sum64()
}

func (c *Circuit) nodeHash(n graph.NodeIndex, hashes map[graph.NodeIndex]uint64) uint64 {
	op := c.g.Op(n)
	inputs := make([]uint64, 0, c.g.NumInputs(n))
	for off := 0; off < c.g.NumInputs(n); off++ {
		for _, ep := range c.g.LinkedPorts(n, graph.IncomingPort(off)) {
			wh := fnv.New64a()
			writeUint64(wh, hashes[ep.Node])
			writeUint64(wh, uint64(ep.Port.Offset))
			writeUint64(wh, uint64(off))
			inputs = append(inputs, wh.Sum64())
		}
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i] < inputs[j] })

	h := fnv.New64a()
	writeUint64(h, ops.Hash(op))
	for _, in := range inputs {
		writeUint64(h, in)
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
