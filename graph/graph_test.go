package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlyongemallo/tket2/ops"
)

func TestAddConnect(t *testing.T) {
	t.Parallel()
	g := New(4)
	in := g.AddNode(ops.InputNode(2))
	cx := g.AddNode(ops.Gate(ops.CX))
	out := g.AddNode(ops.OutputNode(2))

	require.NoError(t, g.Connect(in, 0, cx, 0))
	require.NoError(t, g.Connect(in, 1, cx, 1))
	require.NoError(t, g.Connect(cx, 0, out, 0))
	require.NoError(t, g.Connect(cx, 1, out, 1))

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 4, g.WireCount())

	ep, ok := g.SingleLinked(in, OutgoingPort(0))
	require.True(t, ok)
	assert.Equal(t, cx, ep.Node)
	assert.Equal(t, IncomingPort(0), ep.Port)
}

func TestConnectErrors(t *testing.T) {
	t.Parallel()
	g := New(4)
	in := g.AddNode(ops.InputNode(1))
	h := g.AddNode(ops.Gate(ops.H))
	out := g.AddNode(ops.OutputNode(1))

	require.NoError(t, g.Connect(in, 0, h, 0))

	// Linear ports take a single wire.
	err := g.Connect(in, 0, out, 0)
	assert.ErrorIs(t, err, ErrPortOccupied)

	// Port offsets are bounded by the op signature.
	err = g.Connect(h, 3, out, 0)
	assert.ErrorIs(t, err, ErrInvalidPort)

	err = g.Connect(NodeIndex(99), 0, out, 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	// A node cannot feed itself.
	err = g.Connect(h, 0, h, 0)
	assert.ErrorIs(t, err, ErrSelfConnection)

	// Wire kinds must agree across the connection.
	m := g.AddNode(ops.Gate(ops.Measure))
	err = g.Connect(m, 1, out, 0)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestDisconnect(t *testing.T) {
	t.Parallel()
	g := New(4)
	in := g.AddNode(ops.InputNode(1))
	h := g.AddNode(ops.Gate(ops.H))

	require.NoError(t, g.Connect(in, 0, h, 0))
	require.NoError(t, g.Disconnect(h, IncomingPort(0)))

	_, ok := g.SingleLinked(in, OutgoingPort(0))
	assert.False(t, ok)
	assert.Equal(t, 0, g.WireCount())
}

func TestRemoveNodeRecyclesIndex(t *testing.T) {
	t.Parallel()
	g := New(4)
	a := g.AddNode(ops.Gate(ops.H))
	b := g.AddNode(ops.Gate(ops.S))

	require.NoError(t, g.RemoveNode(a))
	assert.False(t, g.Contains(a))
	assert.True(t, g.Contains(b))

	c := g.AddNode(ops.Gate(ops.T))
	assert.Equal(t, a, c)
	assert.True(t, g.Contains(c))
	assert.Equal(t, 2, g.NodeCount())
}

func TestSingleLinkedFailsClosed(t *testing.T) {
	t.Parallel()
	g := New(4)
	h := g.AddNode(ops.Gate(ops.H))

	// No wire at the port.
	_, ok := g.SingleLinked(h, IncomingPort(0))
	assert.False(t, ok)
}

func TestTopoOrder(t *testing.T) {
	t.Parallel()
	g := New(8)
	in := g.AddNode(ops.InputNode(2))
	h := g.AddNode(ops.Gate(ops.H))
	cx := g.AddNode(ops.Gate(ops.CX))
	out := g.AddNode(ops.OutputNode(2))

	require.NoError(t, g.Connect(in, 0, h, 0))
	require.NoError(t, g.Connect(h, 0, cx, 0))
	require.NoError(t, g.Connect(in, 1, cx, 1))
	require.NoError(t, g.Connect(cx, 0, out, 0))
	require.NoError(t, g.Connect(cx, 1, out, 1))

	order, err := g.TopoOrder()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[NodeIndex]int)
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos[in], pos[h])
	assert.Less(t, pos[h], pos[cx])
	assert.Less(t, pos[cx], pos[out])
}

func TestClone(t *testing.T) {
	t.Parallel()
	g := New(4)
	in := g.AddNode(ops.InputNode(1))
	h := g.AddNode(ops.Gate(ops.H))
	require.NoError(t, g.Connect(in, 0, h, 0))

	c := g.Clone()
	require.NoError(t, g.Disconnect(h, IncomingPort(0)))

	// The clone keeps its own wires and indices.
	ep, ok := c.SingleLinked(in, OutgoingPort(0))
	require.True(t, ok)
	assert.Equal(t, h, ep.Node)
	assert.Equal(t, 1, c.WireCount())
	assert.Equal(t, 0, g.WireCount())
}

func TestNeighbours(t *testing.T) {
	t.Parallel()
	g := New(4)
	in := g.AddNode(ops.InputNode(2))
	cx := g.AddNode(ops.Gate(ops.CX))
	out := g.AddNode(ops.OutputNode(2))
	require.NoError(t, g.Connect(in, 0, cx, 0))
	require.NoError(t, g.Connect(in, 1, cx, 1))
	require.NoError(t, g.Connect(cx, 0, out, 0))
	require.NoError(t, g.Connect(cx, 1, out, 1))

	assert.Equal(t, []NodeIndex{in}, g.Neighbours(cx, Incoming))
	assert.Equal(t, []NodeIndex{out}, g.Neighbours(cx, Outgoing))
}
