package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/ops"
)

type gate struct {
	op     ops.Op
	qubits []int
}

func buildGates(t *testing.T, n int, gates []gate) *circuit.Circuit {
	t.Helper()
	c, err := circuit.Build(n, func(c *circuit.Circuit) error {
		for _, g := range gates {
			if err := c.Append(g.op, g.qubits...); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return c
}

func cx(a, b int) gate { return gate{ops.Gate(ops.CX), []int{a, b}} }
func g1(t ops.GateType, q int) gate {
	return gate{ops.Gate(t), []int{q}}
}

func TestLoadSlices(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		qubits int
		gates  []gate
		depth  int
	}{
		{
			name:   "staircase_cx",
			qubits: 4,
			gates:  []gate{cx(0, 2), cx(1, 2), cx(1, 3)},
			depth:  3,
		},
		{
			name:   "parallel_cx",
			qubits: 4,
			gates:  []gate{cx(0, 2), cx(1, 3), cx(1, 2)},
			depth:  2,
		},
		{
			name:   "bell",
			qubits: 2,
			gates:  []gate{g1(ops.H, 0), cx(0, 1)},
			depth:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildGates(t, tt.qubits, tt.gates)
			assert.Equal(t, tt.depth, Depth(c))
		})
	}
}

func TestApplyGreedyCommutation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		qubits       int
		gates        []gate
		moves        int
		shouldReduce bool
	}{
		{
			name:         "staircase_cx",
			qubits:       4,
			gates:        []gate{cx(0, 2), cx(1, 2), cx(1, 3)},
			moves:        1,
			shouldReduce: true,
		},
		{
			name:         "already_parallel",
			qubits:       4,
			gates:        []gate{cx(0, 2), cx(1, 3), cx(1, 2)},
			moves:        0,
			shouldReduce: false,
		},
		{
			name:   "big_example",
			qubits: 4,
			gates: []gate{
				cx(0, 3), cx(1, 2),
				g1(ops.H, 0), g1(ops.H, 3),
				cx(0, 1), cx(2, 3),
				cx(0, 1), cx(2, 3),
				cx(2, 1), g1(ops.H, 1),
			},
			moves:        1,
			shouldReduce: true,
		},
		{
			name:         "cant_commute",
			qubits:       3,
			gates:        []gate{g1(ops.Z, 1), cx(0, 1), cx(2, 1)},
			moves:        0,
			shouldReduce: false,
		},
		{
			name:         "bell",
			qubits:       2,
			gates:        []gate{g1(ops.H, 0), cx(0, 1)},
			moves:        0,
			shouldReduce: false,
		},
		{
			name:         "single_qb_commute",
			qubits:       2,
			gates:        []gate{g1(ops.H, 1), cx(0, 1), g1(ops.Z, 0)},
			moves:        1,
			shouldReduce: true,
		},
		{
			name:   "single_qb_commute_2",
			qubits: 4,
			gates: []gate{
				cx(1, 2), cx(1, 0), cx(3, 2),
				g1(ops.X, 0), g1(ops.Z, 3),
			},
			moves:        2,
			shouldReduce: true,
		},
		{
			name:         "commutes_but_same_depth",
			qubits:       2,
			gates:        []gate{g1(ops.H, 1), cx(0, 1), g1(ops.Z, 0), g1(ops.X, 1)},
			moves:        1,
			shouldReduce: false,
		},
		{
			name:         "measurement_commutes",
			qubits:       2,
			gates:        []gate{g1(ops.H, 1), cx(0, 1), g1(ops.Measure, 0)},
			moves:        1,
			shouldReduce: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildGates(t, tt.qubits, tt.gates)
			nodeCount := c.Graph().NodeCount()
			depthBefore := Depth(c)

			moves, err := ApplyGreedyCommutation(c)
			require.NoError(t, err)
			assert.Equal(t, tt.moves, moves)

			depthAfter := Depth(c)
			if tt.shouldReduce {
				assert.Less(t, depthAfter, depthBefore)
			} else {
				assert.Equal(t, depthBefore, depthAfter)
			}

			// Moving commands never changes the node count.
			assert.Equal(t, nodeCount, c.Graph().NodeCount())
		})
	}
}

func TestGreedyCommutationIdempotent(t *testing.T) {
	t.Parallel()
	c := buildGates(t, 2, []gate{g1(ops.H, 1), cx(0, 1), g1(ops.Z, 0)})

	moves, err := ApplyGreedyCommutation(c)
	require.NoError(t, err)
	require.Equal(t, 1, moves)

	// A fixed point: the second run does nothing.
	moves, err = ApplyGreedyCommutation(c)
	require.NoError(t, err)
	assert.Equal(t, 0, moves)
}
