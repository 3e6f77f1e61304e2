package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlyongemallo/tket2/ops"
)

func TestRemoveRedundanciesDaggerPairs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		qubits  int
		gates   []gate
		removed int
		left    int
	}{
		{
			name:    "hh_cancels",
			qubits:  1,
			gates:   []gate{g1(ops.H, 0), g1(ops.H, 0)},
			removed: 2,
			left:    0,
		},
		{
			name:    "s_sdg_cancels",
			qubits:  1,
			gates:   []gate{g1(ops.S, 0), g1(ops.Sdg, 0)},
			removed: 2,
			left:    0,
		},
		{
			name:    "cx_cx_cancels",
			qubits:  2,
			gates:   []gate{cx(0, 1), cx(0, 1)},
			removed: 2,
			left:    0,
		},
		{
			name:    "cx_xc_stays",
			qubits:  2,
			gates:   []gate{cx(0, 1), cx(1, 0)},
			removed: 0,
			left:    2,
		},
		{
			name:    "s_h_stays",
			qubits:  1,
			gates:   []gate{g1(ops.S, 0), g1(ops.H, 0)},
			removed: 0,
			left:    2,
		},
		{
			name:   "cascading_pairs",
			qubits: 1,
			// Removing the inner pair exposes the outer one.
			gates:   []gate{g1(ops.S, 0), g1(ops.H, 0), g1(ops.H, 0), g1(ops.Sdg, 0)},
			removed: 4,
			left:    0,
		},
		{
			name:   "rz_pair_cancels",
			qubits: 1,
			gates: []gate{
				{ops.RzGate(0.25), []int{0}},
				{ops.RzGate(-0.25), []int{0}},
			},
			removed: 2,
			left:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildGates(t, tt.qubits, tt.gates)
			removed := RemoveRedundancies(c)
			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, tt.left, c.NumGates())
		})
	}
}

func TestRemoveRedundanciesIdentities(t *testing.T) {
	t.Parallel()
	c := buildGates(t, 1, []gate{
		{ops.Gate(ops.Noop), []int{0}},
		{ops.RzGate(2), []int{0}},
		{ops.Gate(ops.H), []int{0}},
	})

	removed := RemoveRedundancies(c)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.NumGates())

	// A full turn of Rz contributes half a turn of global phase.
	assert.InDelta(t, 1.0, c.GlobalPhase(), 1e-12)
}

func TestRemoveRedundanciesFixedPoint(t *testing.T) {
	t.Parallel()
	c := buildGates(t, 2, []gate{g1(ops.H, 0), cx(0, 1), g1(ops.Z, 1)})

	require.Equal(t, 0, RemoveRedundancies(c))
	assert.Equal(t, 3, c.NumGates())
}
