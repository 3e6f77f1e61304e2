package circuit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlyongemallo/tket2/ops"
)

func TestHashIgnoresCommandOrdering(t *testing.T) {
	t.Parallel()
	// H(0) and X(1) are independent; the insertion order must not
	// change the hash.
	a := buildCircuit(t, 2, func(c *Circuit) error {
		if err := c.Append(ops.Gate(ops.H), 0); err != nil {
			return err
		}
		return c.Append(ops.Gate(ops.X), 1)
	})
	b := buildCircuit(t, 2, func(c *Circuit) error {
		if err := c.Append(ops.Gate(ops.X), 1); err != nil {
			return err
		}
		return c.Append(ops.Gate(ops.H), 0)
	})
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestHashDistinguishesQubitOrder(t *testing.T) {
	t.Parallel()
	a := buildCircuit(t, 2, func(c *Circuit) error {
		return c.Append(ops.Gate(ops.CX), 0, 1)
	})
	b := buildCircuit(t, 2, func(c *Circuit) error {
		return c.Append(ops.Gate(ops.CX), 1, 0)
	})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestHashDistinguishesOps(t *testing.T) {
	t.Parallel()
	a := buildCircuit(t, 1, func(c *Circuit) error {
		return c.Append(ops.Gate(ops.S), 0)
	})
	b := buildCircuit(t, 1, func(c *Circuit) error {
		return c.Append(ops.Gate(ops.Sdg), 0)
	})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestHashIncludesGlobalPhase(t *testing.T) {
	t.Parallel()
	a := New(1)
	b := New(1)
	b.AddPhase(0.5)
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	c := buildCircuit(t, 3, func(c *Circuit) error {
		if err := c.Append(ops.Gate(ops.H), 0); err != nil {
			return err
		}
		if err := c.Append(ops.Gate(ops.CX), 0, 1); err != nil {
			return err
		}
		if err := c.Append(ops.RzGate(0.25), 2); err != nil {
			return err
		}
		return c.Append(ops.Gate(ops.CX), 2, 1)
	})
	c.AddPhase(0.75)

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	got, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.QubitCount(), got.QubitCount())
	assert.Equal(t, c.NumGates(), got.NumGates())
	assert.InDelta(t, c.GlobalPhase(), got.GlobalPhase(), 1e-12)
	assert.Equal(t, c.Hash(), got.Hash())
}

func TestJSONRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := Load(bytes.NewReader([]byte("not json")))
	assert.Error(t, err)
}
