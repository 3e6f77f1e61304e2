package tket2

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/ops"
)

// writeECCFile writes a one-class library equating H;H with the
// identity on a single qubit.
func writeECCFile(t *testing.T, dir string) string {
	t.Helper()

	hh, err := circuit.Build(1, func(c *circuit.Circuit) error {
		if err := c.Append(ops.Gate(ops.H), 0); err != nil {
			return err
		}
		return c.Append(ops.Gate(ops.H), 0)
	})
	require.NoError(t, err)

	encode := func(c *circuit.Circuit) json.RawMessage {
		var buf bytes.Buffer
		require.NoError(t, c.Save(&buf))
		return json.RawMessage(buf.Bytes())
	}
	data, err := json.Marshal(map[string][]json.RawMessage{
		"hh": {encode(hh), encode(circuit.New(1))},
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "library.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCompileRewriter(t *testing.T) {
	t.Parallel()
	rw, err := CompileRewriter(writeECCFile(t, t.TempDir()), false)
	require.NoError(t, err)
	assert.Equal(t, 1, rw.NPatterns())
}

func TestCompileRewriterMissingFile(t *testing.T) {
	t.Parallel()
	_, err := CompileRewriter(filepath.Join(t.TempDir(), "nope.json"), false)
	assert.Error(t, err)
}

func TestOptimiseFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	rw, err := CompileRewriter(writeECCFile(t, dir), false)
	require.NoError(t, err)

	input, err := circuit.Build(1, func(c *circuit.Circuit) error {
		for _, g := range []ops.GateType{ops.H, ops.H, ops.X} {
			if err := c.Append(ops.Gate(g), 0); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	inPath := filepath.Join(dir, "in.json")
	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, input.SaveFile(inPath))

	cfg := DefaultConfig()
	cfg.Cost.Metric = "gate-count"

	improved, err := OptimiseFile(context.Background(), zap.NewNop(), inPath, outPath, rw, cfg)
	require.NoError(t, err)
	assert.True(t, improved)

	out, err := circuit.LoadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumGates())
}
