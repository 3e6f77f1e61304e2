package tket2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlyongemallo/tket2/ops"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	content := `
name: bench
cost:
  metric: weighted
  weights:
    CX: 10
  default: 1
search:
  timeout_seconds: 30
  workers: 4
  split_circuit: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.Name)
	assert.Equal(t, "weighted", cfg.Cost.Metric)
	assert.Equal(t, 30, cfg.Search.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.True(t, cfg.Search.SplitCircuit)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a\n- mapping\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCostFn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		cfg    Config
		op     ops.Op
		expect uint
	}{
		{
			name:   "default metric counts two-qubit gates",
			cfg:    DefaultConfig(),
			op:     ops.Gate(ops.CX),
			expect: 1,
		},
		{
			name:   "default metric ignores single-qubit gates",
			cfg:    DefaultConfig(),
			op:     ops.Gate(ops.H),
			expect: 0,
		},
		{
			name:   "gate count weighs everything",
			cfg:    Config{Cost: CostConfig{Metric: "gate-count"}},
			op:     ops.Gate(ops.H),
			expect: 1,
		},
		{
			name: "weighted uses per-gate weight",
			cfg: Config{Cost: CostConfig{
				Metric:  "weighted",
				Weights: map[string]uint{"CX": 10},
				Default: 2,
			}},
			op:     ops.Gate(ops.CX),
			expect: 10,
		},
		{
			name: "weighted falls back to default",
			cfg: Config{Cost: CostConfig{
				Metric:  "weighted",
				Weights: map[string]uint{"CX": 10},
				Default: 2,
			}},
			op:     ops.Gate(ops.Z),
			expect: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, tt.cfg.CostFn()(tt.op))
		})
	}
}
