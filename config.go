package tket2

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dlyongemallo/tket2/ops"
	"github.com/dlyongemallo/tket2/optimiser"
)

// DefaultConfigName is the configuration file looked up when no
// explicit path is given.
const DefaultConfigName = ".tket2opt.yaml"

// Config drives the optimiser: which cost metric to minimise and the
// default search limits. It is read from a YAML file written by the
// init subcommand.
type Config struct {
	Name   string       `yaml:"name"`
	Cost   CostConfig   `yaml:"cost"`
	Search SearchConfig `yaml:"search"`
}

// CostConfig selects the circuit cost metric.
//
// Metric is one of "cx-count" (two-qubit gates only), "gate-count"
// (every gate equally) or "weighted" (per-gate weights from Weights,
// falling back to Default).
type CostConfig struct {
	Metric  string          `yaml:"metric"`
	Weights map[string]uint `yaml:"weights,omitempty"`
	Default uint            `yaml:"default,omitempty"`
}

// SearchConfig holds default search limits, overridable per run.
type SearchConfig struct {
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	Workers        int  `yaml:"workers"`
	SplitCircuit   bool `yaml:"split_circuit"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Name: "tket2opt",
		Cost: CostConfig{Metric: "cx-count"},
		Search: SearchConfig{
			Workers: 1,
		},
	}
}

// LoadConfig reads a YAML configuration file. An empty path falls back
// to DefaultConfigName; a missing file yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CostFn builds the operation cost function the configuration selects.
func (c Config) CostFn() optimiser.CostFn {
	switch c.Cost.Metric {
	case "gate-count":
		return optimiser.GateCountCost
	case "weighted":
		weights := c.Cost.Weights
		def := c.Cost.Default
		return func(op ops.Op) uint {
			if w, ok := weights[op.DisplayName()]; ok {
				return w
			}
			return def
		}
	default:
		return optimiser.DefaultCost
	}
}
