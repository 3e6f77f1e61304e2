// Package tket2 optimises quantum circuits: it loads circuits in the
// JSON interchange format, compiles equivalence-class libraries into
// multi-pattern rewriters, and searches the rewrite space for a
// cheaper equivalent circuit.
package tket2

import (
	"context"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/optimiser"
)

// CompileRewriter loads an equivalence-class library from a JSON file
// and compiles it into a rewriter. With showProgress set, a progress
// bar tracks the per-class compilation on stdout.
func CompileRewriter(eccPath string, showProgress bool) (*optimiser.ECCRewriter, error) {
	classes, err := optimiser.LoadECCsFile(eccPath)
	if err != nil {
		return nil, err
	}
	var onClass func(done, total int)
	if showProgress {
		bar := progressbar.NewOptions(len(classes),
			progressbar.OptionSetDescription(eccPath),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		onClass = func(done, total int) {
			_ = bar.Set(done)
		}
	}
	return optimiser.NewECCRewriterProgress(classes, onClass)
}

// Optimise runs the search over one circuit with the configured cost
// metric and search limits. It returns the best circuit found and
// whether it improves on the input.
func Optimise(ctx context.Context, logger *zap.Logger, c *circuit.Circuit, rw optimiser.Rewriter, cfg Config) (*circuit.Circuit, bool, error) {
	opt := optimiser.New(rw, cfg.CostFn()).WithLogger(logger)
	opts := optimiser.Options{
		Timeout:      time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
		NWorkers:     cfg.Search.Workers,
		SplitCircuit: cfg.Search.SplitCircuit,
	}
	return opt.Optimise(ctx, c, opts)
}

// OptimiseFile loads a circuit, optimises it, and writes the result.
func OptimiseFile(ctx context.Context, logger *zap.Logger, inPath, outPath string, rw optimiser.Rewriter, cfg Config) (bool, error) {
	c, err := circuit.LoadFile(inPath)
	if err != nil {
		return false, err
	}
	best, improved, err := Optimise(ctx, logger, c, rw, cfg)
	if err != nil {
		return false, err
	}
	if err := best.SaveFile(outPath); err != nil {
		return false, err
	}
	return improved, nil
}
