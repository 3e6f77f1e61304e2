package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	tket2 "github.com/dlyongemallo/tket2"
	"github.com/dlyongemallo/tket2/optimiser"
)

var (
	inputPath   string
	outputPath  string
	eccPath     string
	rewriterBin string
	nWorkers    int
	splitCirc   bool
)

var optimiseCmd = &cobra.Command{
	Use:   "optimise",
	Short: "Optimise a circuit using an equivalence-class library",
	Run: func(cmd *cobra.Command, args []string) {
		if inputPath == "" {
			fmt.Println("error: Please provide an input circuit with --input")
			os.Exit(1)
		}
		if eccPath == "" && rewriterBin == "" {
			fmt.Println("error: Please provide --eccs or --rewriter")
			os.Exit(1)
		}

		cfg, err := tket2.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if timeout > 0 {
			cfg.Search.TimeoutSeconds = int(timeout.Seconds())
		}
		if nWorkers > 0 {
			cfg.Search.Workers = nWorkers
		}
		if splitCirc {
			cfg.Search.SplitCircuit = true
		}

		rw, err := loadRewriter()
		if err != nil {
			logger.Fatal("Failed to build rewriter", zap.Error(err))
		}

		improved, err := tket2.OptimiseFile(context.Background(), logger, inputPath, outputPath, rw, cfg)
		if err != nil {
			logger.Fatal("Optimisation failed", zap.Error(err))
		}
		if improved {
			color.Green("Improved circuit written to %s", outputPath)
		} else {
			color.Yellow("No improvement found; original circuit written to %s", outputPath)
		}
	},
}

func loadRewriter() (*optimiser.ECCRewriter, error) {
	if rewriterBin != "" {
		return optimiser.LoadBinary(rewriterBin)
	}
	fmt.Println("Compiling rewriter...")
	return tket2.CompileRewriter(eccPath, true)
}

func init() {
	optimiseCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input circuit in the JSON interchange format")
	optimiseCmd.Flags().StringVarP(&outputPath, "output", "o", "out.json", "Output circuit path")
	optimiseCmd.Flags().StringVarP(&eccPath, "eccs", "e", "", "JSON file of equivalence classes")
	optimiseCmd.Flags().StringVarP(&rewriterBin, "rewriter", "r", "", "Precompiled rewriter binary (see the compile subcommand)")
	optimiseCmd.Flags().IntVarP(&nWorkers, "n-threads", "j", 0, "Number of worker threads (default from config)")
	optimiseCmd.Flags().BoolVar(&splitCirc, "split-circ", false, "Split the circuit into chunks optimised in separate threads")
}
