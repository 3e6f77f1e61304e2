package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	tket2 "github.com/dlyongemallo/tket2"
)

var compileOut string

var compileCmd = &cobra.Command{
	Use:   "compile [ecc-file]",
	Short: "Precompile an equivalence-class library into a rewriter binary",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("error: Please provide an ECC file")
			os.Exit(1)
		}
		eccFile := args[0]

		rw, err := tket2.CompileRewriter(eccFile, true)
		if err != nil {
			logger.Fatal("Failed to compile rewriter", zap.Error(err))
		}

		name := compileOut
		if name == "" {
			name = eccFile
		}
		path, err := rw.SaveBinary(name)
		if err != nil {
			logger.Fatal("Failed to save rewriter", zap.Error(err))
		}
		color.Green("Compiled %d patterns to %s", rw.NPatterns(), path)
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "Output path for the rewriter binary")
}
