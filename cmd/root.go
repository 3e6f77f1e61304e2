package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "tket2opt",
	Short:            "tket2opt - optimise quantum circuits with equivalence-class rewriting",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path of the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for the optimisation (overrides the config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(optimiseCmd)
	rootCmd.AddCommand(compileCmd)
}
