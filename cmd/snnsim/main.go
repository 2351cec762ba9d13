// Command snnsim generates spiking neural network netlists and runs
// parameter sweeps through an external circuit simulator.
//
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/db47h/snnsim"
	"github.com/db47h/snnsim/internal/config"
	"github.com/db47h/snnsim/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snnsim",
		Short: "Spiking neural network netlist generator and simulation driver",
		Long: `snnsim builds netlists of fully connected two layer spiking neural networks
whose synapses are made of stochastic MTJ cells, and runs design sweeps
through an external circuit simulator.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug or trace")

	rootCmd.AddCommand(
		newNetlistCmd(),
		newProbesCmd(),
		newLettersCmd(),
		newParamsCmd(),
		newSweepCmd(),
		newRunsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig loads and validates the configuration selected by the global
// flags.
//
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

func models(name string) (*snnsim.Models, error) {
	m, ok := snnsim.ModelsByName(name)
	if !ok {
		return nil, errors.Errorf("unknown models %q", name)
	}
	return m, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
