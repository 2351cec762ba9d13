package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/db47h/snnsim/internal/simulator"
	"github.com/db47h/snnsim/internal/store"
	"github.com/db47h/snnsim/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var (
		grid   sweep.Grid
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Simulate every design of the configured grid",
		Long: `Simulate every combination of letter, deviation and cell count.

Each design runs in its own directory under paths.base_dir. The grid and
the base design come from the configuration; the flags below override the
grid axes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("letters") {
				cfg.Sweep.Letters = grid.Letters
			}
			if cmd.Flags().Changed("deviations") {
				cfg.Sweep.Deviations = grid.Deviations
			}
			if cmd.Flags().Changed("cells") {
				cfg.Sweep.Cells = grid.Cells
			}
			if w, _ := cmd.Flags().GetInt("workers"); cmd.Flags().Changed("workers") {
				cfg.Sweep.Workers = w
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			designs := cfg.Sweep.Expand(cfg.Design)
			out := cmd.OutOrStdout()
			if dryRun {
				for i := range designs {
					fmt.Fprintln(out, designs[i].Label())
				}
				return nil
			}

			m, err := models(cfg.Models)
			if err != nil {
				return err
			}
			st, err := store.NewStore(cfg.Store.Kind, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(st)

			log := newLogger(cmd, cfg)
			r := &sweep.Runner{
				Paths: sweep.Paths{
					BaseDir:    cfg.Paths.BaseDir,
					NetlistDir: cfg.Paths.NetlistDir,
					Preamble:   cfg.Paths.Preamble,
					Script:     cfg.Paths.Script,
					Params:     cfg.Paths.Params,
				},
				Models: m,
				Simulator: &simulator.Runner{
					Command: cfg.Simulator.Command,
					Env:     cfg.Simulator.Env,
					Verbose: cfg.Simulator.Verbose,
					Log:     log,
				},
				Store:      st,
				Workers:    cfg.Sweep.Workers,
				MonteCarlo: cfg.Sweep.MonteCarlo,
				FailFast:   cfg.Sweep.FailFast,
				KeepPSF:    cfg.Sweep.KeepPSF,
				Seed:       cfg.Sweep.Seed,
				Log:        log,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			start := time.Now()
			runs, err := r.Run(ctx, designs)
			done := 0
			for _, run := range runs {
				if run.Status == store.StatusDone {
					done++
				}
			}
			fmt.Fprintf(out, "%d/%d runs done in %s\n", done, len(designs), time.Since(start).Round(time.Second))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&grid.Letters, "letters", nil, "Letters to present")
	cmd.Flags().Float64SliceVar(&grid.Deviations, "deviations", nil, "Device deviations")
	cmd.Flags().IntSliceVar(&grid.Cells, "cells", nil, "MTJ cells per synapse")
	cmd.Flags().Int("workers", 0, "Concurrent simulations (0: one per CPU)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list the designs")
	return cmd
}
