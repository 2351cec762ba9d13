package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/db47h/snnsim/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Kind != "sqlite" {
		return nil, errors.Errorf("the %s store does not persist runs", cfg.Store.Kind)
	}
	st, err := store.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err = st.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return st, nil
}

func newRunsCmd() *cobra.Command {
	var sweepID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded simulation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(st)
			runs, err := st.ListRuns(cmd.Context(), sweepID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSWEEP\t#\tLETTER\tDEV\tCELLS\tSTATUS\tSTARTED\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%.8s\t%d\t%s\t%g\t%d\t%s\t%s\t%s\n",
					r.ID, r.Sweep, r.Seq, r.Letter, r.Deviation, r.Cells, r.Status,
					humanize.Time(r.Started), r.Duration.Round(time.Second))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sweepID, "sweep", "", "Only list runs of this sweep")
	cmd.AddCommand(newRunsShowCmd())
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the details of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(st)
			r, ok, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("run %s not found", args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "id:        %s\n", r.ID)
			fmt.Fprintf(w, "sweep:     %s (run %d)\n", r.Sweep, r.Seq)
			fmt.Fprintf(w, "design:    letter %s, deviation %g, %d cells, %dx%d neurons\n",
				r.Letter, r.Deviation, r.Cells, r.Inputs, r.Outputs)
			fmt.Fprintf(w, "seed:      %d\n", r.Seed)
			fmt.Fprintf(w, "dir:       %s\n", r.Dir)
			fmt.Fprintf(w, "netlist:   %s\n", r.Netlist)
			fmt.Fprintf(w, "status:    %s\n", r.Status)
			if r.Error != "" {
				fmt.Fprintf(w, "error:     %s\n", r.Error)
			}
			fmt.Fprintf(w, "started:   %s (%s)\n", r.Started.Format(time.RFC3339), humanize.Time(r.Started))
			fmt.Fprintf(w, "duration:  %s\n", r.Duration)
			return nil
		},
	}
}
