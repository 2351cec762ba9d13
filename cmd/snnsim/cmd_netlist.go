package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/db47h/snnsim"
	"github.com/db47h/snnsim/letters"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// topologyFlags are shared by the netlist and probes commands.
//
type topologyFlags struct {
	letter  string
	noise   int
	outputs int
	cells   int
	codBase float64
	codMax  float64
}

func (f *topologyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.letter, "letter", "U", "Stimulus: built-in letter or image file")
	cmd.Flags().IntVar(&f.noise, "noise", 0, "Background noise amplitude (0-255)")
	cmd.Flags().IntVar(&f.outputs, "outputs", 1, "Output neuron count")
	cmd.Flags().IntVar(&f.cells, "cells", 2, "MTJ cells per synapse")
	cmd.Flags().Float64Var(&f.codBase, "cod-base", 3, "Baseline spike count")
	cmd.Flags().Float64Var(&f.codMax, "cod-max", 10, "Spike count added at full intensity")
}

// topology returns the network presented with the stimulus. Noise is drawn
// from rng.
//
func (f *topologyFlags) topology(rng *rand.Rand) (snnsim.Topology, error) {
	if err := checkNoise(f.noise); err != nil {
		return snnsim.Topology{}, err
	}
	img, err := letters.Image(f.letter)
	if err != nil {
		return snnsim.Topology{}, err
	}
	if f.noise > 0 {
		img = letters.Noisy(img, f.noise, rng)
	}
	pixels := letters.Flatten(img)
	t := snnsim.Topology{
		Inputs:      len(pixels),
		Outputs:     f.outputs,
		Cells:       f.cells,
		SpikeCounts: snnsim.SpikeCounts(pixels, f.codBase, f.codMax),
	}
	return t, t.Validate()
}

func checkNoise(n int) error {
	if n < 0 || n > letters.Foreground {
		return errors.Errorf("invalid noise amplitude %d: must be in [0, %d]", n, letters.Foreground)
	}
	return nil
}

func newNetlistCmd() *cobra.Command {
	var (
		tf       topologyFlags
		seed     uint64
		preamble string
		output   string
		model    string
	)
	cmd := &cobra.Command{
		Use:   "netlist",
		Short: "Generate the netlist of a network",
		Long: `Generate the netlist of a fully connected network presented with a stimulus.

The netlist is the content of the preamble file followed by the synapse
sub-circuit, the synapses, the input neurons and the output neurons.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models(model)
			if err != nil {
				return err
			}
			t, err := tf.topology(rand.New(rand.NewPCG(seed, ^seed)))
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			if err = snnsim.Generate(t, rng, m, preamble, output); err != nil {
				return err
			}
			fi, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d synapses)\n",
				filepath.Clean(output), humanize.Bytes(uint64(fi.Size())), t.Synapses())
			return nil
		},
	}
	tf.register(cmd)
	cmd.Flags().Uint64Var(&seed, "seed", 10, "Random seed")
	cmd.Flags().StringVar(&preamble, "preamble", "netlist_ocn/netlist", "Netlist preamble file")
	cmd.Flags().StringVarP(&output, "output", "o", "netlist", "Output file")
	cmd.Flags().StringVar(&model, "models", "standard", "Model names: standard or two-terminal")
	return cmd
}

func newProbesCmd() *cobra.Command {
	var tf topologyFlags
	cmd := &cobra.Command{
		Use:   "probes",
		Short: "Print the signals the simulator must record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tf.topology(rand.New(rand.NewPCG(0, 0)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), snnsim.ProbeSignals(t))
			return nil
		},
	}
	tf.register(cmd)
	return cmd
}
