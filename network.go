// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package snnsim

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// MaxSeed is the largest seed drawn for an MTJ cell.
//
const MaxSeed = 9999

// Topology describes a fully connected two layer network.
//
type Topology struct {
	Inputs  int // input neuron count
	Outputs int // output neuron count
	Cells   int // MTJ cells per synapse
	// Spike count of each input neuron. Must have Inputs entries.
	SpikeCounts []float64
}

// Synapses returns the synapse count.
//
func (t *Topology) Synapses() int { return t.Inputs * t.Outputs }

// Validate checks that the topology can be rendered.
//
func (t *Topology) Validate() error {
	switch {
	case t.Inputs < 1:
		return errors.Errorf("invalid input neuron count %d", t.Inputs)
	case t.Outputs < 1:
		return errors.Errorf("invalid output neuron count %d", t.Outputs)
	case t.Cells < 1:
		return errors.Errorf("invalid cell count %d", t.Cells)
	case len(t.SpikeCounts) != t.Inputs:
		return errors.Errorf("got %d spike counts for %d input neurons", len(t.SpikeCounts), t.Inputs)
	}
	for i, s := range t.SpikeCounts {
		if s < 0 {
			return errors.Errorf("negative spike count %g for input neuron %d", s, i+1)
		}
	}
	return nil
}

// SynapseAt returns the input and output neuron indices of the synapse at
// linear position p (1 based) in a network with the given number of inputs.
// The input index varies fastest:
//
//	p = 1          -> (1, 1)
//	p = 2          -> (2, 1)
//	p = inputs + 1 -> (1, 2)
//
func SynapseAt(p, inputs int) (in, out int) {
	return (p-1)%inputs + 1, (p-1)/inputs + 1
}

// NewSynapse returns a synapse with random initial states and seeds drawn
// from rng.
//
func NewSynapse(in, out, cells int, rng *rand.Rand) Synapse {
	s := Synapse{
		Input:  in,
		Output: out,
		Cells:  cells,
		States: make([]int, cells),
		Seeds:  make([]int, cells),
	}
	for k := range s.Seeds {
		s.Seeds[k] = rng.IntN(MaxSeed + 1)
	}
	for k := range s.States {
		s.States[k] = rng.IntN(2)
	}
	return s
}

// Build returns the components of the network described by t in netlist order:
// the synapse sub-circuit, all synapses, all input neurons and all output
// neurons, each group preceded by a Separator.
//
// All random draws come from rng.
//
func Build(t Topology, rng *rand.Rand) ([]Component, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cs := make([]Component, 0, 4+t.Synapses()+t.Inputs+t.Outputs)
	cs = append(cs, SubcircuitTemplate{Cells: t.Cells}, Separator{})
	for p := 1; p <= t.Synapses(); p++ {
		in, out := SynapseAt(p, t.Inputs)
		cs = append(cs, NewSynapse(in, out, t.Cells, rng))
	}
	cs = append(cs, Separator{})
	for i := 1; i <= t.Inputs; i++ {
		cs = append(cs, InputNeuron{Index: i, Spikes: t.SpikeCounts[i-1]})
	}
	cs = append(cs, Separator{})
	for o := 1; o <= t.Outputs; o++ {
		cs = append(cs, OutputNeuron{Index: o})
	}
	return cs, nil
}

// Generate builds the network described by t and writes its netlist to path,
// after the content of the preamble file. If m is nil, Standard is used.
//
func Generate(t Topology, rng *rand.Rand, m *Models, preamble, path string) error {
	cs, err := Build(t, rng)
	if err != nil {
		return err
	}
	n := NewNetlist(m)
	n.Add(cs...)
	return n.WriteFile(preamble, path)
}
