/*
Package snnsim generates SPICE netlists for a spiking neural network built from
stochastic magnetic tunnel junction (MTJ) synapses.

A network is fully connected between one layer of input neurons and one layer
of output neurons. Each synapse is a sub-circuit of several MTJ cells, every
cell with its own initial polarity and simulator seed. Given the topology and
the per-input spike counts, the package assembles the netlist components in
the order the simulator expects and writes them after a static preamble that
holds the device and neuron models:

	t := snnsim.Topology{
		Inputs:      25,
		Outputs:     1,
		Cells:       4,
		SpikeCounts: snnsim.SpikeCounts(pixels, 3, 10),
	}
	rng := rand.New(rand.NewPCG(seed, 0))
	err := snnsim.Generate(t, rng, snnsim.Standard, "netlist_ocn/preamble", "netlist_ocn/netlist")

Synapses are enumerated with the input index varying fastest. Simulator result
columns follow the same order, see ProbeSignals.

*/
package snnsim
