// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package snnsim

// Models holds the sub-circuit, terminal and model names used when rendering
// components. The names must match the definitions found in the netlist
// preamble and the parameter names expected by the simulator driver script.
//
type Models struct {
	// Name of the synapse sub-circuit generated by SubcircuitTemplate.
	Subcircuit string
	// Terminal names of the synapse sub-circuit. Every MTJ cell is wired
	// (TermOut TermIn) so that the T2 terminal of the cell is the synapse input.
	TermIn, TermOut string
	// MTJ device sub-circuit defined in the preamble.
	Device string
	// Neuron models defined in the preamble.
	InputModel, OutputModel string

	// Global device parameters referenced by every cell.
	Stochasticity string // param1
	Variability   string // param2
	Temperature   string // param3
	TempVariation string // param4
	Deviation     string // param7

	// Scalars substituted later by the driver script.
	SpikeDuration string
	PresentTime   string
	Threshold     string
}

// Standard is the default set of names.
//
var Standard = &Models{
	Subcircuit:    "compound_synapse",
	TermIn:        "in_ter",
	TermOut:       "out_ter",
	Device:        "cellPMAMTJ",
	InputModel:    "Input_neuron",
	OutputModel:   "LIF_neuron",
	Stochasticity: "gl_STO",
	Variability:   "gl_RV",
	Temperature:   "gl_T",
	TempVariation: "gl_Temp_var",
	Deviation:     "RV_dev",
	SpikeDuration: "spike_duration",
	PresentTime:   "sim_time",
	Threshold:     "mem_vth",
}

// TwoTerminal uses ter1/ter2 terminal names and the laterally inhibited output
// neuron model.
//
var TwoTerminal = func() *Models {
	m := *Standard
	m.TermIn, m.TermOut = "ter1", "ter2"
	m.OutputModel = "LIF_neuron_inh"
	return &m
}()

// ModelsByName returns the named set of models. Valid names are "standard"
// (or empty) and "two-terminal".
//
func ModelsByName(name string) (*Models, bool) {
	switch name {
	case "", "standard":
		return Standard, true
	case "two-terminal":
		return TwoTerminal, true
	}
	return nil, false
}
