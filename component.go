// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package snnsim

import (
	"math"
	"strconv"
	"strings"
)

// A Component is one element of a netlist. The set of components is closed:
// SubcircuitTemplate, Synapse, InputNeuron, OutputNeuron and Separator.
//
// Components hold plain data. They are rendered by Models.Render and never
// check their own consistency: States and Seeds must have exactly Cells
// entries, indices start at 1.
//
type Component interface {
	component()
}

// SubcircuitTemplate is the synapse sub-circuit definition instantiated by
// every Synapse. It must appear once, before any synapse.
//
type SubcircuitTemplate struct {
	Cells int
}

// Synapse connects input neuron Input to output neuron Output through Cells
// MTJ cells. States holds the initial polarity of each cell (0 parallel, 1
// anti-parallel) and Seeds the seed of each cell's stochastic model.
//
type Synapse struct {
	Input, Output int
	Cells         int
	States        []int
	Seeds         []int
}

// InputNeuron is a spike source emitting Spikes spikes per presentation.
//
type InputNeuron struct {
	Index  int
	Spikes float64
}

// OutputNeuron is a leaky integrate and fire neuron.
//
type OutputNeuron struct {
	Index int
}

// Separator is a comment banner between groups of components.
//
type Separator struct{}

func (SubcircuitTemplate) component() {}
func (Synapse) component()            {}
func (InputNeuron) component()        {}
func (OutputNeuron) component()       {}
func (Separator) component()          {}

const separator = "\n//===================================================\n"

// Render returns the netlist text for c.
//
func (m *Models) Render(c Component) string {
	var b strings.Builder
	m.render(&b, c)
	return b.String()
}

func (m *Models) render(b *strings.Builder, c Component) {
	switch c := c.(type) {
	case SubcircuitTemplate:
		m.renderSubcircuit(b, c)
	case Synapse:
		m.renderSynapse(b, c)
	case InputNeuron:
		m.renderInput(b, c)
	case OutputNeuron:
		m.renderOutput(b, c)
	case Separator:
		b.WriteString(separator)
	default:
		panic("unknown netlist component type")
	}
}

func (m *Models) renderSubcircuit(b *strings.Builder, c SubcircuitTemplate) {
	b.WriteString("subckt ")
	b.WriteString(m.Subcircuit)
	b.WriteByte(' ')
	b.WriteString(m.TermIn)
	b.WriteByte(' ')
	b.WriteString(m.TermOut)
	b.WriteString(" \nparameters ")
	for k := 1; k <= c.Cells; k++ {
		b.WriteString("seed")
		b.WriteString(strconv.Itoa(k))
		b.WriteByte(' ')
	}
	for k := 1; k <= c.Cells; k++ {
		b.WriteString("PAP")
		b.WriteString(strconv.Itoa(k))
		if k < c.Cells {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" \n")
	for k := 1; k <= c.Cells; k++ {
		n := strconv.Itoa(k)
		// cell terminals are swapped: the cell's T2 node is the synapse input.
		b.WriteString("\tcell" + n + " (" + m.TermOut + " " + m.TermIn + ") " + m.Device)
		b.WriteString("   param1=" + m.Stochasticity)
		b.WriteString("   param2=" + m.Variability)
		b.WriteString("   param3=" + m.Temperature)
		b.WriteString("   param4=" + m.TempVariation)
		b.WriteString(" param7=" + m.Deviation)
		b.WriteString("   param5=PAP" + n)
		b.WriteString("   param6=seed" + n + "\n")
	}
	b.WriteString("ends ")
	b.WriteString(m.Subcircuit)
	b.WriteByte('\n')
}

func (m *Models) renderSynapse(b *strings.Builder, c Synapse) {
	in, out := strconv.Itoa(c.Input), strconv.Itoa(c.Output)
	b.WriteString("synapse" + in + "_" + out + " (input" + in + " output" + out + ") " + m.Subcircuit + " ")
	for k := 0; k < c.Cells; k++ {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("PAP" + strconv.Itoa(k+1) + "=" + strconv.Itoa(c.States[k]))
	}
	b.WriteString(" \\\n\t\t")
	for k := 0; k < c.Cells; k++ {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("seed" + strconv.Itoa(k+1) + "=" + strconv.Itoa(c.Seeds[k]))
	}
	b.WriteByte('\n')
}

func (m *Models) renderInput(b *strings.Builder, c InputNeuron) {
	i := strconv.Itoa(c.Index)
	b.WriteString("input_neuron" + i + " (input" + i + " 0) " + m.InputModel)
	b.WriteString(" r=0 n_spikes=" + formatSpikes(c.Spikes))
	b.WriteString(" spike_duration=" + m.SpikeDuration)
	b.WriteString(" presenting_time=" + m.PresentTime + " \n")
}

func (m *Models) renderOutput(b *strings.Builder, c OutputNeuron) {
	o := strconv.Itoa(c.Index)
	b.WriteString("output_neuron" + o + " (output" + o + ") " + m.OutputModel)
	b.WriteString(" mem_vth=" + m.Threshold + "\n")
}

// formatSpikes formats a spike count as a floating point literal: integral
// values keep a ".0" suffix and exponents are only used for very large or
// very small magnitudes.
//
func formatSpikes(v float64) string {
	if a := math.Abs(v); math.IsInf(v, 0) || math.IsNaN(v) || a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
