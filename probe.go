// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package snnsim

import (
	"strconv"
	"strings"
)

// Probe returns the simulator expression for the current through cell k of
// the synapse between input in and output out.
//
func Probe(in, out, k int) string {
	return `v("synapse` + strconv.Itoa(in) + "_" + strconv.Itoa(out) + ".cell" + strconv.Itoa(k) + `.I:ix")`
}

// ProbeSignals returns the list of signals the simulator driver script must
// record. There is one expression per synapse, summing the currents of its
// cells, and synapses are listed in the same order as Build emits them.
//
//	v("synapse1_1.cell1.I:ix") +v("synapse1_1.cell2.I:ix") v("synapse2_1.cell1.I:ix") +...
//
func ProbeSignals(t Topology) string {
	var b strings.Builder
	for p := 1; p <= t.Synapses(); p++ {
		in, out := SynapseAt(p, t.Inputs)
		for k := 1; k <= t.Cells; k++ {
			b.WriteString(Probe(in, out, k))
			b.WriteByte(' ')
			if k < t.Cells {
				b.WriteByte('+')
			}
		}
	}
	return b.String()
}

// SpikeCounts applies frequency coding to pixel intensities: a pixel p emits
// base + max*(p/255) spikes.
//
func SpikeCounts(pixels []uint8, base, max float64) []float64 {
	out := make([]float64, len(pixels))
	for i, p := range pixels {
		out[i] = base + max*(float64(p)/255.0)
	}
	return out
}
