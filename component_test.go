package snnsim_test

import (
	"strings"
	"testing"

	"github.com/db47h/snnsim"
)

const cell = "   param1=gl_STO   param2=gl_RV   param3=gl_T   param4=gl_Temp_var param7=RV_dev   "

func TestModels_Render(t *testing.T) {
	data := []struct {
		name string
		c    snnsim.Component
		exp  string
	}{
		{"subckt_1", snnsim.SubcircuitTemplate{Cells: 1},
			"subckt compound_synapse in_ter out_ter \n" +
				"parameters seed1 PAP1 \n" +
				"\tcell1 (out_ter in_ter) cellPMAMTJ" + cell + "param5=PAP1   param6=seed1\n" +
				"ends compound_synapse\n"},
		{"subckt_2", snnsim.SubcircuitTemplate{Cells: 2},
			"subckt compound_synapse in_ter out_ter \n" +
				"parameters seed1 seed2 PAP1 PAP2 \n" +
				"\tcell1 (out_ter in_ter) cellPMAMTJ" + cell + "param5=PAP1   param6=seed1\n" +
				"\tcell2 (out_ter in_ter) cellPMAMTJ" + cell + "param5=PAP2   param6=seed2\n" +
				"ends compound_synapse\n"},
		{"synapse", snnsim.Synapse{Input: 3, Output: 2, Cells: 2, States: []int{0, 1}, Seeds: []int{42, 9999}},
			"synapse3_2 (input3 output2) compound_synapse PAP1=0 PAP2=1 \\\n\t\tseed1=42 seed2=9999\n"},
		{"synapse_1", snnsim.Synapse{Input: 1, Output: 1, Cells: 1, States: []int{1}, Seeds: []int{0}},
			"synapse1_1 (input1 output1) compound_synapse PAP1=1 \\\n\t\tseed1=0\n"},
		{"input", snnsim.InputNeuron{Index: 7, Spikes: 5},
			"input_neuron7 (input7 0) Input_neuron r=0 n_spikes=5.0 spike_duration=spike_duration presenting_time=sim_time \n"},
		{"input_frac", snnsim.InputNeuron{Index: 1, Spikes: 3.5},
			"input_neuron1 (input1 0) Input_neuron r=0 n_spikes=3.5 spike_duration=spike_duration presenting_time=sim_time \n"},
		{"input_big", snnsim.InputNeuron{Index: 2, Spikes: 1e6},
			"input_neuron2 (input2 0) Input_neuron r=0 n_spikes=1000000.0 spike_duration=spike_duration presenting_time=sim_time \n"},
		{"input_coded", snnsim.InputNeuron{Index: 3, Spikes: 8.019607843137255},
			"input_neuron3 (input3 0) Input_neuron r=0 n_spikes=8.019607843137255 spike_duration=spike_duration presenting_time=sim_time \n"},
		{"output", snnsim.OutputNeuron{Index: 4},
			"output_neuron4 (output4) LIF_neuron mem_vth=mem_vth\n"},
		{"separator", snnsim.Separator{},
			"\n//===================================================\n"},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			got := snnsim.Standard.Render(d.c)
			if got != d.exp {
				t.Errorf("got:\n%q\nexpected:\n%q", got, d.exp)
			}
			// rendering is a pure function of the component
			if again := snnsim.Standard.Render(d.c); again != got {
				t.Errorf("second rendering differs:\n%q\n%q", again, got)
			}
		})
	}
}

func TestModels_TwoTerminal(t *testing.T) {
	got := snnsim.TwoTerminal.Render(snnsim.SubcircuitTemplate{Cells: 1})
	if !strings.HasPrefix(got, "subckt compound_synapse ter1 ter2 \n") {
		t.Errorf("unexpected sub-circuit header in %q", got)
	}
	if !strings.Contains(got, "\tcell1 (ter2 ter1) cellPMAMTJ") {
		t.Errorf("unexpected cell terminals in %q", got)
	}
	got = snnsim.TwoTerminal.Render(snnsim.OutputNeuron{Index: 1})
	if exp := "output_neuron1 (output1) LIF_neuron_inh mem_vth=mem_vth\n"; got != exp {
		t.Errorf("got %q, expected %q", got, exp)
	}
	// the standard set must not be modified by the variant
	if snnsim.Standard.TermIn != "in_ter" || snnsim.Standard.OutputModel != "LIF_neuron" {
		t.Error("Standard models modified")
	}
}

func TestModelsByName(t *testing.T) {
	for _, name := range []string{"", "standard", "two-terminal"} {
		if _, ok := snnsim.ModelsByName(name); !ok {
			t.Errorf("models %q not found", name)
		}
	}
	if _, ok := snnsim.ModelsByName("ter1"); ok {
		t.Error("unexpected models for unknown name")
	}
}
