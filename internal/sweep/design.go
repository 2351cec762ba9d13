// Package sweep runs a grid of network designs through the simulator.
//
package sweep

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Design holds the parameters of one network simulation. Field tags give the
// placeholder names used in the driver script.
//
type Design struct {
	SimTime       float64 `yaml:"sim_time"`
	SpikeDuration float64 `yaml:"spike_duration"`
	MemVth        float64 `yaml:"mem_vth"`
	Outputs       int     `yaml:"num_output"`
	Cells         int     `yaml:"num_cells"`
	CodBase       float64 `yaml:"cod_base"`
	CodMax        float64 `yaml:"cod_max"`
	// Built-in letter name or image file path.
	Letter string  `yaml:"inp_img"`
	Dev    float64 `yaml:"dev"`
	// If > 0, uniform noise in [0, Noise] is added to the background pixels
	// of the stimulus.
	Noise int `yaml:"noise"`
}

// DefaultDesign returns the reference design.
//
func DefaultDesign() Design {
	return Design{
		SimTime:       150e-3,
		SpikeDuration: 10e-3,
		MemVth:        12e-3,
		Outputs:       1,
		Cells:         2,
		CodBase:       3,
		CodMax:        10,
		Letter:        "U",
	}
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Params returns the script placeholders for d, given the input neuron count.
//
func (d *Design) Params(inputs int) map[string]string {
	return map[string]string{
		"sim_time":       ftoa(d.SimTime),
		"spike_duration": ftoa(d.SpikeDuration),
		"mem_vth":        ftoa(d.MemVth),
		"num_input":      strconv.Itoa(inputs),
		"num_output":     strconv.Itoa(d.Outputs),
		"num_cells":      strconv.Itoa(d.Cells),
		"cod_base":       ftoa(d.CodBase),
		"cod_max":        ftoa(d.CodMax),
		"inp_img":        d.Letter,
		"dev":            ftoa(d.Dev),
	}
}

// Stimulus returns the short name of the stimulus: the letter, or the base
// name without extension of an image file.
//
func (d *Design) Stimulus() string {
	b := filepath.Base(d.Letter)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// Label returns a short name for d, suitable in a file name.
//
func (d *Design) Label() string {
	return "let" + d.Stimulus() + "_dev" + ftoa(d.Dev) + "_cells" + strconv.Itoa(d.Cells)
}

// A Grid lists the values taken by the swept design parameters. An empty
// axis keeps the base design value.
//
type Grid struct {
	Letters    []string  `yaml:"letters"`
	Deviations []float64 `yaml:"deviations"`
	Cells      []int     `yaml:"cells"`
}

// DefaultGrid returns the reference sweep: 11 letters, 5 deviations and
// 4 cell counts.
//
func DefaultGrid() Grid {
	return Grid{
		Letters:    []string{"I", "O", "C", "F", "H", "K", "L", "P", "T", "U", "X"},
		Deviations: []float64{0, 0.05, 0.1, 0.15, 0.2},
		Cells:      []int{2, 4, 6, 8},
	}
}

// Size returns the number of designs Expand returns.
//
func (g *Grid) Size() int {
	n := 1
	if len(g.Letters) > 0 {
		n *= len(g.Letters)
	}
	if len(g.Deviations) > 0 {
		n *= len(g.Deviations)
	}
	if len(g.Cells) > 0 {
		n *= len(g.Cells)
	}
	return n
}

// Expand returns the cartesian product of the grid applied to base. Letters
// vary slowest and cell counts fastest.
//
func (g *Grid) Expand(base Design) []Design {
	ls, ds, cs := g.Letters, g.Deviations, g.Cells
	if len(ls) == 0 {
		ls = []string{base.Letter}
	}
	if len(ds) == 0 {
		ds = []float64{base.Dev}
	}
	if len(cs) == 0 {
		cs = []int{base.Cells}
	}
	out := make([]Design, 0, len(ls)*len(ds)*len(cs))
	for _, l := range ls {
		for _, dev := range ds {
			for _, c := range cs {
				d := base
				d.Letter, d.Dev, d.Cells = l, dev, c
				out = append(out, d)
			}
		}
	}
	return out
}
