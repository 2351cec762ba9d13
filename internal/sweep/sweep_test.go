package sweep

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/db47h/snnsim"
	"github.com/db47h/snnsim/internal/simulator"
	"github.com/db47h/snnsim/internal/store"
	"github.com/db47h/snnsim/letters"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	preamble = "simulator lang=spectre\ninclude \"models.scs\"\n"
	script   = "netlist=$netlist\ndir=$process_dir\nresults=$results_file\ncells=$num_cells inputs=$num_input\nsave=$save_states\nsto=$gl_STO\nkeep=$unknown\n"
)

type fakeSim struct {
	mu      sync.Mutex
	scripts []string
	fail    func(dir string) error
}

func (f *fakeSim) Run(_ context.Context, dir, script, logFile string) error {
	f.mu.Lock()
	f.scripts = append(f.scripts, script)
	f.mu.Unlock()
	if err := os.MkdirAll(filepath.Join(dir, "psf"), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(logFile, []byte("done\n"), 0644); err != nil {
		return err
	}
	if f.fail != nil {
		return f.fail(dir)
	}
	return nil
}

func (f *fakeSim) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scripts)
}

func setup(t *testing.T) Paths {
	t.Helper()
	root := t.TempDir()
	nd := filepath.Join(root, "netlist_ocn")
	require.NoError(t, os.MkdirAll(filepath.Join(nd, "models"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nd, NetlistName), []byte(preamble), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(nd, "models", "mtj.scs"), []byte("// mtj\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "oceanScript.ocn"), []byte(script), 0644))
	return Paths{
		BaseDir:    filepath.Join(root, "runs"),
		NetlistDir: nd,
		Script:     filepath.Join(root, "oceanScript.ocn"),
	}
}

func fixedClock() time.Time { return time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC) }

func design(letter string, cells int) Design {
	d := DefaultDesign()
	d.Letter, d.Cells = letter, cells
	return d
}

func TestGrid_Expand(t *testing.T) {
	g := Grid{Letters: []string{"I", "O"}, Deviations: []float64{0, 0.1}, Cells: []int{2, 4, 6}}
	ds := g.Expand(DefaultDesign())
	require.Len(t, ds, 12)
	assert.Equal(t, g.Size(), len(ds))
	assert.Equal(t, "letI_dev0_cells2", ds[0].Label())
	assert.Equal(t, "letI_dev0_cells4", ds[1].Label())
	assert.Equal(t, "letI_dev0.1_cells2", ds[3].Label())
	assert.Equal(t, "letO_dev0_cells2", ds[6].Label())
	assert.Equal(t, "letO_dev0.1_cells6", ds[11].Label())
	for _, d := range ds {
		assert.Equal(t, 12e-3, d.MemVth)
	}

	empty := Grid{}
	ds = empty.Expand(design("T", 8))
	require.Len(t, ds, 1)
	assert.Equal(t, 1, empty.Size())
	assert.Equal(t, "letT_dev0_cells8", ds[0].Label())

	file := design("stimuli/A.bmp", 2)
	assert.Equal(t, "A", file.Stimulus())
	assert.Equal(t, "letA_dev0_cells2", file.Label())

	def := DefaultGrid()
	assert.Equal(t, 220, def.Size())
}

func TestDesign_Params(t *testing.T) {
	d := DefaultDesign()
	ps := d.Params(25)
	assert.Equal(t, map[string]string{
		"sim_time":       "0.15",
		"spike_duration": "0.01",
		"mem_vth":        "0.012",
		"num_input":      "25",
		"num_output":     "1",
		"num_cells":      "2",
		"cod_base":       "3",
		"cod_max":        "10",
		"inp_img":        "U",
		"dev":            "0",
	}, ps)
}

func TestRunner_Run(t *testing.T) {
	paths := setup(t)
	sim := &fakeSim{}
	st := store.NewMemoryStore()
	r := &Runner{Paths: paths, Simulator: sim, Store: st, Workers: 2, Seed: 10, Now: fixedClock}

	runs, err := r.Run(context.Background(), []Design{design("I", 2), design("O", 2)})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, sim.calls())

	for i, run := range runs {
		assert.Equal(t, store.StatusDone, run.Status)
		assert.Equal(t, i+1, run.Seq)
		assert.Equal(t, 25, run.Inputs)
		assert.True(t, strings.HasPrefix(filepath.Base(run.Dir), "dat_0305_1407_run"), run.Dir)

		net, err := os.ReadFile(run.Netlist)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(net), preamble))
		assert.Contains(t, string(net), "ends compound_synapse\n")
		assert.FileExists(t, filepath.Join(run.Dir, "netlist_ocn", "models", "mtj.scs"))
		assert.NoDirExists(t, filepath.Join(run.Dir, "psf"))

		s, err := os.ReadFile(filepath.Join(run.Dir, ScriptName))
		require.NoError(t, err)
		top := snnsim.Topology{Inputs: 25, Outputs: 1, Cells: 2, SpikeCounts: make([]float64, 25)}
		assert.Contains(t, string(s), "netlist="+run.Netlist+"\n")
		assert.Contains(t, string(s), "results="+filepath.Join(run.Dir, ResultsName)+"\n")
		assert.Contains(t, string(s), "cells=2 inputs=25\n")
		assert.Contains(t, string(s), "save="+snnsim.ProbeSignals(top)+"\n")
		assert.Contains(t, string(s), "sto=$gl_STO\nkeep=$unknown\n")
	}
	assert.Equal(t, "dat_0305_1407_run1_letI_dev0_cells2", filepath.Base(runs[0].Dir))
	assert.Equal(t, "dat_0305_1407_run2_letO_dev0_cells2", filepath.Base(runs[1].Dir))

	ls, err := st.ListRuns(context.Background(), runs[0].Sweep)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, runs[0].ID, ls[0].ID)
	assert.Equal(t, "O", ls[1].Letter)
}

func synapseLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(l, "synapse") || strings.HasPrefix(l, "\t\tseed") {
			out = append(out, l)
		}
	}
	return out
}

// Designs with the same topology get the same device initialization.
func TestRunner_sameSeed(t *testing.T) {
	paths := setup(t)
	r := &Runner{Paths: paths, Simulator: &fakeSim{}, Workers: 1, Seed: 10, Now: fixedClock}
	runs, err := r.Run(context.Background(), []Design{design("I", 4), design("X", 4)})
	require.NoError(t, err)
	a, b := synapseLines(t, runs[0].Netlist), synapseLines(t, runs[1].Netlist)
	assert.Len(t, a, 50)
	assert.Equal(t, a, b)
}

// Stimulus noise does not consume draws from the netlist generator.
func TestRunner_sameSeedNoisy(t *testing.T) {
	paths := setup(t)
	r := &Runner{Paths: paths, Simulator: &fakeSim{}, Workers: 1, Seed: 10, Now: fixedClock}
	clean := design("I", 4)
	noisyI, noisyX := clean, design("X", 4)
	noisyI.Noise, noisyX.Noise = 100, 100
	runs, err := r.Run(context.Background(), []Design{clean, noisyI, noisyX})
	require.NoError(t, err)

	want := synapseLines(t, runs[0].Netlist)
	require.Len(t, want, 50)
	assert.Equal(t, want, synapseLines(t, runs[1].Netlist))
	assert.Equal(t, want, synapseLines(t, runs[2].Netlist))

	// 22 background pixels of I at 3 spikes each without noise
	data, err := os.ReadFile(runs[1].Netlist)
	require.NoError(t, err)
	assert.Less(t, strings.Count(string(data), "n_spikes=3.0 "), 22)
}

func TestRunner_imageStimulus(t *testing.T) {
	paths := setup(t)
	img, err := letters.Glyph("U")
	require.NoError(t, err)
	fn := filepath.Join(filepath.Dir(paths.Script), "sub", "u.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(fn), 0755))
	require.NoError(t, letters.Save(fn, img))

	r := &Runner{Paths: paths, Simulator: &fakeSim{}, Now: fixedClock}
	d := DefaultDesign()
	d.Letter = fn
	assert.Equal(t, "letu_dev0_cells2", d.Label())
	runs, err := r.Run(context.Background(), []Design{d})
	require.NoError(t, err)

	base, err := filepath.Abs(paths.BaseDir)
	require.NoError(t, err)
	assert.Equal(t, base, filepath.Dir(runs[0].Dir))
	assert.Equal(t, "dat_0305_1407_run1_letu_dev0_cells2", filepath.Base(runs[0].Dir))
	assert.Equal(t, 25, runs[0].Inputs)
	assert.FileExists(t, runs[0].Netlist)
}

func TestRunner_failures(t *testing.T) {
	paths := setup(t)
	sim := &fakeSim{fail: func(dir string) error {
		if strings.Contains(dir, "letO") {
			return errors.New("boom")
		}
		return nil
	}}
	st := store.NewMemoryStore()
	r := &Runner{Paths: paths, Simulator: sim, Store: st, Workers: 1, Now: fixedClock}
	runs, err := r.Run(context.Background(), []Design{design("O", 2), design("I", 2), design("nope", 2)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 1 (letO_dev0_cells2): boom")
	assert.Contains(t, err.Error(), "run 3 (letnope_dev0_cells2)")
	assert.Equal(t, 2, sim.calls())

	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, store.StatusDone, runs[1].Status)
	assert.Equal(t, store.StatusFailed, runs[2].Status)

	got, ok, err := st.GetRun(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, store.StatusFailed, got.Status)
}

func TestRunner_failFast(t *testing.T) {
	paths := setup(t)
	sim := &fakeSim{fail: func(string) error { return errors.New("boom") }}
	r := &Runner{Paths: paths, Simulator: sim, Workers: 1, FailFast: true, Now: fixedClock}
	runs, err := r.Run(context.Background(), []Design{design("O", 2), design("I", 2), design("X", 2)})
	require.Error(t, err)
	assert.Equal(t, 1, sim.calls())
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.Empty(t, runs[1].ID)
	assert.Empty(t, runs[2].ID)
}

func TestRunner_monteCarlo(t *testing.T) {
	paths := setup(t)
	paths.Params = filepath.Join(filepath.Dir(paths.Script), "params.def")
	require.NoError(t, os.WriteFile(paths.Params, []byte("gl_STO uniform 0 1\n"), 0644))
	sim := &fakeSim{}
	r := &Runner{Paths: paths, Simulator: sim, MonteCarlo: 3, KeepPSF: true, Now: fixedClock}
	runs, err := r.Run(context.Background(), []Design{design("L", 2)})
	require.NoError(t, err)
	assert.Equal(t, 3, sim.calls())
	dir := runs[0].Dir
	assert.DirExists(t, filepath.Join(dir, "psf"))
	for _, sfx := range []string{"_mc1", "_mc2", "_mc3"} {
		s, err := os.ReadFile(filepath.Join(dir, "updated_template"+sfx+".ocn"))
		require.NoError(t, err)
		assert.NotContains(t, string(s), "$gl_STO")
		assert.Contains(t, string(s), "results="+filepath.Join(dir, "results"+sfx+".txt"))
		assert.FileExists(t, filepath.Join(dir, "oceanScript"+sfx+".log"))
	}
}

func TestRunner_badParams(t *testing.T) {
	paths := setup(t)
	paths.Params = filepath.Join(filepath.Dir(paths.Script), "params.def")
	require.NoError(t, os.WriteFile(paths.Params, []byte("gl_STO sqrt 2\n"), 0644))
	sim := &fakeSim{}
	r := &Runner{Paths: paths, Simulator: sim}
	_, err := r.Run(context.Background(), []Design{DefaultDesign()})
	require.Error(t, err)
	assert.Zero(t, sim.calls())
}

func TestRunner_canceled(t *testing.T) {
	paths := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := &fakeSim{}
	r := &Runner{Paths: paths, Simulator: sim}
	_, err := r.Run(ctx, []Design{DefaultDesign()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep interrupted")
	assert.Zero(t, sim.calls())
}

func TestRunner_shellSimulator(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no shell")
	}
	paths := setup(t)
	sim := &simulator.Runner{Command: []string{"/bin/sh", "-c", "mkdir psf && grep '^netlist=' && echo ok"}}
	r := &Runner{Paths: paths, Simulator: sim, Now: fixedClock}
	runs, err := r.Run(context.Background(), []Design{DefaultDesign()})
	require.NoError(t, err)
	log, err := os.ReadFile(filepath.Join(runs[0].Dir, LogName))
	require.NoError(t, err)
	assert.Equal(t, "netlist="+runs[0].Netlist+"\nok\n", string(log))
	assert.NoDirExists(t, filepath.Join(runs[0].Dir, "psf"))
}
