package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workspace creates a simulation workspace in a temp dir and makes it the
// working directory.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll("netlist_ocn", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("netlist_ocn", "netlist"), []byte("simulator lang=spectre\n"), 0644))
	require.NoError(t, os.WriteFile("oceanScript.ocn", []byte("design(\"$netlist\")\nsave($save_states)\n"), 0644))
	return dir
}

func TestNetlist(t *testing.T) {
	workspace(t)
	out, err := execute(t, "netlist", "--letter", "I", "--cells", "3", "-o", "net.scs")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote net.scs ("), out)
	assert.Contains(t, out, "25 synapses")

	data, err := os.ReadFile("net.scs")
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, "simulator lang=spectre\nsubckt compound_synapse in_ter out_ter \n"))
	assert.Contains(t, s, "input_neuron8 (input8 0) Input_neuron r=0 n_spikes=13.0 ")
	assert.Contains(t, s, "input_neuron1 (input1 0) Input_neuron r=0 n_spikes=3.0 ")
	assert.Contains(t, s, "output_neuron1 (output1) LIF_neuron mem_vth=mem_vth\n")

	_, err = execute(t, "netlist", "--models", "two-terminal", "-o", "net2.scs")
	require.NoError(t, err)
	data, err = os.ReadFile("net2.scs")
	require.NoError(t, err)
	assert.Contains(t, string(data), "subckt compound_synapse ter1 ter2 \n")
	assert.Contains(t, string(data), "LIF_neuron_inh")

	_, err = execute(t, "netlist", "--noise", "300")
	assert.EqualError(t, err, "invalid noise amplitude 300: must be in [0, 255]")
	_, err = execute(t, "letters", "--noise=-2")
	assert.EqualError(t, err, "invalid noise amplitude -2: must be in [0, 255]")

	_, err = execute(t, "netlist", "--models", "fancy")
	assert.EqualError(t, err, `unknown models "fancy"`)
	_, err = execute(t, "netlist", "--cells", "0")
	assert.EqualError(t, err, "invalid cell count 0")
}

func synapses(t *testing.T, path string) []string {
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

func TestNetlist_noise(t *testing.T) {
	workspace(t)
	_, err := execute(t, "netlist", "--letter", "T", "--seed", "7", "-o", "clean.scs")
	require.NoError(t, err)
	_, err = execute(t, "netlist", "--letter", "T", "--seed", "7", "--noise", "200", "-o", "noisy.scs")
	require.NoError(t, err)
	assert.Equal(t, synapses(t, "clean.scs"), synapses(t, "noisy.scs"))
	assert.Len(t, synapses(t, "clean.scs"), 50)
}

func TestProbes(t *testing.T) {
	workspace(t)
	out, err := execute(t, "probes", "--cells", "2", "--outputs", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `v("synapse1_1.cell1.I:ix") +v("synapse1_1.cell2.I:ix") v("synapse2_1.cell1.I:ix") `), out)
	assert.Equal(t, 100, strings.Count(out, `v("`))
	assert.Contains(t, out, `v("synapse25_2.cell2.I:ix") `)
}

func TestLetters(t *testing.T) {
	dir := workspace(t)
	out, err := execute(t, "letters", "i")
	require.NoError(t, err)
	assert.Equal(t, "I\n\n  @\n  @\n  @\n\n", out)

	out, err = execute(t, "letters", "--out", "imgs", "--format", "bmp", "T", "X")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("imgs", "generated_T.bmp")+"\n"+filepath.Join("imgs", "generated_X.bmp")+"\n", out)
	assert.FileExists(t, filepath.Join(dir, "imgs", "generated_X.bmp"))

	_, err = execute(t, "letters", "--format", "gif")
	assert.EqualError(t, err, `unsupported image format "gif"`)
	_, err = execute(t, "letters", "Z")
	assert.EqualError(t, err, `unknown letter "Z"`)
}

func TestParams(t *testing.T) {
	workspace(t)
	require.NoError(t, os.WriteFile("params.def", []byte("a constant 2\nb uniform 1 1\n"), 0644))
	out, err := execute(t, "params", "-n", "2", "params.def")
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n2\t1\n2\t1\n", out)

	require.NoError(t, os.WriteFile("bad.def", []byte("a nosuch 2\n"), 0644))
	_, err = execute(t, "params", "bad.def")
	assert.Error(t, err)
}

func TestSweep_dryRun(t *testing.T) {
	workspace(t)
	out, err := execute(t, "sweep", "--dry-run", "--letters", "I,O", "--deviations", "0,0.1", "--cells", "2")
	require.NoError(t, err)
	assert.Equal(t, "letI_dev0_cells2\nletI_dev0.1_cells2\nletO_dev0_cells2\nletO_dev0.1_cells2\n", out)
}

func TestSweep(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no shell")
	}
	workspace(t)
	require.NoError(t, os.WriteFile("snnsim.yaml", []byte(`
paths:
  base_dir: runs
simulator:
  command: [/bin/sh, -c, "mkdir psf && cat > /dev/null"]
sweep:
  letters: [I, L]
  deviations: [0.05]
  cells: [2]
  workers: 1
store:
  kind: sqlite
  path: ledger.db
logging:
  level: error
`), 0644))

	out, err := execute(t, "sweep")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2/2 runs done in "), out)

	out, err = execute(t, "runs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "done")
	assert.Contains(t, lines[2], "L")

	id := strings.Fields(lines[1])[0]
	out, err = execute(t, "runs", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "design:    letter I, deviation 0.05, 2 cells, 25x1 neurons\n")
	assert.Contains(t, out, "status:    done\n")

	_, err = execute(t, "runs", "show", "nope")
	assert.EqualError(t, err, "run nope not found")
}

func TestConfig(t *testing.T) {
	workspace(t)
	out, err := execute(t, "config", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug\n")
	assert.Contains(t, out, "models: standard\n")
}
