package subst

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	vs := map[string]string{"netlist": "/tmp/n", "sim_time": "0.15", "a_1": "x"}
	data := []struct {
		in, out string
	}{
		{"", ""},
		{"no placeholder", "no placeholder"},
		{"design \"$netlist\"", "design \"/tmp/n\""},
		{"tran(?stop ${sim_time})", "tran(?stop 0.15)"},
		{"${sim_time}s", "0.15s"},
		{"$sim_timex", "$sim_timex"},
		{"$a_1.", "x."},
		{"$unknown ${unknown}", "$unknown ${unknown}"},
		{"cost: $$5", "cost: $5"},
		{"$$netlist", "$netlist"},
		{"$ 1 $9 ${", "$ 1 $9 ${"},
		{"${bad name}", "${bad name}"},
		{"${}", "${}"},
		{"trailing $", "trailing $"},
	}
	for _, d := range data {
		assert.Equal(t, d.out, Substitute(d.in, vs), "input %q", d.in)
	}
}

func TestSubstitute_precedence(t *testing.T) {
	got := Substitute("$a $b", map[string]string{"a": "1", "b": "1"}, map[string]string{"b": "2"})
	assert.Equal(t, "1 2", got)
}

func TestSubstituteFile(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "script.ocn"), filepath.Join(dir, "updated.ocn")
	require.NoError(t, os.WriteFile(in, []byte("design(\"$netlist\")\nsave($save_states)\n"), 0644))
	require.NoError(t, SubstituteFile(in, out, map[string]string{"netlist": "n", "save_states": "v(\"x\") "}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "design(\"n\")\nsave(v(\"x\") )\n", string(data))

	assert.Error(t, SubstituteFile(filepath.Join(dir, "nope"), out))
}
