// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package nettest provides utility functions for testing generated netlists.
//
package nettest

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// Block kinds.
//
const (
	Text       = "text" // preamble or any unrecognized line
	Subckt     = "subckt"
	Synapse    = "synapse"
	Input      = "input"
	Output     = "output"
	Separator  = "separator"
	separatorL = "//==================================================="
)

// A Block is one component of a rendered netlist.
//
type Block struct {
	Kind string
	// Instance or sub-circuit name.
	Name string
	// Connected nodes, between parentheses on the instance line.
	Nodes []string
	// Model or sub-circuit referenced by an instance.
	Model string
	// key=value parameters, in order.
	Params []Param
	// Cell lines of a sub-circuit definition.
	Cells []Block
	// Raw text of the block.
	Raw string
}

// A Param is a key=value netlist parameter.
//
type Param struct {
	Key, Value string
}

// Param returns the value of the first parameter named key.
//
func (b *Block) Param(key string) (string, bool) {
	for _, p := range b.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

var instRe = regexp.MustCompile(`^(\S+) \(([^)]*)\) (\S+)(.*)$`)

// Split splits a rendered netlist into blocks. Lines ending with a backslash
// are joined with the next line. Empty lines are dropped.
//
func Split(netlist string) ([]Block, error) {
	var (
		out []Block
		sub *Block
	)
	lines := strings.Split(netlist, "\n")
	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		line := strings.TrimSpace(raw)
		for strings.HasSuffix(line, `\`) && i+1 < len(lines) {
			i++
			raw += "\n" + lines[i]
			line = strings.TrimSpace(strings.TrimSuffix(line, `\`)) + " " + strings.TrimSpace(lines[i])
		}
		if line == "" {
			continue
		}
		if sub != nil {
			sub.Raw += "\n" + raw
			switch {
			case strings.HasPrefix(line, "ends"):
				out = append(out, *sub)
				sub = nil
			case strings.HasPrefix(line, "parameters"):
				for _, f := range strings.Fields(line)[1:] {
					sub.Params = append(sub.Params, Param{Key: f})
				}
			default:
				cell, err := parseInstance(line, raw)
				if err != nil {
					cell = Block{Kind: Text, Raw: raw}
				}
				sub.Cells = append(sub.Cells, cell)
			}
			continue
		}
		switch {
		case line == separatorL:
			out = append(out, Block{Kind: Separator, Raw: raw})
		case strings.HasPrefix(line, "subckt "):
			f := strings.Fields(line)
			sub = &Block{Kind: Subckt, Name: f[1], Nodes: f[2:], Raw: raw}
		case strings.HasPrefix(line, "synapse"):
			b, err := parseInstance(line, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i+1)
			}
			b.Kind = Synapse
			out = append(out, b)
		case strings.HasPrefix(line, "input_neuron"):
			b, err := parseInstance(line, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i+1)
			}
			b.Kind = Input
			out = append(out, b)
		case strings.HasPrefix(line, "output_neuron"):
			b, err := parseInstance(line, raw)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i+1)
			}
			b.Kind = Output
			out = append(out, b)
		default:
			out = append(out, Block{Kind: Text, Raw: raw})
		}
	}
	if sub != nil {
		return nil, errors.New("unterminated sub-circuit " + sub.Name)
	}
	return out, nil
}

func parseInstance(line, raw string) (Block, error) {
	m := instRe.FindStringSubmatch(line)
	if m == nil {
		return Block{}, errors.Errorf("malformed instance %q", line)
	}
	b := Block{Kind: Text, Name: m[1], Nodes: strings.Fields(m[2]), Model: m[3], Raw: raw}
	for _, f := range strings.Fields(m[4]) {
		i := strings.IndexByte(f, '=')
		if i < 0 {
			return Block{}, errors.Errorf("malformed parameter %q in %q", f, line)
		}
		b.Params = append(b.Params, Param{f[:i], f[i+1:]})
	}
	return b, nil
}

// Components checks that netlist starts with preamble and returns the blocks
// that follow it.
//
func Components(t *testing.T, netlist, preamble string) []Block {
	t.Helper()
	if !strings.HasPrefix(netlist, preamble) {
		t.Fatal("netlist does not start with the preamble")
	}
	bs, err := Split(netlist[len(preamble):])
	if err != nil {
		t.Fatal(err)
	}
	return bs
}

// Kinds returns the kind of each block.
//
func Kinds(bs []Block) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Kind
	}
	return out
}

// CheckSynapse verifies that a synapse block carries exactly cells PAPk
// parameters valued 0 or 1 followed by cells seedk parameters in [0, 9999].
//
func CheckSynapse(t *testing.T, b Block, cells int) {
	t.Helper()
	if b.Kind != Synapse {
		t.Fatalf("%s: not a synapse", b.Name)
	}
	if len(b.Params) != 2*cells {
		t.Fatalf("%s: got %d parameters, expected %d", b.Name, len(b.Params), 2*cells)
	}
	for k := 0; k < cells; k++ {
		p := b.Params[k]
		if p.Key != "PAP"+strconv.Itoa(k+1) || (p.Value != "0" && p.Value != "1") {
			t.Errorf("%s: invalid state %s=%s", b.Name, p.Key, p.Value)
		}
		s := b.Params[cells+k]
		v, err := strconv.Atoi(s.Value)
		if s.Key != "seed"+strconv.Itoa(k+1) || err != nil || v < 0 || v > 9999 {
			t.Errorf("%s: invalid seed %s=%s", b.Name, s.Key, s.Value)
		}
	}
}

// CompareStructure compares two netlists block by block, ignoring the values
// of random synapse parameters. Both netlists must declare the same
// components with the same names, nodes, models and parameter keys.
//
func CompareStructure(t *testing.T, got, want string) {
	t.Helper()
	g, err := Split(got)
	if err != nil {
		t.Fatal(err)
	}
	w, err := Split(want)
	if err != nil {
		t.Fatal(err)
	}
	if len(g) != len(w) {
		t.Fatalf("got %d blocks, expected %d", len(g), len(w))
	}
	for i := range g {
		if g[i].Kind != w[i].Kind || g[i].Name != w[i].Name || g[i].Model != w[i].Model ||
			strings.Join(g[i].Nodes, " ") != strings.Join(w[i].Nodes, " ") {
			t.Fatalf("block %d: got %s %s (%v) %s, expected %s %s (%v) %s", i,
				g[i].Kind, g[i].Name, g[i].Nodes, g[i].Model,
				w[i].Kind, w[i].Name, w[i].Nodes, w[i].Model)
		}
		if len(g[i].Params) != len(w[i].Params) {
			t.Fatalf("%s: got %d parameters, expected %d", g[i].Name, len(g[i].Params), len(w[i].Params))
		}
		for j := range g[i].Params {
			gp, wp := g[i].Params[j], w[i].Params[j]
			if gp.Key != wp.Key || g[i].Kind != Synapse && gp.Value != wp.Value {
				t.Errorf("%s: got %s=%s, expected %s=%s", g[i].Name, gp.Key, gp.Value, wp.Key, wp.Value)
			}
		}
		if g[i].Kind == Text && g[i].Raw != w[i].Raw {
			t.Errorf("block %d: got %q, expected %q", i, g[i].Raw, w[i].Raw)
		}
	}
}
