// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package snnsim

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// A Netlist is an ordered list of components rendered after a static
// preamble.
//
type Netlist struct {
	m  *Models
	cs []Component
}

// NewNetlist returns an empty netlist rendered with the given models. If m is
// nil, Standard is used.
//
func NewNetlist(m *Models) *Netlist {
	if m == nil {
		m = Standard
	}
	return &Netlist{m: m}
}

// Add appends components to the netlist.
//
func (n *Netlist) Add(cs ...Component) {
	n.cs = append(n.cs, cs...)
}

// Components returns the components in insertion order.
//
func (n *Netlist) Components() []Component { return n.cs }

// Len returns the component count.
//
func (n *Netlist) Len() int { return len(n.cs) }

// WriteTo writes the rendered components, without preamble, to w.
//
func (n *Netlist) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, c := range n.cs {
		n.m.render(&b, c)
	}
	cnt, err := io.WriteString(w, b.String())
	return int64(cnt), err
}

// WriteFile writes the netlist to path, prefixed by the full content of the
// preamble file.
//
// The output file is either completely written or left untouched: the
// preamble is read and the whole document assembled before anything is
// written, then the document is written to a temporary file in the same
// directory and renamed to path.
//
func (n *Netlist) WriteFile(preamble, path string) error {
	pre, err := os.ReadFile(preamble)
	if err != nil {
		return errors.Wrap(err, "read netlist preamble")
	}
	var buf bytes.Buffer
	buf.Write(pre)
	if _, err = n.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "render netlist")
	}
	return writeFileAtomic(path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".")
	if err != nil {
		return errors.Wrap(err, "create netlist")
	}
	tmp := f.Name()
	if _, err = f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "write netlist")
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "write netlist")
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "write netlist")
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "write netlist")
	}
	return nil
}
