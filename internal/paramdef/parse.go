// Package paramdef parses Monte-Carlo parameter definition files and samples
// parameter values from them.
//
// A definition file has one parameter per line:
//
//	# name   function  arguments...
//	gl_RV    gauss     0 0.05
//	gl_T     uniform   290 310
//	seed_bg  randint   0 9999
//
// Blank lines and text following '#' are ignored.
//
package paramdef

import (
	"os"

	"github.com/pkg/errors"
)

// A Def is a single parameter definition.
//
type Def struct {
	Name string
	Func string
	Args []float64
	Pos  Pos
}

// Defs is an ordered list of definitions.
//
type Defs []Def

// Names returns the parameter names in definition order.
//
func (ds Defs) Names() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

// Parse parses a definition file content. The name argument is only used in
// error messages.
//
func Parse(name, input string) (Defs, error) {
	var (
		out  Defs
		seen = make(map[string]Pos)
	)
	l := newLexer(input)
	for {
		i := l.Lex()
		switch i.Type {
		case EOF:
			return out, nil
		case Newline:
			continue
		case Ident:
		default:
			return nil, parseError(name, i.Pos, "expected parameter name, got "+i.String())
		}
		d := Def{Name: i.Value.(string), Pos: i.Pos}
		if p, ok := seen[d.Name]; ok {
			return nil, parseError(name, i.Pos, "parameter "+d.Name+" already defined at "+p.String())
		}
		seen[d.Name] = d.Pos

		i = l.Lex()
		if i.Type != Ident {
			return nil, parseError(name, i.Pos, "expected function name, got "+i.String())
		}
		fn, ok := funcs[i.Value.(string)]
		if !ok {
			return nil, parseError(name, i.Pos, "unknown function "+i.Value.(string))
		}
		d.Func = i.Value.(string)
		fpos := i.Pos

	args:
		for {
			i = l.Lex()
			switch i.Type {
			case Number:
				d.Args = append(d.Args, i.Value.(float64))
			case Newline, EOF:
				break args
			default:
				return nil, parseError(name, i.Pos, "expected number, got "+i.String())
			}
		}
		if len(d.Args) < fn.minArgs || len(d.Args) > fn.maxArgs {
			return nil, parseError(name, fpos, arityError(d.Func, fn, len(d.Args)))
		}
		if err := fn.check(d.Args); err != nil {
			return nil, parseError(name, fpos, d.Func+": "+err.Error())
		}
		out = append(out, d)
		if i.Type == EOF {
			return out, nil
		}
	}
}

// ParseFile parses the named definition file.
//
func ParseFile(filename string) (Defs, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read parameter definitions")
	}
	return Parse(filename, string(data))
}

func parseError(name string, pos Pos, msg string) error {
	return errors.Errorf("%s:%s: %s", name, pos, msg)
}
