package paramdef

import (
	"math/rand/v2"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

type sampler struct {
	minArgs, maxArgs int
	check            func(args []float64) error
	sample           func(args []float64, rng *rand.Rand) float64
}

func noCheck([]float64) error { return nil }

func positive(i int, what string) func([]float64) error {
	return func(args []float64) error {
		if args[i] <= 0 {
			return errors.New(what + " must be positive")
		}
		return nil
	}
}

var funcs map[string]sampler

func init() {
	normal := sampler{2, 2, noCheck, func(a []float64, rng *rand.Rand) float64 {
		return distuv.Normal{Mu: a[0], Sigma: a[1], Src: rng}.Rand()
	}}
	funcs = map[string]sampler{
		"constant": {1, 1, noCheck, func(a []float64, _ *rand.Rand) float64 { return a[0] }},
		"uniform": {2, 2, noCheck, func(a []float64, rng *rand.Rand) float64 {
			return distuv.Uniform{Min: a[0], Max: a[1], Src: rng}.Rand()
		}},
		"gauss":         normal,
		"normalvariate": normal,
		"lognormvariate": {2, 2, positive(1, "sigma"), func(a []float64, rng *rand.Rand) float64 {
			return distuv.LogNormal{Mu: a[0], Sigma: a[1], Src: rng}.Rand()
		}},
		"expovariate": {1, 1, positive(0, "lambda"), func(a []float64, rng *rand.Rand) float64 {
			return distuv.Exponential{Rate: a[0], Src: rng}.Rand()
		}},
		"triangular": {2, 3, checkTriangle, func(a []float64, rng *rand.Rand) float64 {
			lo, hi := a[0], a[1]
			mode := (lo + hi) / 2
			if len(a) == 3 {
				mode = a[2]
			}
			return distuv.NewTriangle(lo, hi, mode, rng).Rand()
		}},
		"randint": {2, 2, checkRandint, func(a []float64, rng *rand.Rand) float64 {
			lo, hi := int(a[0]), int(a[1])
			return float64(lo + rng.IntN(hi-lo+1))
		}},
	}
}

func checkTriangle(a []float64) error {
	if a[0] >= a[1] {
		return errors.New("low must be less than high")
	}
	if len(a) == 3 && (a[2] < a[0] || a[2] > a[1]) {
		return errors.New("mode out of range")
	}
	return nil
}

func checkRandint(a []float64) error {
	for _, v := range a {
		if v != float64(int(v)) {
			return errors.Errorf("non integer bound %g", v)
		}
	}
	if a[0] > a[1] {
		return errors.New("empty range")
	}
	return nil
}

func arityError(name string, s sampler, got int) string {
	exp := strconv.Itoa(s.minArgs)
	if s.maxArgs != s.minArgs {
		exp += " to " + strconv.Itoa(s.maxArgs)
	}
	return name + " expects " + exp + " arguments, got " + strconv.Itoa(got)
}

// Functions returns the names of the supported sampling functions.
//
func Functions() []string {
	out := make([]string, 0, len(funcs))
	for k := range funcs {
		out = append(out, k)
	}
	return out
}

// Sample draws one value for every definition from rng.
//
func (ds Defs) Sample(rng *rand.Rand) map[string]float64 {
	out := make(map[string]float64, len(ds))
	for _, d := range ds {
		out[d.Name] = funcs[d.Func].sample(d.Args, rng)
	}
	return out
}

// Strings is like Sample but formats the values for template substitution.
//
func (ds Defs) Strings(rng *rand.Rand) map[string]string {
	vs := ds.Sample(rng)
	out := make(map[string]string, len(vs))
	for k, v := range vs {
		out[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}
