package sweep

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/db47h/snnsim"
	"github.com/db47h/snnsim/internal/logging"
	"github.com/db47h/snnsim/internal/paramdef"
	"github.com/db47h/snnsim/internal/store"
	"github.com/db47h/snnsim/internal/subst"
	"github.com/db47h/snnsim/letters"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// A Simulator runs a driver script from dir, writing its output to logFile.
//
type Simulator interface {
	Run(ctx context.Context, dir, script, logFile string) error
}

// Paths locates the sweep inputs and outputs.
//
type Paths struct {
	// Run directories are created here.
	BaseDir string
	// Netlist support directory, copied into every run directory.
	NetlistDir string
	// Static netlist preamble. Defaults to NetlistDir/netlist.
	Preamble string
	// Driver script template.
	Script string
	// Optional Monte-Carlo parameter definitions.
	Params string
}

// File names inside a run directory.
//
const (
	NetlistName = "netlist"
	ScriptName  = "updated_template.ocn"
	LogName     = "oceanScript.log"
	ResultsName = "results.txt"
	psfDir      = "psf"
)

// A Runner runs designs concurrently.
//
type Runner struct {
	Paths     Paths
	Models    *snnsim.Models // nil for snnsim.Standard
	Simulator Simulator
	Store     store.Store // optional

	// Maximum concurrent runs. GOMAXPROCS if <= 0.
	Workers int
	// Simulations per design, each with freshly sampled parameters. At least 1.
	MonteCarlo int
	// Stop scheduling runs after the first failure.
	FailFast bool
	// Keep the simulator's raw waveform directory.
	KeepPSF bool
	// Seed of the network generator. Every run starts from the same seed so
	// that designs with equal topologies share their initial device states.
	Seed uint64

	Log *slog.Logger
	// Clock, time.Now if nil.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run runs all designs and returns the failures joined, or nil. The returned
// runs are in design order; runs not started because of FailFast or a
// canceled context are left zero.
//
func (r *Runner) Run(ctx context.Context, designs []Design) ([]store.Run, error) {
	if r.Simulator == nil {
		return nil, errors.New("no simulator")
	}
	log := logging.OrDiscard(r.Log)
	defs, err := r.paramDefs()
	if err != nil {
		return nil, err
	}
	if r.Store != nil {
		if err = r.Store.Init(ctx); err != nil {
			return nil, err
		}
	}
	if err = os.MkdirAll(r.Paths.BaseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create base directory")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sweepID := uuid.NewString()
	stamp := r.now().Format("0102_1504")
	log.Info("sweep started", "sweep", sweepID, "designs", len(designs), "workers", workers)

	var (
		mu   sync.Mutex
		errs []error
		runs = make([]store.Run, len(designs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range designs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			run, err := r.runOne(gctx, sweepID, stamp, i+1, designs[i], defs)
			runs[i] = run
			if err == nil {
				return nil
			}
			err = errors.Wrapf(err, "run %d (%s)", i+1, designs[i].Label())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			if r.FailFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		errs = append(errs, errors.Wrap(ctx.Err(), "sweep interrupted"))
	}
	log.Info("sweep done", "sweep", sweepID, "failed", len(errs))
	return runs, stderrors.Join(errs...)
}

func (r *Runner) paramDefs() (paramdef.Defs, error) {
	if r.Paths.Params == "" {
		return nil, nil
	}
	return paramdef.ParseFile(r.Paths.Params)
}

// RunDir returns the directory name of the n-th run of a sweep started at
// stamp (MMDD_HHMM).
//
func RunDir(stamp string, n int, d *Design) string {
	return "dat_" + stamp + "_run" + strconv.Itoa(n) + "_" + d.Label()
}

func (r *Runner) runOne(ctx context.Context, sweepID, stamp string, n int, d Design, defs paramdef.Defs) (store.Run, error) {
	log := logging.OrDiscard(r.Log)
	run := store.Run{
		ID:        uuid.NewString(),
		Sweep:     sweepID,
		Seq:       n,
		Letter:    d.Letter,
		Deviation: d.Dev,
		Cells:     d.Cells,
		Outputs:   d.Outputs,
		Seed:      r.Seed,
		Status:    store.StatusRunning,
		Started:   r.now(),
	}
	dir, err := filepath.Abs(filepath.Join(r.Paths.BaseDir, RunDir(stamp, n, &d)))
	if err != nil {
		return run, errors.Wrap(err, "run directory")
	}
	run.Dir = dir
	r.save(ctx, log, run)

	err = r.simulate(ctx, &run, d, defs)
	run.Duration = r.now().Sub(run.Started)
	if err != nil {
		run.Status, run.Error = store.StatusFailed, err.Error()
		log.Error("run failed", "run", n, "design", d.Label(), "err", err)
	} else {
		run.Status = store.StatusDone
		log.Info("run done", "run", n, "design", d.Label(), "elapsed", run.Duration)
	}
	// the outcome is recorded even if the sweep was canceled
	r.save(context.WithoutCancel(ctx), log, run)
	return run, err
}

func (r *Runner) save(ctx context.Context, log *slog.Logger, run store.Run) {
	if r.Store == nil {
		return
	}
	if err := r.Store.SaveRun(ctx, run); err != nil {
		log.Warn("failed to record run", "id", run.ID, "err", err)
	}
}

func (r *Runner) simulate(ctx context.Context, run *store.Run, d Design, defs paramdef.Defs) error {
	log := logging.OrDiscard(r.Log)
	// stimulus noise and sampled parameters; the netlist has its own generator
	prng := rand.New(rand.NewPCG(r.Seed, uint64(run.Seq)))

	img, err := letters.Image(d.Letter)
	if err != nil {
		return err
	}
	if d.Noise > 0 {
		img = letters.Noisy(img, d.Noise, prng)
	}
	pixels := letters.Flatten(img)
	t := snnsim.Topology{
		Inputs:      len(pixels),
		Outputs:     d.Outputs,
		Cells:       d.Cells,
		SpikeCounts: snnsim.SpikeCounts(pixels, d.CodBase, d.CodMax),
	}
	run.Inputs = t.Inputs
	if err = t.Validate(); err != nil {
		return err
	}

	if err = os.MkdirAll(run.Dir, 0755); err != nil {
		return errors.Wrap(err, "create run directory")
	}
	netDir := filepath.Join(run.Dir, filepath.Base(r.Paths.NetlistDir))
	if err = copyDir(r.Paths.NetlistDir, netDir); err != nil {
		return err
	}
	preamble := r.Paths.Preamble
	if preamble == "" {
		preamble = filepath.Join(r.Paths.NetlistDir, NetlistName)
	}
	run.Netlist = filepath.Join(netDir, NetlistName)
	rng := rand.New(rand.NewPCG(r.Seed, r.Seed))
	if err = snnsim.Generate(t, rng, r.Models, preamble, run.Netlist); err != nil {
		return err
	}

	mc := r.MonteCarlo
	if mc < 1 {
		mc = 1
	}
	params := d.Params(t.Inputs)
	params["netlist"] = run.Netlist
	params["process_dir"] = run.Dir
	params["save_states"] = snnsim.ProbeSignals(t)
	for i := 0; i < mc; i++ {
		script, logFile, results := ScriptName, LogName, ResultsName
		if mc > 1 {
			sfx := "_mc" + strconv.Itoa(i+1)
			script = "updated_template" + sfx + ".ocn"
			logFile = "oceanScript" + sfx + ".log"
			results = "results" + sfx + ".txt"
		}
		script = filepath.Join(run.Dir, script)
		params["results_file"] = filepath.Join(run.Dir, results)
		sampled := defs.Strings(prng)
		if len(sampled) > 0 {
			log.Log(ctx, logging.LevelTrace, "sampled parameters", "run", run.Seq, "iteration", i+1, "params", sampled)
		}
		// design parameters take precedence over sampled ones
		if err = subst.SubstituteFile(r.Paths.Script, script, sampled, params); err != nil {
			return err
		}
		if err = r.Simulator.Run(ctx, run.Dir, script, filepath.Join(run.Dir, logFile)); err != nil {
			return err
		}
	}
	if !r.KeepPSF {
		if err = os.RemoveAll(filepath.Join(run.Dir, psfDir)); err != nil {
			return errors.Wrap(err, "remove waveforms")
		}
	}
	return nil
}

// copyDir copies the regular files and directories of the tree at src into
// dst, overwriting existing files.
//
func copyDir(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case e.IsDir():
			return os.MkdirAll(target, 0755)
		case e.Type().IsRegular():
			return copyFile(path, target)
		}
		return nil
	})
	return errors.Wrap(err, "copy netlist directory")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
