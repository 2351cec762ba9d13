// Package simulator runs the external circuit simulator.
//
package simulator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/db47h/snnsim/internal/logging"
	"github.com/pkg/errors"
)

// DefaultCommand is the simulator command line. The driver script is sent to
// its standard input.
//
var DefaultCommand = []string{"ocean", "-nograph"}

// Runner runs a simulator driver script.
//
type Runner struct {
	// Command and arguments. DefaultCommand if empty.
	Command []string
	// Extra environment variables, as KEY=value.
	Env []string
	// Also copy the simulator output to the logger at trace level.
	Verbose bool
	Log     *slog.Logger
}

// An ExitError reports a simulator run that exited with a non-zero status.
//
type ExitError struct {
	Code    int
	Script  string
	LogFile string
}

func (e *ExitError) Error() string {
	return "simulator exited with status " + strconv.Itoa(e.Code) + " running " + e.Script + " (see " + e.LogFile + ")"
}

// Run runs the script with the simulator. The simulator's standard output and
// standard error are written to logFile, which is truncated first. The
// simulator is run from dir, if not empty.
//
// Canceling ctx kills the simulator process.
//
func (r *Runner) Run(ctx context.Context, dir, script, logFile string) error {
	cmdline := r.Command
	if len(cmdline) == 0 {
		cmdline = DefaultCommand
	}
	in, err := os.Open(script)
	if err != nil {
		return errors.Wrap(err, "open script")
	}
	defer in.Close()
	out, err := os.Create(logFile)
	if err != nil {
		return errors.Wrap(err, "create simulator log")
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, cmdline[0], cmdline[1:]...)
	cmd.Dir = dir
	cmd.Stdin = in
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var w io.Writer = out
	if r.Verbose && r.Log != nil {
		w = io.MultiWriter(out, &logWriter{r.Log, script})
	}
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	if r.Log != nil {
		r.Log.Debug("simulator done", "script", script, "elapsed", time.Since(start), "err", err)
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "simulator interrupted")
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return &ExitError{Code: ee.ExitCode(), Script: script, LogFile: logFile}
	}
	return errors.Wrap(err, "run simulator")
}

type logWriter struct {
	l      *slog.Logger
	script string
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.l.Log(context.Background(), logging.LevelTrace, "simulator", "script", w.script, "output", string(p))
	return len(p), nil
}
