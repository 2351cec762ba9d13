// Package config loads the snnsim configuration from YAML files and
// environment variables.
//
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/db47h/snnsim"
	"github.com/db47h/snnsim/internal/sweep"
	"github.com/db47h/snnsim/letters"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory
// when no path is given.
//
const DefaultFile = "snnsim.yaml"

// Config holds all snnsim settings.
//
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Simulator SimulatorConfig `yaml:"simulator"`
	// Design is the base design the sweep grid is applied to.
	Design  sweep.Design  `yaml:"design"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	// Models selects the netlist naming: "standard" or "two-terminal".
	Models string `yaml:"models"`
}

// PathsConfig locates the simulation inputs and outputs.
//
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir"`
	NetlistDir string `yaml:"netlist_dir"`
	// Preamble defaults to <netlist_dir>/netlist when empty.
	Preamble string `yaml:"preamble,omitempty"`
	Script   string `yaml:"script"`
	// Params is an optional Monte-Carlo parameter definition file.
	Params string `yaml:"params,omitempty"`
}

// SimulatorConfig configures the external simulator.
//
type SimulatorConfig struct {
	// Command and arguments. The driver script is sent to standard input.
	Command []string `yaml:"command"`
	Env     []string `yaml:"env,omitempty"`
	// Verbose copies the simulator output to the trace log.
	Verbose bool `yaml:"verbose"`
}

// SweepConfig configures the sweep grid and worker pool.
//
type SweepConfig struct {
	sweep.Grid `yaml:",inline"`
	// Workers is the number of concurrent simulations. 0 means one per CPU.
	Workers    int    `yaml:"workers"`
	MonteCarlo int    `yaml:"monte_carlo"`
	FailFast   bool   `yaml:"fail_fast"`
	KeepPSF    bool   `yaml:"keep_psf"`
	Seed       uint64 `yaml:"seed"`
}

// StoreConfig selects the run ledger backend.
//
type StoreConfig struct {
	// Kind is "memory" or "sqlite".
	Kind string `yaml:"kind"`
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig configures logging.
//
type LoggingConfig struct {
	// Level is "error", "warn", "info" (default), "debug" or "trace".
	Level string `yaml:"level"`
}

// Default returns a Config with the reference settings.
//
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			BaseDir:    "../../snn_sim_folders",
			NetlistDir: "netlist_ocn",
			Script:     "oceanScript.ocn",
		},
		Simulator: SimulatorConfig{
			Command: []string{"ocean", "-nograph"},
		},
		Design: sweep.DefaultDesign(),
		Sweep: SweepConfig{
			Grid:       sweep.DefaultGrid(),
			MonteCarlo: 1,
			Seed:       10,
		},
		Store: StoreConfig{
			Kind: "sqlite",
			Path: "snnsim.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Models: "standard",
	}
}

// Load loads the configuration.
// Order: defaults -> file -> environment variables.
// If path is empty, DefaultFile is used when it exists.
//
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads the configuration from a YAML file. Settings missing
// from the file keep their default value.
//
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// YAML returns the configuration encoded as YAML.
//
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "marshal config")
}

// Save writes the configuration to path as YAML.
//
func (c *Config) Save(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Validate checks the configuration.
//
func (c *Config) Validate() error {
	if _, ok := snnsim.ModelsByName(c.Models); !ok {
		return errors.Errorf("invalid models %q: must be standard or two-terminal", c.Models)
	}
	switch c.Store.Kind {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite store")
		}
	default:
		return errors.Errorf("invalid store.kind %q: must be memory or sqlite", c.Store.Kind)
	}
	if len(c.Simulator.Command) == 0 {
		return errors.New("simulator.command is required")
	}
	switch {
	case c.Paths.BaseDir == "":
		return errors.New("paths.base_dir is required")
	case c.Paths.NetlistDir == "":
		return errors.New("paths.netlist_dir is required")
	case c.Paths.Script == "":
		return errors.New("paths.script is required")
	case c.Sweep.Workers < 0:
		return errors.Errorf("invalid sweep.workers %d", c.Sweep.Workers)
	case c.Sweep.MonteCarlo < 1:
		return errors.Errorf("invalid sweep.monte_carlo %d: must be at least 1", c.Sweep.MonteCarlo)
	case c.Design.Outputs < 1:
		return errors.Errorf("invalid design.num_output %d", c.Design.Outputs)
	case c.Design.Cells < 1:
		return errors.Errorf("invalid design.num_cells %d", c.Design.Cells)
	case c.Design.Noise < 0 || c.Design.Noise > letters.Foreground:
		return errors.Errorf("invalid design.noise %d: must be in [0, %d]", c.Design.Noise, letters.Foreground)
	case c.Design.CodBase < 0 || c.Design.CodMax < 0:
		return errors.New("design.cod_base and design.cod_max must not be negative")
	}
	for _, n := range c.Sweep.Cells {
		if n < 1 {
			return errors.Errorf("invalid cell count %d in sweep.cells", n)
		}
	}
	return nil
}

// applyEnvOverrides applies SNNSIM_* environment variables to the config.
//
func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("SNNSIM_BASE_DIR"); v != "" {
		c.Paths.BaseDir = v
	}
	if v := os.Getenv("SNNSIM_NETLIST_DIR"); v != "" {
		c.Paths.NetlistDir = v
	}
	if v := os.Getenv("SNNSIM_SCRIPT"); v != "" {
		c.Paths.Script = v
	}
	if v := os.Getenv("SNNSIM_SIMULATOR"); v != "" {
		c.Simulator.Command = strings.Fields(v)
	}
	if v := os.Getenv("SNNSIM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "SNNSIM_WORKERS")
		}
		c.Sweep.Workers = n
	}
	if v := os.Getenv("SNNSIM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "SNNSIM_SEED")
		}
		c.Sweep.Seed = n
	}
	if v := os.Getenv("SNNSIM_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("SNNSIM_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SNNSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SNNSIM_MODELS"); v != "" {
		c.Models = v
	}
	return nil
}
