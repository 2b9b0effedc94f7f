// Package config implements the CLI surface and resume sidecar of §6:
// a flag.FlagSet-based command line, an optional YAML config file for
// reproducible CI runs, and an LZF-compressed resume sidecar carrying
// the chunk map, union-find arena and prune decisions.
package config

import (
	"flag"
	"os"

	"github.com/seqsense/splatmesh/errs"
	"gopkg.in/yaml.v3"
)

// Config holds the parsed CLI surface of §6.
type Config struct {
	Out           string   `yaml:"out"`
	Resume        string   `yaml:"resume"`
	MemMesh       int64    `yaml:"memMesh"`
	MemGather     int64    `yaml:"memGather"`
	MaxLoadSplats uint64   `yaml:"maxLoadSplats"`
	Split         int64    `yaml:"split"`
	Prune         float64  `yaml:"prune"`
	Spacing       float64  `yaml:"spacing"`
	BucketSize    int64    `yaml:"bucketSize"`
	Timeplot      string   `yaml:"timeplot"`
	Inputs        []string `yaml:"inputs"`
}

// Default returns the CLI surface's documented defaults.
func Default() Config {
	return Config{
		MemMesh:       256 << 20,
		MemGather:     256 << 20,
		MaxLoadSplats: 1 << 20,
		Split:         1,
		Prune:         0,
		Spacing:       1,
		BucketSize:    64,
	}
}

// Parse parses the CLI surface of §6 from args (as os.Args[1:]),
// optionally loading a YAML config file named by --config first so flags
// can override it. Trailing non-flag arguments become Inputs (the PLY
// files to mesh).
func Parse(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("splatmesh", flag.ContinueOnError)
	var configPath string
	fs.StringVar(&configPath, "config", "", "YAML config file; flags override its values")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "output path prefix")
	fs.StringVar(&cfg.Resume, "resume", cfg.Resume, "resume state sidecar path")
	fs.Int64Var(&cfg.MemMesh, "mem-mesh", cfg.MemMesh, "memory budget for the mesher, in bytes")
	fs.Int64Var(&cfg.MemGather, "mem-gather", cfg.MemGather, "memory budget for the gather stage, in bytes")
	fs.Uint64Var(&cfg.MaxLoadSplats, "max-load-splats", cfg.MaxLoadSplats, "maximum splats per loaded batch")
	fs.Int64Var(&cfg.Split, "split", cfg.Split, "chunkCells: top-level grid cells per output chunk")
	fs.Float64Var(&cfg.Prune, "prune", cfg.Prune, "relative component-size prune threshold, in [0,1)")
	fs.Float64Var(&cfg.Spacing, "spacing", cfg.Spacing, "grid spacing")
	fs.Int64Var(&cfg.BucketSize, "bucket-size", cfg.BucketSize, "internal bucket size, a power of two")
	fs.StringVar(&cfg.Timeplot, "timeplot", cfg.Timeplot, "write a --timeplot event trace to this path")

	// A probe pass locates --config before the real parse. The YAML file
	// is loaded straight into cfg, whose fields the flags above are bound
	// to, so its values act as the new defaults that explicit flags then
	// override. The probe stops at the first flag other than --config, so
	// --config is only found when it comes before the other flags.
	probe := flag.NewFlagSet("splatmesh-probe", flag.ContinueOnError)
	probe.SetOutput(discard{})
	probe.StringVar(&configPath, "config", "", "")
	_ = probe.Parse(args)
	if configPath != "" {
		if err := loadYAMLInto(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Inputs = fs.Args()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants §6/§4.C place on the CLI surface.
func (c Config) Validate() error {
	if c.Out == "" {
		return errs.New(errs.Invalid, "--out is required")
	}
	if len(c.Inputs) == 0 {
		return errs.New(errs.Invalid, "at least one input PLY file is required")
	}
	if c.Prune < 0 || c.Prune >= 1 {
		return errs.Newf(errs.Invalid, "--prune %v out of range [0,1)", c.Prune)
	}
	if c.BucketSize <= 0 {
		return errs.Newf(errs.Invalid, "--bucket-size %d must be positive", c.BucketSize)
	}
	if c.Split <= 0 {
		return errs.Newf(errs.Invalid, "--split %d must be positive", c.Split)
	}
	if c.MaxLoadSplats == 0 {
		return errs.New(errs.Invalid, "--max-load-splats must be positive")
	}
	return nil
}

func loadYAMLInto(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.IO, err, "read config file")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return errs.Wrap(errs.Invalid, err, "parse config file")
	}
	return nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
