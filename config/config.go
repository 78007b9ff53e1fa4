// Package config holds the settings of an LCP construction run.
//
// Settings come from built-in defaults, then an optional YAML file, then
// command line flags; each layer overrides the fields it sets.
package config

import (
	"Succinct/lcp"
	"Succinct/utils"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Options configures the construction driver.
type Options struct {
	// Dir receives the artifacts of every run.
	Dir string `yaml:"dir"`

	// Strategies to run by name; empty means all of them.
	Strategies []string `yaml:"strategies"`

	// SampleRate is the PHI sampling distance of semi_extern_PHI.
	SampleRate uint64 `yaml:"sample_rate"`

	// BlockSize is the number of elements read per block when streaming.
	BlockSize int `yaml:"block_size"`

	// CachePages bounds the 4 KiB pages bwt_based2 keeps of the BWT.
	CachePages int `yaml:"cache_pages"`

	LogLevel string `yaml:"log_level"`

	// KeepIntermediate keeps text, sa, bwt and lcp files after a run.
	KeepIntermediate bool `yaml:"keep_intermediate"`
}

func Default() Options {
	return Options{
		Dir:        os.TempDir(),
		SampleRate: lcp.DefaultSampleRate,
		BlockSize:  1 << 16,
		CachePages: lcp.DefaultCachePages,
		LogLevel:   "info",
	}
}

// Load returns the defaults overridden by the YAML file at path. An empty
// path yields the defaults. Unknown keys are rejected.
func Load(path string) (Options, error) {
	opts := Default()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(err, "config: read")
	}
	if err := opts.decode(bytes.NewReader(data)); err != nil {
		return Options{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return opts, nil
}

func (o *Options) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(o); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if o.Dir == "" {
		return errors.New("config: dir must not be empty")
	}
	if o.SampleRate == 0 {
		return errors.New("config: sample_rate must be positive")
	}
	if o.BlockSize <= 0 {
		return errors.Errorf("config: block_size must be positive, got %d", o.BlockSize)
	}
	if o.CachePages <= 0 {
		return errors.Errorf("config: cache_pages must be positive, got %d", o.CachePages)
	}
	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return errors.Wrap(err, "config: log_level")
	}
	if _, err := o.Kinds(); err != nil {
		return errors.Wrap(err, "config: strategies")
	}
	return nil
}

// Kinds resolves Strategies, all kinds when it is empty.
func (o Options) Kinds() ([]lcp.Kind, error) {
	if len(o.Strategies) == 0 {
		return lcp.Kinds(), nil
	}
	kinds := make([]lcp.Kind, 0, len(o.Strategies))
	for _, name := range o.Strategies {
		k, err := lcp.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Level is the parsed LogLevel, info when it does not parse.
func (o Options) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(o.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Construction returns the strategy options of the run id.
func (o Options) Construction(id string, logger logrus.FieldLogger) lcp.Options {
	return lcp.Options{
		Dir:        o.Dir,
		ID:         id,
		SampleRate: o.SampleRate,
		BlockSize:  o.BlockSize,
		CachePages: o.CachePages,
		Logger:     logger,
	}
}

// AddFlags binds a flag to every field of o.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Dir, "dir", "d", o.Dir, "directory for artifacts")
	fs.StringSliceVarP(&o.Strategies, "strategy", "s", o.Strategies, "strategies to run (default all)")
	fs.Uint64Var(&o.SampleRate, "sample-rate", o.SampleRate, "PHI sampling distance of semi_extern_PHI")
	fs.IntVar(&o.BlockSize, "block-size", o.BlockSize, "elements per streamed block")
	fs.IntVar(&o.CachePages, "cache-pages", o.CachePages, "BWT pages cached by bwt_based2")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level")
	fs.BoolVarP(&o.KeepIntermediate, "keep", "k", o.KeepIntermediate, "keep artifacts after the run")
}

var flagFields = map[string]func(dst, src *Options){
	"dir":         func(dst, src *Options) { dst.Dir = src.Dir },
	"strategy":    func(dst, src *Options) { dst.Strategies = src.Strategies },
	"sample-rate": func(dst, src *Options) { dst.SampleRate = src.SampleRate },
	"block-size":  func(dst, src *Options) { dst.BlockSize = src.BlockSize },
	"cache-pages": func(dst, src *Options) { dst.CachePages = src.CachePages },
	"log-level":   func(dst, src *Options) { dst.LogLevel = src.LogLevel },
	"keep":        func(dst, src *Options) { dst.KeepIntermediate = src.KeepIntermediate },
}

// Override copies into o the fields of flags whose flag was set on fs.
func (o *Options) Override(fs *pflag.FlagSet, flags *Options) {
	for _, name := range utils.SortedKeys(flagFields) {
		if fs.Changed(name) {
			flagFields[name](o, flags)
		}
	}
}
