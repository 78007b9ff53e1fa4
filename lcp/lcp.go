// Package lcp builds the longest-common-prefix array of a text from the
// artifacts stored in a registry. Every strategy produces the same array and
// they differ only in which inputs they read and how much of them they keep
// in memory.
package lcp

import (
	"Succinct/registry"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingArtifact   = errors.New("lcp: missing input artifact")
	ErrMalformedArtifact = errors.New("lcp: malformed input artifact")
	ErrUnknownKind       = errors.New("lcp: unknown strategy")
)

type Kind int

const (
	Kasai Kind = iota
	Simple5n
	Simple9n
	PHI
	SemiExternPHI
	Go
	Go2
	GoPHI
	BWTBased
	BWTBased2
	numKinds
)

var kindNames = [numKinds]string{
	Kasai:         "kasai",
	Simple5n:      "simple_5n",
	Simple9n:      "simple2_9n",
	PHI:           "PHI",
	SemiExternPHI: "semi_extern_PHI",
	Go:            "go",
	Go2:           "go2",
	GoPHI:         "goPHI",
	BWTBased:      "bwt_based",
	BWTBased2:     "bwt_based2",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a strategy name as printed by String back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, s := range kindNames {
		if s == name {
			return Kind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", name)
}

// Kinds returns every strategy kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for k := range kinds {
		kinds[k] = Kind(k)
	}
	return kinds
}

// Strategy is one way of constructing the lcp artifact.
type Strategy interface {
	Kind() Kind
	// Requires lists the registry names the strategy reads.
	Requires() []string
	// Construct reads the required artifacts from reg, stores the LCP array
	// at Options.Location and registers it as registry.KeyLCP. On failure
	// nothing is published.
	Construct(reg *registry.Registry, opts Options) error
}

// Options tune a construction run. Zero values select defaults.
type Options struct {
	Dir string
	ID  string
	// SampleRate is the distance between sampled text positions of
	// semi_extern_PHI.
	SampleRate uint64
	// BlockSize is the number of elements streamed per read.
	BlockSize int
	// CachePages bounds the pages bwt_based2 keeps of the BWT.
	CachePages int
	Logger     logrus.FieldLogger
}

const (
	DefaultSampleRate = 32
	DefaultCachePages = 256
)

// Location is where the lcp artifact of the run is published.
func (o Options) Location() string {
	return registry.Path(o.Dir, registry.KeyLCP, o.ID)
}

func (o Options) withDefaults() Options {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.CachePages <= 0 {
		o.CachePages = DefaultCachePages
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

var strategies = [numKinds]Strategy{
	Kasai:         &strategy{kind: Kasai, requires: []string{registry.KeyText, registry.KeySA}, build: buildKasai},
	Simple5n:      &strategy{kind: Simple5n, requires: []string{registry.KeyText, registry.KeySA, registry.KeyBWT}, build: buildSimple5n},
	Simple9n:      &strategy{kind: Simple9n, requires: []string{registry.KeyText, registry.KeySA, registry.KeyBWT}, build: buildSimple9n},
	PHI:           &strategy{kind: PHI, requires: []string{registry.KeyText, registry.KeySA}, build: buildPHI},
	SemiExternPHI: &strategy{kind: SemiExternPHI, requires: []string{registry.KeyText, registry.KeySA}, build: buildSemiExternPHI},
	Go:            &strategy{kind: Go, requires: []string{registry.KeyText, registry.KeySA}, build: buildGo},
	Go2:           &strategy{kind: Go2, requires: []string{registry.KeyText, registry.KeySA, registry.KeyBWT}, build: buildGo2},
	GoPHI:         &strategy{kind: GoPHI, requires: []string{registry.KeyText, registry.KeySA}, build: buildGoPHI},
	BWTBased:      &strategy{kind: BWTBased, requires: []string{registry.KeyText, registry.KeyBWT}, build: buildBWTBased},
	BWTBased2:     &strategy{kind: BWTBased2, requires: []string{registry.KeyText, registry.KeyBWT}, build: buildBWTBased2},
}

// New returns the strategy of the given kind.
func New(kind Kind) (Strategy, error) {
	if kind < 0 || kind >= numKinds {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(kind))
	}
	return strategies[kind], nil
}

// All returns every strategy in declaration order.
func All() []Strategy {
	return append([]Strategy(nil), strategies[:]...)
}

// Construct runs the strategy of the given kind with default options,
// publishing dir/lcp_<id>.sdsl.
func Construct(kind Kind, reg *registry.Registry, dir, id string) error {
	s, err := New(kind)
	if err != nil {
		return err
	}
	return s.Construct(reg, Options{Dir: dir, ID: id})
}
