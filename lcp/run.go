package lcp

import (
	"Succinct/intvector"
	"Succinct/nndict"
	"Succinct/registry"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type strategy struct {
	kind     Kind
	requires []string
	build    func(r *run) error
}

func (s *strategy) Kind() Kind {
	return s.kind
}

func (s *strategy) Requires() []string {
	return append([]string(nil), s.requires...)
}

func (s *strategy) Construct(reg *registry.Registry, opts Options) error {
	start := time.Now()
	opts = opts.withDefaults()
	r := &run{
		reg:  reg,
		opts: opts,
		log:  opts.Logger.WithFields(logrus.Fields{"strategy": s.kind.String(), "id": opts.ID}),
		out:  opts.Location(),
	}
	if err := r.validate(s.requires); err != nil {
		r.log.WithError(err).Warn("rejected input")
		return errors.WithMessage(err, s.kind.String())
	}
	r.log = r.log.WithField("n", r.n)
	r.log.Debug("construction started")

	var err error
	if r.n == 0 {
		err = r.store(intvector.New(0, 1))
	} else {
		err = s.build(r)
	}
	if err != nil {
		r.log.WithError(err).Warn("construction failed")
		return errors.WithMessage(err, s.kind.String())
	}
	reg.Put(registry.KeyLCP, r.out)
	r.log.WithField("took", time.Since(start)).Info("lcp published")
	return nil
}

// run is the state of one construction call.
type run struct {
	reg  *registry.Registry
	opts Options
	log  logrus.FieldLogger
	out  string
	n    uint64
}

func (r *run) width() uint8 {
	return intvector.WidthFor(r.n)
}

// open starts streaming the artifact registered under name.
func (r *run) open(name string) (*intvector.Reader, error) {
	loc, ok := r.reg.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrMissingArtifact, "%s", name)
	}
	rd, err := intvector.Open(loc, r.opts.BlockSize)
	if err != nil {
		return nil, classify(err, name)
	}
	return rd, nil
}

func (r *run) load(name string) (*intvector.IntVector, error) {
	loc, ok := r.reg.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrMissingArtifact, "%s", name)
	}
	v, err := intvector.Load(loc)
	if err != nil {
		return nil, classify(err, name)
	}
	return v, nil
}

func (r *run) loadText() ([]byte, error) {
	v, err := r.load(registry.KeyText)
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

// classify maps a failure to read an artifact onto the error taxonomy: a
// vanished file is a missing artifact, other file system errors are passed
// through, and anything else means the contents are broken.
func classify(err error, name string) error {
	cause := errors.Cause(err)
	if os.IsNotExist(cause) {
		return errors.Wrapf(ErrMissingArtifact, "%s: %v", name, err)
	}
	if _, ok := cause.(*os.PathError); ok {
		return errors.Wrapf(err, "read %s", name)
	}
	return errors.Wrapf(ErrMalformedArtifact, "%s: %v", name, err)
}

func malformed(name, format string, args ...any) error {
	return errors.Wrapf(ErrMalformedArtifact, name+": "+format, args...)
}

// validate streams every required artifact once and checks that they
// describe the same text: equal lengths, a text ending in its only
// sentinel, a suffix array that is a permutation starting with n-1 and a BWT
// with exactly one sentinel.
func (r *run) validate(requires []string) error {
	haveN := false
	for _, name := range requires {
		rd, err := r.open(name)
		if err != nil {
			return err
		}
		if !haveN {
			r.n, haveN = rd.Len(), true
		} else if rd.Len() != r.n {
			rd.Close()
			return malformed(name, "length %d, expected %d", rd.Len(), r.n)
		}
		switch name {
		case registry.KeyText:
			err = r.checkText(rd)
		case registry.KeySA:
			err = r.checkSA(rd)
		case registry.KeyBWT:
			err = r.checkBWT(rd)
		}
		rd.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) checkText(rd *intvector.Reader) error {
	if rd.Width() != 8 {
		return malformed(registry.KeyText, "width %d, expected 8", rd.Width())
	}
	for {
		c, ok := rd.Next()
		if !ok {
			break
		}
		last := rd.Pos() == r.n
		if (c == 0) != last {
			return malformed(registry.KeyText, "sentinel must occur exactly once, at the end (offset %d)", rd.Pos()-1)
		}
	}
	return errors.Wrap(rd.Err(), "read text")
}

func (r *run) checkSA(rd *intvector.Reader) error {
	seen := nndict.New(r.n)
	for {
		x, ok := rd.Next()
		if !ok {
			break
		}
		i := rd.Pos() - 1
		if x >= r.n || seen.Get(x) {
			return malformed(registry.KeySA, "sa[%d] = %d is not part of a permutation of [0, %d)", i, x, r.n)
		}
		if i == 0 && x != r.n-1 {
			return malformed(registry.KeySA, "sa[0] = %d, expected the sentinel suffix %d", x, r.n-1)
		}
		seen.Set(x, true)
	}
	return errors.Wrap(rd.Err(), "read sa")
}

func (r *run) checkBWT(rd *intvector.Reader) error {
	if rd.Width() != 8 {
		return malformed(registry.KeyBWT, "width %d, expected 8", rd.Width())
	}
	zeros := 0
	for {
		c, ok := rd.Next()
		if !ok {
			break
		}
		if c == 0 {
			zeros++
		}
	}
	if err := rd.Err(); err != nil {
		return errors.Wrap(err, "read bwt")
	}
	if r.n > 0 && zeros != 1 {
		return malformed(registry.KeyBWT, "%d sentinels", zeros)
	}
	return nil
}

// store publishes a resident LCP array.
func (r *run) store(lcp *intvector.IntVector) error {
	return lcp.Store(r.out)
}

// create starts streaming the LCP array to the output location.
func (r *run) create() (*intvector.Writer, error) {
	return intvector.Create(r.out, r.n, r.width())
}

// scanSA streams the suffix array calling f(i, sa[i-1], sa[i]). The
// predecessor of rank 0 is reported as n.
func (r *run) scanSA(f func(i, prev, cur uint64) error) error {
	rd, err := r.open(registry.KeySA)
	if err != nil {
		return err
	}
	defer rd.Close()
	prev := r.n
	for i := uint64(0); ; i++ {
		cur, ok := rd.Next()
		if !ok {
			break
		}
		if err := f(i, prev, cur); err != nil {
			return err
		}
		prev = cur
	}
	return errors.Wrap(rd.Err(), "read sa")
}

// streamOut writes lcp[i] = value(i, sa[i-1], sa[i]) while streaming the
// suffix array.
func (r *run) streamOut(value func(i, prev, cur uint64) uint64) error {
	w, err := r.create()
	if err != nil {
		return err
	}
	err = r.scanSA(func(i, prev, cur uint64) error {
		w.Append(value(i, prev, cur))
		return nil
	})
	if err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

// extend returns the length of the common prefix of the suffixes of t
// starting at a and b, knowing that it is at least h.
func extend(t []byte, a, b, h uint64) uint64 {
	n := uint64(len(t))
	for a+h < n && b+h < n && t[a+h] == t[b+h] {
		h++
	}
	return h
}
