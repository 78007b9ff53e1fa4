package lcp

import (
	"Succinct/errutil"
	"Succinct/intvector"
	"Succinct/nndict"
	"Succinct/registry"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// The BWT strategies follow Beller, Gog, Ohlebusch and Schnattinger (2013).
// Intervals of all strings of length l are expanded breadth first by
// backward search into the intervals of the strings of length l+1. A child
// interval [lb, rb] whose boundary rb+1 is still unresolved fixes
// LCP[rb+1] = l and is expanded on the next level; every other child is
// dropped. Boundaries 0 and n are resolved from the start.

type interval struct {
	lb, rb uint64
}

func newBoundaries(n uint64) *nndict.Dict {
	resolved := nndict.New(n + 1)
	resolved.Set(0, true)
	resolved.Set(n, true)
	return resolved
}

func checkResolved(resolved *nndict.Dict) {
	if c := resolved.Count(); c != resolved.Size() {
		errutil.Fatal("bwt expansion resolved %d of %d lcp boundaries", c, resolved.Size())
	}
}

// buildBWTBased keeps the BWT and the LCP array resident and the intervals
// of a level in a slice.
func buildBWTBased(r *run) error {
	bwt, err := r.load(registry.KeyBWT)
	if err != nil {
		return err
	}
	n := r.n
	occ := newOccTable(bwt)
	lcp := intvector.New(n, r.width())
	resolved := newBoundaries(n)

	level := uint64(0)
	for cur := []interval{{0, n - 1}}; len(cur) > 0; level++ {
		var next []interval
		for _, iv := range cur {
			occ.extend(iv.lb, iv.rb, func(lb, rb uint64) {
				if resolved.Get(rb + 1) {
					return
				}
				resolved.Set(rb+1, true)
				lcp.Set(rb+1, level)
				next = append(next, interval{lb, rb})
			})
		}
		cur = next
	}
	checkResolved(resolved)
	r.log.WithFields(logrus.Fields{"levels": level, "occ": occ.ByteSize()}).Debug("intervals expanded")
	return r.store(lcp)
}

// buildBWTBased2 holds the intervals of a level as two bitmaps of start and
// end positions, walked with Next. Intervals of one level are disjoint, so
// the first end at or after a start closes it. The BWT is read through a
// page cache and the LCP array is written through a memory mapping.
func buildBWTBased2(r *run) error {
	loc, ok := r.reg.Get(registry.KeyBWT)
	if !ok {
		return errors.Wrapf(ErrMissingArtifact, "%s", registry.KeyBWT)
	}
	bwt, err := intvector.OpenCached(loc, r.opts.CachePages)
	if err != nil {
		return classify(err, registry.KeyBWT)
	}
	defer bwt.Close()

	n := r.n
	occ := newOccTable(bwt)
	out, err := intvector.CreateMapped(r.out, n, r.width())
	if err != nil {
		return err
	}
	resolved := newBoundaries(n)
	starts, ends := nndict.New(n), nndict.New(n)
	nextStarts, nextEnds := nndict.New(n), nndict.New(n)
	starts.Set(0, true)
	ends.Set(n-1, true)

	level := uint64(0)
	for expanded := true; expanded; level++ {
		expanded = false
		for lb := starts.Next(0); lb < n; {
			rb := ends.Next(lb)
			starts.Set(lb, false)
			ends.Set(rb, false)
			occ.extend(lb, rb, func(clb, crb uint64) {
				if resolved.Get(crb + 1) {
					return
				}
				resolved.Set(crb+1, true)
				out.Set(crb+1, level)
				nextStarts.Set(clb, true)
				nextEnds.Set(crb, true)
				expanded = true
			})
			lb = starts.Next(rb + 1)
		}
		starts.Swap(nextStarts)
		ends.Swap(nextEnds)
	}
	if err := bwt.Err(); err != nil {
		out.Abort()
		return errors.Wrap(err, "read bwt")
	}
	checkResolved(resolved)
	r.log.WithFields(logrus.Fields{"levels": level, "cached_pages": bwt.Resident()}).Debug("intervals expanded")
	return out.Commit()
}
