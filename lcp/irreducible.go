package lcp

import (
	"Succinct/errutil"
	"Succinct/intvector"
	"Succinct/nndict"
	"Succinct/registry"

	"github.com/hillbig/rsdic"
	"github.com/pkg/errors"
)

// A text position x is irreducible when x = 0, PHI[x] is undefined or 0, or
// T[x-1] != T[PHI[x]-1]. Otherwise PLCP[x] = PLCP[x-1]-1, so every PLCP value
// follows from the nearest irreducible position p <= x as PLCP[p]-(x-p).

// derive returns PLCP[x] from PLCP[p] of the nearest irreducible p <= x.
func derive(x, p, hp uint64) uint64 {
	if hp < x-p {
		errutil.Fatal("plcp[%d] = %d cannot reach reducible position %d", p, hp, x)
	}
	return hp - (x - p)
}

// buildGo marks irreducible positions in a bit dictionary, compares text
// only at those, and fills every other position from its nearest irreducible
// predecessor found with Prev.
func buildGo(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	plcp, err := r.phi()
	if err != nil {
		return err
	}
	n := r.n

	irr := nndict.New(n)
	for x := uint64(0); x < n; x++ {
		p := plcp.Get(x)
		if x == 0 || p == n || p == 0 || t[x-1] != t[p-1] {
			irr.Set(x, true)
		}
	}

	var last, h uint64
	for x := irr.Next(0); x < n; x = irr.Next(x + 1) {
		v := uint64(0)
		if p := plcp.Get(x); p != n {
			lb := uint64(0)
			if h > x-last {
				lb = h - (x - last)
			}
			v = extend(t, x, p, lb)
		}
		plcp.Set(x, v)
		last, h = x, v
	}

	for x := uint64(0); x < n; x++ {
		if irr.Get(x) {
			continue
		}
		p := irr.Prev(x)
		plcp.Set(x, derive(x, p, plcp.Get(p)))
	}
	r.log.WithField("irreducible", irr.Count()).Debug("plcp computed")

	return r.streamOut(func(_, _, cur uint64) uint64 {
		return plcp.Get(cur)
	})
}

func nextSymbol(rd *intvector.Reader, name string) (uint64, error) {
	c, ok := rd.Next()
	if !ok {
		if err := rd.Err(); err != nil {
			return 0, errors.Wrapf(err, "read %s", name)
		}
		return 0, malformed(name, "ended at %d", rd.Pos())
	}
	return c, nil
}

// buildGo2 finds irreducible positions from the BWT instead of PHI: the
// suffix at rank i is irreducible iff BWT[i] != BWT[i-1]. Neither PHI nor
// PLCP is materialised. Only the irreducible values are computed, stored
// densely in text order and addressed by rank over the irreducible bitmap.
func buildGo2(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	bwt, err := r.open(registry.KeyBWT)
	if err != nil {
		return err
	}
	defer bwt.Close()
	n := r.n

	irr := nndict.New(n)
	var before uint64
	err = r.scanSA(func(i, _, cur uint64) error {
		c, err := nextSymbol(bwt, registry.KeyBWT)
		if err != nil {
			return err
		}
		if i == 0 || c != before {
			irr.Set(cur, true)
		}
		before = c
		return nil
	})
	if err != nil {
		return err
	}

	rank := rsdic.New()
	for x := uint64(0); x < n; x++ {
		rank.PushBack(irr.Get(x))
	}
	m := rank.Rank(rank.Num(), true)
	dense := intvector.New(m, r.width())
	err = r.scanSA(func(i, prev, cur uint64) error {
		if i > 0 && irr.Get(cur) {
			dense.Set(rank.Rank(cur, true), extend(t, cur, prev, 0))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.WithField("irreducible", m).Debug("irreducible values computed")

	return r.streamOut(func(_, _, cur uint64) uint64 {
		p := irr.Prev(cur)
		return derive(cur, p, dense.Get(rank.Rank(p, true)))
	})
}
