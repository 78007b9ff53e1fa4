package lcp

import (
	"Succinct/errutil"
	"Succinct/intvector"

	"github.com/sirupsen/logrus"
)

// phi streams the suffix array into PHI[sa[i]] = sa[i-1]. The suffix
// without a predecessor (sa[0]) gets n.
func (r *run) phi() (*intvector.IntVector, error) {
	phi := intvector.New(r.n, r.width())
	err := r.scanSA(func(_, prev, cur uint64) error {
		phi.Set(cur, prev)
		return nil
	})
	return phi, err
}

// buildPHI computes the permuted LCP array PLCP[x] = LCP[ISA[x]] in text
// order, where PLCP[x+1] >= PLCP[x]-1 bounds the work by 2n comparisons
// (Kärkkäinen, Manzini, Puglisi 2009). PLCP overwrites PHI, then a second
// pass over the suffix array permutes it into LCP.
func buildPHI(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	plcp, err := r.phi()
	if err != nil {
		return err
	}
	n := r.n
	h := uint64(0)
	for x := uint64(0); x < n; x++ {
		if p := plcp.Get(x); p == n {
			h = 0
		} else {
			h = extend(t, x, p, h)
		}
		plcp.Set(x, h)
		if h > 0 {
			h--
		}
	}
	return r.streamOut(func(_, _, cur uint64) uint64 {
		return plcp.Get(cur)
	})
}

// buildGoPHI is the PHI scan that skips reducible positions. When
// T[x-1] = T[PHI[x]-1] the suffixes at x-1 and PHI[x]-1 are neighbours in
// suffix order, so PLCP[x] = PLCP[x-1]-1 without looking at the text.
func buildGoPHI(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	plcp, err := r.phi()
	if err != nil {
		return err
	}
	n := r.n
	var h, skipped uint64
	for x := uint64(0); x < n; x++ {
		p := plcp.Get(x)
		switch {
		case p == n:
			h = 0
		case x > 0 && p > 0 && t[x-1] == t[p-1]:
			if h == 0 {
				errutil.Fatal("reducible position %d after a zero plcp value", x)
			}
			h--
			skipped++
		default:
			lb := uint64(0)
			if h > 0 {
				lb = h - 1
			}
			h = extend(t, x, p, lb)
		}
		plcp.Set(x, h)
	}
	r.log.WithField("reducible", skipped).Debug("plcp computed")
	return r.streamOut(func(_, _, cur uint64) uint64 {
		return plcp.Get(cur)
	})
}

// buildSemiExternPHI keeps PHI and PLCP only for every q-th text position
// and streams the suffix array twice. The first pass samples PHI, the sampled
// PLCP values follow from PLCP[x+q] >= PLCP[x]-q, and the second pass
// finishes each LCP value from the sample at or before its position, using
// the predecessor the stream already provides.
func buildSemiExternPHI(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	n, q := r.n, r.opts.SampleRate
	m := (n-1)/q + 1

	sparse := intvector.New(m, r.width())
	err = r.scanSA(func(_, prev, cur uint64) error {
		if cur%q == 0 {
			sparse.Set(cur/q, prev)
		}
		return nil
	})
	if err != nil {
		return err
	}

	h := uint64(0)
	for k := uint64(0); k < m; k++ {
		x := k * q
		if p := sparse.Get(k); p == n {
			h = 0
		} else {
			h = extend(t, x, p, h)
		}
		sparse.Set(k, h)
		if h > q {
			h -= q
		} else {
			h = 0
		}
	}
	r.log.WithFields(logrus.Fields{"q": q, "samples": m}).Debug("sparse plcp computed")

	return r.streamOut(func(i, prev, cur uint64) uint64 {
		if i == 0 {
			return 0
		}
		lb := uint64(0)
		if s, off := sparse.Get(cur/q), cur%q; s > off {
			lb = s - off
		}
		return extend(t, cur, prev, lb)
	})
}
