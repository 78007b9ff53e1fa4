package lcp

import (
	"Succinct/registry"
	"math"

	"github.com/pkg/errors"
)

// buildSimple5n compares every pair of adjacent suffixes from scratch. Text
// and suffix array stay resident and the result is streamed out.
func buildSimple5n(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	sa, err := r.load(registry.KeySA)
	if err != nil {
		return err
	}
	var compared uint64
	err = r.streamOut(func(i, _, cur uint64) uint64 {
		if i == 0 {
			return 0
		}
		h := extend(t, sa.Get(i-1), cur, 0)
		compared += h
		return h
	})
	r.log.WithField("compared", compared).Debug("adjacent suffixes compared")
	return err
}

// buildSimple9n runs the PHI algorithm on plain 32-bit arrays: text (n bytes)
// plus the suffix array and PHI (4n bytes each). PHI is turned into PLCP in
// place and the suffix array into LCP.
func buildSimple9n(r *run) error {
	if r.n > math.MaxUint32 {
		return errors.Errorf("text of %d symbols does not fit 32-bit indices", r.n)
	}
	t, err := r.loadText()
	if err != nil {
		return err
	}
	packed, err := r.load(registry.KeySA)
	if err != nil {
		return err
	}
	n := uint32(r.n)
	sa := make([]uint32, n)
	for i := range sa {
		sa[i] = uint32(packed.Get(uint64(i)))
	}

	phi := make([]uint32, n)
	phi[sa[0]] = n
	for i := uint32(1); i < n; i++ {
		phi[sa[i]] = sa[i-1]
	}
	h := uint64(0)
	for x := uint32(0); x < n; x++ {
		if phi[x] == n {
			h = 0
			phi[x] = 0
			continue
		}
		h = extend(t, uint64(x), uint64(phi[x]), h)
		phi[x] = uint32(h)
		if h > 0 {
			h--
		}
	}
	for i := range sa {
		sa[i] = phi[sa[i]]
	}

	w, err := r.create()
	if err != nil {
		return err
	}
	for _, v := range sa {
		w.Append(uint64(v))
	}
	return w.Close()
}
