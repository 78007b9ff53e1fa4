package lcp

import (
	"Succinct/intvector"
	"Succinct/registry"
)

// buildKasai is the reference: the inverse suffix array drives a scan in
// text order in which the common prefix length drops by at most one per step
// (Kasai et al. 2001).
func buildKasai(r *run) error {
	t, err := r.loadText()
	if err != nil {
		return err
	}
	sa, err := r.load(registry.KeySA)
	if err != nil {
		return err
	}
	n := r.n
	isa := intvector.New(n, r.width())
	for i := uint64(0); i < n; i++ {
		isa.Set(sa.Get(i), i)
	}

	lcp := intvector.New(n, r.width())
	h := uint64(0)
	for x := uint64(0); x < n; x++ {
		i := isa.Get(x)
		if i == 0 {
			h = 0
			continue
		}
		h = extend(t, x, sa.Get(i-1), h)
		lcp.Set(i, h)
		if h > 0 {
			h--
		}
	}
	return r.store(lcp)
}
