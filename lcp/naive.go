package lcp

import (
	"Succinct/intvector"
	"Succinct/registry"

	"github.com/pkg/errors"
)

var ErrMismatch = errors.New("lcp: array differs from the adjacent suffix comparison")

// Naive computes the LCP array by comparing every pair of adjacent suffixes
// symbol by symbol. It is quadratic on repetitive texts and meant for
// checking the strategies.
func Naive(text, sa *intvector.IntVector) *intvector.IntVector {
	n := text.Len()
	lcp := intvector.New(n, intvector.WidthFor(n))
	for i := uint64(1); i < n; i++ {
		a, b := sa.Get(i-1), sa.Get(i)
		h := uint64(0)
		for a+h < n && b+h < n && text.Get(a+h) == text.Get(b+h) {
			h++
		}
		lcp.Set(i, h)
	}
	return lcp
}

// Check compares lcp with Naive(text, sa) and reports the first difference.
func Check(text, sa, lcp *intvector.IntVector) error {
	n := text.Len()
	if sa.Len() != n || lcp.Len() != n {
		return errors.Wrapf(ErrMismatch, "lengths: text %d, sa %d, lcp %d", n, sa.Len(), lcp.Len())
	}
	want := Naive(text, sa)
	for i := uint64(0); i < n; i++ {
		if got, exp := lcp.Get(i), want.Get(i); got != exp {
			return errors.Wrapf(ErrMismatch, "lcp[%d] = %d, expected %d", i, got, exp)
		}
	}
	return nil
}

// Verify checks the LCP array stored at location against the text and
// suffix array registered in reg.
func Verify(reg *registry.Registry, location string) error {
	text, err := reg.Load(registry.KeyText)
	if err != nil {
		return err
	}
	sa, err := reg.Load(registry.KeySA)
	if err != nil {
		return err
	}
	lcp, err := intvector.Load(location)
	if err != nil {
		return errors.Wrap(err, "load lcp")
	}
	return Check(text, sa, lcp)
}
