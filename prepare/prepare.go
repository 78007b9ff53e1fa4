// Package prepare produces the inputs of LCP construction: the text with its
// sentinel, its suffix array and its Burrows-Wheeler transform.
package prepare

import (
	"Succinct/intvector"
	"Succinct/registry"
	"bytes"
	"os"

	"github.com/pkg/errors"
)

// Sentinel terminates every non-empty text and occurs nowhere else in it.
const Sentinel = 0

var ErrSentinelInText = errors.New("prepare: text contains the sentinel byte 0")

// Text stores raw followed by the sentinel as the text artifact. An empty raw
// text is stored as the empty text (no sentinel).
func Text(reg *registry.Registry, raw []byte) error {
	if i := bytes.IndexByte(raw, Sentinel); i >= 0 {
		return errors.Wrapf(ErrSentinelInText, "at offset %d", i)
	}
	n := uint64(len(raw))
	if n > 0 {
		n++
	}
	text := intvector.New(n, 8)
	for i, c := range raw {
		text.Set(uint64(i), uint64(c))
	}
	return reg.Store(registry.KeyText, text)
}

// TextFromFile is Text over the contents of the file at path.
func TextFromFile(reg *registry.Registry, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "prepare: read text")
	}
	return Text(reg, raw)
}

// SuffixArray sorts the suffixes of the registered text and stores them as
// the sa artifact.
func SuffixArray(reg *registry.Registry) error {
	text, err := reg.Load(registry.KeyText)
	if err != nil {
		return err
	}
	n := text.Len()
	s := make([]int, n)
	for i := range s {
		s[i] = int(text.Get(uint64(i)))
	}
	if n > 0 && s[n-1] != Sentinel {
		return errors.New("prepare: text does not end with the sentinel")
	}
	sa := suffixArray(s, 256)
	vec := intvector.New(n, intvector.WidthFor(n))
	for i, p := range sa {
		vec.Set(uint64(i), uint64(p))
	}
	return reg.Store(registry.KeySA, vec)
}

// BWT stores bwt[i] = text[(sa[i]-1) mod n].
func BWT(reg *registry.Registry) error {
	text, err := reg.Load(registry.KeyText)
	if err != nil {
		return err
	}
	sa, err := reg.Load(registry.KeySA)
	if err != nil {
		return err
	}
	n := text.Len()
	if sa.Len() != n {
		return errors.Errorf("prepare: sa has %d entries, text %d", sa.Len(), n)
	}
	bwt := intvector.New(n, 8)
	for i := uint64(0); i < n; i++ {
		bwt.Set(i, text.Get((sa.Get(i)+n-1)%n))
	}
	return reg.Store(registry.KeyBWT, bwt)
}

// All stores text, sa and bwt for raw.
func All(reg *registry.Registry, raw []byte) error {
	if err := Text(reg, raw); err != nil {
		return err
	}
	if err := SuffixArray(reg); err != nil {
		return err
	}
	return BWT(reg)
}
