package lcp

import (
	"github.com/hillbig/rsdic"
)

// symbols is random access to a BWT, resident or not.
type symbols interface {
	Len() uint64
	Get(i uint64) uint64
}

// occTable answers rank queries over a BWT: the number of occurrences of a
// symbol in a prefix. Every present symbol gets its own rank dictionary
// over the positions holding it.
type occTable struct {
	bwt    symbols
	alpha  []uint64
	column [256]int
	c      [257]uint64
	occ    []*rsdic.RSDic
}

func newOccTable(bwt symbols) *occTable {
	n := bwt.Len()
	var counts [256]uint64
	for i := uint64(0); i < n; i++ {
		counts[bwt.Get(i)]++
	}
	o := &occTable{bwt: bwt}
	for s := range counts {
		o.c[s+1] = o.c[s] + counts[s]
		o.column[s] = -1
		if counts[s] > 0 {
			o.column[s] = len(o.alpha)
			o.alpha = append(o.alpha, uint64(s))
			o.occ = append(o.occ, rsdic.New())
		}
	}
	for i := uint64(0); i < n; i++ {
		col := o.column[bwt.Get(i)]
		for k, rs := range o.occ {
			rs.PushBack(k == col)
		}
	}
	return o
}

func (o *occTable) sigma() uint64 {
	return uint64(len(o.alpha))
}

// rank returns the number of occurrences of s in bwt[0, i).
func (o *occTable) rank(s, i uint64) uint64 {
	col := o.column[s]
	if col < 0 {
		return 0
	}
	return o.occ[col].Rank(i, true)
}

// extend calls f with the interval of s·w for every symbol s occurring in
// bwt[lb..rb], the interval of w.
func (o *occTable) extend(lb, rb uint64, f func(lb, rb uint64)) {
	emit := func(s uint64) {
		lo := o.rank(s, lb)
		hi := o.rank(s, rb+1)
		if hi > lo {
			f(o.c[s]+lo, o.c[s]+hi-1)
		}
	}
	if rb-lb+1 > o.sigma() {
		for _, s := range o.alpha {
			emit(s)
		}
		return
	}
	var seen [256]bool
	for i := lb; i <= rb; i++ {
		s := o.bwt.Get(i)
		if !seen[s] {
			seen[s] = true
			emit(s)
		}
	}
}

func (o *occTable) ByteSize() int {
	size := 0
	for _, rs := range o.occ {
		size += rs.AllocSize()
	}
	return size
}
