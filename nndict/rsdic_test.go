package nndict

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/hillbig/rsdic"
	"github.com/stretchr/testify/require"
)

// rsdicOf builds a rank/select dictionary over the same bits as d.
func rsdicOf(d *Dict) *rsdic.RSDic {
	rs := rsdic.New()
	for i := uint64(0); i < d.Size(); i++ {
		rs.PushBack(d.Get(i))
	}
	return rs
}

// rankSelectPrev answers Prev with rank and select: rank(x+1) counts the
// ones in [0, x], select of the last of them is the predecessor.
func rankSelectPrev(rs *rsdic.RSDic, x uint64) uint64 {
	r := rs.Rank(x+1, true)
	if r == 0 {
		return rs.Num()
	}
	return rs.Select(r-1, true)
}

func rankSelectNext(rs *rsdic.RSDic, x uint64) uint64 {
	r := rs.Rank(x, true)
	if r == rs.Rank(rs.Num(), true) {
		return rs.Num()
	}
	return rs.Select(r, true)
}

func TestNextPrev_AgreeWithRankSelect(t *testing.T) {
	t.Parallel()
	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 30; iter++ {
		size := 1 + r.Intn(3000)
		d, _ := randomDict(r, size, []float64{0.5, 0.05, 0.002}[iter%3])
		rs := rsdicOf(d)
		require.Equal(t, d.Count(), rs.Rank(rs.Num(), true), "seed %d", seed)
		for q := 0; q < 200; q++ {
			x := uint64(r.Intn(size))
			require.Equal(t, rankSelectNext(rs, x), d.Next(x), "seed %d iter %d next(%d)", seed, iter, x)
			require.Equal(t, rankSelectPrev(rs, x), d.Prev(x), "seed %d iter %d prev(%d)", seed, iter, x)
		}
	}
}

func BenchmarkPrev_DictVsRankSelect(b *testing.B) {
	r := rand.New(rand.NewSource(42))
	for _, size := range []int{1_000, 100_000, 1_000_000} {
		d, _ := randomDict(r, size, 0.3)
		rs := rsdicOf(d)
		b.Run(fmt.Sprintf("Dict/%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				d.Prev(uint64(i % size))
			}
		})
		b.Run(fmt.Sprintf("RSDic/%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				rankSelectPrev(rs, uint64(i%size))
			}
		})
		b.Run(fmt.Sprintf("Naive/%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				x := i % size
				for x > 0 && !d.Get(uint64(x)) {
					x--
				}
			}
		})
	}
}
