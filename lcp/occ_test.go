package lcp

import (
	"Succinct/intvector"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccTable_Rank(t *testing.T) {
	t.Parallel()
	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 20; iter++ {
		n := r.Intn(2000)
		sigma := 1 + r.Intn(256)
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(r.Intn(sigma))
		}
		occ := newOccTable(intvector.FromBytes(raw))

		var counts [256]uint64
		for i := 0; i <= n; i++ {
			probe := []int{0, r.Intn(256)}
			if i < n {
				probe = append(probe, int(raw[i]))
			}
			for _, s := range probe {
				require.Equal(t, counts[s], occ.rank(uint64(s), uint64(i)), "seed %d iter %d symbol %d pos %d", seed, iter, s, i)
			}
			if i < n {
				counts[raw[i]]++
			}
		}
		var smaller uint64
		for s := 0; s < 256; s++ {
			require.Equal(t, smaller, occ.c[s], "seed %d", seed)
			smaller += counts[s]
		}
	}
}

func TestOccTable_Extend(t *testing.T) {
	t.Parallel()
	raw := []byte("annb\x00aa")
	occ := newOccTable(intvector.FromBytes(raw))
	require.Equal(t, []uint64{0, 'a', 'b', 'n'}, occ.alpha)

	collect := func(lb, rb uint64) [][2]uint64 {
		var out [][2]uint64
		occ.extend(lb, rb, func(lb, rb uint64) {
			out = append(out, [2]uint64{lb, rb})
		})
		sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
		return out
	}
	// whole array: the intervals of $, a, b, n
	require.Equal(t, [][2]uint64{{0, 0}, {1, 3}, {4, 4}, {5, 6}}, collect(0, 6))
	// interval of "a" (ranks 1..3) extends to "na" (5..6) and "ba" (4..4)
	require.Equal(t, [][2]uint64{{4, 4}, {5, 6}}, collect(1, 3))
	// interval of "na" (ranks 5..6) extends to "ana" (2..3)
	require.Equal(t, [][2]uint64{{2, 3}}, collect(5, 6))
}

func TestOccTable_RankAcrossBlocks(t *testing.T) {
	t.Parallel()
	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	const n = 5000
	alphabet := []byte{0, 'a', 'c', 'g', 't', 'n'}
	raw := make([]byte, n)
	for i := range raw {
		raw[i] = alphabet[r.Intn(len(alphabet))]
	}
	occ := newOccTable(intvector.FromBytes(raw))
	require.Equal(t, uint64(len(alphabet)), occ.sigma())
	require.Positive(t, occ.ByteSize())

	prefix := make([][256]uint64, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i]
		prefix[i+1][raw[i]]++
	}
	for q := 0; q < 20000; q++ {
		i := r.Intn(n + 1)
		s := alphabet[r.Intn(len(alphabet))]
		require.Equal(t, prefix[i][s], occ.rank(uint64(s), uint64(i)), "seed %d symbol %d pos %d", seed, s, i)
	}
	require.Zero(t, occ.rank('x', n), "seed %d", seed)
}
