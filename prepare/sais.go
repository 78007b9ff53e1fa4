package prepare

import (
	"github.com/flanglet/kanzi-go/v2/transform"
)

// suffixArray returns the suffix array of s, whose symbols lie in [0, k).
func suffixArray(s []int, k int) []int {
	n := len(s)
	sa := make([]int, n)
	switch n {
	case 0:
	case 1:
		sa[0] = 0
	default:
		transform.ComputeSuffixArray(s, sa, 0, n, k, false)
	}
	return sa
}
