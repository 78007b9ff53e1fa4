package intvector

import (
	"Succinct/errutil"
	"Succinct/utils"
	"fmt"
	"math/bits"
	"strings"
)

// IntVector is a resizable array of fixed-width unsigned integers packed
// into 64-bit words. Element i occupies bits [i*width, (i+1)*width) of the
// word stream, least significant bit first, and may straddle two words.
type IntVector struct {
	data  []uint64
	n     uint64
	width uint8
}

// WidthFor returns the minimum number of bits (at least one) needed to hold
// values in [0..maxInclusive].
func WidthFor(maxInclusive uint64) uint8 {
	if maxInclusive == 0 {
		return 1
	}
	return uint8(bits.Len64(maxInclusive))
}

func wordsFor(n uint64, width uint8) uint64 {
	return (n*uint64(width) + 63) / 64
}

func maskOf(width uint8) uint64 {
	if width == 64 {
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

// New returns a zeroed vector of n elements, each width bits wide.
func New(n uint64, width uint8) *IntVector {
	errutil.BugOn(width == 0 || width > 64, "invalid width %d", width)
	return &IntVector{
		data:  make([]uint64, wordsFor(n, width)),
		n:     n,
		width: width,
	}
}

// FromUint64s packs values into a vector of the given width. Values wider
// than width are truncated.
func FromUint64s(values []uint64, width uint8) *IntVector {
	v := New(uint64(len(values)), width)
	for i, x := range values {
		v.Set(uint64(i), x)
	}
	return v
}

// FromBytes returns an 8-bit vector holding b.
func FromBytes(b []byte) *IntVector {
	v := New(uint64(len(b)), 8)
	for i, c := range b {
		v.data[i>>3] |= uint64(c) << (uint(i&7) * 8)
	}
	return v
}

func (v *IntVector) Len() uint64 {
	return v.n
}

func (v *IntVector) Width() uint8 {
	return v.width
}

func (v *IntVector) Get(i uint64) uint64 {
	errutil.BugOn(i >= v.n, "index %d out of range [0, %d)", i, v.n)
	pos := i * uint64(v.width)
	w := pos >> 6
	off := pos & 63
	val := v.data[w] >> off
	if off+uint64(v.width) > 64 {
		val |= v.data[w+1] << (64 - off)
	}
	return val & maskOf(v.width)
}

func (v *IntVector) Set(i uint64, x uint64) {
	errutil.BugOn(i >= v.n, "index %d out of range [0, %d)", i, v.n)
	mask := maskOf(v.width)
	x &= mask
	pos := i * uint64(v.width)
	w := pos >> 6
	off := pos & 63
	v.data[w] = v.data[w]&^(mask<<off) | x<<off
	if off+uint64(v.width) > 64 {
		shift := 64 - off
		v.data[w+1] = v.data[w+1]&^(mask>>shift) | x>>shift
	}
}

// Word returns the k-th backing word.
func (v *IntVector) Word(k uint64) uint64 {
	return v.data[k]
}

func (v *IntVector) SetWord(k uint64, w uint64) {
	v.data[k] = w
}

// Words exposes the backing words. The slice aliases the vector.
func (v *IntVector) Words() []uint64 {
	return v.data
}

// Resize changes the number of elements. Grown elements are zero; bits past
// the new end are cleared on shrink.
func (v *IntVector) Resize(n uint64) {
	nw := wordsFor(n, v.width)
	if nw <= uint64(cap(v.data)) {
		old := uint64(len(v.data))
		v.data = v.data[:nw]
		for k := old; k < nw; k++ {
			v.data[k] = 0
		}
	} else {
		grown := make([]uint64, nw)
		copy(grown, v.data)
		v.data = grown
	}
	v.n = n
	if tail := (n * uint64(v.width)) & 63; tail != 0 {
		v.data[nw-1] &= uint64(1)<<tail - 1
	}
}

// Clear zeroes every word in one pass.
func (v *IntVector) Clear() {
	clear(v.data)
}

// Clone returns a deep copy.
func (v *IntVector) Clone() *IntVector {
	data := make([]uint64, len(v.data))
	copy(data, v.data)
	return &IntVector{data: data, n: v.n, width: v.width}
}

func (v *IntVector) Swap(other *IntVector) {
	*v, *other = *other, *v
}

// Equal reports whether both vectors hold the same elements. Widths may differ.
func (v *IntVector) Equal(other *IntVector) bool {
	if v.n != other.n {
		return false
	}
	if v.width == other.width {
		for k := range v.data {
			if v.data[k] != other.data[k] {
				return false
			}
		}
		return true
	}
	for i := uint64(0); i < v.n; i++ {
		if v.Get(i) != other.Get(i) {
			return false
		}
	}
	return true
}

// Bytes returns the elements of an 8-bit vector as a byte slice.
func (v *IntVector) Bytes() []byte {
	errutil.BugOn(v.width != 8, "Bytes on a %d-bit vector", v.width)
	out := make([]byte, v.n)
	for i := range out {
		out[i] = byte(v.data[i>>3] >> (uint(i&7) * 8))
	}
	return out
}

// Uint64s unpacks every element.
func (v *IntVector) Uint64s() []uint64 {
	out := make([]uint64, v.n)
	for i := range out {
		out[i] = v.Get(uint64(i))
	}
	return out
}

// ByteSize returns the serialized size in bytes.
func (v *IntVector) ByteSize() int {
	return HeaderSize + 8*len(v.data)
}

func (v *IntVector) MemReport(name string) utils.MemReport {
	return utils.NewMemReport(name,
		utils.Leaf("header", HeaderSize),
		utils.Leaf("words", 8*len(v.data)),
	)
}

func (v *IntVector) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("IntVector(n=%d, width=%d)[", v.n, v.width))
	for i := uint64(0); i < v.n; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		if i == 32 {
			sb.WriteString("...")
			break
		}
		sb.WriteString(fmt.Sprint(v.Get(i)))
	}
	sb.WriteString("]")
	return sb.String()
}
