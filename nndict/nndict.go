package nndict

import (
	"Succinct/errutil"
	"Succinct/intvector"
	"Succinct/utils"
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/pkg/errors"
)

// Dict is a dynamic bit vector over [0, Size()) that also answers
// nearest-set-bit queries. Bit idx lives in word idx>>6 at position idx&63.
// The backing array always holds Size()/64+1 words, so the word of any valid
// index exists.
//
// A Dict is a value with a single owner: Clone makes an independent copy and
// nothing is safe for concurrent mutation.
type Dict struct {
	size  uint64
	words *intvector.IntVector
}

// New returns a dictionary of n clear bits.
func New(n uint64) *Dict {
	return &Dict{
		size:  n,
		words: intvector.New((n>>6)+1, 64),
	}
}

func (d *Dict) Size() uint64 {
	return d.size
}

// Resize changes the number of addressable bits. Bits past the new size are
// cleared, so growing again exposes only zeros.
func (d *Dict) Resize(n uint64) {
	d.size = n
	d.words.Resize((n >> 6) + 1)
	last := n >> 6
	d.words.SetWord(last, d.words.Word(last)&(uint64(1)<<(n&63)-1))
}

// Get returns bit idx. Precondition: idx < Size().
func (d *Dict) Get(idx uint64) bool {
	errutil.BugOn(idx >= d.size, "index %d out of range [0, %d)", idx, d.size)
	return (d.words.Word(idx>>6)>>(idx&63))&1 == 1
}

// Set writes bit idx with a single read-modify-write of its word.
// Precondition: idx < Size().
func (d *Dict) Set(idx uint64, bit bool) {
	errutil.BugOn(idx >= d.size, "index %d out of range [0, %d)", idx, d.size)
	k := idx >> 6
	w := d.words.Word(k)
	if bit {
		w |= uint64(1) << (idx & 63)
	} else {
		w &^= uint64(1) << (idx & 63)
	}
	d.words.SetWord(k, w)
}

// Next returns the smallest j >= idx with Get(j), or Size() if there is none.
func (d *Dict) Next(idx uint64) uint64 {
	if idx >= d.size {
		return d.size
	}
	pos := idx >> 6
	node := d.words.Word(pos) >> (idx & 63)
	if node != 0 {
		return d.clamp(idx + uint64(bits.TrailingZeros64(node)))
	}
	nw := d.words.Len()
	for pos++; pos < nw; pos++ {
		if w := d.words.Word(pos); w != 0 {
			return d.clamp(pos<<6 | uint64(bits.TrailingZeros64(w)))
		}
	}
	return d.size
}

// Prev returns the largest j <= idx with Get(j), or Size() if there is none.
// Size() doubles as "not found" for both directions; use Predecessor to tell
// the cases apart without comparing against Size().
func (d *Dict) Prev(idx uint64) uint64 {
	if j, ok := d.Predecessor(idx); ok {
		return j
	}
	return d.size
}

// Successor is Next with an explicit found flag.
func (d *Dict) Successor(idx uint64) (uint64, bool) {
	j := d.Next(idx)
	return j, j < d.size
}

// Predecessor returns the largest j <= idx with Get(j). Indexes past the end
// are treated as Size()-1.
func (d *Dict) Predecessor(idx uint64) (uint64, bool) {
	if d.size == 0 {
		return 0, false
	}
	if idx >= d.size {
		idx = d.size - 1
	}
	pos := idx >> 6
	shift := 63 - (idx & 63)
	node := d.words.Word(pos) << shift
	if node != 0 {
		return idx - uint64(bits.LeadingZeros64(node)), true
	}
	for pos > 0 {
		pos--
		if w := d.words.Word(pos); w != 0 {
			return pos<<6 | uint64(63-bits.LeadingZeros64(w)), true
		}
	}
	return 0, false
}

func (d *Dict) clamp(j uint64) uint64 {
	if j > d.size {
		return d.size
	}
	return j
}

// ClearAll zeroes every word in one pass without reallocating.
func (d *Dict) ClearAll() {
	d.words.Clear()
}

// Count returns the number of set bits.
func (d *Dict) Count() uint64 {
	c := 0
	for _, w := range d.words.Words() {
		c += bits.OnesCount64(w)
	}
	return uint64(c)
}

// Clone returns a deep copy with its own backing words.
func (d *Dict) Clone() *Dict {
	return &Dict{size: d.size, words: d.words.Clone()}
}

func (d *Dict) Swap(other *Dict) {
	*d, *other = *other, *d
}

// Equal reports whether both dictionaries have the same size and bits.
func (d *Dict) Equal(other *Dict) bool {
	return d.size == other.size && d.words.Equal(other.words)
}

// Ref returns a proxy for bit idx.
func (d *Dict) Ref(idx uint64) Reference {
	return Reference{d: d, idx: idx}
}

// Reference addresses one bit of a Dict. Reads and writes go straight to the
// dictionary; a Reference holds no copy of the bit.
type Reference struct {
	d   *Dict
	idx uint64
}

func (r Reference) Get() bool {
	return r.d.Get(r.idx)
}

func (r Reference) Set(bit bool) {
	r.d.Set(r.idx, bit)
}

// Assign copies the bit addressed by other.
func (r Reference) Assign(other Reference) {
	r.Set(other.Get())
}

func (r Reference) Equal(other Reference) bool {
	return r.Get() == other.Get()
}

// Less orders bits with false < true.
func (r Reference) Less(other Reference) bool {
	return !r.Get() && other.Get()
}

// The serialization format of a Dict is (all values LittleEndian):
//
// - uint64: logical size in bits
// - the serialized word vector (see intvector): its own length and width
//   header (Size()/64+1 words of width 64) followed by the words.

// WriteTo streams the dictionary to w.
func (d *Dict) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], d.size)
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), errors.Wrap(err, "nndict: write size")
	}
	m, err := d.words.WriteTo(w)
	return int64(n) + m, errors.Wrap(err, "nndict: write vector")
}

// ReadFrom replaces d with a dictionary read from r.
func (d *Dict) ReadFrom(r io.Reader) (int64, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, errors.Wrap(err, "nndict: read size")
	}
	size := binary.LittleEndian.Uint64(hdr[:])
	words := new(intvector.IntVector)
	m, err := words.ReadFrom(r)
	if err != nil {
		return 8 + m, errors.Wrap(err, "nndict: read vector")
	}
	if words.Width() != 64 || words.Len() != (size>>6)+1 {
		return 8 + m, errors.Errorf("nndict: vector of %d %d-bit words does not fit size %d",
			words.Len(), words.Width(), size)
	}
	d.size = size
	d.words = words
	return 8 + m, nil
}

func (d *Dict) Serialize() ([]byte, error) {
	vec, err := d.words.Serialize()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 8+len(vec))
	buf = binary.LittleEndian.AppendUint64(buf, d.size)
	return append(buf, vec...), nil
}

func Deserialize(data []byte, target *Dict) error {
	if len(data) < 8 {
		return errors.New("nndict: data too short for size")
	}
	size := binary.LittleEndian.Uint64(data)
	words := new(intvector.IntVector)
	if err := intvector.Deserialize(data[8:], words); err != nil {
		return errors.Wrap(err, "nndict")
	}
	if words.Width() != 64 || words.Len() != (size>>6)+1 {
		return errors.Errorf("nndict: vector of %d %d-bit words does not fit size %d",
			words.Len(), words.Width(), size)
	}
	target.size = size
	target.words = words
	return nil
}

// ByteSize returns the serialized size in bytes.
func (d *Dict) ByteSize() int {
	return 8 + d.words.ByteSize()
}

// MemReport mirrors the serialized layout: the size field then the vector.
func (d *Dict) MemReport() utils.MemReport {
	return utils.NewMemReport("nndict",
		utils.Leaf("size", 8),
		d.words.MemReport("vector"),
	)
}
