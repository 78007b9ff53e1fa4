package intvector

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultBlockSize is the number of elements a Reader fetches per read when
// no block size is given.
const DefaultBlockSize = 1 << 16

// Reader streams the elements of a stored vector front to back, holding only
// one block of words in memory.
type Reader struct {
	f      *os.File
	hdr    Header
	mask   uint64
	buf    []uint64
	raw    []byte
	base   uint64 // word index of buf[0]
	pos    uint64 // next element
	err    error
	closed bool
}

// Open prepares a sequential reader over the vector stored at path.
// blockSize is a number of elements; zero selects DefaultBlockSize.
func Open(path string, blockSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "intvector: open")
	}
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "intvector: read header of %s", path)
	}
	h, err := decodeHeader(hdr[:])
	if err != nil {
		f.Close()
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "intvector: stat")
	}
	if st.Size() != h.FileSize() {
		f.Close()
		return nil, errors.Errorf("intvector: %s has size %d, header wants %d", path, st.Size(), h.FileSize())
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	words := (uint64(blockSize)*uint64(h.Width)+63)/64 + 1
	return &Reader{
		f:    f,
		hdr:  h,
		mask: maskOf(h.Width),
		buf:  make([]uint64, 0, words),
		raw:  make([]byte, 8*words),
	}, nil
}

func (r *Reader) Len() uint64 {
	return r.hdr.Len
}

func (r *Reader) Width() uint8 {
	return r.hdr.Width
}

// Pos returns the index of the element the next call to Next yields.
func (r *Reader) Pos() uint64 {
	return r.pos
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) word(k uint64) uint64 {
	if k < r.base || k >= r.base+uint64(len(r.buf)) {
		r.fill(k)
	}
	if r.err != nil {
		return 0
	}
	return r.buf[k-r.base]
}

func (r *Reader) fill(k uint64) {
	count := uint64(cap(r.buf))
	if rest := r.hdr.Words() - k; rest < count {
		count = rest
	}
	raw := r.raw[:8*count]
	if _, err := r.f.ReadAt(raw, HeaderSize+8*int64(k)); err != nil {
		r.err = errors.Wrap(err, "intvector: read block")
		return
	}
	r.buf = r.buf[:count]
	for j := range r.buf {
		r.buf[j] = binary.LittleEndian.Uint64(raw[8*j:])
	}
	r.base = k
}

// Next returns the next element. It returns false at the end of the vector
// or after a read error, which Err then reports.
func (r *Reader) Next() (uint64, bool) {
	if r.pos >= r.hdr.Len || r.err != nil {
		return 0, false
	}
	bit := r.pos * uint64(r.hdr.Width)
	w := bit >> 6
	off := bit & 63
	val := r.word(w) >> off
	if off+uint64(r.hdr.Width) > 64 {
		val |= r.word(w+1) << (64 - off)
	}
	if r.err != nil {
		return 0, false
	}
	r.pos++
	return val & r.mask, true
}

// Reset rewinds the reader to the first element.
func (r *Reader) Reset() {
	r.pos = 0
	r.err = nil
}

func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}

// Writer streams elements into a new stored vector of known length. The file
// is published under its final name by Close, and only if exactly n elements
// were appended.
type Writer struct {
	path  string
	tmp   *os.File
	bw    *bufio.Writer
	hdr   Header
	mask  uint64
	cur   uint64
	bits  uint64
	count uint64
	err   error
	done  bool
}

// Create starts a stored vector of n elements of the given width at path.
func Create(path string, n uint64, width uint8) (*Writer, error) {
	if width == 0 || width > 64 {
		return nil, errors.Errorf("intvector: invalid width %d", width)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(err, "intvector: create temp file")
	}
	w := &Writer{
		path: path,
		tmp:  tmp,
		bw:   bufio.NewWriterSize(tmp, 64*1024),
		hdr:  Header{Len: n, Width: width},
		mask: maskOf(width),
	}
	var hdr [HeaderSize]byte
	appendHeader(hdr[:0], w.hdr)
	if _, err := w.bw.Write(hdr[:]); err != nil {
		w.Abort()
		return nil, errors.Wrap(err, "intvector: write header")
	}
	return w, nil
}

func (w *Writer) Len() uint64 {
	return w.hdr.Len
}

// Count returns the number of elements appended so far.
func (w *Writer) Count() uint64 {
	return w.count
}

func (w *Writer) flushWord(word uint64) {
	if w.err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], word)
	if _, err := w.bw.Write(b[:]); err != nil {
		w.err = errors.Wrap(err, "intvector: write word")
	}
}

// Append adds the next element. Errors are sticky and reported by Close.
func (w *Writer) Append(v uint64) {
	if w.count >= w.hdr.Len {
		if w.err == nil {
			w.err = errors.Errorf("intvector: more than %d elements appended", w.hdr.Len)
		}
		return
	}
	v &= w.mask
	width := uint64(w.hdr.Width)
	w.cur |= v << w.bits
	if w.bits+width >= 64 {
		w.flushWord(w.cur)
		w.cur = v >> (64 - w.bits)
		w.bits = w.bits + width - 64
	} else {
		w.bits += width
	}
	w.count++
}

// Close writes the pending word and publishes the file. On any error the
// partial file is removed and nothing appears at the destination.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	if w.err == nil && w.count != w.hdr.Len {
		w.err = errors.Errorf("intvector: %d of %d elements appended", w.count, w.hdr.Len)
	}
	if w.err == nil && w.bits > 0 {
		w.flushWord(w.cur)
	}
	if w.err == nil {
		w.err = w.bw.Flush()
	}
	if w.err != nil {
		err := w.err
		w.Abort()
		return err
	}
	w.done = true
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return errors.Wrap(err, "intvector: close")
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		os.Remove(w.tmp.Name())
		return errors.Wrapf(err, "intvector: publish %s", w.path)
	}
	return nil
}

// Abort discards everything written so far.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}
