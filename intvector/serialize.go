package intvector

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The serialization format of an IntVector is (all values LittleEndian):
//
// Header:
// - uint64: number of elements (n)
// - uint64: element width in bits (1..64)
//
// Data:
// - ceil(n*width/64) * uint64: the packed words
//
// Total size: 16 + 8*ceil(n*width/64) bytes.

const HeaderSize = 16

// Header describes a stored vector without its words.
type Header struct {
	Len   uint64
	Width uint8
}

func (h Header) Words() uint64 {
	return wordsFor(h.Len, h.Width)
}

// FileSize returns the exact size of a stored vector with this header.
func (h Header) FileSize() int64 {
	return HeaderSize + 8*int64(h.Words())
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.New("intvector: data too short for header")
	}
	n := binary.LittleEndian.Uint64(buf)
	width := binary.LittleEndian.Uint64(buf[8:])
	if width == 0 || width > 64 {
		return Header{}, errors.Errorf("intvector: invalid width %d", width)
	}
	return Header{Len: n, Width: uint8(width)}, nil
}

func appendHeader(buf []byte, h Header) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, h.Len)
	return binary.LittleEndian.AppendUint64(buf, uint64(h.Width))
}

func (v *IntVector) header() Header {
	return Header{Len: v.n, Width: v.width}
}

func (v *IntVector) Serialize() ([]byte, error) {
	buf := make([]byte, 0, v.ByteSize())
	buf = appendHeader(buf, v.header())
	for _, w := range v.data {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return buf, nil
}

func Deserialize(data []byte, target *IntVector) error {
	h, err := decodeHeader(data)
	if err != nil {
		return err
	}
	data = data[HeaderSize:]
	nw := h.Words()
	if uint64(len(data))/8 < nw {
		return errors.New("intvector: data too short for words")
	}
	if uint64(len(data)) != 8*nw {
		return errors.New("intvector: trailing data after successful deserialization")
	}
	words := make([]uint64, nw)
	for k := range words {
		words[k] = binary.LittleEndian.Uint64(data[8*k:])
	}
	*target = IntVector{data: words, n: h.Len, width: h.Width}
	return nil
}

// WriteTo streams the serialized vector to w.
func (v *IntVector) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, 64*1024)
	buf = appendHeader(buf, v.header())
	var written int64
	for _, word := range v.data {
		buf = binary.LittleEndian.AppendUint64(buf, word)
		if len(buf) == cap(buf) {
			n, err := w.Write(buf)
			written += int64(n)
			if err != nil {
				return written, err
			}
			buf = buf[:0]
		}
	}
	n, err := w.Write(buf)
	written += int64(n)
	return written, err
}

// ReadFrom replaces v with a vector read from r. It consumes exactly the
// bytes of one serialized vector.
func (v *IntVector) ReadFrom(r io.Reader) (int64, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, errors.Wrap(err, "intvector: read header")
	}
	h, err := decodeHeader(hdr[:])
	if err != nil {
		return HeaderSize, err
	}
	words := make([]uint64, h.Words())
	buf := make([]byte, 64*1024)
	read := int64(HeaderSize)
	for k := 0; k < len(words); {
		chunk := len(words) - k
		if chunk > len(buf)/8 {
			chunk = len(buf) / 8
		}
		n, err := io.ReadFull(r, buf[:8*chunk])
		read += int64(n)
		if err != nil {
			return read, errors.Wrap(err, "intvector: data too short for words")
		}
		for j := 0; j < chunk; j++ {
			words[k+j] = binary.LittleEndian.Uint64(buf[8*j:])
		}
		k += chunk
	}
	*v = IntVector{data: words, n: h.Len, width: h.Width}
	return read, nil
}

// Store writes v to path. The file appears under its final name only once
// it has been written completely.
func (v *IntVector) Store(path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := v.WriteTo(w)
		return err
	})
}

// Load reads a vector stored at path and rejects files with trailing bytes.
func Load(path string) (*IntVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "intvector: open")
	}
	defer f.Close()

	v := new(IntVector)
	read, err := v.ReadFrom(bufio.NewReaderSize(f, 64*1024))
	if err != nil {
		return nil, errors.Wrapf(err, "intvector: load %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "intvector: stat")
	}
	if st.Size() != read {
		return nil, errors.Errorf("intvector: %s has %d trailing bytes", path, st.Size()-read)
	}
	return v, nil
}

// ReadHeader returns the header of the vector stored at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, errors.Wrap(err, "intvector: open")
	}
	defer f.Close()
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return Header{}, errors.Wrapf(err, "intvector: read header of %s", path)
	}
	return decodeHeader(hdr[:])
}

func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "intvector: create temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err = write(bw); err != nil {
		return errors.Wrapf(err, "intvector: write %s", path)
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "intvector: flush %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "intvector: close %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "intvector: publish %s", path)
	}
	return nil
}
