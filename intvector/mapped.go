package intvector

import (
	"Succinct/errutil"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Mapped is a stored vector accessed through a memory mapping, so reads and
// writes page in and out instead of keeping the vector resident.
type Mapped struct {
	f        *os.File
	m        mmap.MMap
	hdr      Header
	mask     uint64
	path     string // final name for vectors created with CreateMapped
	writable bool
	closed   bool
}

// CreateMapped creates a zeroed vector of n elements under a temporary name
// next to path. Commit publishes it at path, Abort discards it.
func CreateMapped(path string, n uint64, width uint8) (*Mapped, error) {
	if width == 0 || width > 64 {
		return nil, errors.Errorf("intvector: invalid width %d", width)
	}
	hdr := Header{Len: n, Width: width}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(err, "intvector: create temp file")
	}
	fail := func(err error) (*Mapped, error) {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Truncate(hdr.FileSize()); err != nil {
		return fail(errors.Wrap(err, "intvector: size mapped file"))
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return fail(errors.Wrap(err, "intvector: mmap"))
	}
	appendHeader(m[:0], hdr)
	return &Mapped{f: f, m: m, hdr: hdr, mask: maskOf(width), path: path, writable: true}, nil
}

// OpenMapped maps an existing stored vector.
func OpenMapped(path string, writable bool) (*Mapped, error) {
	flag, prot := os.O_RDONLY, mmap.RDONLY
	if writable {
		flag, prot = os.O_RDWR, mmap.RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, errors.Wrap(err, "intvector: open")
	}
	m, err := mmap.Map(f, prot, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "intvector: mmap")
	}
	hdr, err := decodeHeader(m)
	if err == nil && int64(len(m)) != hdr.FileSize() {
		err = errors.Errorf("intvector: %s has size %d, header wants %d", path, len(m), hdr.FileSize())
	}
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}
	return &Mapped{f: f, m: m, hdr: hdr, mask: maskOf(hdr.Width), writable: writable}, nil
}

func (v *Mapped) Len() uint64 {
	return v.hdr.Len
}

func (v *Mapped) Width() uint8 {
	return v.hdr.Width
}

func (v *Mapped) word(k uint64) uint64 {
	return binary.LittleEndian.Uint64(v.m[HeaderSize+8*k:])
}

func (v *Mapped) setWord(k uint64, w uint64) {
	binary.LittleEndian.PutUint64(v.m[HeaderSize+8*k:], w)
}

func (v *Mapped) Get(i uint64) uint64 {
	bit := i * uint64(v.hdr.Width)
	w := bit >> 6
	off := bit & 63
	val := v.word(w) >> off
	if off+uint64(v.hdr.Width) > 64 {
		val |= v.word(w+1) << (64 - off)
	}
	return val & v.mask
}

func (v *Mapped) Set(i uint64, x uint64) {
	x &= v.mask
	bit := i * uint64(v.hdr.Width)
	w := bit >> 6
	off := bit & 63
	v.setWord(w, v.word(w)&^(v.mask<<off)|x<<off)
	if off+uint64(v.hdr.Width) > 64 {
		shift := 64 - off
		v.setWord(w+1, v.word(w+1)&^(v.mask>>shift)|x>>shift)
	}
}

func (v *Mapped) Flush() error {
	if !v.writable {
		return nil
	}
	return errors.Wrap(v.m.Flush(), "intvector: msync")
}

func (v *Mapped) unmap() error {
	if v.closed {
		return nil
	}
	v.closed = true
	err := v.Flush()
	uerr := errors.Wrap(v.m.Unmap(), "intvector: munmap")
	cerr := errors.Wrap(v.f.Close(), "intvector: close")
	return errutil.First(err, uerr, cerr)
}

// Close unmaps a vector obtained from OpenMapped. For a vector from
// CreateMapped it behaves like Abort.
func (v *Mapped) Close() error {
	if v.path != "" {
		return v.Abort()
	}
	return v.unmap()
}

// Commit unmaps a vector from CreateMapped and publishes it at its final path.
func (v *Mapped) Commit() error {
	if v.path == "" {
		return errors.New("intvector: commit of a vector not created by CreateMapped")
	}
	tmp := v.f.Name()
	if err := v.unmap(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, v.path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "intvector: publish %s", v.path)
	}
	v.path = ""
	return nil
}

// Abort unmaps and removes a vector from CreateMapped.
func (v *Mapped) Abort() error {
	tmp := v.f.Name()
	err := v.unmap()
	os.Remove(tmp)
	v.path = ""
	return err
}
