package intvector

import (
	"encoding/binary"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// pageWords is the number of words fetched by one ReadAt (4 KiB).
const pageWords = 512

// Cached gives random access to a stored vector without loading it. Pages of
// words are read on demand and kept in an LRU of bounded size.
type Cached struct {
	f     *os.File
	hdr   Header
	mask  uint64
	cache *lru.Cache[uint64, []uint64]
	raw   []byte
	err   error
}

// OpenCached opens the vector stored at path keeping at most pages pages
// resident.
func OpenCached(path string, pages int) (*Cached, error) {
	if pages <= 0 {
		pages = 1
	}
	hdr, err := ReadHeader(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "intvector: open")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "intvector: stat")
	}
	if st.Size() != hdr.FileSize() {
		f.Close()
		return nil, errors.Errorf("intvector: %s has size %d, header wants %d", path, st.Size(), hdr.FileSize())
	}
	cache, err := lru.New[uint64, []uint64](pages)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "intvector: page cache")
	}
	return &Cached{
		f:     f,
		hdr:   hdr,
		mask:  maskOf(hdr.Width),
		cache: cache,
		raw:   make([]byte, 8*pageWords),
	}, nil
}

func (c *Cached) Len() uint64 {
	return c.hdr.Len
}

func (c *Cached) Width() uint8 {
	return c.hdr.Width
}

// Err returns the first read error. Get returns zero after an error.
func (c *Cached) Err() error {
	return c.err
}

func (c *Cached) page(p uint64) []uint64 {
	if words, ok := c.cache.Get(p); ok {
		return words
	}
	count := uint64(pageWords)
	if rest := c.hdr.Words() - p*pageWords; rest < count {
		count = rest
	}
	raw := c.raw[:8*count]
	if _, err := c.f.ReadAt(raw, HeaderSize+8*int64(p*pageWords)); err != nil {
		if c.err == nil {
			c.err = errors.Wrap(err, "intvector: read page")
		}
		return nil
	}
	words := make([]uint64, count)
	for j := range words {
		words[j] = binary.LittleEndian.Uint64(raw[8*j:])
	}
	c.cache.Add(p, words)
	return words
}

func (c *Cached) word(k uint64) uint64 {
	words := c.page(k / pageWords)
	if words == nil {
		return 0
	}
	return words[k%pageWords]
}

func (c *Cached) Get(i uint64) uint64 {
	bit := i * uint64(c.hdr.Width)
	w := bit >> 6
	off := bit & 63
	val := c.word(w) >> off
	if off+uint64(c.hdr.Width) > 64 {
		val |= c.word(w+1) << (64 - off)
	}
	return val & c.mask
}

// Resident returns the number of pages currently cached.
func (c *Cached) Resident() int {
	return c.cache.Len()
}

func (c *Cached) Close() error {
	c.cache.Purge()
	return c.f.Close()
}
