package intvector

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func randomValues(r *rand.Rand, n int, width uint8) []uint64 {
	vals := make([]uint64, n)
	for i := range vals {
		vals[i] = r.Uint64() & maskOf(width)
	}
	return vals
}

func TestWidthFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, uint8(1), WidthFor(0))
	require.Equal(t, uint8(1), WidthFor(1))
	require.Equal(t, uint8(2), WidthFor(2))
	require.Equal(t, uint8(8), WidthFor(255))
	require.Equal(t, uint8(9), WidthFor(256))
	require.Equal(t, uint8(64), WidthFor(^uint64(0)))
}

func TestGetSet_AllWidths(t *testing.T) {
	t.Parallel()
	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	for width := uint8(1); width <= 64; width++ {
		n := r.Intn(300) + 1
		vals := randomValues(r, n, width)
		v := FromUint64s(vals, width)
		require.Equal(t, uint64(n), v.Len())
		require.Equal(t, width, v.Width())
		require.Equal(t, int(wordsFor(uint64(n), width)), len(v.Words()))
		require.Equal(t, vals, v.Uint64s(), "width %d (seed: %d)", width, seed)

		// Overwrite in random order and make sure neighbours survive.
		for _, i := range r.Perm(n) {
			x := r.Uint64() & maskOf(width)
			vals[i] = x
			v.Set(uint64(i), x)
		}
		require.Equal(t, vals, v.Uint64s(), "width %d after overwrite (seed: %d)", width, seed)
	}
}

func TestSet_TruncatesToWidth(t *testing.T) {
	t.Parallel()
	v := New(3, 4)
	v.Set(1, 0xFF)
	require.Equal(t, []uint64{0, 0xF, 0}, v.Uint64s())
}

func TestResize(t *testing.T) {
	t.Parallel()
	v := FromUint64s([]uint64{1, 2, 3, 4, 5, 6, 7}, 7)
	v.Resize(3)
	require.Equal(t, []uint64{1, 2, 3}, v.Uint64s())
	v.Resize(20)
	require.Equal(t, uint64(20), v.Len())
	for i := uint64(3); i < 20; i++ {
		require.Zero(t, v.Get(i), "grown element %d", i)
	}
	v.Resize(0)
	require.Empty(t, v.Words())
}

func TestClearCloneSwapEqual(t *testing.T) {
	t.Parallel()
	a := FromUint64s([]uint64{9, 8, 7}, 5)
	b := a.Clone()
	require.True(t, a.Equal(b))
	b.Set(0, 1)
	require.Equal(t, uint64(9), a.Get(0), "clone must not alias")
	require.False(t, a.Equal(b))

	wide := FromUint64s([]uint64{9, 8, 7}, 33)
	require.True(t, a.Equal(wide))

	c := New(1, 2)
	a.Swap(c)
	require.Equal(t, uint64(1), a.Len())
	require.Equal(t, []uint64{9, 8, 7}, c.Uint64s())

	c.Clear()
	require.Equal(t, []uint64{0, 0, 0}, c.Uint64s())
}

func TestBytes(t *testing.T) {
	t.Parallel()
	text := []byte("abracadabra\x00")
	v := FromBytes(text)
	require.Equal(t, uint8(8), v.Width())
	require.Equal(t, text, v.Bytes())
	for i, c := range text {
		require.Equal(t, uint64(c), v.Get(uint64(i)))
	}
}

func TestSerializeDeserialize(t *testing.T) {
	t.Parallel()
	seed := time.Now().UnixNano()
	r := rand.New(rand.NewSource(seed))

	for _, width := range []uint8{1, 3, 8, 17, 32, 63, 64} {
		original := FromUint64s(randomValues(r, r.Intn(1000), width), width)

		data, err := original.Serialize()
		require.NoError(t, err)
		require.Equal(t, original.ByteSize(), len(data))

		var decoded IntVector
		require.NoError(t, Deserialize(data, &decoded))
		require.True(t, original.Equal(&decoded), "width %d (seed: %d)", width, seed)
		require.True(t, slices.Equal(original.Words(), decoded.Words()))

		var buf bytes.Buffer
		written, err := original.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(len(data)), written)
		require.Equal(t, data, buf.Bytes())

		var streamed IntVector
		read, err := streamed.ReadFrom(&buf)
		require.NoError(t, err)
		require.Equal(t, written, read)
		require.True(t, original.Equal(&streamed))
	}
}

func TestDeserialize_InvalidData(t *testing.T) {
	t.Parallel()
	var v IntVector

	require.Error(t, Deserialize([]byte{}, &v), "expected error for empty data")
	require.Error(t, Deserialize(make([]byte, 8), &v), "expected error for short header")

	badWidth := appendHeader(nil, Header{Len: 1, Width: 8})
	badWidth[8] = 65
	require.Error(t, Deserialize(append(badWidth, make([]byte, 8)...), &v), "expected error for width 65")

	short := appendHeader(nil, Header{Len: 9, Width: 8})
	require.Error(t, Deserialize(append(short, make([]byte, 8)...), &v), "expected error for missing word")

	trailing := appendHeader(nil, Header{Len: 1, Width: 8})
	require.Error(t, Deserialize(append(trailing, make([]byte, 9)...), &v), "expected error for trailing data")
}

func TestStoreLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "sa_tc.sdsl")

	original := FromUint64s([]uint64{5, 0, 4, 1, 3, 2}, WidthFor(6))
	require.NoError(t, original.Store(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, original.Equal(loaded))

	hdr, err := ReadHeader(path)
	require.NoError(t, err)
	require.Equal(t, Header{Len: 6, Width: 3}, hdr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may remain")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{1})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = Load(path)
	require.Error(t, err, "trailing byte must be rejected")

	_, err = Load(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
