package registry

import (
	"Succinct/intvector"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPutGetEraseContains(t *testing.T) {
	t.Parallel()
	reg := New("/data", "tc_0")

	require.Equal(t, filepath.Join("/data", "sa_tc_0.sdsl"), reg.Location(KeySA))
	require.False(t, reg.Contains(KeyText))

	reg.Put(KeyText, "/data/text_tc_0.sdsl")
	reg.Put(KeySA, "/data/sa_tc_0.sdsl")
	reg.Put(KeyBWT, "/data/bwt_tc_0.sdsl")
	require.Equal(t, 3, reg.Len())
	require.True(t, reg.Contains(KeySA))

	loc, ok := reg.Get(KeyText)
	require.True(t, ok)
	require.Equal(t, "/data/text_tc_0.sdsl", loc)

	reg.Put(KeyText, "/elsewhere/text")
	loc, _ = reg.Get(KeyText)
	require.Equal(t, "/elsewhere/text", loc, "put replaces")
	require.Equal(t, 3, reg.Len())

	reg.Erase(KeySA)
	require.False(t, reg.Contains(KeySA))
	_, err := reg.MustGet(KeySA)
	require.True(t, errors.Is(err, ErrNotRegistered))
	reg.Erase(KeySA)

	require.Equal(t, []string{KeyBWT, KeyText}, reg.Names())
}

func TestNamesWithPrefix(t *testing.T) {
	t.Parallel()
	reg := New("", "")
	for _, name := range []string{"text_tc_1", "sa_tc_0", "text_tc_0", "lcp_tc_0", "sa_tc_1"} {
		reg.Put(name, name)
	}
	require.Equal(t, []string{"sa_tc_0", "sa_tc_1"}, reg.NamesWithPrefix("sa_"))
	require.Equal(t, []string{"text_tc_0", "text_tc_1"}, reg.NamesWithPrefix("text"))
	require.Empty(t, reg.NamesWithPrefix("bwt"))
	require.Equal(t, filepath.Join("", "lcp.sdsl"), reg.Location(KeyLCP))
}

func TestSnapshotIsIndependent(t *testing.T) {
	t.Parallel()
	reg := New("", "x")
	reg.Put(KeyText, "a")
	snap := reg.Snapshot()
	reg.Put(KeySA, "b")
	reg.Erase(KeyText)

	require.True(t, snap.Contains(KeyText))
	require.False(t, snap.Contains(KeySA))
	require.Equal(t, "x", snap.ID())
}

func TestStoreLoadDeleteBacking(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	reg := New(dir, "tc_3")

	text := intvector.FromBytes([]byte("banana\x00"))
	require.NoError(t, reg.Store(KeyText, text))
	sa := intvector.FromUint64s([]uint64{6, 5, 3, 1, 0, 4, 2}, intvector.WidthFor(7))
	require.NoError(t, reg.Store(KeySA, sa))

	loc, ok := reg.Get(KeyText)
	require.True(t, ok)
	require.FileExists(t, loc)
	require.Equal(t, reg.Location(KeyText), loc)

	loaded, err := reg.Load(KeySA)
	require.NoError(t, err)
	require.True(t, sa.Equal(loaded))

	_, err = reg.Load(KeyBWT)
	require.True(t, errors.Is(err, ErrNotRegistered))

	saLoc, _ := reg.Get(KeySA)
	require.NoError(t, reg.DeleteBacking(KeySA, "never-registered"))
	require.NoFileExists(t, saLoc)
	require.False(t, reg.Contains(KeySA))
	require.True(t, reg.Contains(KeyText))

	// A registered name whose file is already gone is not an error.
	reg.Put(KeyBWT, filepath.Join(dir, "gone"))
	require.NoError(t, reg.DeleteAll())
	require.Zero(t, reg.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDigest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := New(dir, "a")
	b := New(dir, "b")

	require.NoError(t, a.Store(KeyLCP, intvector.FromUint64s([]uint64{0, 1, 2, 0}, 2)))
	require.NoError(t, b.Store(KeyLCP, intvector.FromUint64s([]uint64{0, 1, 2, 0}, 2)))

	da, err := a.Digest(KeyLCP)
	require.NoError(t, err)
	db, err := b.Digest(KeyLCP)
	require.NoError(t, err)
	require.Equal(t, da, db)

	require.NoError(t, b.Store(KeyLCP, intvector.FromUint64s([]uint64{0, 1, 3, 0}, 2)))
	db, err = b.Digest(KeyLCP)
	require.NoError(t, err)
	require.NotEqual(t, da, db)

	_, err = a.Digest(KeySA)
	require.Error(t, err)
}
