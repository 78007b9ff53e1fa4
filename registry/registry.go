package registry

import (
	"Succinct/intvector"
	"bufio"
	"io"
	"os"
	"path/filepath"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// Names under which producers and strategies exchange artifacts.
const (
	KeyText = "text"
	KeySA   = "sa"
	KeyBWT  = "bwt"
	KeyLCP  = "lcp"
)

// Extension of every stored artifact.
const Extension = ".sdsl"

var ErrNotRegistered = errors.New("registry: artifact not registered")

// Registry maps artifact names to the files backing them for one
// construction run. It only holds names and locations, never array contents.
// Entries live until they are erased; removing the files is the caller's job
// (DeleteBacking).
//
// A Registry is not safe for concurrent use.
type Registry struct {
	dir  string
	id   string
	tree *iradix.Tree
}

// New returns an empty registry whose default locations are
// dir/<name>_<id>.sdsl.
func New(dir, id string) *Registry {
	return &Registry{dir: dir, id: id, tree: iradix.New()}
}

func (r *Registry) Dir() string {
	return r.dir
}

func (r *Registry) ID() string {
	return r.id
}

// Path returns dir/<name>_<id>.sdsl, or dir/<name>.sdsl for an empty id.
func Path(dir, name, id string) string {
	file := name + Extension
	if id != "" {
		file = name + "_" + id + Extension
	}
	return filepath.Join(dir, file)
}

// Location returns the default backing path for name in this run.
func (r *Registry) Location(name string) string {
	return Path(r.dir, name, r.id)
}

func (r *Registry) Put(name, location string) {
	r.tree, _, _ = r.tree.Insert([]byte(name), location)
}

func (r *Registry) Get(name string) (string, bool) {
	v, ok := r.tree.Get([]byte(name))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// MustGet is Get returning ErrNotRegistered for unknown names.
func (r *Registry) MustGet(name string) (string, error) {
	loc, ok := r.Get(name)
	if !ok {
		return "", errors.Wrapf(ErrNotRegistered, "%q", name)
	}
	return loc, nil
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.tree.Get([]byte(name))
	return ok
}

// Erase forgets name. The backing file is left alone.
func (r *Registry) Erase(name string) {
	r.tree, _, _ = r.tree.Delete([]byte(name))
}

func (r *Registry) Len() int {
	return r.tree.Len()
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	return r.NamesWithPrefix("")
}

// NamesWithPrefix returns the registered names starting with prefix, in
// ascending order.
func (r *Registry) NamesWithPrefix(prefix string) []string {
	var names []string
	r.tree.Root().WalkPrefix([]byte(prefix), func(k []byte, _ interface{}) bool {
		names = append(names, string(k))
		return false
	})
	return names
}

// Snapshot returns a copy of the registry sharing no mutable state.
func (r *Registry) Snapshot() *Registry {
	return &Registry{dir: r.dir, id: r.id, tree: r.tree}
}

// DeleteBacking removes the files backing names and erases the names. Names
// that are not registered are ignored. All names are processed; the first
// removal error is returned.
func (r *Registry) DeleteBacking(names ...string) error {
	var first error
	for _, name := range names {
		loc, ok := r.Get(name)
		if !ok {
			continue
		}
		if err := os.Remove(loc); err != nil && !os.IsNotExist(err) && first == nil {
			first = errors.Wrapf(err, "registry: delete %s", name)
		}
		r.Erase(name)
	}
	return first
}

// DeleteAll removes the backing files of every registered name.
func (r *Registry) DeleteAll() error {
	return r.DeleteBacking(r.Names()...)
}

// Store writes v to the default location of name and registers it.
func (r *Registry) Store(name string, v *intvector.IntVector) error {
	loc := r.Location(name)
	if err := v.Store(loc); err != nil {
		return errors.Wrapf(err, "registry: store %s", name)
	}
	r.Put(name, loc)
	return nil
}

// Load reads the vector registered under name.
func (r *Registry) Load(name string) (*intvector.IntVector, error) {
	loc, err := r.MustGet(name)
	if err != nil {
		return nil, err
	}
	v, err := intvector.Load(loc)
	if err != nil {
		return nil, errors.Wrapf(err, "registry: load %s", name)
	}
	return v, nil
}

// Digest returns the xxh3 hash of the file backing name.
func (r *Registry) Digest(name string) (uint64, error) {
	loc, err := r.MustGet(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(loc)
	if err != nil {
		return 0, errors.Wrapf(err, "registry: open %s", name)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, bufio.NewReaderSize(f, 64*1024)); err != nil {
		return 0, errors.Wrapf(err, "registry: hash %s", name)
	}
	return h.Sum64(), nil
}
