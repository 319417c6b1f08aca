// Package index provides the ordered file index used by snapshots: a map from
// relative path to a value that always iterates in ascending key order.
package index

import (
	"github.com/google/btree"
)

// degree of the underlying B-tree. Traversal and lookups are iterative and
// tree height stays logarithmic in the number of keys.
const degree = 32

type entry[V any] struct {
	key   string
	value V
}

func less[V any](a, b entry[V]) bool {
	// Go string comparison is byte-wise, which gives byte-lexicographic order.
	return a.key < b.key
}

// Index is an ordered associative container keyed by string. Keys are unique;
// inserting an existing key overwrites its value. There is no delete.
//
// The zero value is an empty index ready to use. Index is not safe for
// concurrent mutation. Once fully built it may be read from multiple
// goroutines.
type Index[V any] struct {
	tree *btree.BTreeG[entry[V]]
}

func newTree[V any]() *btree.BTreeG[entry[V]] {
	return btree.NewG[entry[V]](degree, less[V])
}

// New returns an empty index.
func New[V any]() *Index[V] {
	return &Index[V]{tree: newTree[V]()}
}

// empty reports whether ix has no tree yet: a nil index or the zero value.
func (ix *Index[V]) empty() bool {
	return ix == nil || ix.tree == nil
}

// Insert stores value under key. It reports whether an existing value was
// replaced, in which case the size is unchanged.
func (ix *Index[V]) Insert(key string, value V) (replaced bool) {
	if ix.tree == nil {
		ix.tree = newTree[V]()
	}
	_, replaced = ix.tree.ReplaceOrInsert(entry[V]{key: key, value: value})
	return replaced
}

// Search returns the value stored under key.
func (ix *Index[V]) Search(key string) (V, bool) {
	if ix.empty() {
		var zero V
		return zero, false
	}
	e, ok := ix.tree.Get(entry[V]{key: key})
	return e.value, ok
}

// Contains reports whether key is present.
func (ix *Index[V]) Contains(key string) bool {
	_, ok := ix.Search(key)
	return ok
}

// Walk calls visit for every key/value pair in ascending key order. visit must
// not modify the index.
func (ix *Index[V]) Walk(visit func(key string, value V)) {
	if ix.empty() {
		return
	}
	ix.tree.Ascend(func(e entry[V]) bool {
		visit(e.key, e.value)
		return true
	})
}

// WalkWhile is Walk with early termination: iteration stops once visit
// returns false.
func (ix *Index[V]) WalkWhile(visit func(key string, value V) bool) {
	if ix.empty() {
		return
	}
	ix.tree.Ascend(func(e entry[V]) bool {
		return visit(e.key, e.value)
	})
}

// Keys returns all keys in ascending order.
func (ix *Index[V]) Keys() []string {
	keys := make([]string, 0, ix.Len())
	ix.Walk(func(key string, _ V) {
		keys = append(keys, key)
	})
	return keys
}

// Values returns all values in ascending key order.
func (ix *Index[V]) Values() []V {
	values := make([]V, 0, ix.Len())
	ix.Walk(func(_ string, value V) {
		values = append(values, value)
	})
	return values
}

// Len returns the number of keys.
func (ix *Index[V]) Len() int {
	if ix.empty() {
		return 0
	}
	return ix.tree.Len()
}

// IsEmpty reports whether the index holds no keys.
func (ix *Index[V]) IsEmpty() bool {
	return ix.Len() == 0
}
