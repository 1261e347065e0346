// Package store implements the per-node ordered key-value map, the unit of
// state each replica mutates. It simulates the ordered storage engine a real
// node would sit on top of.
package store

import (
	"github.com/google/btree"

	"github.com/devrev/rangekv/internal/errors"
)

const btreeDegree = 16

// Entry is a single key-value pair.
type Entry struct {
	Key   int
	Value int
}

// Store is an ordered key-value map. It is not safe for concurrent use: a
// store is owned by exactly one node and mutated only from that node's
// apply path.
type Store struct {
	tree *btree.BTreeG[Entry]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tree: btree.NewG(btreeDegree, func(a, b Entry) bool {
			return a.Key < b.Key
		}),
	}
}

// Create inserts a new key. It fails with AlreadyExists if the key is
// present and leaves the store unchanged.
func (s *Store) Create(key, value int) error {
	if _, ok := s.tree.Get(Entry{Key: key}); ok {
		return errors.AlreadyExists(key)
	}
	s.tree.ReplaceOrInsert(Entry{Key: key, Value: value})
	return nil
}

// Read returns the value for key, or KeyNotFound.
func (s *Store) Read(key int) (int, error) {
	e, ok := s.tree.Get(Entry{Key: key})
	if !ok {
		return 0, errors.KeyNotFound(key)
	}
	return e.Value, nil
}

// Update overwrites the value of an existing key. It fails with KeyNotFound
// if the key is absent and leaves the store unchanged.
func (s *Store) Update(key, value int) error {
	if _, ok := s.tree.Get(Entry{Key: key}); !ok {
		return errors.KeyNotFound(key)
	}
	s.tree.ReplaceOrInsert(Entry{Key: key, Value: value})
	return nil
}

// Delete removes an existing key. It fails with KeyNotFound if the key is
// absent.
func (s *Store) Delete(key int) error {
	if _, ok := s.tree.Delete(Entry{Key: key}); !ok {
		return errors.KeyNotFound(key)
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key int) bool {
	_, ok := s.tree.Get(Entry{Key: key})
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return s.tree.Len()
}

// Entries returns all entries in key order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, s.tree.Len())
	s.tree.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}
