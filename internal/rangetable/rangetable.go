// Package rangetable holds the immutable, ordered collection of range
// descriptors every node routes against. A table is built once at bootstrap
// and each node gets its own identical copy, simulating a replicated system
// range table.
package rangetable

import (
	"fmt"
	"sort"

	"github.com/google/btree"

	"github.com/devrev/rangekv/internal/model"
)

const btreeDegree = 8

// Table answers "which range owns key K" via a floor search on StartKey.
// It is immutable after construction and safe for concurrent readers.
type Table struct {
	tree   *btree.BTreeG[model.RangeDescriptor]
	maxKey int
}

// New builds a table from descriptors and validates the partition
// invariants: every descriptor well-formed, intervals pairwise disjoint,
// and their union exactly [0, maxKey].
func New(descriptors []model.RangeDescriptor, maxKey int) (*Table, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("rangetable: no descriptors")
	}
	if maxKey <= 0 {
		return nil, fmt.Errorf("rangetable: max key must be positive, got %d", maxKey)
	}

	sorted := make([]model.RangeDescriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartKey < sorted[j].StartKey
	})

	for _, d := range sorted {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("rangetable: %w", err)
		}
	}

	if first := sorted[0]; first.StartKey != 0 {
		return nil, fmt.Errorf("rangetable: coverage gap before key %d", first.StartKey)
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.StartKey != prev.EndKey+1 {
			return nil, fmt.Errorf("rangetable: ranges %d and %d do not tile at key %d",
				prev.RangeID, cur.RangeID, cur.StartKey)
		}
	}
	if last := sorted[len(sorted)-1]; last.EndKey != maxKey {
		return nil, fmt.Errorf("rangetable: coverage ends at %d, want %d", last.EndKey, maxKey)
	}

	tree := btree.NewG(btreeDegree, func(a, b model.RangeDescriptor) bool {
		return a.StartKey < b.StartKey
	})
	for _, d := range sorted {
		tree.ReplaceOrInsert(d)
	}
	return &Table{tree: tree, maxKey: maxKey}, nil
}

// Lookup finds the descriptor whose interval contains key: the greatest
// StartKey at or below key, then an EndKey check. The second return is
// false when no range covers the key; given the coverage invariant that is
// an internal invariant violation, not a user error.
func (t *Table) Lookup(key int) (model.RangeDescriptor, bool) {
	var found model.RangeDescriptor
	var ok bool
	t.tree.DescendLessOrEqual(model.RangeDescriptor{StartKey: key}, func(d model.RangeDescriptor) bool {
		found, ok = d, true
		return false
	})
	if !ok || !found.Contains(key) {
		return model.RangeDescriptor{}, false
	}
	return found, true
}

// MaxKey returns the upper bound of the keyspace the table covers.
func (t *Table) MaxKey() int {
	return t.maxKey
}

// Len returns the number of ranges.
func (t *Table) Len() int {
	return t.tree.Len()
}

// Descriptors returns all descriptors ordered by StartKey.
func (t *Table) Descriptors() []model.RangeDescriptor {
	out := make([]model.RangeDescriptor, 0, t.tree.Len())
	t.tree.Ascend(func(d model.RangeDescriptor) bool {
		out = append(out, d)
		return true
	})
	return out
}
