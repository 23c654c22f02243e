// Package merkle builds binary hash trees over an ordered list of leaf hashes.
//
// Parent nodes hash the concatenation of their children's hex digests
// (left||right as text). A trailing node without a sibling is promoted to the
// next level unchanged rather than duplicated, so a single-leaf tree has the
// leaf itself as its root.
package merkle

import (
	"errors"
	"fmt"

	"provenance-ledger/pkg/canonical"
)

// ErrNoLeaves is returned when a tree is requested over an empty list.
var ErrNoLeaves = errors.New("merkle: cannot build tree with no leaves")

// Promoted marks a proof level where the node had no sibling and moved up unchanged.
const Promoted = ""

// Tree holds every level of the tree, leaves first and the root level last.
type Tree struct {
	levels [][]string
}

// New builds a tree from leaf hashes in the order given. Order matters.
func New(leaves []string) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	level := make([]string, len(leaves))
	copy(level, leaves)

	t := Tree{levels: [][]string{level}}
	for len(level) > 1 {
		level = nextLevel(level)
		t.levels = append(t.levels, level)
	}

	return &t, nil
}

// FromValues canonical-hashes each value to form the leaves of a new tree.
func FromValues[T any](values []T) (*Tree, error) {
	if len(values) == 0 {
		return nil, ErrNoLeaves
	}

	leaves := make([]string, len(values))
	for i, v := range values {
		h, err := canonical.Hash(v)
		if err != nil {
			return nil, fmt.Errorf("merkle: hashing leaf %d: %w", i, err)
		}
		leaves[i] = h
	}

	return New(leaves)
}

// Root returns the single hash at the top of the tree.
func (t *Tree) Root() string {
	return t.levels[len(t.levels)-1][0]
}

// Leaves returns a copy of the leaf hashes.
func (t *Tree) Leaves() []string {
	out := make([]string, len(t.levels[0]))
	copy(out, t.levels[0])
	return out
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Proof returns the sibling hash at each level from the leaf up to the root.
// Levels where the node was promoted carry the Promoted marker so the proof
// always has Depth() entries and the index halves once per entry.
func (t *Tree) Proof(index int) ([]string, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range [0,%d)", index, len(t.levels[0]))
	}

	proof := make([]string, 0, t.Depth())
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		} else {
			proof = append(proof, Promoted)
		}
		index /= 2
	}

	return proof, nil
}

// Verify recomputes the root from a leaf and its proof. The parity of index at
// each level decides whether the sibling goes on the left or the right.
// A Promoted entry is only legal for an even index (the unpaired last node).
func Verify(leaf string, proof []string, root string, index int) bool {
	if index < 0 {
		return false
	}

	current := leaf
	for _, sibling := range proof {
		switch {
		case sibling == Promoted:
			if index%2 != 0 {
				return false
			}
		case index%2 == 0:
			current = canonical.HashString(current + sibling)
		default:
			current = canonical.HashString(sibling + current)
		}
		index /= 2
	}

	return index == 0 && current == root
}

// Root is a convenience that builds a tree and returns only its root.
func Root(leaves []string) (string, error) {
	t, err := New(leaves)
	if err != nil {
		return "", err
	}
	return t.Root(), nil
}

// nextLevel pairs adjacent nodes; an unpaired trailing node is carried up as is.
func nextLevel(level []string) []string {
	next := make([]string, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 == len(level) {
			next = append(next, level[i])
			continue
		}
		next = append(next, canonical.HashString(level[i]+level[i+1]))
	}
	return next
}
