package vfs

import (
	"weak"

	"vfsim/internal/btree"
)

// nameIndex is the C4-backed secondary index: every live node has an
// entry keyed by name, in a bucket of weak references so a detached,
// otherwise-unreferenced subtree is still collectible.
type nameIndex struct {
	tree *btree.BTree[string, *bucket]
}

type bucket struct {
	refs []weak.Pointer[Node]
}

func newNameIndex(m int) *nameIndex {
	tr, err := btree.New[string, *bucket](m, stringCmp)
	if err != nil {
		panic(err)
	}
	return &nameIndex{tree: tr}
}

func stringCmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// insert adds n to the bucket for its current name.
func (idx *nameIndex) insert(n *Node) {
	b, ok := idx.tree.Find(n.name)
	if !ok {
		b = &bucket{}
		idx.tree.Insert(n.name, b)
	}
	b.refs = append(b.refs, weak.Make(n))
}

// erase removes n's entry from the bucket for its current name.
func (idx *nameIndex) erase(n *Node) {
	b, ok := idx.tree.Find(n.name)
	if !ok {
		return
	}
	out := b.refs[:0]
	for _, r := range b.refs {
		if live := r.Value(); live != nil && live != n {
			out = append(out, r)
		}
	}
	b.refs = out
	if len(b.refs) == 0 {
		idx.tree.Erase(n.name)
	}
}

// eraseSubtree removes every descendant of root (root included) from
// the index, depth-first, before the caller detaches root from the
// graph.
func (idx *nameIndex) eraseSubtree(root *Node) {
	idx.erase(root)
	if root.kind != Directory {
		return
	}
	for _, s := range root.children {
		if s.File != nil {
			idx.eraseSubtree(s.File)
		}
		if s.Dir != nil {
			idx.eraseSubtree(s.Dir)
		}
	}
}

// findByName returns every currently live node named name, pruning
// dead weak references it discovers along the way.
func (idx *nameIndex) findByName(name string) []*Node {
	b, ok := idx.tree.Find(name)
	if !ok {
		return nil
	}
	var live []*Node
	out := b.refs[:0]
	for _, r := range b.refs {
		if n := r.Value(); n != nil {
			live = append(live, n)
			out = append(out, r)
		}
	}
	b.refs = out
	if len(b.refs) == 0 {
		idx.tree.Erase(name)
	}
	return live
}
