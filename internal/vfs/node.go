// Package vfs implements the node graph (C5), path resolver (C6), the
// VFS state machine (C7), and the snapshot serializer (C8).
package vfs

import "vfsim/internal/buffer"

// Kind distinguishes a File node from a Directory node. Immutable
// after creation.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "folder"
}

// Stats holds the file metadata recomputed on every content change.
type Stats struct {
	CreatedAt  int64
	ModifiedAt int64
	ByteSize   int
	CharCount  int
}

// childSlot is a directory's per-name entry: a directory may hold both
// a file and a directory sharing the same name, so each slot carries
// an independent optional pointer for each kind.
type childSlot struct {
	File *Node
	Dir  *Node
}

// Node is a unit of the namespace: a file or a directory, with a
// strong back-reference to its parent. Go's tracing garbage collector
// safely reclaims the parent/child cycle once a subtree is detached
// and no external holder (e.g. the name index) remains, so unlike the
// weak-ptr-parent original there is no need to weaken this edge.
type Node struct {
	name     string
	kind     Kind
	parent   *Node
	children map[string]*childSlot // directory only
	content  *buffer.Buffer        // file only
	stats    Stats
}

func newDirNode(name string, parent *Node) *Node {
	return &Node{name: name, kind: Directory, parent: parent, children: make(map[string]*childSlot)}
}

func newFileNode(name string, parent *Node) *Node {
	return &Node{name: name, kind: File, parent: parent, content: buffer.New()}
}

// Name returns the node's current name.
func (n *Node) Name() string { return n.name }

// Kind returns File or Directory.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns the owning directory, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Stats returns the node's current metadata.
func (n *Node) Stats() Stats { return n.stats }

// Content returns the file's byte buffer. Nil for directories.
func (n *Node) Content() *buffer.Buffer { return n.content }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// slot returns the childSlot at name, creating it if absent. Only
// valid on a directory.
func (n *Node) slot(name string) *childSlot {
	s, ok := n.children[name]
	if !ok {
		s = &childSlot{}
		n.children[name] = s
	}
	return s
}

// getSlot returns the childSlot at name without creating it.
func (n *Node) getSlot(name string) (*childSlot, bool) {
	s, ok := n.children[name]
	return s, ok
}

// childOfKind returns the child of the given kind at name, if any.
func (n *Node) childOfKind(name string, kind Kind) (*Node, bool) {
	s, ok := n.children[name]
	if !ok {
		return nil, false
	}
	if kind == File {
		return s.File, s.File != nil
	}
	return s.Dir, s.Dir != nil
}

// attach places child into this directory's slot matching its kind.
func (n *Node) attach(child *Node) {
	s := n.slot(child.name)
	if child.kind == File {
		s.File = child
	} else {
		s.Dir = child
	}
	child.parent = n
}

// detach removes child from this directory's slot matching its kind.
func (n *Node) detach(child *Node) {
	s, ok := n.children[child.name]
	if !ok {
		return
	}
	if child.kind == File {
		s.File = nil
	} else {
		s.Dir = nil
	}
	if s.File == nil && s.Dir == nil {
		delete(n.children, child.name)
	}
}

// isAncestorOf reports whether n is an ancestor of (or equal to)
// candidate, walking candidate's parent chain.
func isAncestorOf(n, candidate *Node) bool {
	for cur := candidate; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// FullPath returns the absolute path of n by walking parent links to
// the root.
func FullPath(n *Node) string {
	if n == nil {
		return "/"
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	if len(parts) == 1 && parts[0] == "/" {
		return "/"
	}
	out := ""
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "/" {
			continue
		}
		out += "/" + p
	}
	if out == "" {
		out = "/"
	}
	return out
}
