package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_AttachDetachDualSlot(t *testing.T) {
	t.Parallel()

	root := newDirNode("/", nil)
	file := newFileNode("note.txt", nil)
	dir := newDirNode("note.txt", nil)

	root.attach(file)
	root.attach(dir)

	f, ok := root.childOfKind("note.txt", File)
	assert.True(t, ok)
	assert.Same(t, file, f)

	d, ok := root.childOfKind("note.txt", Directory)
	assert.True(t, ok)
	assert.Same(t, dir, d)

	root.detach(file)
	_, ok = root.childOfKind("note.txt", File)
	assert.False(t, ok)
	_, ok = root.childOfKind("note.txt", Directory)
	assert.True(t, ok, "directory slot must survive the file slot's detach")
}

func TestNode_IsAncestorOf(t *testing.T) {
	t.Parallel()

	root := newDirNode("/", nil)
	a := newDirNode("a", root)
	root.attach(a)
	b := newDirNode("b", a)
	a.attach(b)

	assert.True(t, isAncestorOf(root, b))
	assert.True(t, isAncestorOf(a, b))
	assert.True(t, isAncestorOf(b, b))
	assert.False(t, isAncestorOf(b, a))
}

func TestNode_FullPath(t *testing.T) {
	t.Parallel()

	root := newDirNode("/", nil)
	a := newDirNode("a", root)
	root.attach(a)
	b := newFileNode("b.txt", a)
	a.attach(b)

	assert.Equal(t, "/", FullPath(root))
	assert.Equal(t, "/a", FullPath(a))
	assert.Equal(t, "/a/b.txt", FullPath(b))
}
