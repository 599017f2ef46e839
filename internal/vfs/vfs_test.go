package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vfsim/internal/compress"
	"vfsim/internal/util"
	"vfsim/internal/vfserr"
)

func newTestVfs() *Vfs {
	var tick int64
	clock := func() int64 { tick++; return tick }
	return New(7, 64, clock, util.GetLogger("test"))
}

// S3: mkdir("/a"); mkdir("/a/b"); createFile("/a/b/c.txt");
// writeFile(..., "hello", append=false); readFile(...) == "hello".
func TestVfs_ScenarioS3(t *testing.T) {
	t.Parallel()

	v := newTestVfs()

	_, err := v.Mkdir("/a")
	require.NoError(t, err)
	_, err = v.Mkdir("/a/b")
	require.NoError(t, err)
	_, err = v.CreateFile("/a/b/c.txt")
	require.NoError(t, err)

	require.NoError(t, v.WriteFile("/a/b/c.txt", "hello", false))

	got, err := v.ReadFile("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

// S4: mv("/a", "/a/b") fails with Conflict; the tree shape is
// unchanged.
func TestVfs_ScenarioS4(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/a")
	require.NoError(t, err)
	_, err = v.Mkdir("/a/b")
	require.NoError(t, err)

	err = v.Mv("/a", "/a/b")
	require.Error(t, err)
	assert.True(t, vfserr.Is(err, vfserr.Conflict))

	n, ok := resolve(v.root, v.cwd, "/a/b", PreferDirectory)
	require.True(t, ok)
	assert.Equal(t, "b", n.name)
}

// S5: compression round-trip of a literal string with ALL produces a
// self-describing buffer that decompresses back to the original.
func TestVfs_ScenarioS5(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.CreateFile("/note.txt")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("/note.txt", "TOBEORNOTTOBEORTOBEORNOT", false))

	require.NoError(t, v.Compress("/note.txt", compress.AlgoLZWVarAll))

	n, ok := resolve(v.root, v.cwd, "/note.txt", PreferFile)
	require.True(t, ok)
	raw := n.content.Bytes()
	require.True(t, compress.IsCompressed(raw))
	assert.Equal(t, byte('C'), raw[0])
	assert.Equal(t, byte('M'), raw[1])
	assert.Equal(t, byte('P'), raw[2])
	assert.Equal(t, byte(3), raw[3])

	require.NoError(t, v.Decompress("/note.txt"))
	got, err := v.ReadFile("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "TOBEORNOTTOBEORTOBEORNOT", got)
}

// S6: createFile("/note.txt") twice yields /note.txt and
// /note(1).txt; mkdir("/note.txt") further creates a same-named
// directory sharing the dual slot.
func TestVfs_ScenarioS6(t *testing.T) {
	t.Parallel()

	v := newTestVfs()

	first, err := v.CreateFile("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "note.txt", first.name)

	second, err := v.CreateFile("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "note(1).txt", second.name)

	dir, err := v.Mkdir("/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "note.txt", dir.name)
	assert.Equal(t, Directory, dir.kind)

	n, ok := resolve(v.root, v.cwd, "/note.txt/", PreferDirectory)
	require.True(t, ok)
	assert.Same(t, dir, n)
}

func TestVfs_RmRoot_FailsWithRootError(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	err := v.Rm("/")
	require.Error(t, err)
	assert.True(t, vfserr.Is(err, vfserr.RootError))
}

func TestVfs_RenameToSameName_IsNoOp(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/a")
	require.NoError(t, err)

	err = v.RenameNode("/a", "a")
	assert.NoError(t, err)
}

func TestVfs_FindNodesByName_TracksLiveNodesAcrossRemoval(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.CreateFile("/x.txt")
	require.NoError(t, err)
	_, err = v.Mkdir("/sub")
	require.NoError(t, err)
	_, err = v.CreateFile("/sub/x.txt")
	require.NoError(t, err)

	found := v.FindNodesByName("x.txt")
	assert.Len(t, found, 2)

	require.NoError(t, v.Rm("/sub"))
	found = v.FindNodesByName("x.txt")
	assert.Len(t, found, 1)
}

func TestVfs_CpDeepCopiesSubtree(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/a")
	require.NoError(t, err)
	_, err = v.CreateFile("/a/f.txt")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("/a/f.txt", "payload", false))

	clone, err := v.Cp("/a", "/acopy")
	require.NoError(t, err)
	assert.Equal(t, "acopy", clone.name)

	got, err := v.ReadFile("/acopy/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	original, err := v.ReadFile("/a/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", original)
}

func TestVfs_CpIntoExistingDirectory_LandsUnderSourceName(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.CreateFile("/f.txt")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("/f.txt", "payload", false))
	_, err = v.Mkdir("/dest")
	require.NoError(t, err)

	clone, err := v.Cp("/f.txt", "/dest")
	require.NoError(t, err)
	assert.Equal(t, "f.txt", clone.name)
	assert.Same(t, clone.parent, mustResolveDir(t, v, "/dest"))

	got, err := v.ReadFile("/dest/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	_, err = v.ReadFile("/f.txt")
	require.NoError(t, err, "source must be left intact")
}

func TestVfs_CpIntoExistingDirectory_AutoSuffixesOnCollision(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.CreateFile("/f.txt")
	require.NoError(t, err)
	_, err = v.Mkdir("/dest")
	require.NoError(t, err)
	_, err = v.CreateFile("/dest/f.txt")
	require.NoError(t, err)

	clone, err := v.Cp("/f.txt", "/dest")
	require.NoError(t, err)
	assert.Equal(t, "f(1).txt", clone.name)
}

func TestVfs_CpOntoExistingFile_ReplacesIt(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.CreateFile("/a.txt")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("/a.txt", "new", false))
	_, err = v.CreateFile("/b.txt")
	require.NoError(t, err)
	require.NoError(t, v.WriteFile("/b.txt", "stale", false))

	clone, err := v.Cp("/a.txt", "/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", clone.name)

	got, err := v.ReadFile("/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	found := v.FindNodesByName("b.txt")
	assert.Len(t, found, 1, "the replaced node must no longer be reachable through the index")
}

func TestVfs_CpIntoOwnDescendant_FailsWithConflict(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/a")
	require.NoError(t, err)
	_, err = v.Mkdir("/a/b")
	require.NoError(t, err)

	_, err = v.Cp("/a", "/a/b")
	require.Error(t, err)
	assert.True(t, vfserr.Is(err, vfserr.Conflict))
}

func mustResolveDir(t *testing.T, v *Vfs, path string) *Node {
	t.Helper()
	n, ok := resolve(v.root, v.cwd, path, PreferDirectory)
	require.True(t, ok)
	return n
}

func TestVfs_MkdirMissingParent_FailsWithPathError(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/missing/child")
	require.Error(t, err)
	assert.True(t, vfserr.Is(err, vfserr.PathError))
}

func TestVfs_SaveJsonRoundTrip(t *testing.T) {
	t.Parallel()

	v := newTestVfs()
	_, err := v.Mkdir("/a")
	require.NoError(t, err)
	_, err = v.CreateFile("/a/f.txt")
	require.NoError(t, err)

	require.NoError(t, v.SaveJson("/snapshot.txt"))

	got, err := v.ReadFile("/snapshot.txt")
	require.NoError(t, err)
	assert.Contains(t, got, `"name": "a"`)
	assert.Contains(t, got, `"name": "f.txt"`)
	assert.Contains(t, got, `"type": "folder"`)
	assert.Contains(t, got, `"type": "file"`)
}
