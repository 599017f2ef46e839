package vfs

import (
	"strings"

	"vfsim/internal/buffer"
	"vfsim/internal/compress"
	"vfsim/internal/util"
	"vfsim/internal/vfserr"
)

// Clock supplies monotonic wall-clock seconds for node timestamps. It
// exists so tests can inject deterministic time instead of calling
// into the real clock.
type Clock func() int64

// Vfs is the externally visible state machine (C7): a namespace
// rooted at a single directory, a current-directory cursor, and a
// secondary name index kept coherent with every structural change.
type Vfs struct {
	root         *Node
	cwd          *Node
	index        *nameIndex
	streamWindow int
	clock        Clock
	log          util.Logger
}

// New constructs an empty VFS. branchingFactor parameterizes the name
// index's B*-tree; streamWindow is the buffered-stream window size
// used by content operations.
func New(branchingFactor, streamWindow int, clock Clock, log util.Logger) *Vfs {
	root := newDirNode("/", nil)
	v := &Vfs{
		root:         root,
		cwd:          root,
		index:        newNameIndex(branchingFactor),
		streamWindow: streamWindow,
		clock:        clock,
		log:          log,
	}
	v.index.insert(root)
	return v
}

func (v *Vfs) now() int64 {
	if v.clock == nil {
		return 0
	}
	return v.clock()
}

func isValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.Contains(name, "/")
}

// Pwd returns the absolute path of the current directory.
func (v *Vfs) Pwd() string { return FullPath(v.cwd) }

// Cd sets the current directory.
func (v *Vfs) Cd(path string) error {
	n, ok := resolve(v.root, v.cwd, path, PreferDirectory)
	if !ok {
		if _, existsAsFile := resolve(v.root, v.cwd, path, PreferFile); existsAsFile {
			return vfserr.New("cd", path, vfserr.InvalidArg)
		}
		return vfserr.New("cd", path, vfserr.PathError)
	}
	v.cwd = n
	return nil
}

// Mkdir creates a directory at path, auto-suffixing the name on
// collision with an existing directory sibling.
func (v *Vfs) Mkdir(path string) (*Node, error) {
	return v.create(path, Directory)
}

// CreateFile creates an empty file at path, auto-suffixing the name on
// collision with an existing file sibling.
func (v *Vfs) CreateFile(path string) (*Node, error) {
	return v.create(path, File)
}

func (v *Vfs) create(path string, kind Kind) (*Node, error) {
	parent, leaf, ok := resolveParent(v.root, v.cwd, path)
	if !ok {
		return nil, vfserr.New("create", path, vfserr.PathError)
	}
	if !isValidName(leaf) {
		return nil, vfserr.New("create", path, vfserr.InvalidArg)
	}

	name := v.makeUniqueName(parent, leaf, kind)

	var n *Node
	if kind == Directory {
		n = newDirNode(name, parent)
	} else {
		n = newFileNode(name, parent)
	}
	n.stats.CreatedAt = v.now()
	n.stats.ModifiedAt = v.now()

	parent.attach(n)
	v.index.insert(n)
	v.touch(parent)
	v.log.Debug().Str("path", path).Str("name", name).Str("kind", kind.String()).Msg("created node")
	return n, nil
}

// makeUniqueName returns leaf if it doesn't collide with an existing
// same-kind sibling, otherwise the smallest "<stem>(<k>)<ext>" that
// does not.
func (v *Vfs) makeUniqueName(parent *Node, leaf string, kind Kind) string {
	if _, exists := parent.childOfKind(leaf, kind); !exists {
		return leaf
	}
	stem, ext := splitStemExt(leaf, kind)
	for k := 1; ; k++ {
		candidate := stem + "(" + itoa(k) + ")" + ext
		if _, exists := parent.childOfKind(candidate, kind); !exists {
			return candidate
		}
	}
}

// splitStemExt splits a file name on its last '.', unless the name
// begins with '.'. Directories never carry an extension.
func splitStemExt(name string, kind Kind) (stem, ext string) {
	if kind == Directory {
		return name, ""
	}
	if strings.HasPrefix(name, ".") {
		return name, ""
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Rm removes the node at path and its entire subtree.
func (v *Vfs) Rm(path string) error {
	n, ok := resolve(v.root, v.cwd, path, Any)
	if !ok {
		return vfserr.New("rm", path, vfserr.PathError)
	}
	if n.IsRoot() {
		return vfserr.New("rm", path, vfserr.RootError)
	}
	v.detachSubtree(n)
	v.log.Debug().Str("path", path).Msg("removed subtree")
	return nil
}

// detachSubtree unindexes n's whole subtree before detaching n from
// its parent, so the index never holds an entry for a node no longer
// reachable from the root.
func (v *Vfs) detachSubtree(n *Node) {
	parent := n.parent
	v.index.eraseSubtree(n)
	if parent != nil {
		parent.detach(n)
		n.parent = nil
		v.touch(parent)
	}
}

// RenameNode renames the node at path in place. Renaming to the
// current name is a no-op that succeeds silently.
func (v *Vfs) RenameNode(path, newName string) error {
	n, ok := resolve(v.root, v.cwd, path, Any)
	if !ok {
		return vfserr.New("rename", path, vfserr.PathError)
	}
	if n.IsRoot() {
		return vfserr.New("rename", path, vfserr.RootError)
	}
	if !isValidName(newName) {
		return vfserr.New("rename", path, vfserr.InvalidArg)
	}
	if newName == n.name {
		return nil
	}
	parent := n.parent
	if _, exists := parent.childOfKind(newName, n.kind); exists {
		return vfserr.New("rename", path, vfserr.InvalidArg)
	}

	v.index.erase(n)
	parent.detach(n)
	n.name = newName
	parent.attach(n)
	v.index.insert(n)
	v.touch(parent)
	return nil
}

// Mv reparents src into directory dstDir.
func (v *Vfs) Mv(src, dstDir string) error {
	srcNode, ok := resolve(v.root, v.cwd, src, Any)
	if !ok {
		return vfserr.New("mv", src, vfserr.PathError)
	}
	if srcNode.IsRoot() {
		return vfserr.New("mv", src, vfserr.RootError)
	}
	dstNode, ok := resolve(v.root, v.cwd, dstDir, PreferDirectory)
	if !ok {
		return vfserr.New("mv", dstDir, vfserr.PathError)
	}
	if isAncestorOf(srcNode, dstNode) {
		return vfserr.New("mv", dstDir, vfserr.Conflict)
	}
	if _, exists := dstNode.childOfKind(srcNode.name, srcNode.kind); exists {
		return vfserr.New("mv", dstDir, vfserr.InvalidArg)
	}

	oldParent := srcNode.parent
	v.index.erase(srcNode)
	oldParent.detach(srcNode)
	dstNode.attach(srcNode)
	v.index.insert(srcNode)
	v.touch(oldParent)
	v.touch(dstNode)
	v.log.Debug().Str("src", src).Str("dstDir", dstDir).Msg("moved node")
	return nil
}

// Cp deep-copies src to dstPath. dstPath is resolved three ways, in
// order: if it names an existing directory, the copy lands inside it
// under src's own name (auto-suffixed on collision); if it names an
// existing file, that file is replaced in place; otherwise dstPath's
// parent/leaf are used as the copy's location, auto-suffixed on
// collision the same way create does.
func (v *Vfs) Cp(src, dstPath string) (*Node, error) {
	srcNode, ok := resolve(v.root, v.cwd, src, Any)
	if !ok {
		return nil, vfserr.New("cp", src, vfserr.PathError)
	}

	var dstParent *Node
	var leaf string
	var replace *Node

	if existingDir, ok := resolve(v.root, v.cwd, dstPath, PreferDirectory); ok {
		dstParent = existingDir
		leaf = srcNode.name
	} else if existingFile, ok := resolve(v.root, v.cwd, dstPath, PreferFile); ok {
		dstParent = existingFile.parent
		leaf = existingFile.name
		replace = existingFile
	} else {
		p, l, ok := resolveParent(v.root, v.cwd, dstPath)
		if !ok {
			return nil, vfserr.New("cp", dstPath, vfserr.PathError)
		}
		if !isValidName(l) {
			return nil, vfserr.New("cp", dstPath, vfserr.InvalidArg)
		}
		dstParent, leaf = p, l
	}

	if isAncestorOf(srcNode, dstParent) {
		return nil, vfserr.New("cp", dstPath, vfserr.Conflict)
	}

	if replace != nil {
		v.detachSubtree(replace)
	} else {
		leaf = v.makeUniqueName(dstParent, leaf, srcNode.kind)
	}

	clone := v.copyRec(srcNode, dstParent, leaf)
	dstParent.attach(clone)
	v.indexInsertRec(clone)
	v.touch(dstParent)
	v.log.Debug().Str("src", src).Str("dst", dstPath).Str("name", clone.name).Msg("copied node")
	return clone, nil
}

func (v *Vfs) copyRec(src, parent *Node, name string) *Node {
	var n *Node
	if src.kind == Directory {
		n = newDirNode(name, parent)
		for _, s := range src.children {
			if s.File != nil {
				child := v.copyRec(s.File, n, s.File.name)
				n.attach(child)
			}
			if s.Dir != nil {
				child := v.copyRec(s.Dir, n, s.Dir.name)
				n.attach(child)
			}
		}
	} else {
		n = newFileNode(name, parent)
		n.content.ReplaceAll(append([]byte(nil), src.content.Bytes()...))
	}
	n.stats = src.stats
	n.stats.CreatedAt = v.now()
	n.stats.ModifiedAt = v.now()
	return n
}

func (v *Vfs) indexInsertRec(n *Node) {
	v.index.insert(n)
	if n.kind != Directory {
		return
	}
	for _, s := range n.children {
		if s.File != nil {
			v.indexInsertRec(s.File)
		}
		if s.Dir != nil {
			v.indexInsertRec(s.Dir)
		}
	}
}

// WriteFile overwrites (or appends to) the file at path via a
// buffered stream over its content.
func (v *Vfs) WriteFile(path string, data string, appendMode bool) error {
	n, ok := resolve(v.root, v.cwd, path, PreferFile)
	if !ok {
		return vfserr.New("writeFile", path, vfserr.PathError)
	}
	if n.kind != File {
		return vfserr.New("writeFile", path, vfserr.InvalidArg)
	}

	s, err := buffer.NewStream(n.content, buffer.WriteOnly, v.streamWindow)
	if err != nil {
		return err
	}
	if err := s.Open(); err != nil {
		return err
	}
	if !appendMode {
		n.content.Truncate(0)
	}
	if _, err := s.Seek(n.content.Size()); err != nil {
		_ = s.Close()
		return err
	}
	if err := s.WriteString(data); err != nil {
		_ = s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	v.touchContent(n)
	return nil
}

// ReadFile returns the file's textual content, read through a
// buffered stream.
func (v *Vfs) ReadFile(path string) (string, error) {
	n, ok := resolve(v.root, v.cwd, path, PreferFile)
	if !ok {
		return "", vfserr.New("readFile", path, vfserr.PathError)
	}
	if n.kind != File {
		return "", vfserr.New("readFile", path, vfserr.InvalidArg)
	}

	s, err := buffer.NewStream(n.content, buffer.ReadOnly, v.streamWindow)
	if err != nil {
		return "", err
	}
	if err := s.Open(); err != nil {
		return "", err
	}
	defer s.Close()

	var out []byte
	chunk := make([]byte, v.streamWindow)
	for {
		k, err := s.Read(chunk)
		if err != nil {
			return "", err
		}
		if k == 0 {
			break
		}
		out = append(out, chunk[:k]...)
	}
	return string(out), nil
}

// Compress recursively compresses every file under path with algo,
// skipping files already compressed.
func (v *Vfs) Compress(path string, algo compress.Algo) error {
	n, ok := resolve(v.root, v.cwd, path, Any)
	if !ok {
		return vfserr.New("compress", path, vfserr.PathError)
	}
	v.walkFiles(n, func(f *Node) {
		if compress.IsCompressed(f.content.Bytes()) {
			return
		}
		out, err := compress.Compress(f.content.Bytes(), algo)
		if err != nil {
			return
		}
		f.content.ReplaceAll(out)
		v.touchContent(f)
	})
	return nil
}

// Decompress recursively decompresses every file under path, skipping
// files that are not compressed.
func (v *Vfs) Decompress(path string) error {
	n, ok := resolve(v.root, v.cwd, path, Any)
	if !ok {
		return vfserr.New("decompress", path, vfserr.PathError)
	}
	v.walkFiles(n, func(f *Node) {
		if !compress.IsCompressed(f.content.Bytes()) {
			return
		}
		out, err := compress.Decompress(f.content.Bytes())
		if err != nil {
			return
		}
		f.content.ReplaceAll(out)
		v.touchContent(f)
	})
	return nil
}

func (v *Vfs) walkFiles(n *Node, visit func(*Node)) {
	if n.kind == File {
		visit(n)
		return
	}
	for _, s := range n.children {
		if s.File != nil {
			v.walkFiles(s.File, visit)
		}
		if s.Dir != nil {
			v.walkFiles(s.Dir, visit)
		}
	}
}

// SaveJson serializes the tree (C8) into a file at jsonPath, creating
// it if absent.
func (v *Vfs) SaveJson(jsonPath string) error {
	text := Serialize(v.root)
	n, ok := resolve(v.root, v.cwd, jsonPath, PreferFile)
	if !ok {
		var err error
		n, err = v.CreateFile(jsonPath)
		if err != nil {
			return err
		}
	}
	if n.kind != File {
		return vfserr.New("saveJson", jsonPath, vfserr.InvalidArg)
	}
	n.content.ReplaceAll([]byte(text))
	v.touchContent(n)
	return nil
}

// FindNodesByName returns every currently live node named name.
func (v *Vfs) FindNodesByName(name string) []*Node {
	return v.index.findByName(name)
}

// Resolve exposes path resolution to external collaborators (the CLI)
// with Any preference, without granting them access to the graph's
// mutation methods.
func (v *Vfs) Resolve(path string) (*Node, error) {
	n, ok := resolve(v.root, v.cwd, path, Any)
	if !ok {
		return nil, vfserr.New("resolve", path, vfserr.PathError)
	}
	return n, nil
}

// ChildrenOf returns n's children (both dual-slot entries) sorted by
// name, files before directories when a name is shared. It is a
// read-only view for external collaborators such as the CLI's ls/tree.
func ChildrenOf(n *Node) []*Node {
	if n.kind != Directory {
		return nil
	}
	return sortedChildren(n)
}

func (v *Vfs) touch(n *Node) {
	if n != nil {
		n.stats.ModifiedAt = v.now()
	}
}

func (v *Vfs) touchContent(n *Node) {
	n.stats.ModifiedAt = v.now()
	n.stats.ByteSize = n.content.Size()
	n.stats.CharCount = len(n.content.Text())
}
