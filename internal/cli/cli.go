// Package cli implements the interactive command-line front-end: a
// thin shell over *vfs.Vfs that holds no algorithmic content of its
// own.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"vfsim/internal/compress"
	"vfsim/internal/util"
	"vfsim/internal/vfs"
	"vfsim/internal/vfserr"
)

// CLI is the prompt loop. It holds no state of its own beyond the I/O
// handles; all namespace state lives in the wrapped *vfs.Vfs.
type CLI struct {
	vfs *vfs.Vfs
	in  *bufio.Scanner
	out io.Writer
	log util.Logger
}

// New wraps v with a read-eval-print loop over in/out. Each shell
// session is tagged with a fresh UUID so its log lines can be
// correlated independent of the process's other loggers.
func New(v *vfs.Vfs, in io.Reader, out io.Writer, log util.Logger) *CLI {
	session := log.With().Str("session", uuid.NewString()).Logger()
	return &CLI{vfs: v, in: bufio.NewScanner(in), out: out, log: session}
}

// Run reads commands until EOF, "exit", or "quit", printing the
// current directory before each prompt. It returns a non-zero exit
// status only on an unhandled fatal error reading input.
func (c *CLI) Run() int {
	for {
		fmt.Fprintf(c.out, "%s> ", c.vfs.Pwd())
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				fmt.Fprintf(c.out, "fatal: %v\n", err)
				return 1
			}
			fmt.Fprintln(c.out)
			return 0
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			c.log.Debug().Msg("exiting on user command")
			return 0
		}
		c.log.Debug().Str("line", line).Msg("dispatching command")
		c.dispatch(line)
	}
}

func (c *CLI) dispatch(line string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	var err error
	switch cmd {
	case "pwd":
		fmt.Fprintln(c.out, c.vfs.Pwd())
	case "ls":
		err = c.ls(args)
	case "tree":
		c.tree()
	case "cd":
		err = requireArgs(args, 1, func() error { return c.vfs.Cd(args[0]) })
	case "mkdir":
		err = requireArgs(args, 1, func() error { _, e := c.vfs.Mkdir(args[0]); return e })
	case "touch", "create":
		err = requireArgs(args, 1, func() error { _, e := c.vfs.CreateFile(args[0]); return e })
	case "rm":
		err = requireArgs(args, 1, func() error { return c.vfs.Rm(args[0]) })
	case "mv":
		err = requireArgs(args, 2, func() error { return c.vfs.Mv(args[0], args[1]) })
	case "cp":
		err = requireArgs(args, 2, func() error { _, e := c.vfs.Cp(args[0], args[1]); return e })
	case "rename":
		err = requireArgs(args, 2, func() error { return c.vfs.RenameNode(args[0], args[1]) })
	case "find":
		err = requireArgs(args, 1, func() error { c.find(args[0]); return nil })
	case "cat":
		err = requireArgs(args, 1, func() error { return c.cat(args[0]) })
	case "nano":
		err = requireArgs(args, 1, func() error { return c.nano(args[0]) })
	case "echo":
		err = c.echo(fields[1:])
	case "read":
		err = requireArgs(args, 1, func() error { return c.cat(args[0]) })
	case "compress":
		err = requireArgs(args, 1, func() error { return c.vfs.Compress(args[0], compress.AlgoLZWVarAll) })
	case "decompress":
		err = requireArgs(args, 1, func() error { return c.vfs.Decompress(args[0]) })
	case "savejson":
		err = requireArgs(args, 1, func() error { return c.vfs.SaveJson(args[0]) })
	case "help":
		c.help()
	default:
		fmt.Fprintf(c.out, "unknown command: %s (try \"help\")\n", cmd)
		return
	}

	if err != nil {
		c.printError(err)
	}
}

func requireArgs(args []string, n int, run func() error) error {
	if len(args) < n {
		return fmt.Errorf("wrong number of arguments")
	}
	return run()
}

func (c *CLI) printError(err error) {
	kind := "Error"
	for _, k := range []vfserr.Kind{
		vfserr.PathError, vfserr.InvalidArg, vfserr.RootError, vfserr.Conflict,
		vfserr.IOError, vfserr.OutOfRange, vfserr.Unsupported, vfserr.Corrupted, vfserr.AlreadyExists,
	} {
		if vfserr.Is(err, k) {
			kind = k.String()
			break
		}
	}
	fmt.Fprintf(c.out, "%s: %s\n", kind, err.Error())
}

func (c *CLI) ls(args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	names, err := c.listChildren(path)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(c.out, n)
	}
	return nil
}

// listChildren returns the sorted display names of path's children,
// annotating directories with a trailing '/'.
func (c *CLI) listChildren(path string) ([]string, error) {
	node, err := c.resolveAny(path)
	if err != nil {
		return nil, err
	}
	if node.Kind() != vfs.Directory {
		return []string{node.Name()}, nil
	}
	return childDisplayNames(node), nil
}

func (c *CLI) resolveAny(path string) (*vfs.Node, error) {
	return c.vfs.Resolve(path)
}

func (c *CLI) tree() {
	root, _ := c.vfs.Resolve("/")
	c.printTree(root, "")
}

func (c *CLI) printTree(n *vfs.Node, prefix string) {
	fmt.Fprintln(c.out, prefix+n.Name())
	if n.Kind() != vfs.Directory {
		return
	}
	for _, child := range vfs.ChildrenOf(n) {
		c.printTree(child, prefix+"  ")
	}
}

func (c *CLI) find(name string) {
	for _, n := range c.vfs.FindNodesByName(name) {
		fmt.Fprintln(c.out, vfs.FullPath(n))
	}
}

func (c *CLI) cat(path string) error {
	text, err := c.vfs.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, text)
	return nil
}

func (c *CLI) nano(path string) error {
	var lines []string
	for c.in.Scan() {
		line := c.in.Text()
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	if _, err := c.vfs.Resolve(path); err != nil {
		if _, err := c.vfs.CreateFile(path); err != nil {
			return err
		}
	}
	return c.vfs.WriteFile(path, strings.Join(lines, "\n"), false)
}

func (c *CLI) echo(fields []string) error {
	text, path, appendMode, ok := parseEcho(fields)
	if !ok {
		return fmt.Errorf("usage: echo <text...> > <path> | echo <text...> >> <path>")
	}
	if _, err := c.vfs.Resolve(path); err != nil {
		if _, err := c.vfs.CreateFile(path); err != nil {
			return err
		}
	}
	return c.vfs.WriteFile(path, text, appendMode)
}

// parseEcho splits "a b c > path" / "a b c >> path" into (text, path,
// append, ok).
func parseEcho(fields []string) (text, path string, appendMode, ok bool) {
	for i, f := range fields {
		if f == ">" || f == ">>" {
			if i+2 != len(fields) {
				return "", "", false, false
			}
			return strings.Join(fields[:i], " "), fields[i+1], f == ">>", true
		}
	}
	return "", "", false, false
}

func (c *CLI) help() {
	fmt.Fprint(c.out, `pwd
ls [path]
tree
cd <path>
mkdir <path>
touch <path>          (also spelled: create)
rm <path>
mv <src> <dstDir>
cp <src> <dst>
rename <path> <newName>
find <name>
cat <path>
nano <path>           (read lines from stdin until a line that is exactly ".")
echo <text...> > <path>
echo <text...> >> <path>
read <path>
compress <path>
decompress <path>
savejson <path>
help
exit | quit
`)
}

func childDisplayNames(n *vfs.Node) []string {
	var out []string
	for _, child := range vfs.ChildrenOf(n) {
		name := child.Name()
		if child.Kind() == vfs.Directory {
			name += "/"
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
