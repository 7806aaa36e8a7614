package output

import (
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
)

// statusColumn aligns write statuses within a directory listing.
const statusColumn = 24

// dirNode is one directory of the written manifest tree.
type dirNode struct {
	name  string
	dirs  map[string]*dirNode
	files []FileResult
}

func newDirNode(name string) *dirNode {
	return &dirNode{name: name, dirs: map[string]*dirNode{}}
}

func (d *dirNode) child(name string) *dirNode {
	c, ok := d.dirs[name]
	if !ok {
		c = newDirNode(name)
		d.dirs[name] = c
	}
	return c
}

// FileTree renders write results as a directory tree rooted at dir. Each
// file carries its write status; directories sort before files.
func FileTree(dir string, results []FileResult, styles *Styles) string {
	if len(results) == 0 {
		return ""
	}
	top := newDirNode(dir)
	for _, r := range results {
		parent, file := path.Split(r.Path)
		node := top
		for _, part := range strings.Split(strings.Trim(parent, "/"), "/") {
			if part != "" {
				node = node.child(part)
			}
		}
		node.files = append(node.files, FileResult{Path: file, Status: r.Status})
	}
	return top.render().RootStyle(styles.Bold).String()
}

func (d *dirNode) render() *tree.Tree {
	t := tree.Root(d.name + "/")

	names := make([]string, 0, len(d.dirs))
	for name := range d.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.Child(d.dirs[name].render())
	}

	sort.Slice(d.files, func(i, j int) bool { return d.files[i].Path < d.files[j].Path })
	for _, f := range d.files {
		pad := statusColumn - len(f.Path)
		if pad < 2 {
			pad = 2
		}
		t.Child(f.Path + strings.Repeat(" ", pad) + StatusStyle(f.Status).Render(f.Status))
	}
	return t
}
