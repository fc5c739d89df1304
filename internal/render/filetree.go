package render

import (
	"sort"
	"strings"

	m "gooze.dev/pkg/mureport/internal/model"
)

// Node is one level of the file tree: a folder when it has children, a file
// otherwise.
type Node struct {
	value    string
	path     m.Path
	children []*Node
}

// Value returns the node's file or folder name.
func (n *Node) Value() string {
	return n.value
}

// Path returns the full repository-relative path the node stands for.
func (n *Node) Path() m.Path {
	return n.path
}

// IsFolder reports whether the node has children.
func (n *Node) IsFolder() bool {
	return len(n.children) > 0
}

// Children returns the node's children.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) insert(value string, path m.Path) *Node {
	for _, child := range n.children {
		if child.value == value {
			return child
		}
	}

	child := &Node{value: value, path: path}
	n.children = append(n.children, child)

	return child
}

func (n *Node) sort() {
	sort.SliceStable(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}

		return a.value < b.value
	})

	for _, child := range n.children {
		child.sort()
	}
}

// FileTree is the folder hierarchy of all mutated source files.
type FileTree struct {
	root Node
}

// NewFileTree builds a sorted tree from slash-separated source paths.
// Duplicate segments merge; folders sort before files, then lexicographically.
func NewFileTree(paths []m.Path) *FileTree {
	tree := &FileTree{}

	for _, path := range paths {
		node := &tree.root
		segments := strings.Split(string(path), "/")

		prefix := ""
		for _, segment := range segments {
			if segment == "" {
				continue
			}

			if prefix == "" {
				prefix = segment
			} else {
				prefix = prefix + "/" + segment
			}

			node = node.insert(segment, m.Path(prefix))
		}
	}

	tree.root.sort()

	return tree
}

// Children returns the tree's top-level nodes.
func (t *FileTree) Children() []*Node {
	return t.root.children
}
