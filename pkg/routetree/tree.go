package routetree

import "strings"

// NotFoundView is the view identifier of the synthetic not-found route.
const NotFoundView = "errors/404"

// Node is a single route: a view identifier plus one path template per language.
type Node struct {
	// View is the logical view identifier (e.g., "blog/Post").
	View string

	// Paths maps a language code to the route's template in that language.
	Paths map[string]Template

	// Auth marks the route as requiring an authenticated user.
	Auth bool

	// Props are static properties handed to the view.
	Props map[string]any

	// Children are nested routes whose templates are relative to this one.
	Children *Tree
}

// Path returns the template for lang.
func (n *Node) Path(lang string) (Template, bool) {
	if n == nil || n.Paths == nil {
		return Template{}, false
	}
	t, ok := n.Paths[lang]
	return t, ok
}

// HasChildren reports whether the node has at least one child route.
func (n *Node) HasChildren() bool {
	return n != nil && n.Children.Len() > 0
}

// Localized builds a Paths map from raw templates.
func Localized(raw map[string]string) map[string]Template {
	out := make(map[string]Template, len(raw))
	for lang, tmpl := range raw {
		out[lang] = ParseTemplate(tmpl)
	}
	return out
}

// NotFoundNode returns a fresh copy of the synthetic not-found node.
func NotFoundNode() *Node {
	return &Node{
		View:  NotFoundView,
		Paths: map[string]Template{},
		Props: map[string]any{},
	}
}

// Tree is an ordered mapping of route keys to nodes.
// Insertion order is match priority among siblings.
type Tree struct {
	keys  []string
	nodes map[string]*Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Set adds a node under key. Replacing an existing key keeps its position.
func (t *Tree) Set(key string, n *Node) {
	if t.nodes == nil {
		t.nodes = make(map[string]*Node)
	}
	if _, exists := t.nodes[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.nodes[key] = n
}

// Get returns the node stored under key.
func (t *Tree) Get(key string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.nodes[key]
	return n, ok
}

// Len returns the number of direct entries. A nil tree is empty.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Each calls fn for every direct entry in order until fn returns false.
func (t *Tree) Each(fn func(key string, n *Node) bool) {
	if t == nil {
		return
	}
	for _, key := range t.keys {
		if !fn(key, t.nodes[key]) {
			return
		}
	}
}

// Lookup follows a dotted key path ("blog.post") from the root and returns
// the chain of nodes visited, root first.
func (t *Tree) Lookup(fullPath string) ([]*Node, bool) {
	if fullPath == "" {
		return nil, false
	}
	parts := strings.Split(fullPath, ".")
	chain := make([]*Node, 0, len(parts))
	level := t
	for _, part := range parts {
		n, ok := level.Get(part)
		if !ok {
			return nil, false
		}
		chain = append(chain, n)
		level = n.Children
	}
	return chain, true
}

// Walk visits every node depth-first in insertion order.
// Returning an error from fn stops the walk.
func (t *Tree) Walk(fn func(fullPath string, n *Node, depth int) error) error {
	return t.walk("", 0, fn)
}

func (t *Tree) walk(parent string, depth int, fn func(string, *Node, int) error) error {
	if t == nil {
		return nil
	}
	for _, key := range t.keys {
		n := t.nodes[key]
		fullPath := JoinKey(parent, key)
		if err := fn(fullPath, n, depth); err != nil {
			return err
		}
		if err := n.Children.walk(fullPath, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// JoinKey appends key to a dotted parent path.
func JoinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// Resolved is the result of looking up a URI in a tree.
type Resolved struct {
	// FullPath is the dotted key path from the root to the matched node.
	FullPath string

	// Node is the matched route (the synthetic not-found node on a miss).
	Node *Node

	// Params holds the values captured from placeholders.
	Params map[string]string

	// NotFound is set when no route matched.
	NotFound bool
}
