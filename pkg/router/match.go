package router

import (
	"strings"

	"github.com/vango-dev/localeroute/pkg/routetree"
)

// FindRoute resolves uri against tree for lang. It never fails: when nothing
// matches, the synthetic not-found route is returned with NotFound set.
//
// Siblings are tried in tree order and the first match wins. A node whose
// template matches a prefix of uri followed by '/' hands the remainder to its
// children; a node with an empty template hands them the whole uri. If none
// of the children match, the search moves on to the next sibling.
func FindRoute(tree *routetree.Tree, uri, lang, parentPath string) routetree.Resolved {
	uri = strings.TrimPrefix(uri, "/")

	if res, ok := findIn(tree, uri, lang, parentPath); ok {
		return res
	}
	return routetree.Resolved{
		FullPath: uri,
		Node:     routetree.NotFoundNode(),
		Params:   map[string]string{},
		NotFound: true,
	}
}

func findIn(tree *routetree.Tree, uri, lang, parentPath string) (res routetree.Resolved, found bool) {
	tree.Each(func(key string, n *routetree.Node) bool {
		tmpl, ok := n.Path(lang)
		if !ok {
			return true
		}
		fullPath := routetree.JoinKey(parentPath, key)

		if params, ok := tmpl.Match(uri); ok {
			res = routetree.Resolved{FullPath: fullPath, Node: n, Params: params}
			found = true
			return false
		}

		if !n.HasChildren() {
			return true
		}

		rest, parentParams := uri, map[string]string{}
		if !tmpl.IsEmpty() {
			if rest, parentParams, ok = tmpl.MatchPrefix(uri); !ok {
				return true
			}
		}

		child, ok := findIn(n.Children, rest, lang, fullPath)
		if !ok {
			return true
		}
		child.Params = mergeParams(parentParams, child.Params)
		res, found = child, true
		return false
	})
	return res, found
}

// mergeParams overlays child on parent. Values captured deeper in the tree win.
func mergeParams(parent, child map[string]string) map[string]string {
	out := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}
