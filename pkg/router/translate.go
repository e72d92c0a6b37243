package router

import (
	"sort"
	"strings"

	"github.com/vango-dev/localeroute/pkg/routetree"
)

// Translate converts uri, written in fromLang, into the equivalent path in
// toLang. Captured params are carried over and extra params override them.
//
// The result is always prefixed with "/{toLang}/". When the route cannot be
// resolved, or one of its levels has no template in toLang, the uri is
// returned under the new language unchanged.
func Translate(tree *routetree.Tree, uri, fromLang, toLang string, extra map[string]string) string {
	fallback := "/" + toLang + "/" + strings.TrimPrefix(uri, "/")

	res := FindRoute(tree, uri, fromLang, "")
	if res.NotFound {
		return fallback
	}

	chain, ok := tree.Lookup(res.FullPath)
	if !ok {
		return fallback
	}

	parts := make([]string, 0, len(chain))
	for _, n := range chain {
		tmpl, ok := n.Path(toLang)
		if !ok {
			return fallback
		}
		if s := tmpl.String(); s != "" {
			parts = append(parts, s)
		}
	}

	return "/" + toLang + "/" + substitute(strings.Join(parts, "/"), mergeParams(res.Params, extra))
}

// substitute replaces the first "{name}" placeholder of each param. Params
// are applied in sorted order so the output is deterministic.
func substitute(path string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path = strings.Replace(path, "{"+name+"}", params[name], 1)
	}
	return path
}
