package routetree

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Module is the document layout of a route file:
//
//	routes:
//	  home:
//	    view: Home
//	    paths: {en: /home, fr: /accueil}
//	  blog:
//	    view: blog/Index
//	    paths: {en: /blog, fr: /blogue}
//	    children:
//	      post:
//	        view: blog/Post
//	        paths: {en: "{slug}", fr: "{slug}"}
type Module struct {
	Routes *Tree `yaml:"routes"`
}

// nodeDoc is the YAML shape of a Node.
type nodeDoc struct {
	View     string            `yaml:"view"`
	Paths    map[string]string `yaml:"paths"`
	Auth     bool              `yaml:"auth"`
	Props    map[string]any    `yaml:"props"`
	Children *Tree             `yaml:"children"`
}

// UnmarshalYAML decodes a mapping while preserving key order.
func (t *Tree) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: routes must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		key := strings.TrimSpace(keyNode.Value)
		if key == "" {
			return fmt.Errorf("line %d: empty route key", keyNode.Line)
		}
		if strings.Contains(key, ".") {
			return fmt.Errorf("line %d: route key %q must not contain '.'", keyNode.Line, key)
		}
		var n Node
		if err := value.Content[i+1].Decode(&n); err != nil {
			return fmt.Errorf("route %q: %w", key, err)
		}
		t.Set(key, &n)
	}
	return nil
}

// UnmarshalYAML decodes a single route.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var doc nodeDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	n.View = doc.View
	n.Paths = Localized(doc.Paths)
	n.Auth = doc.Auth
	n.Props = doc.Props
	if n.Props == nil {
		n.Props = map[string]any{}
	}
	n.Children = doc.Children
	return nil
}

// Parse decodes a route module. JSON documents are accepted as well.
func Parse(data []byte) (*Tree, error) {
	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Routes == nil {
		return NewTree(), nil
	}
	return m.Routes, nil
}

// IsRouteFile reports whether name has a route module extension.
func IsRouteFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadFile reads and parses a single route module.
func LoadFile(fsys fs.FS, name string) (*Tree, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return t, nil
}

// LoadDir reads every route module below dir. The result is keyed by file
// path and is meant to be passed to Merge.
func LoadDir(fsys fs.FS, dir string) (map[string]*Tree, error) {
	modules := make(map[string]*Tree)
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !IsRouteFile(p) {
			return nil
		}
		t, err := LoadFile(fsys, p)
		if err != nil {
			return err
		}
		modules[p] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return modules, nil
}

// Merge combines route modules in lexical order of their names. A key defined
// by a later module replaces the earlier node but keeps its original position.
func Merge(modules map[string]*Tree) *Tree {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	out := NewTree()
	for _, name := range names {
		modules[name].Each(func(key string, n *Node) bool {
			out.Set(key, n)
			return true
		})
	}
	return out
}
