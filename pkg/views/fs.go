package views

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// DecodeFunc turns the raw contents of a view file into a module.
// name is the view identifier ("blog/Post").
type DecodeFunc[M any] func(name string, data []byte) (M, error)

// FSRegistry builds a Registry from every file below root whose extension is
// ext. Files are read and decoded only when their view is first loaded.
//
// A file "root/blog/Post.html" is registered as "./views/blog/Post.html".
func FSRegistry[M any](fsys fs.FS, root, ext string, decode DecodeFunc[M]) (Registry[M], error) {
	if ext == "" {
		ext = DefaultExtension
	}
	suffix := "." + ext
	root = path.Clean(root)

	reg := make(Registry[M])
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, suffix) {
			return nil
		}

		rel := strings.TrimPrefix(p, root+"/")
		if root == "." {
			rel = p
		}
		name := strings.TrimSuffix(rel, suffix)
		file := p
		reg[ViewPath(name, ext)] = func(context.Context) (M, error) {
			data, err := fs.ReadFile(fsys, file)
			if err != nil {
				var zero M
				return zero, err
			}
			return decode(name, data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan views in %s: %w", root, err)
	}
	return reg, nil
}
