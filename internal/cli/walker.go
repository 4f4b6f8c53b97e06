package cli

import (
	"context"
	"io/fs"
	"path/filepath"
)

// skipDirs are directory names never descended into during discovery.
// node_modules in particular would otherwise contribute thousands of
// vendored package.json files that belong to no subproject of the repo.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"target":       true,
	"dist":         true,
	"build":        true,
}

// fsTargets walks a directory tree and lists every regular file, feeding
// subproject discovery.
type fsTargets struct {
	root string
}

func newFSTargets(root string) fsTargets {
	return fsTargets{root: root}
}

func (t fsTargets) ListTargets(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != t.root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
