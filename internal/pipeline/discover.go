package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/mediainfo/internal/classify"
)

// Discover walks root, collects files whose extension classifies to a
// category, prunes hidden directories, and returns the paths sorted
// lexicographically for a deterministic order. A root that is a regular
// file is returned as is when its extension is supported.
func Discover(root string) ([]string, error) {
	exts := classify.Extensions()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
