package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cdlconvert/internal/cdl"
)

// CollectInputs expands paths into the list of files to convert. Files are
// kept as given, whatever their extension; directories are walked for files
// with a known extension. Hidden entries and the exclude directory are not
// descended into. Duplicates are dropped, first occurrence wins.
func CollectInputs(paths []string, exclude string) ([]string, error) {
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			exclude = abs
		}
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, cdl.Wrap(cdl.ErrIO, root, "stat", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				if path != root && exclude != "" {
					if abs, err := filepath.Abs(path); err == nil && abs == exclude {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if _, ok := cdl.FormatForPath(path); ok && entry.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, cdl.Wrap(cdl.ErrIO, root, "walk", err)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, strings.Join(paths, ", "))
	}
	return files, nil
}
