// Package discover enumerates the files of a source tree that the
// generator should inspect.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Files walks root recursively and returns the absolute paths of every
// regular file whose base name equals filename or ends with suffix. When
// both filters are empty, every file matches. Directory walk order is
// whatever the filesystem yields; callers must not rely on it.
func Files(root, filename, suffix string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var matches []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case filename != "" && name == filename:
			matches = append(matches, path)
		case suffix != "" && strings.HasSuffix(name, suffix):
			matches = append(matches, path)
		case filename == "" && suffix == "":
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", abs, err)
	}
	return matches, nil
}
