// Package discovery enumerates candidate image files for batch processing
// and watching. Enumeration is deterministic: identical directory contents
// always yield the identical, path-sorted sequence.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathNotFoundError reports a root path that does not exist.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// NotADirectoryError reports a file path given to a directory-only
// operation, such as recursive processing or watching.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Path)
}

// imageExtensions are the accepted file extensions, matched case-insensitively.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover returns the image files under root, sorted by path.
//
// With recursive set, subdirectories are walked; symlinked directories are
// not followed, so self-referential links cannot loop the walk. Without
// it, only root's immediate entries are considered.
//
// A missing root fails with *PathNotFoundError; a root that is not a
// directory fails with *NotADirectoryError.
func Discover(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PathNotFoundError{Path: root}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: root}
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subdirectories are skipped, not fatal.
				if path != root {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if IsImageFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if IsImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}
