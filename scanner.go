package gymserver

import (
	"os"
	"path/filepath"
	"strings"
)

// ListImages returns the image files inside a directory, filtered by the
// extension allow-list. The result reflects the directory contents at call
// time; nothing is cached and the ordering is filesystem-dependent, so
// callers impose their own ordering when they need one.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}
