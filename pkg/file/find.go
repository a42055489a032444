package file

import (
	"os"
	"path/filepath"
	"time"
)

// FindOlderThan returns regular files under dir whose modification time is
// before cutoff. Subdirectories are walked recursively.
func FindOlderThan(dir string, cutoff time.Time) ([]string, error) {
	var staleFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo,
		err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.ModTime().Before(cutoff) {
			staleFiles = append(staleFiles, path)
		}
		return nil
	})

	return staleFiles, err
}
