package util

import (
	"errors"
	"io/fs"
	"os"
)

// FileExists reports whether path names an existing regular file. The
// read-side commands check this before sql.Open, which would otherwise
// create an empty database at a mistyped path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && info.Mode().IsRegular()
}
