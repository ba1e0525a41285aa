package fu

import (
	"os"
	"path/filepath"
)

/*
ModelPath returns absolute path as is and resolves relative one into the user cache directory
*/
func ModelPath(s string) string {
	if filepath.IsAbs(s) {
		return s
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "go-ml", "Models", s)
}
