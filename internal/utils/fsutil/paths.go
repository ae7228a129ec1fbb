package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// GetDir returns the directory portion of path
func GetDir(path string) string {
	return filepath.Dir(path)
}

// ExpandTilde expands a leading ~ to the user's home directory. HOME wins
// over the account database so tests and sandboxes can redirect it.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home := os.Getenv("HOME")
	if home == "" {
		u, err := user.Current()
		if err != nil {
			return "", err
		}
		home = u.HomeDir
	}

	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// ExpandAndNormalizePath expands ~, makes the path absolute and cleans it.
// Any failure returns the input unchanged.
func ExpandAndNormalizePath(path string) string {
	if path == "" {
		return path
	}
	expanded, err := ExpandTilde(path)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return expanded
	}
	return filepath.Clean(abs)
}
