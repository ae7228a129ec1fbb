package fsutil

import (
	"os"
)

// PathExists reports whether anything (file, directory, link target) exists at path.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDirIfNotExists creates a directory with standard permissions if it doesn't exist
func CreateDirIfNotExists(path string) error {
	return WithPathLock(path, func() error {
		return os.MkdirAll(path, 0o755)
	})
}

// ReadFile reads an entire file into memory
func ReadFile(path string) ([]byte, error) {
	mu := GetPathMutex(path)
	mu.Lock()
	defer mu.Unlock()

	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating the parent directory if necessary
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := CreateDirIfNotExists(GetDir(path)); err != nil {
		return err
	}
	return WithPathLock(path, func() error {
		return os.WriteFile(path, data, perm)
	})
}
