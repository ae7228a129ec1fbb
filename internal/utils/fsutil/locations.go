package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/deploymenttheory/go-flowforge/internal/utils/osutil"
)

// GetHomeDir returns the user's home directory
func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}

// GetConfigDir returns the per-user configuration directory for the application
func GetConfigDir(appName string) (string, error) {
	// In development mode, use a local config directory
	if osutil.IsDevEnvironment() {
		return "config", nil
	}

	home, err := GetHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/appName
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		// XDG Base Directory specification
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName), nil
	}
}

// GetSystemConfigDir returns the system-wide configuration directory
func GetSystemConfigDir(appName string) (string, error) {
	if osutil.IsDevEnvironment() {
		return "config", nil
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join("/Library", "Application Support", appName), nil
	default:
		return filepath.Join("/etc", appName), nil
	}
}

// GetLogDir returns the log directory. envVar, when set in the environment,
// overrides the local "logs" directory.
func GetLogDir(envVar string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}
	return "logs"
}
