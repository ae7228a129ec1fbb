package osutil

import (
	"os"
	"runtime"
)

// OS type constants
const (
	Windows = "windows"
	MacOS   = "darwin"
	Linux   = "linux"
)

// GetOSType returns the current operating system type
func GetOSType() string {
	return runtime.GOOS
}

// IsMacOS returns true if running on macOS (Darwin)
func IsMacOS() bool {
	return GetOSType() == MacOS
}

// IsDevEnvironment checks if the application is running in a development environment
// based on environment variables
func IsDevEnvironment() bool {
	return os.Getenv("FLOWFORGE_ENV") == "development" ||
		os.Getenv("FLOWFORGE_DEV") == "true" ||
		os.Getenv("DEV") == "true"
}

// IsRunningInPipeline returns true if running in a CI/CD pipeline environment
func IsRunningInPipeline() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("PIPELINE") == "true" ||
		os.Getenv("GITHUB_ACTIONS") == "true" ||
		os.Getenv("JENKINS_URL") != ""
}

// NativeModuleExtensions lists shared-object extensions in the order the
// current platform is most likely to produce them.
func NativeModuleExtensions() []string {
	if IsMacOS() {
		return []string{".dylib", ".so"}
	}
	return []string{".so", ".dylib"}
}
