package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnsupportedFile   = errors.New("unsupported file format")
	ErrPathNotAccessible = errors.New("path is not accessible")

	// Workflow Errors
	ErrWorkflowNotFound    = errors.New("workflow not found")
	ErrInvalidWorkflow     = errors.New("invalid workflow definition")
	ErrInvalidAction       = errors.New("invalid action definition")
	ErrDuplicateWorkflow   = errors.New("duplicate workflow name")
	ErrNoWorkflowsDocument = errors.New("no workflows array in document")

	// Plugin Errors
	ErrPluginNotFound    = errors.New("plugin not found")
	ErrEntryPointMissing = errors.New("plugin entry point missing")
	ErrPluginLoadFailed  = errors.New("failed to load plugin")
	ErrAlreadyRegistered = errors.New("action type already registered")
	ErrInvalidManifest   = errors.New("invalid plugin manifest")
	ErrActionPanicked    = errors.New("action panicked")
	ErrUnsupportedLoader = errors.New("no loader for plugin file extension")

	// Compression Errors
	ErrCompressionFailed      = errors.New("compression failed")
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrInsufficientDiskSpace  = errors.New("not enough disk space to complete compression")
	ErrDiskSpaceError         = errors.New("disk space error")
	ErrSourceNotFound         = errors.New("source does not exist")

	// File & Directory Errors
	ErrFileNotFound   = errors.New("file not found")
	ErrFileReadError  = errors.New("error reading file")
	ErrFileWriteError = errors.New("error writing to file")
	ErrDirNotFound    = errors.New("directory not found")

	// Network Errors
	ErrInvalidURL       = errors.New("invalid URL")
	ErrDownloadFailed   = errors.New("download failed")
	ErrHTTPStatusFailed = errors.New("unexpected HTTP status")
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// Hash Errors
	ErrUnsupportedHash = errors.New("unsupported hash algorithm")

	// Notification Errors
	ErrMissingCredentials = errors.New("missing credentials")
	ErrDeliveryFailed     = errors.New("message delivery failed")

	// VirusTotal API Errors
	ErrAPIKeyMissing = errors.New("API key is required")
	ErrScanFailed    = errors.New("scan failed to complete")
	ErrScanTimeout   = errors.New("scan timed out")

	// Configuration Errors
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("error parsing configuration")
)
