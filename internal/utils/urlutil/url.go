// Package urlutil downloads files over HTTP with optional digest checks
package urlutil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-flowforge/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// Default values for download options
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
	userAgent         = "flowforge/1.0"
)

// DownloadOptions controls a single download
type DownloadOptions struct {
	// OutputPath is the file to create. Empty means OutputDir joined with
	// the last URL path segment.
	OutputPath string
	OutputDir  string

	Timeout time.Duration

	// ExpectedChecksum is compared case-insensitively against the digest of
	// the downloaded bytes. A mismatch removes the file.
	ExpectedChecksum  string
	ChecksumAlgorithm cryptoutil.HashAlgorithm

	Headers map[string]string

	// Server errors and transport failures are retried, 4xx are not
	MaxRetries int
	RetryDelay time.Duration

	Client *http.Client
}

// DefaultDownloadOptions returns options with the package defaults
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Timeout:           DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		ChecksumAlgorithm: cryptoutil.SHA256,
	}
}

// DownloadFile fetches sourceURL and returns the path written
func DownloadFile(sourceURL string, options DownloadOptions) (string, error) {
	if err := ValidateURL(sourceURL); err != nil {
		return "", err
	}

	outputPath := options.OutputPath
	if outputPath == "" {
		name, err := GetFilenameFromURL(sourceURL)
		if err != nil {
			return "", err
		}
		outputPath = filepath.Join(options.OutputDir, name)
	}
	if err := fsutil.CreateDirIfNotExists(filepath.Dir(outputPath)); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}

	resp, err := fetch(sourceURL, options)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}

	var hw *cryptoutil.HashWriter
	var writer io.Writer = out
	if options.ExpectedChecksum != "" {
		alg := options.ChecksumAlgorithm
		if alg == "" {
			alg = cryptoutil.SHA256
		}
		hw, err = cryptoutil.NewHashWriter(alg)
		if err != nil {
			out.Close()
			os.Remove(outputPath)
			return "", err
		}
		writer = io.MultiWriter(out, hw)
	}

	_, copyErr := io.Copy(writer, resp.Body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(outputPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", fmt.Errorf("%w: %v", errors.ErrFileWriteError, copyErr)
	}

	if hw != nil {
		actual := hw.SumHex()
		if !strings.EqualFold(actual, strings.TrimSpace(options.ExpectedChecksum)) {
			os.Remove(outputPath)
			return "", fmt.Errorf("%w: expected %s, got %s", errors.ErrChecksumMismatch, options.ExpectedChecksum, actual)
		}
	}
	return outputPath, nil
}

// fetch performs the GET with retries and returns a 200 response
func fetch(sourceURL string, options DownloadOptions) (*http.Response, error) {
	client := options.Client
	if client == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if attempt > 0 && options.RetryDelay > 0 {
			time.Sleep(options.RetryDelay)
		}

		req, err := http.NewRequest(http.MethodGet, sourceURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
		}
		req.Header.Set("User-Agent", userAgent)
		for k, v := range options.Headers {
			req.Header.Set(k, v)
		}

		resp, lastErr = client.Do(req)
		if lastErr == nil && resp.StatusCode < 500 {
			break
		}
		if resp != nil {
			resp.Body.Close()
			resp = nil
		}
	}

	if resp == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("server error")
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrDownloadFailed, lastErr)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", errors.ErrHTTPStatusFailed, resp.StatusCode)
	}
	return resp, nil
}

// ValidateURL accepts absolute http and https URLs with a host
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme '%s'", errors.ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", errors.ErrInvalidURL)
	}
	return nil
}

// GetFilenameFromURL returns the last path segment of rawURL
func GetFilenameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("%w: could not determine filename from URL", errors.ErrInvalidURL)
	}
	return name, nil
}
