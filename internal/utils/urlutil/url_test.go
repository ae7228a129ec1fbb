package urlutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// sha256("abc")
const abcSHA256 = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("abc"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	opts := DefaultDownloadOptions()
	opts.OutputDir = dir
	opts.ExpectedChecksum = abcSHA256

	path, err := DownloadFile(srv.URL+"/files/report.txt", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestDownloadFileChecksumMismatchRemovesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("abd"))
	}))
	defer srv.Close()

	opts := DefaultDownloadOptions()
	opts.OutputPath = filepath.Join(t.TempDir(), "out.bin")
	opts.ExpectedChecksum = abcSHA256

	_, err := DownloadFile(srv.URL+"/x", opts)
	assert.ErrorIs(t, err, errors.ErrChecksumMismatch)
	assert.NoFileExists(t, opts.OutputPath)
}

func TestDownloadFileRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	opts := DefaultDownloadOptions()
	opts.OutputDir = t.TempDir()
	opts.RetryDelay = 0

	_, err := DownloadFile(srv.URL+"/ok.txt", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownloadFileClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	opts := DefaultDownloadOptions()
	opts.OutputDir = t.TempDir()
	opts.RetryDelay = 0

	_, err := DownloadFile(srv.URL+"/missing.txt", opts)
	assert.ErrorIs(t, err, errors.ErrHTTPStatusFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/a.zip"))
	assert.ErrorIs(t, ValidateURL("ftp://example.com/a.zip"), errors.ErrInvalidURL)
	assert.ErrorIs(t, ValidateURL("https:///a.zip"), errors.ErrInvalidURL)
	assert.ErrorIs(t, ValidateURL("/local/path"), errors.ErrInvalidURL)
}

func TestGetFilenameFromURL(t *testing.T) {
	name, err := GetFilenameFromURL("https://example.com/dl/tool.pkg?sig=1")
	require.NoError(t, err)
	assert.Equal(t, "tool.pkg", name)

	_, err = GetFilenameFromURL("https://example.com/")
	assert.ErrorIs(t, err, errors.ErrInvalidURL)
}
