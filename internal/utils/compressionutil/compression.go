package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// Supported archive formats
const (
	FormatZIP   = "zip"
	FormatTAR   = "tar"
	FormatGZIP  = "gzip"
	FormatBZIP2 = "bzip2"
	FormatXZ    = "xz"
)

var magicNumbers = map[string][]byte{
	FormatZIP:   {0x50, 0x4B, 0x03, 0x04},
	FormatGZIP:  {0x1F, 0x8B},
	FormatBZIP2: {0x42, 0x5A, 0x68},
	FormatXZ:    {0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00},
}

// Approximate compressed/original size ratios per format
var compressionRatios = map[string]float64{
	FormatZIP:   0.60,
	FormatTAR:   1.00,
	FormatGZIP:  0.50,
	FormatBZIP2: 0.40,
	FormatXZ:    0.30,
}

// Extension returns the conventional file extension for an archive of format.
// Stream formats applied to a directory produce a compressed tarball.
func Extension(format string, dir bool) string {
	switch format {
	case FormatZIP:
		return ".zip"
	case FormatTAR:
		return ".tar"
	case FormatGZIP:
		if dir {
			return ".tar.gz"
		}
		return ".gz"
	case FormatBZIP2:
		if dir {
			return ".tar.bz2"
		}
		return ".bz2"
	case FormatXZ:
		if dir {
			return ".tar.xz"
		}
		return ".xz"
	default:
		return ""
	}
}

// IsSupported reports whether format can be written by Compress
func IsSupported(format string) bool {
	_, ok := compressionRatios[format]
	return ok
}

// Compress archives src (file or directory) into dst using format.
// A partially written dst is removed on failure.
func Compress(format, src, dst string) (err error) {
	if !IsSupported(format) {
		return fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrSourceNotFound, src)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrCompressionFailed, err.Error())
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	switch format {
	case FormatZIP:
		err = writeZIP(out, src)
	case FormatTAR:
		err = writeTAR(out, src)
	default:
		err = writeStream(format, out, src, info.IsDir())
	}
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrCompressionFailed, err.Error())
	}
	return nil
}

// writeStream compresses a single file, or a tarball of a directory, through
// a stream compressor.
func writeStream(format string, out io.Writer, src string, dir bool) error {
	w, err := newStreamWriter(format, out)
	if err != nil {
		return err
	}
	if dir {
		err = writeTAR(w, src)
	} else {
		err = copyFile(w, src)
	}
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// DetectArchiveFormat determines the archive format using magic numbers and file extension
func DetectArchiveFormat(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 262)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	header = header[:n]

	for format, magic := range magicNumbers {
		if bytes.HasPrefix(header, magic) {
			return format, nil
		}
	}
	// ustar magic lives at offset 257
	if len(header) >= 262 && string(header[257:262]) == "ustar" {
		return FormatTAR, nil
	}

	// Fallback to extension-based detection
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return FormatZIP, nil
	case ".tar":
		return FormatTAR, nil
	case ".gz", ".tgz":
		return FormatGZIP, nil
	case ".bz2", ".tbz2":
		return FormatBZIP2, nil
	case ".xz", ".txz":
		return FormatXZ, nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, filename)
	}
}

// EstimateCompressionSize provides an approximate compressed size for a given source.
func EstimateCompressionSize(src string, format string) (uint64, error) {
	ratio, exists := compressionRatios[format]
	if !exists {
		return 0, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}

	var totalSize uint64
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			totalSize += uint64(info.Size())
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to calculate size: %w", err)
	}

	return uint64(float64(totalSize) * ratio), nil
}
