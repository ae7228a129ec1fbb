package compression

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
)

// walkSource visits every regular file under src with its archive name,
// which is relative to the parent of src so the top-level name is kept.
func walkSource(src string, fn func(path, name string, info os.FileInfo) error) error {
	base := filepath.Dir(filepath.Clean(src))
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
}

func writeZIP(out io.Writer, src string) error {
	zw := zip.NewWriter(out)
	err := walkSource(src, func(path, name string, info os.FileInfo) error {
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		return copyFile(entry, path)
	})
	if closeErr := zw.Close(); err == nil {
		err = closeErr
	}
	return err
}

func writeTAR(out io.Writer, src string) error {
	tw := tar.NewWriter(out)
	err := walkSource(src, func(path, name string, info os.FileInfo) error {
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		return copyFile(tw, path)
	})
	if closeErr := tw.Close(); err == nil {
		err = closeErr
	}
	return err
}
