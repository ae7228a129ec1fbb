package compression

import (
	"compress/gzip"
	"io"
)

func newGZIPWriter(out io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(out, gzip.BestCompression)
}
