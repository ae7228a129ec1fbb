package compression

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

func newBZIP2Writer(out io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.BestCompression})
}
