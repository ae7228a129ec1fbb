package compression

import (
	"io"

	"github.com/ulikunitz/xz"
)

func newXZWriter(out io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(out)
}
