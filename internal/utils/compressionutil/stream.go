package compression

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

func newStreamWriter(format string, out io.Writer) (io.WriteCloser, error) {
	switch format {
	case FormatGZIP:
		return newGZIPWriter(out)
	case FormatBZIP2:
		return newBZIP2Writer(out)
	case FormatXZ:
		return newXZWriter(out)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}
