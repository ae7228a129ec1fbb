package compression

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "daily"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "summary.txt"), []byte("totals\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "daily", "mon.csv"), []byte("a,b\n1,2\n"), 0o644))
	return root
}

func TestCompressDirectoryAllFormats(t *testing.T) {
	src := writeTree(t)
	for _, format := range []string{FormatZIP, FormatTAR, FormatGZIP, FormatBZIP2, FormatXZ} {
		t.Run(format, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "out"+Extension(format, true))
			require.NoError(t, Compress(format, src, dst))

			info, err := os.Stat(dst)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))

			detected, err := DetectArchiveFormat(dst)
			require.NoError(t, err)
			assert.Equal(t, format, detected)
		})
	}
}

func TestCompressZIPKeepsTopLevelName(t *testing.T) {
	src := writeTree(t)
	dst := filepath.Join(t.TempDir(), "reports.zip")
	require.NoError(t, Compress(FormatZIP, src, dst))

	r, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"reports/summary.txt", "reports/daily/mon.csv"}, names)
}

func TestCompressSingleFileStream(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))
	dst := filepath.Join(t.TempDir(), "notes"+Extension(FormatGZIP, false))

	require.NoError(t, Compress(FormatGZIP, src, dst))
	assert.Equal(t, "notes.gz", filepath.Base(dst))
}

func TestCompressErrors(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.zip")

	err := Compress("rar", t.TempDir(), dst)
	assert.ErrorIs(t, err, errors.ErrUnsupportedCompression)

	err = Compress(FormatZIP, filepath.Join(t.TempDir(), "missing"), dst)
	assert.ErrorIs(t, err, errors.ErrSourceNotFound)
	assert.NoFileExists(t, dst)
}

func TestEstimateCompressionSize(t *testing.T) {
	src := writeTree(t)

	tarSize, err := EstimateCompressionSize(src, FormatTAR)
	require.NoError(t, err)
	assert.Equal(t, uint64(len("totals\n")+len("a,b\n1,2\n")), tarSize)

	xzSize, err := EstimateCompressionSize(src, FormatXZ)
	require.NoError(t, err)
	assert.Less(t, xzSize, tarSize)

	_, err = EstimateCompressionSize(src, "lz4")
	assert.ErrorIs(t, err, errors.ErrUnsupportedCompression)
}
