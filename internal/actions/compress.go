package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	compression "github.com/deploymenttheory/go-flowforge/internal/utils/compressionutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
)

// DefaultBackupDir receives archives when no destination is given
const DefaultBackupDir = "data/backups"

// timestampLayout is appended to archive names: YYYYmmddHHMMSS
const timestampLayout = "20060102150405"

// CompressParams are the JSON parameters of the Compress action. A bare
// path is accepted as {"source": path}.
type CompressParams struct {
	Source      string `json:"source"`
	Format      string `json:"format"`
	Destination string `json:"destination"`
}

// Compress archives a file or directory
type Compress struct {
	BackupDir string
	now       func() time.Time
	log       *zap.SugaredLogger
}

// Execute archives the source named in params
func (c *Compress) Execute(params string) error {
	p, err := parseCompressParams(params)
	if err != nil {
		return err
	}

	src := fsutil.ExpandAndNormalizePath(p.Source)
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrSourceNotFound, src)
	}

	dst := c.destination(p, src, info.IsDir())
	if err := fsutil.CreateDirIfNotExists(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}

	estimate, err := compression.EstimateCompressionSize(src, p.Format)
	if err != nil {
		return err
	}
	enough, err := fsutil.HasEnoughDiskSpace(filepath.Dir(dst), estimate)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDiskSpaceError, err)
	}
	if !enough {
		return fmt.Errorf("%w: need about %d bytes in %s", errors.ErrInsufficientDiskSpace, estimate, filepath.Dir(dst))
	}

	c.log.Infow("Compressing", "source", src, "destination", dst, "format", p.Format)
	if err := compression.Compress(p.Format, src, dst); err != nil {
		return err
	}
	c.log.Infow("Archive created", "destination", dst)
	return nil
}

func parseCompressParams(params string) (CompressParams, error) {
	var p CompressParams
	if isJSONObject(params) {
		if err := jsonutil.Unmarshal(params, &p); err != nil {
			return p, err
		}
	} else {
		p.Source = strings.TrimSpace(params)
	}
	if p.Source == "" {
		return p, fmt.Errorf("%w: compress needs a source path", errors.ErrInvalidArgument)
	}
	if p.Format == "" {
		p.Format = compression.FormatZIP
	}
	if !compression.IsSupported(p.Format) {
		return p, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, p.Format)
	}
	return p, nil
}

// destination picks the archive path. An explicit destination that is an
// existing directory receives the generated name.
func (c *Compress) destination(p CompressParams, src string, dir bool) string {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	name := fmt.Sprintf("%s_%s%s", filepath.Base(src), now().Format(timestampLayout), compression.Extension(p.Format, dir))

	if p.Destination != "" {
		dst := fsutil.ExpandAndNormalizePath(p.Destination)
		if fsutil.DirExists(dst) {
			return filepath.Join(dst, name)
		}
		return dst
	}

	backupDir := c.BackupDir
	if backupDir == "" {
		backupDir = DefaultBackupDir
	}
	return filepath.Join(fsutil.ExpandAndNormalizePath(backupDir), name)
}
