package actions

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/urlutil"
)

// DefaultUploadDir receives downloads when no destination is given
const DefaultUploadDir = "data/uploads"

// DownloadParams are the JSON parameters of the Download action
type DownloadParams struct {
	URL         string `json:"url"`
	Destination string `json:"destination"`
	Checksum    string `json:"checksum"`
	Algorithm   string `json:"algorithm"`
}

// Download fetches a URL into the upload directory
type Download struct {
	UploadDir string
	options   urlutil.DownloadOptions
	log       *zap.SugaredLogger
}

// NewDownload builds the action with the package download defaults
func NewDownload(uploadDir string, log *zap.SugaredLogger) *Download {
	return &Download{UploadDir: uploadDir, options: urlutil.DefaultDownloadOptions(), log: log}
}

// Execute accepts a bare URL or DownloadParams as JSON
func (d *Download) Execute(params string) error {
	var p DownloadParams
	if isJSONObject(params) {
		if err := jsonutil.Unmarshal(params, &p); err != nil {
			return err
		}
	} else {
		p.URL = strings.TrimSpace(params)
	}
	if p.URL == "" {
		return fmt.Errorf("%w: download needs a url", errors.ErrInvalidArgument)
	}

	opts := d.options
	opts.ExpectedChecksum = p.Checksum
	if p.Algorithm != "" {
		opts.ChecksumAlgorithm = cryptoutil.HashAlgorithm(p.Algorithm)
	}
	if p.Destination != "" {
		opts.OutputPath = fsutil.ExpandAndNormalizePath(p.Destination)
	} else {
		dir := d.UploadDir
		if dir == "" {
			dir = DefaultUploadDir
		}
		opts.OutputDir = fsutil.ExpandAndNormalizePath(dir)
	}

	path, err := urlutil.DownloadFile(p.URL, opts)
	if err != nil {
		return err
	}
	d.log.Infow("Download complete", "url", p.URL, "path", path, "verified", p.Checksum != "")
	return nil
}
