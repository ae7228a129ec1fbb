package actions

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
)

// ChecksumParams are the JSON parameters of the Checksum action. With
// Output set, a "<digest>  <name>" line is written there.
type ChecksumParams struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Output    string `json:"output"`
}

// Checksum computes a file digest
type Checksum struct {
	log *zap.SugaredLogger
}

// Execute hashes the file named in params
func (c *Checksum) Execute(params string) error {
	var p ChecksumParams
	if isJSONObject(params) {
		if err := jsonutil.Unmarshal(params, &p); err != nil {
			return err
		}
	} else {
		p.Path = strings.TrimSpace(params)
	}
	if p.Path == "" {
		return fmt.Errorf("%w: checksum needs a path", errors.ErrInvalidArgument)
	}
	if p.Algorithm == "" {
		p.Algorithm = string(cryptoutil.SHA256)
	}

	path := fsutil.ExpandAndNormalizePath(p.Path)
	if !fsutil.FileExists(path) {
		return fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}
	digest, err := cryptoutil.HashFile(cryptoutil.HashAlgorithm(p.Algorithm), path)
	if err != nil {
		return err
	}
	c.log.Infow("Checksum computed", "path", path, "algorithm", p.Algorithm, "digest", digest)

	if p.Output != "" {
		line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(path))
		if err := fsutil.WriteFile(fsutil.ExpandAndNormalizePath(p.Output), []byte(line), 0o644); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
		}
	}
	return nil
}
