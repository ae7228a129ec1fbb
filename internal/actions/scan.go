package actions

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/vtutil"
)

// ScanParams are the JSON parameters of the Scan action. A bare path is
// accepted as {"path": path, "wait": true}.
type ScanParams struct {
	Path string `json:"path"`
	Wait *bool  `json:"wait"`
}

// Scan submits a file to VirusTotal. With wait, a flagged file fails the step.
type Scan struct {
	Settings VirusTotalSettings
	log      *zap.SugaredLogger
}

// Execute uploads the file named in params
func (s *Scan) Execute(params string) error {
	var p ScanParams
	if isJSONObject(params) {
		if err := jsonutil.Unmarshal(params, &p); err != nil {
			return err
		}
	} else {
		p.Path = strings.TrimSpace(params)
	}
	if p.Path == "" {
		return fmt.Errorf("%w: scan needs a path", errors.ErrInvalidArgument)
	}
	wait := p.Wait == nil || *p.Wait

	path := fsutil.ExpandAndNormalizePath(p.Path)
	if !fsutil.FileExists(path) {
		return fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}

	client, err := vtutil.NewClient(s.Settings.APIKey,
		vtutil.WithPollingSettings(s.Settings.PollingInterval, s.Settings.PollingTimeout))
	if err != nil {
		return err
	}

	s.log.Infow("Submitting file for analysis", "path", path, "wait", wait)
	result, err := client.ScanFile(path, wait)
	if err != nil {
		return err
	}
	s.log.Infow("Analysis status", "path", path, "analysis_id", result.AnalysisID, "status", result.Status,
		"malicious", result.Malicious, "suspicious", result.Suspicious)
	if result.Flagged() {
		return fmt.Errorf("%w: %s flagged by %d engines", errors.ErrScanFailed, path, result.Malicious+result.Suspicious)
	}
	return nil
}
