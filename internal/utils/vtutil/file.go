package vtutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	vt "github.com/VirusTotal/vt-go"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// Analysis statuses reported by the API
const (
	StatusQueued     = "queued"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ScanResult summarises a file analysis
type ScanResult struct {
	File       string
	AnalysisID string
	Status     string
	Malicious  int64
	Suspicious int64
	Harmless   int64
	Undetected int64
}

// Flagged reports whether any engine considered the file malicious or suspicious
func (r *ScanResult) Flagged() bool {
	return r.Malicious > 0 || r.Suspicious > 0
}

// ScanFile uploads filePath for analysis. With wait set, it polls until the
// analysis completes or the polling timeout passes.
func (c *Client) ScanFile(filePath string, wait bool) (*ScanResult, error) {
	var scanObj *vt.Object
	err := fsutil.WithPathLock(filePath, func() error {
		file, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
		}
		defer file.Close()

		scanObj, err = c.vtClient.NewFileScanner().ScanFileWithParameters(file, nil, map[string]string{
			"filename": filepath.Base(filePath),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrScanFailed, err.Error())
	}

	result := &ScanResult{
		File:       filePath,
		AnalysisID: scanObj.ID(),
		Status:     StatusQueued,
	}
	if !wait {
		return result, nil
	}
	return c.pollAnalysis(result)
}

func (c *Client) pollAnalysis(result *ScanResult) (*ScanResult, error) {
	deadline := time.Now().Add(c.config.PollingTimeout)
	for {
		analysis, err := c.vtClient.GetObject(vt.URL("analyses/%s", result.AnalysisID))
		if err == nil {
			status, _ := analysis.GetString("status")
			result.Status = status
			if status == StatusCompleted {
				result.Malicious, _ = analysis.GetInt64("stats.malicious")
				result.Suspicious, _ = analysis.GetInt64("stats.suspicious")
				result.Harmless, _ = analysis.GetInt64("stats.harmless")
				result.Undetected, _ = analysis.GetInt64("stats.undetected")
				return result, nil
			}
		}
		if time.Now().After(deadline) {
			return result, fmt.Errorf("%w: analysis %s after %s", errors.ErrScanTimeout, result.AnalysisID, c.config.PollingTimeout)
		}
		time.Sleep(c.config.PollingInterval)
	}
}
