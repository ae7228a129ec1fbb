package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/plistutil"
)

// DefaultDocumentPaths are tried in order when no workflows file is given
var DefaultDocumentPaths = []string{
	"config/workflows.json",
	"../config/workflows.json",
	"./config/workflows.json",
	"../../config/workflows.json",
	"config/workflows.yaml",
	"../config/workflows.yaml",
	"../../config/workflows.yaml",
}

// FindDocument returns explicit when set, otherwise the first existing path
// among candidates.
func FindDocument(explicit string, candidates []string) (string, error) {
	if explicit != "" {
		path := fsutil.ExpandAndNormalizePath(explicit)
		if !fsutil.FileExists(path) {
			return "", fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, explicit)
		}
		return path, nil
	}
	for _, candidate := range candidates {
		if fsutil.FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", errors.ErrConfigFileNotFound, strings.Join(candidates, ", "))
}

// ReadDocument decodes a workflows document. The format follows the file
// extension: .json, .yaml/.yml or .plist.
func ReadDocument(path string) (map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonutil.ReadJSON(path)
	case ".plist":
		return plistutil.ReadPlist(path)
	case ".yaml", ".yml":
		data, err := fsutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
		}
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, path)
	}
}

// LoadFile reads a workflows document and loads it. Only an unreadable
// document is an error; bad entries inside it are skipped as in Load.
func (e *Engine) LoadFile(path string) (int, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return 0, err
	}
	e.log.Infow("Using workflow document", "path", path)
	return e.Load(doc), nil
}
