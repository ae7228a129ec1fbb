package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// Manifest lists plugin files explicitly. Relative paths are resolved against
// the manifest's own directory.
//
//	search_roots:
//	  - plugins
//	plugins:
//	  Resize: plugins/resize.go
//	  Notify: /opt/flowforge/notify.so
type Manifest struct {
	SearchRoots []string          `yaml:"search_roots"`
	Plugins     map[string]string `yaml:"plugins"`
}

// LoadManifest reads a manifest file. A missing file yields an empty
// manifest so installations without one keep working.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrFileReadError, path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for name, file := range m.Plugins {
		if !filepath.IsAbs(file) {
			m.Plugins[name] = filepath.Join(base, file)
		}
	}
	for i, root := range m.SearchRoots {
		if !filepath.IsAbs(root) {
			m.SearchRoots[i] = filepath.Join(base, root)
		}
	}
	return m, nil
}

// ParseManifest decodes manifest YAML without resolving paths
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidManifest, err)
	}
	for name, file := range m.Plugins {
		if name == "" || file == "" {
			return nil, fmt.Errorf("%w: entry %q has an empty name or path", errors.ErrInvalidManifest, name)
		}
	}
	if m.Plugins == nil {
		m.Plugins = map[string]string{}
	}
	return &m, nil
}

// Path returns the file registered for typeName
func (m *Manifest) Path(typeName string) (string, bool) {
	if m == nil {
		return "", false
	}
	path, ok := m.Plugins[typeName]
	return path, ok
}

// Types returns the manifest's type names, sorted
func (m *Manifest) Types() []string {
	if m == nil {
		return nil
	}
	types := make([]string, 0, len(m.Plugins))
	for name := range m.Plugins {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
