package tooling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-flowforge/internal/config"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, errors.ErrConfigFileNotFound)
	cfg.Plugins.Manifest = ""
	cfg.Plugins.SearchRoots = []string{t.TempDir()}
	return cfg
}

func TestActionSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Actions.SMTP.Username = "bot@example.com"
	cfg.Actions.Twilio.AccountSID = "AC1"

	s := ActionSettings(cfg)
	assert.Equal(t, "bot@example.com", s.SMTP.Username)
	assert.Equal(t, 587, s.SMTP.Port)
	assert.Equal(t, "AC1", s.Twilio.AccountSID)
	assert.Equal(t, "data/backups", s.BackupDir)
}

func TestNewResolverIncludesBuiltinsAndManifest(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Plugins.Manifest = filepath.Join(dir, "plugins.yaml")
	require.NoError(t, os.WriteFile(cfg.Plugins.Manifest, []byte("plugins:\n  Custom: custom.go\n"), 0o644))

	r, err := NewResolver(cfg, nil)
	require.NoError(t, err)
	assert.Contains(t, r.Types(), "Compress")
	assert.Contains(t, r.Types(), "Custom")

	_, err = r.Resolve("Checksum")
	assert.NoError(t, err)
}

func TestLoadWorkflows(t *testing.T) {
	cfg := testConfig(t)
	doc := filepath.Join(t.TempDir(), "workflows.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"workflows":[{"name":"noop","actions":[]}]}`), 0o644))

	eng, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, eng.PoolSize())

	cfg.Workflows.SearchPaths = []string{filepath.Join(t.TempDir(), "missing.json")}
	_, err = LoadWorkflows(eng, cfg)
	assert.ErrorIs(t, err, errors.ErrConfigFileNotFound)

	cfg.Workflows.SearchPaths = append(cfg.Workflows.SearchPaths, doc)
	path, err := LoadWorkflows(eng, cfg)
	require.NoError(t, err)
	assert.Equal(t, doc, path)
	assert.Equal(t, []string{"noop"}, eng.Names())
	assert.NoError(t, eng.RunByName("noop"))
}
