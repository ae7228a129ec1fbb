package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deploymenttheory/go-flowforge/internal/plugin"
	"github.com/deploymenttheory/go-flowforge/internal/rule"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/plistutil"
	"github.com/deploymenttheory/go-flowforge/internal/workflow"
)

// spyRunner records what it was asked to run
type spyRunner struct {
	mu        sync.Mutex
	runs      []string
	overrides [][]string
	panicOn   string
}

func (s *spyRunner) Run(wf *workflow.Workflow, overrides []string) {
	if wf.Name() == s.panicOn {
		panic("runner exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, wf.Name())
	s.overrides = append(s.overrides, overrides)
}

func observed() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func doc(entries ...interface{}) map[string]interface{} {
	return map[string]interface{}{"workflows": entries}
}

func entry(name string, actions ...interface{}) map[string]interface{} {
	return map[string]interface{}{"name": name, "actions": actions}
}

func TestLoadSkipsMalformedEntry(t *testing.T) {
	log, logs := observed()
	e := New(&spyRunner{}, log)

	n := e.Load(doc(
		entry("good", map[string]interface{}{"type": "Compress", "params": "/tmp"}),
		map[string]interface{}{"actions": []interface{}{}},
	))

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"good"}, e.Names())
	assert.Equal(t, 1, logs.FilterMessage("Skipping workflow entry").Len())
}

func TestLoadEntryShapes(t *testing.T) {
	e := New(&spyRunner{}, nil)
	n := e.Load(doc(
		"not an object",
		map[string]interface{}{"name": 7.0, "actions": []interface{}{}},
		map[string]interface{}{"name": "no-actions"},
		map[string]interface{}{"name": "bad-actions", "actions": "Compress"},
		entry("first"),
		entry("first", map[string]interface{}{"type": "Other"}),
		entry("second"),
	))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "second"}, e.Names())
	assert.Empty(t, e.ActionSummaries("first"))
}

func TestLoadSerialisesParams(t *testing.T) {
	e := New(&spyRunner{}, nil)
	e.Load(doc(entry("mixed",
		map[string]interface{}{"type": "Text", "params": "plain"},
		map[string]interface{}{"type": "Missing"},
		map[string]interface{}{"type": "Object", "params": map[string]interface{}{"recipient": "a@b.c", "delay": 2}},
		map[string]interface{}{"type": "List", "params": []interface{}{"x", true}},
		map[string]interface{}{"params": "no type"},
		"not an action",
	)))

	assert.Equal(t, []string{
		"Text: plain",
		"Missing: ",
		`Object: {"delay":2,"recipient":"a@b.c"}`,
		`List: ["x",true]`,
	}, e.ActionSummaries("mixed"))
	assert.Nil(t, e.ActionSummaries("absent"))
}

func TestLoadWithoutWorkflowsArray(t *testing.T) {
	log, logs := observed()
	e := New(&spyRunner{}, log)

	assert.Equal(t, 0, e.Load(map[string]interface{}{"workflow": []interface{}{}}))
	assert.Equal(t, 0, e.Load(nil))
	assert.Equal(t, 2, logs.FilterMessage("Document has no workflows array").Len())
}

func TestLoadParsesRulesAndWarns(t *testing.T) {
	log, logs := observed()
	e := New(&spyRunner{}, log)

	e.Load(doc(map[string]interface{}{
		"name":    "gated",
		"actions": []interface{}{},
		"rule":    map[string]interface{}{"if": map[string]interface{}{"cpu": "very busy"}},
	}))

	wf, ok := e.Lookup("gated")
	require.True(t, ok)
	leaf, ok := wf.Rule().(rule.Leaf)
	require.True(t, ok)
	assert.False(t, leaf.Valid)
	assert.Equal(t, 1, logs.FilterMessage("Rule predicate cannot be parsed and will never hold").Len())
}

func TestRunByName(t *testing.T) {
	spy := &spyRunner{}
	log, logs := observed()
	e := New(spy, log)
	e.Load(doc(entry("alpha"), entry("beta")))

	require.NoError(t, e.RunByName("beta"))
	require.NoError(t, e.RunByNameWithOverrides("alpha", []string{"x"}))
	err := e.RunByName("gamma")

	assert.ErrorIs(t, err, errors.ErrWorkflowNotFound)
	assert.Equal(t, []string{"beta", "alpha"}, spy.runs)
	assert.Equal(t, [][]string{nil, {"x"}}, spy.overrides)
	assert.Equal(t, 1, logs.FilterMessage("Workflow not found").Len())
}

func TestRunAllRunsInParallel(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.MustRegister("Sleep", func() (plugin.Action, error) {
		return plugin.ActionFunc(func(params string) error {
			ms, err := strconv.Atoi(params)
			if err != nil {
				return err
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}), nil
	})
	runner := workflow.NewRunner(rule.NewEvaluator(), plugin.NewResolver(reg, plugin.WithSearchRoots(t.TempDir())), nil)
	e := New(runner, nil)
	e.Load(doc(
		entry("short", map[string]interface{}{"type": "Sleep", "params": "100"}),
		entry("medium", map[string]interface{}{"type": "Sleep", "params": "200"}),
		entry("long", map[string]interface{}{"type": "Sleep", "params": "300"}),
	))

	start := time.Now()
	e.RunAll()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 550*time.Millisecond)
}

// gaugeRunner tracks the highest number of simultaneous runs
type gaugeRunner struct {
	active, peak, total int32
}

func (g *gaugeRunner) Run(*workflow.Workflow, []string) {
	n := atomic.AddInt32(&g.active, 1)
	for {
		p := atomic.LoadInt32(&g.peak)
		if n <= p || atomic.CompareAndSwapInt32(&g.peak, p, n) {
			break
		}
	}
	time.Sleep(30 * time.Millisecond)
	atomic.AddInt32(&g.active, -1)
	atomic.AddInt32(&g.total, 1)
}

func TestRunAllRespectsPoolSize(t *testing.T) {
	g := &gaugeRunner{}
	e := New(g, nil, WithPoolSize(2))
	var entries []interface{}
	for i := 0; i < 6; i++ {
		entries = append(entries, entry("wf"+strconv.Itoa(i)))
	}
	e.Load(doc(entries...))

	e.RunAll()

	assert.Equal(t, int32(6), atomic.LoadInt32(&g.total))
	assert.LessOrEqual(t, atomic.LoadInt32(&g.peak), int32(2))
	assert.Equal(t, 2, e.PoolSize())
	assert.Equal(t, DefaultPoolSize, New(g, nil, WithPoolSize(0)).PoolSize())
}

func TestRunAllIsolatesPanics(t *testing.T) {
	spy := &spyRunner{panicOn: "bad"}
	log, logs := observed()
	e := New(spy, log)
	e.Load(doc(entry("ok1"), entry("bad"), entry("ok2")))

	assert.NotPanics(t, e.RunAll)
	assert.ElementsMatch(t, []string{"ok1", "ok2"}, spy.runs)
	assert.Equal(t, 1, logs.FilterMessage("Workflow task panicked").Len())
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "workflows.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"workflows":[{"name":"backup","actions":[{"type":"Compress","params":{"source":"/tmp","level":9}}]}]}`), 0o644))

	yamlPath := filepath.Join(dir, "workflows.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("workflows:\n  - name: notify\n    actions:\n      - type: Email\n        params:\n          Recipient: ops@example.com\n"), 0o644))

	plistData, err := plistutil.Encode(doc(entry("scan", map[string]interface{}{"type": "Scan", "params": "/tmp/a"})))
	require.NoError(t, err)
	plistPath := filepath.Join(dir, "workflows.plist")
	require.NoError(t, os.WriteFile(plistPath, plistData, 0o644))

	e := New(&spyRunner{}, nil)
	for _, path := range []string{jsonPath, yamlPath, plistPath} {
		n, err := e.LoadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, 1, n, path)
	}

	assert.Equal(t, []string{"backup", "notify", "scan"}, e.Names())
	assert.Equal(t, []string{`Compress: {"level":9,"source":"/tmp"}`}, e.ActionSummaries("backup"))
	assert.Equal(t, []string{`Email: {"Recipient":"ops@example.com"}`}, e.ActionSummaries("notify"))
	assert.Equal(t, []string{"Scan: /tmp/a"}, e.ActionSummaries("scan"))

	_, err = e.LoadFile(filepath.Join(dir, "workflows.toml"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedFile)
}

func TestFindDocument(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "workflows.json")
	require.NoError(t, os.WriteFile(present, []byte(`{}`), 0o644))

	path, err := FindDocument("", []string{filepath.Join(dir, "missing.json"), present})
	require.NoError(t, err)
	assert.Equal(t, present, path)

	path, err = FindDocument(present, nil)
	require.NoError(t, err)
	assert.Equal(t, present, path)

	_, err = FindDocument("", []string{filepath.Join(dir, "missing.json")})
	assert.ErrorIs(t, err, errors.ErrConfigFileNotFound)

	_, err = FindDocument(filepath.Join(dir, "nope.json"), nil)
	assert.ErrorIs(t, err, errors.ErrConfigFileNotFound)
}

func TestLoadBundledWorkflows(t *testing.T) {
	log, logs := observed()
	e := New(&spyRunner{}, log)

	n, err := e.LoadFile(filepath.Join("..", "..", "config", "workflows.json"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"nightly-backup", "disk-alert", "load-watch", "fetch-and-scan"}, e.Names())
	assert.Zero(t, logs.FilterMessage("Skipping workflow entry").Len())
	assert.Zero(t, logs.FilterMessage("Skipping action").Len())
}
