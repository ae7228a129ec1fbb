package rule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-flowforge/internal/hoststat"
)

func fixedEvaluator(s hoststat.Sampler, hour int) *Evaluator {
	return &Evaluator{
		Sampler: s,
		Now: func() time.Time {
			return time.Date(2024, 5, 1, hour, 30, 0, 0, time.Local)
		},
	}
}

func mustParse(t *testing.T, raw interface{}) Node {
	t.Helper()
	n, _ := Parse(raw)
	return n
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want Node
	}{
		{"absent", nil, nil},
		{"legacy string", "disk > 80%", Legacy{Text: "disk > 80%", HasDisk: true, Threshold: 80}},
		{"legacy without disk", "always", Legacy{Text: "always"}},
		{"if wrapper", map[string]interface{}{"if": map[string]interface{}{"cpu": "> 50"}},
			Leaf{Kind: KindCPU, Text: "> 50", Valid: true, Threshold: 50}},
		{"bare object", map[string]interface{}{"memory": "> 75%"},
			Leaf{Kind: KindMemory, Text: "> 75%", Valid: true, Threshold: 75}},
		{"and of leaves", map[string]interface{}{"and": []interface{}{
			map[string]interface{}{"file": "exists /tmp"},
			map[string]interface{}{"time": "between 09:00 and 17:30"},
		}}, And{Children: []Node{
			Leaf{Kind: KindFile, Text: "exists /tmp", Valid: true, Path: "/tmp"},
			Leaf{Kind: KindTime, Text: "between 09:00 and 17:30", Valid: true, FromHour: 9, ToHour: 17},
		}}},
		{"not", map[string]interface{}{"not": map[string]interface{}{"disk": "> 5"}},
			Not{Child: Leaf{Kind: KindDisk, Text: "> 5", Valid: true, Threshold: 5}}},
		{"and with non-list value", map[string]interface{}{"and": "oops"},
			Unknown{Raw: map[string]interface{}{"and": "oops"}}},
		{"unknown kind", map[string]interface{}{"gpu": "> 1"},
			Unknown{Raw: map[string]interface{}{"gpu": "> 1"}}},
		{"number", 42.0, Unknown{Raw: 42.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.raw))
		})
	}
}

func TestParseLeafKeyPriority(t *testing.T) {
	n := mustParse(t, map[string]interface{}{"time": "between 1:00 and 2:00", "disk": "> 10"})
	leaf, ok := n.(Leaf)
	require.True(t, ok)
	assert.Equal(t, KindDisk, leaf.Kind)
}

func TestParseReportsUnparseablePredicates(t *testing.T) {
	n, problems := Parse(map[string]interface{}{"or": []interface{}{
		map[string]interface{}{"cpu": "high"},
		map[string]interface{}{"file": "missing /tmp"},
		map[string]interface{}{"disk": 90.0},
	}})
	require.Len(t, problems, 3)
	assert.Contains(t, problems[0], "rule.or[0].cpu")

	or, ok := n.(Or)
	require.True(t, ok)
	for _, child := range or.Children {
		assert.False(t, child.(Leaf).Valid)
	}
}

func TestParseLeafText(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		text  string
		valid bool
	}{
		{"exists with path", "file", "exists /tmp/x", true},
		{"exists with tilde", "file", "exists ~/x", true},
		{"exists glued to path", "file", "existsfoo", false},
		{"exists without path", "file", "exists ", false},
		{"window", "time", "between 9:00 and 17:30", true},
		{"window minutes out of range", "time", "between 9:99 and 11:99", false},
		{"window end minute out of range", "time", "between 9:00 and 11:60", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, problems := Parse(map[string]interface{}{tt.kind: tt.text})
			leaf, ok := n.(Leaf)
			require.True(t, ok)
			assert.Equal(t, tt.valid, leaf.Valid)
			assert.Equal(t, tt.valid, len(problems) == 0)
		})
	}

	n, _ := Parse(map[string]interface{}{"file": "exists   /srv/data "})
	assert.Equal(t, "/srv/data", n.(Leaf).Path)
}

func TestEvaluateEmptyCombinations(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{}, 12)
	assert.True(t, e.Evaluate(And{}))
	assert.False(t, e.Evaluate(Or{}))
	assert.True(t, e.Evaluate(mustParse(t, map[string]interface{}{"and": []interface{}{}})))
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"or": []interface{}{}})))
}

func TestEvaluateNilHolds(t *testing.T) {
	assert.True(t, fixedEvaluator(hoststat.Static{}, 0).Evaluate(nil))
}

func TestEvaluateFileLeaf(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	e := NewEvaluator()
	assert.True(t, e.Evaluate(Not{Child: mustParse(t, map[string]interface{}{"file": "exists /definitely/missing/path"})}))
	assert.True(t, e.Evaluate(mustParse(t, map[string]interface{}{"file": "exists " + existing})))
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"file": "present " + existing})))
}

func TestEvaluateFileLeafExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "flag"), nil, 0o644))

	e := NewEvaluator()
	assert.True(t, e.Evaluate(mustParse(t, map[string]interface{}{"file": "exists ~/flag"})))
}

func TestEvaluateDiskLeafOnRealVolume(t *testing.T) {
	e := NewEvaluator()
	assert.True(t, e.Evaluate(mustParse(t, map[string]interface{}{"disk": "> 0%"})))
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"disk": "> 100%"})))
}

func TestEvaluateThresholdLeaves(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{Disk: 55, CPU: 60, Memory: 80}, 12)
	tests := []struct {
		raw  map[string]interface{}
		want bool
	}{
		{map[string]interface{}{"disk": "> 50%"}, true},
		{map[string]interface{}{"disk": "> 55"}, false},
		{map[string]interface{}{"cpu": "> 59"}, true},
		{map[string]interface{}{"cpu": ">70%"}, false},
		{map[string]interface{}{"memory": "usage > 79%"}, true},
		{map[string]interface{}{"memory": "> 90"}, false},
		{map[string]interface{}{"disk": "lots"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Evaluate(mustParse(t, tt.raw)), "%v", tt.raw)
	}
}

func TestEvaluateSamplerFailureIsFalse(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{Disk: 99, CPU: 99, Memory: 99, Err: errors.New("no stats")}, 12)
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"disk": "> 1"})))
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"cpu": "> 1"})))
	assert.False(t, e.Evaluate(mustParse(t, map[string]interface{}{"memory": "> 1"})))
	assert.False(t, e.Evaluate(mustParse(t, "disk > 1")))
}

func TestEvaluateTimeWindowHourGranularity(t *testing.T) {
	window := map[string]interface{}{"time": "between 09:45 and 17:00"}
	assert.True(t, fixedEvaluator(hoststat.Static{}, 9).Evaluate(mustParse(t, window)))
	assert.True(t, fixedEvaluator(hoststat.Static{}, 17).Evaluate(mustParse(t, window)))
	assert.False(t, fixedEvaluator(hoststat.Static{}, 8).Evaluate(mustParse(t, window)))
	assert.False(t, fixedEvaluator(hoststat.Static{}, 18).Evaluate(mustParse(t, window)))
	assert.False(t, fixedEvaluator(hoststat.Static{}, 12).Evaluate(mustParse(t, map[string]interface{}{"time": "after lunch"})))
}

func TestEvaluateLegacy(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{Disk: 70}, 12)
	assert.True(t, e.Evaluate(mustParse(t, "disk > 60%")))
	assert.False(t, e.Evaluate(mustParse(t, "disk > 80")))
	assert.True(t, e.Evaluate(mustParse(t, "disk is full")))
	assert.True(t, e.Evaluate(mustParse(t, "cpu > 99")))
}

func TestEvaluateUnknownFailsOpen(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{}, 12)
	assert.True(t, e.Evaluate(mustParse(t, map[string]interface{}{"gpu": "> 1"})))
	assert.False(t, e.Evaluate(Not{Child: Unknown{}}))
}

func TestEvaluateShortCircuits(t *testing.T) {
	e := fixedEvaluator(hoststat.Static{Disk: 10}, 12)
	n := mustParse(t, map[string]interface{}{"or": []interface{}{
		map[string]interface{}{"disk": "> 5"},
		map[string]interface{}{"and": []interface{}{
			map[string]interface{}{"disk": "> 50"},
			map[string]interface{}{"gpu": "anything"},
		}},
	}})
	assert.True(t, e.Evaluate(n))
}
