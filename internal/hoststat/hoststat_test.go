package hoststat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostDiskUsedPercent(t *testing.T) {
	h := &Host{DiskPath: t.TempDir()}
	used, err := h.DiskUsedPercent()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, used, 0.0)
	assert.LessOrEqual(t, used, 100.0)
}

func TestHostDiskMissingPath(t *testing.T) {
	h := &Host{DiskPath: "/definitely/not/a/real/path"}
	_, err := h.DiskUsedPercent()
	assert.Error(t, err)
}

func TestStaticSampler(t *testing.T) {
	var s Sampler = Static{Disk: 10, CPU: 20, Memory: 30}
	d, _ := s.DiskUsedPercent()
	c, _ := s.CPUPercent()
	m, _ := s.MemoryUsedPercent()
	assert.Equal(t, []float64{10, 20, 30}, []float64{d, c, m})

	boom := errors.New("boom")
	_, err := Static{Err: boom}.CPUPercent()
	assert.ErrorIs(t, err, boom)
}
