// Package hoststat samples the host figures that workflow rules compare
// against: disk usage of the working volume, CPU utilisation and memory
// pressure. All figures are percentages between 0 and 100.
package hoststat

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
)

// DefaultCPUWindow is how long a CPU sample observes the processors
const DefaultCPUWindow = 200 * time.Millisecond

// Sampler reports live host usage figures
type Sampler interface {
	DiskUsedPercent() (float64, error)
	CPUPercent() (float64, error)
	MemoryUsedPercent() (float64, error)
}

// Host samples the machine the engine runs on
type Host struct {
	// DiskPath is the path whose volume is measured, "." by default
	DiskPath string
	// CPUWindow is the sampling interval passed to gopsutil
	CPUWindow time.Duration
}

// NewHost returns a sampler for the working directory's volume
func NewHost() *Host {
	return &Host{DiskPath: ".", CPUWindow: DefaultCPUWindow}
}

// DiskUsedPercent returns the used share of the volume holding DiskPath
func (h *Host) DiskUsedPercent() (float64, error) {
	path := h.DiskPath
	if path == "" {
		path = "."
	}
	stats, err := fsutil.GetDiskStats(path)
	if err != nil {
		return 0, err
	}
	return stats.UsedPercent(), nil
}

// CPUPercent returns the aggregate CPU utilisation over CPUWindow
func (h *Host) CPUPercent() (float64, error) {
	window := h.CPUWindow
	if window <= 0 {
		window = DefaultCPUWindow
	}
	samples, err := cpu.Percent(window, false)
	if err != nil {
		return 0, fmt.Errorf("sample cpu: %w", err)
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("sample cpu: no data")
	}
	return samples[0], nil
}

// MemoryUsedPercent returns used/(used+free) of physical memory
func (h *Host) MemoryUsedPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("sample memory: %w", err)
	}
	total := vm.Used + vm.Free
	if total == 0 {
		return 0, fmt.Errorf("sample memory: no data")
	}
	return float64(vm.Used) / float64(total) * 100, nil
}

// Static is a fixed Sampler. A non-nil Err is returned from every method.
type Static struct {
	Disk   float64
	CPU    float64
	Memory float64
	Err    error
}

func (s Static) DiskUsedPercent() (float64, error)   { return s.Disk, s.Err }
func (s Static) CPUPercent() (float64, error)        { return s.CPU, s.Err }
func (s Static) MemoryUsedPercent() (float64, error) { return s.Memory, s.Err }
