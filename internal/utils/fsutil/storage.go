package fsutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskStats describes the capacity of the volume holding a path.
type DiskStats struct {
	Total     uint64
	Available uint64
}

// UsedPercent reports the share of the volume that is not available to
// unprivileged users, as a value between 0 and 100.
func (d DiskStats) UsedPercent() float64 {
	if d.Total == 0 {
		return 0
	}
	return (1.0 - float64(d.Available)/float64(d.Total)) * 100
}

// GetDiskStats returns capacity figures for the volume containing path
func GetDiskStats(path string) (DiskStats, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	if stat.Blocks == 0 {
		return DiskStats{}, fmt.Errorf("statfs %s: volume reports zero blocks", path)
	}
	bsize := uint64(stat.Bsize)
	return DiskStats{
		Total:     uint64(stat.Blocks) * bsize,
		Available: uint64(stat.Bavail) * bsize,
	}, nil
}

// GetFreeDiskSpace returns the available disk space in bytes for a given path
func GetFreeDiskSpace(path string) (uint64, error) {
	mu := GetPathMutex(path)
	mu.Lock()
	defer mu.Unlock()

	stats, err := GetDiskStats(path)
	if err != nil {
		return 0, err
	}
	return stats.Available, nil
}

// HasEnoughDiskSpace checks if there is sufficient free space for a file operation
func HasEnoughDiskSpace(path string, requiredBytes uint64) (bool, error) {
	freeSpace, err := GetFreeDiskSpace(path)
	if err != nil {
		return false, err
	}
	return freeSpace >= requiredBytes, nil
}
