package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DataPaths locates the garden data on disk. Empty paths are not reported.
type DataPaths struct {
	Dir       string
	Database  string
	PlansFile string
	Catalog   string
}

// GardenStats counts what the planner currently holds.
type GardenStats struct {
	Plans        int
	PlantedCells int
	Vegetables   int
}

// StorageSizes breaks the data directory down by store. A store that does
// not exist on disk reads "-".
type StorageSizes struct {
	Total     string
	Database  string
	PlansFile string
	Catalog   string
}

// SysHealth represents process metrics alongside the garden data they serve.
type SysHealth struct {
	AllocMB      uint64
	TotalAllocMB uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string
	Storage      StorageSizes
	Garden       GardenStats
}

// GetSysHealth collects process health, the size of each garden store and
// the planner counts passed in by the caller.
func GetSysHealth(paths DataPaths, garden GardenStats) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	total := FormatBytes(dirSize(paths.Dir))
	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: total,
		Storage: StorageSizes{
			Total: total,
			// sqlite keeps recent writes in the -wal sidecar
			Database:  fileSize(paths.Database, paths.Database+"-wal"),
			PlansFile: fileSize(paths.PlansFile),
			Catalog:   fileSize(paths.Catalog),
		},
		Garden: garden,
	}
}

func fileSize(paths ...string) string {
	var size int64
	found := false
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		size += info.Size()
		found = true
	}
	if !found {
		return "-"
	}
	return FormatBytes(size)
}

func dirSize(path string) int64 {
	if path == "" {
		return 0
	}
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
