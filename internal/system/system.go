package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ImageExtensions are the upload formats the codec understands.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".pdf"}

// InitResourceLimits raises the open-file limit so the server can hold many
// concurrent upload connections.
func InitResourceLimits(want uint64) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read open file limit: %v", err)
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = min(want, rLimit.Max)
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise open file limit: %v", err)
		return
	}
	log.Printf("[*] Open file limit raised to %d", rLimit.Cur)
}

// WorkerCount returns the number of physical cores, falling back to the
// logical count and then to runtime.NumCPU.
func WorkerCount() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// LogResources prints a one-line summary of the host.
func LogResources() {
	logical, _ := cpu.Counts(true)
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[*] CPU: %d logical cores", logical)
		return
	}
	log.Printf("[*] CPU: %d logical cores | RAM: %.1f GiB total, %.1f GiB available (%.0f%% used)",
		logical, gib(vm.Total), gib(vm.Available), vm.UsedPercent)
}

func gib(b uint64) float64 {
	return float64(b) / (1 << 30)
}

// FindLatestImage returns the most recently modified image or PDF in dir. If
// path is a file, its directory is searched.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	files, err := os.ReadDir(searchDir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !isImage(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(searchDir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no images found in %s", searchDir)
	}

	return latestFile, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
